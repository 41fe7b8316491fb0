package responder

import (
	"fmt"
	"strings"

	"github.com/Ananth-NQI/clinicbot-backend/internal/config"
	"github.com/Ananth-NQI/clinicbot-backend/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Intent names the rule that produced a reply
type Intent string

const (
	IntentKeyword  Intent = "keyword"
	IntentGreeting Intent = "greeting"
	IntentLocation Intent = "location"
	IntentHours    Intent = "hours"
	IntentPricing  Intent = "pricing"
	IntentBooking  Intent = "booking"
	IntentContact  Intent = "contact"
	IntentHuman    Intent = "human"
	IntentDefault  Intent = "default"
	IntentNone     Intent = ""
)

// request is one normalized inbound text with the inputs of a reply
type request struct {
	text   string
	arabic bool
	clinic *models.ClinicConfiguration
	locale models.Locale
	p      phrases
}

// rule is one entry of the ordered intent table; reply returns ok=false to
// let the next rule try
type rule struct {
	intent Intent
	reply  func(r *Responder, req request) (string, bool)
}

// Responder composes deterministic replies from a clinic configuration.
// It holds no per-request state and is safe for concurrent use.
type Responder struct {
	rules           []rule
	english         map[Intent][]string
	arabic          map[Intent][]string
	defaultCurrency string
}

// New builds a responder; Arabic triggers come from configuration and fall
// back to the built-in set for intents the configuration leaves out
func New(cfg config.Responder) *Responder {
	arabic := make(map[Intent][]string)
	for name, words := range config.DefaultArabicTriggers() {
		arabic[Intent(name)] = normalizeAll(words)
	}
	for name, words := range cfg.ArabicTriggers {
		arabic[Intent(strings.ToLower(name))] = normalizeAll(words)
	}

	r := &Responder{
		english: map[Intent][]string{
			IntentGreeting: {"hi", "hello", "start", "help"},
			IntentLocation: {"location", "address", "where"},
			IntentHours:    {"hours", "time", "open", "close"},
			IntentPricing:  {"price", "cost", "service", "list"},
			IntentBooking:  {"book", "appointment", "schedule"},
			IntentContact:  {"call", "contact", "phone"},
			IntentHuman:    {"human", "agent", "speak", "talk"},
		},
		arabic:          arabic,
		defaultCurrency: cfg.DefaultCurrency,
	}

	r.rules = []rule{
		{IntentKeyword, (*Responder).keywordReply},
		{IntentGreeting, triggered(IntentGreeting, (*Responder).greetingReply)},
		{IntentLocation, triggered(IntentLocation, (*Responder).locationReply)},
		{IntentHours, triggered(IntentHours, (*Responder).hoursReply)},
		{IntentPricing, triggered(IntentPricing, (*Responder).pricingReply)},
		{IntentBooking, triggered(IntentBooking, fixed(func(p phrases) string { return p.Booking }))},
		{IntentContact, triggered(IntentContact, (*Responder).contactReply)},
		{IntentHuman, triggered(IntentHuman, fixed(func(p phrases) string { return p.Human }))},
		{IntentDefault, fixed(func(p phrases) string { return p.Default })},
	}

	return r
}

// Respond returns the reply to text for the clinic in the given locale.
// ok is false only for blank input. clinic is never modified.
func (r *Responder) Respond(text string, clinic *models.ClinicConfiguration, locale models.Locale) (string, bool) {
	reply, intent := r.respond(text, clinic, locale)
	return reply, intent != IntentNone
}

// Classify returns the intent that Respond would answer text with
func (r *Responder) Classify(text string, clinic *models.ClinicConfiguration, locale models.Locale) Intent {
	_, intent := r.respond(text, clinic, locale)
	return intent
}

func (r *Responder) respond(text string, clinic *models.ClinicConfiguration, locale models.Locale) (string, Intent) {
	normalized := normalize(text)
	if normalized == "" {
		return "", IntentNone
	}
	if clinic == nil {
		clinic = &models.ClinicConfiguration{}
	}

	req := request{
		text:   normalized,
		arabic: ContainsArabic(normalized),
		clinic: clinic,
		locale: locale,
		p:      phrasesFor(locale),
	}

	for _, rl := range r.rules {
		if reply, ok := rl.reply(r, req); ok {
			return reply, rl.intent
		}
	}
	return "", IntentNone
}

// triggered guards a reply with the intent's trigger words
func triggered(intent Intent, reply func(r *Responder, req request) (string, bool)) func(*Responder, request) (string, bool) {
	return func(r *Responder, req request) (string, bool) {
		if !r.matches(intent, req) {
			return "", false
		}
		return reply(r, req)
	}
}

func fixed(text func(p phrases) string) func(*Responder, request) (string, bool) {
	return func(_ *Responder, req request) (string, bool) {
		return text(req.p), true
	}
}

func (r *Responder) matches(intent Intent, req request) bool {
	if containsAny(req.text, r.english[intent]) {
		return true
	}
	// Arabic triggers only count when the sender wrote Arabic
	return req.arabic && containsAny(req.text, r.arabic[intent])
}

func (r *Responder) keywordReply(req request) (string, bool) {
	for _, kw := range req.clinic.Rules() {
		trigger := normalize(kw.Keyword)
		if trigger == "" || !strings.Contains(req.text, trigger) {
			continue
		}
		if reply := localized(req.locale, kw.ResponseEn, kw.ResponseAr); reply != "" {
			return reply, true
		}
	}
	return "", false
}

func (r *Responder) greetingReply(req request) (string, bool) {
	greeting := localized(req.locale, req.clinic.GreetingEn, req.clinic.GreetingAr)
	if greeting == "" {
		greeting = req.p.WelcomeGeneric
		if name := strings.TrimSpace(req.clinic.ClinicName); name != "" {
			greeting = fmt.Sprintf(req.p.Welcome, name)
		}
	}
	return greeting + "\n\n" + req.p.Menu, true
}

func (r *Responder) locationReply(req request) (string, bool) {
	address := localized(req.locale, req.clinic.AddressEn, req.clinic.AddressAr)
	if address == "" {
		return req.p.LocationUnavailable, true
	}

	reply := req.p.LocationHeader + "\n" + address
	if mapURL := strings.TrimSpace(req.clinic.MapURL); mapURL != "" {
		reply += "\n" + req.p.MapLabel + " " + mapURL
	}
	return reply, true
}

func (r *Responder) hoursReply(req request) (string, bool) {
	if reply, ok := formatHours(req.clinic.Schedule(), req.p); ok {
		return reply, true
	}
	return req.p.HoursUnavailable, true
}

func (r *Responder) pricingReply(req request) (string, bool) {
	if reply, ok := formatServices(req.clinic.Catalog(), req.clinic.Currency, r.defaultCurrency, req.locale, req.p); ok {
		return reply, true
	}
	return req.p.ServicesUnavailable, true
}

func (r *Responder) contactReply(req request) (string, bool) {
	phone := strings.TrimSpace(req.clinic.Phone)
	if phone == "" {
		return req.p.ContactUnavailable, true
	}
	return req.p.ContactPrefix + " " + phone, true
}

// localized prefers the requested locale, then English, then Arabic
func localized(locale models.Locale, en, ar string) string {
	if locale == models.LocaleArabic {
		return firstNonEmpty(ar, en)
	}
	return firstNonEmpty(en, ar)
}

// normalize trims and lower-cases text; the caser is built per call since a
// cases.Caser must not be shared between goroutines
func normalize(text string) string {
	return strings.TrimSpace(cases.Lower(language.Und).String(text))
}

func normalizeAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if n := normalize(w); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
