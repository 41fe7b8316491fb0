package responder

import "github.com/Ananth-NQI/clinicbot-backend/internal/models"

// phrases is the fixed text of one reply locale
type phrases struct {
	Welcome             string // used when the clinic has no greeting; %s is the clinic name
	WelcomeGeneric      string
	Menu                string
	LocationHeader      string
	MapLabel            string
	LocationUnavailable string
	HoursHeader         string
	HoursUnavailable    string
	ServicesHeader      string
	ServicesUnavailable string
	Minutes             string
	Booking             string
	ContactPrefix       string
	ContactUnavailable  string
	Human               string
	Default             string
	Days                map[string]string
}

var catalog = map[models.Locale]phrases{
	models.LocaleEnglish: {
		Welcome:        "👋 *Welcome to %s!*",
		WelcomeGeneric: "👋 *Welcome!*",
		Menu: `How can we help you today? Reply with:

📍 *LOCATION* - Clinic address
🕒 *HOURS* - Working hours
💰 *PRICES* - Services and prices
📅 *BOOK* - Book an appointment
📞 *CALL* - Contact number
🙋 *HUMAN* - Talk to our staff`,
		LocationHeader:      "📍 *Our location:*",
		MapLabel:            "🗺️ Map:",
		LocationUnavailable: "📍 Our address is not available yet. Please call the clinic for directions.",
		HoursHeader:         "🕒 *Working hours:*",
		HoursUnavailable:    "🕒 Our working hours are not available yet. Please call the clinic.",
		ServicesHeader:      "💰 *Services and prices:*",
		ServicesUnavailable: "💰 Our price list is not available yet. Please call the clinic.",
		Minutes:             "mins",
		Booking: `📅 *Book an appointment*

Please send us:
1. The service you need
2. Your preferred date
3. Your preferred time

Our team will confirm your appointment.`,
		ContactPrefix:      "📞 You can reach us at",
		ContactUnavailable: "📞 Our phone number is not available yet. Reply *HUMAN* and our staff will contact you.",
		Human:              "🙋 Thank you! A member of our team will contact you shortly.",
		Default:            "🤔 Sorry, I didn't understand that. Reply *HI* to see the menu.",
		Days: map[string]string{
			"monday":    "Monday",
			"tuesday":   "Tuesday",
			"wednesday": "Wednesday",
			"thursday":  "Thursday",
			"friday":    "Friday",
			"saturday":  "Saturday",
			"sunday":    "Sunday",
		},
	},
	models.LocaleArabic: {
		Welcome:        "👋 *أهلاً بكم في %s!*",
		WelcomeGeneric: "👋 *أهلاً بكم!*",
		Menu: `كيف يمكننا مساعدتك اليوم؟ أرسل:

📍 *موقع* - عنوان العيادة
🕒 *ساعات* - ساعات العمل
💰 *أسعار* - الخدمات والأسعار
📅 *حجز* - حجز موعد
📞 *اتصال* - رقم التواصل
🙋 *موظف* - التحدث مع فريقنا`,
		LocationHeader:      "📍 *موقعنا:*",
		MapLabel:            "🗺️ الخريطة:",
		LocationUnavailable: "📍 العنوان غير متوفر حالياً. يرجى الاتصال بالعيادة.",
		HoursHeader:         "🕒 *ساعات العمل:*",
		HoursUnavailable:    "🕒 ساعات العمل غير متوفرة حالياً. يرجى الاتصال بالعيادة.",
		ServicesHeader:      "💰 *الخدمات والأسعار:*",
		ServicesUnavailable: "💰 قائمة الأسعار غير متوفرة حالياً. يرجى الاتصال بالعيادة.",
		Minutes:             "دقيقة",
		Booking: `📅 *حجز موعد*

يرجى إرسال:
1. الخدمة المطلوبة
2. التاريخ المفضل
3. الوقت المفضل

سيقوم فريقنا بتأكيد موعدك.`,
		ContactPrefix:      "📞 يمكنك التواصل معنا على",
		ContactUnavailable: "📞 رقم الهاتف غير متوفر حالياً. أرسل *موظف* وسيتواصل معك فريقنا.",
		Human:              "🙋 شكراً لك! سيتواصل معك أحد أعضاء فريقنا قريباً.",
		Default:            "🤔 عذراً، لم أفهم رسالتك. أرسل *مرحبا* لعرض القائمة.",
		Days: map[string]string{
			"monday":    "الاثنين",
			"tuesday":   "الثلاثاء",
			"wednesday": "الأربعاء",
			"thursday":  "الخميس",
			"friday":    "الجمعة",
			"saturday":  "السبت",
			"sunday":    "الأحد",
		},
	},
}

func phrasesFor(locale models.Locale) phrases {
	if p, ok := catalog[locale]; ok {
		return p
	}
	return catalog[models.LocaleEnglish]
}
