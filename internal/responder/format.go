package responder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Ananth-NQI/clinicbot-backend/internal/models"
)

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// formatHours renders one line per weekday that has both an opening and a
// closing time, Monday first. ok is false when no day qualifies.
func formatHours(schedule models.WorkingHours, p phrases) (string, bool) {
	var lines []string
	for _, day := range weekdays {
		hours, found := lookupDay(schedule, day)
		if !found || strings.TrimSpace(hours.Open) == "" || strings.TrimSpace(hours.Close) == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s - %s",
			p.Days[day], strings.TrimSpace(hours.Open), strings.TrimSpace(hours.Close)))
	}
	if len(lines) == 0 {
		return "", false
	}
	return p.HoursHeader + "\n" + strings.Join(lines, "\n"), true
}

// lookupDay tolerates capitalized day keys in stored schedules
func lookupDay(schedule models.WorkingHours, day string) (models.DayHours, bool) {
	if hours, ok := schedule[day]; ok {
		return hours, true
	}
	for key, hours := range schedule {
		if strings.EqualFold(strings.TrimSpace(key), day) {
			return hours, true
		}
	}
	return models.DayHours{}, false
}

// formatServices renders "Name: <price> <currency> (<n> mins)" per catalog entry
func formatServices(items []models.ServiceItem, clinicCurrency, fallbackCurrency string, locale models.Locale, p phrases) (string, bool) {
	if len(items) == 0 {
		return "", false
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		currency := firstNonEmpty(item.Currency, clinicCurrency, fallbackCurrency)

		line := fmt.Sprintf("%s: %s", serviceName(item, locale), formatPrice(item.Price))
		if currency != "" {
			line += " " + currency
		}
		if item.Duration > 0 {
			line += fmt.Sprintf(" (%d %s)", item.Duration, p.Minutes)
		}
		lines = append(lines, line)
	}

	return p.ServicesHeader + "\n" + strings.Join(lines, "\n"), true
}

func serviceName(item models.ServiceItem, locale models.Locale) string {
	if locale == models.LocaleArabic {
		return firstNonEmpty(item.NameAr, item.NameEn)
	}
	return firstNonEmpty(item.NameEn, item.NameAr)
}

// formatPrice drops trailing zeros: 50 -> "50", 49.5 -> "49.5"
func formatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
