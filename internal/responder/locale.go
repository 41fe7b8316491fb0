package responder

import (
	"unicode"

	"github.com/Ananth-NQI/clinicbot-backend/internal/models"
)

// SelectLocale picks the reply locale of one inbound message. Arabic is used
// only when the clinic accepts it and the sender actually wrote Arabic.
func SelectLocale(preference, text string) models.Locale {
	switch preference {
	case models.LanguageArabic, models.LanguageBilingual:
		if ContainsArabic(text) {
			return models.LocaleArabic
		}
	}
	return models.LocaleEnglish
}

// arabicBlock is U+0600..U+06FF, which also holds script-Common punctuation
// such as the Arabic comma and question mark
var arabicBlock = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0600, Hi: 0x06FF, Stride: 1}},
}

// ContainsArabic reports whether text has at least one rune of the Arabic
// block or the Arabic script
func ContainsArabic(text string) bool {
	for _, r := range text {
		if unicode.In(r, arabicBlock, unicode.Arabic) {
			return true
		}
	}
	return false
}
