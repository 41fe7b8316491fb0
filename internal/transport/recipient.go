package transport

import "strings"

// NormalizeRecipient keeps ASCII digits and a single leading plus, so
// "whatsapp:+1 (415) 523-8886" becomes "+14155238886". A chat id such as
// "14155238886:3@s.whatsapp.net" is cut at its device and server parts first.
func NormalizeRecipient(raw string) (string, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "whatsapp:")
	if at := strings.IndexByte(raw, '@'); at >= 0 {
		raw = raw[:at]
		if colon := strings.IndexByte(raw, ':'); colon >= 0 {
			raw = raw[:colon]
		}
	}

	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		}
	}

	if strings.TrimPrefix(b.String(), "+") == "" {
		return "", ErrInvalidRecipient
	}
	return b.String(), nil
}
