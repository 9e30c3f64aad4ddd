package commerce

import (
	"regexp"
	"strings"
)

var (
	mastercardPrefix = regexp.MustCompile(`^5[1-5]`)
	amexPrefix       = regexp.MustCompile(`^3[47]`)
	discoverPrefix   = regexp.MustCompile(`^6(?:011|5)`)
	nonDigits        = regexp.MustCompile(`\D`)
)

// StripCardFormatting keeps only the digits of a card number.
func StripCardFormatting(number string) string {
	return nonDigits.ReplaceAllString(number, "")
}

// CardType detects the card network from the leading digits.
func CardType(number string) string {
	digits := StripCardFormatting(number)
	switch {
	case strings.HasPrefix(digits, "4"):
		return "Visa"
	case mastercardPrefix.MatchString(digits):
		return "MasterCard"
	case amexPrefix.MatchString(digits):
		return "Amex"
	case discoverPrefix.MatchString(digits):
		return "Discover"
	default:
		return "Unknown"
	}
}

// MaskCardNumber hides everything but the last four digits.
func MaskCardNumber(number string) string {
	digits := StripCardFormatting(number)
	if len(digits) < 4 {
		return digits
	}
	return strings.Repeat("*", 12) + digits[len(digits)-4:]
}
