package elements

import "strings"

type Field string

const (
	FieldNumber     Field = "number"
	FieldExpMonth   Field = "exp_month"
	FieldExpYear    Field = "exp_year"
	FieldCVC        Field = "cvc"
	FieldPostalCode Field = "postal_code"
)

// Fields lists the card inputs in tab order.
var Fields = []Field{FieldNumber, FieldExpMonth, FieldExpYear, FieldCVC, FieldPostalCode}

const (
	cardNumberDigits  = 16
	cardNumberDisplay = 19
	expDigits         = 2
	cvcMaxDigits      = 4
	cvcAdvanceDigits  = 3
)

func digitsOnly(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCardNumber groups the digits in blocks of four, capped at 19
// characters.
func FormatCardNumber(raw string) string {
	digits := digitsOnly(raw)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	out := b.String()
	if len(out) > cardNumberDisplay {
		out = out[:cardNumberDisplay]
	}
	return out
}

// CardNumberValue is the displayed number with separators stripped.
func CardNumberValue(display string) string {
	return strings.ReplaceAll(display, " ", "")
}

// NormalizeExpMonth clamps two-digit values above 12 and left-pads a lone
// digit above 1, so "5" becomes "05" right away.
func NormalizeExpMonth(raw string) string {
	digits := digitsOnly(raw)
	if len(digits) > expDigits {
		digits = digits[:expDigits]
	}
	switch {
	case len(digits) == 2 && digits > "12":
		return "12"
	case len(digits) == 1 && digits > "1":
		return "0" + digits
	}
	return digits
}

func NormalizeExpYear(raw string) string {
	digits := digitsOnly(raw)
	if len(digits) > expDigits {
		digits = digits[:expDigits]
	}
	return digits
}

// ExpYearValue prefixes the two typed digits with "20".
func ExpYearValue(display string) string {
	if display == "" {
		return ""
	}
	return "20" + display
}

func NormalizeCVC(raw string) string {
	digits := digitsOnly(raw)
	if len(digits) > cvcMaxDigits {
		digits = digits[:cvcMaxDigits]
	}
	return digits
}

func NormalizePostalCode(raw string) string {
	return raw
}

// Normalize returns the display text for field.
func Normalize(field Field, raw string) string {
	switch field {
	case FieldNumber:
		return FormatCardNumber(raw)
	case FieldExpMonth:
		return NormalizeExpMonth(raw)
	case FieldExpYear:
		return NormalizeExpYear(raw)
	case FieldCVC:
		return NormalizeCVC(raw)
	default:
		return NormalizePostalCode(raw)
	}
}

// NextField reports where focus should move once field holds display.
func NextField(field Field, display string) (Field, bool) {
	switch field {
	case FieldNumber:
		if len(CardNumberValue(display)) >= cardNumberDigits {
			return FieldExpMonth, true
		}
	case FieldExpMonth:
		if len(display) >= expDigits {
			return FieldExpYear, true
		}
	case FieldExpYear:
		if len(display) >= expDigits {
			return FieldCVC, true
		}
	case FieldCVC:
		if len(display) >= cvcAdvanceDigits {
			return FieldPostalCode, true
		}
	}
	return "", false
}
