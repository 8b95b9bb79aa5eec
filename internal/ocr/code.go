package ocr

import (
	"regexp"
	"strings"
)

// CodeLength is the number of digits in a number code.
const CodeLength = 3

var (
	exactCodePattern = regexp.MustCompile(`\b(\d{3})\b`)
	shortCodePattern = regexp.MustCompile(`\b(\d{1,3})\b`)
	nonDigitPattern  = regexp.MustCompile(`\D`)
)

// ExtractNumberCode reduces recognized text to a three-digit code.
//
// Rules, first match wins:
//  1. the first standalone group of exactly three digits ("A 042 B" -> "042")
//  2. the first standalone group of one to three digits, zero-padded ("7" -> "007")
//  3. all digits in the text, first three, zero-padded ("A1B2" -> "012")
//
// Text without digits yields "".
func ExtractNumberCode(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if m := exactCodePattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}

	if m := shortCodePattern.FindStringSubmatch(text); m != nil {
		return padCode(m[1])
	}

	digits := nonDigitPattern.ReplaceAllString(text, "")
	if digits == "" {
		return ""
	}
	if len(digits) > CodeLength {
		digits = digits[:CodeLength]
	}
	return padCode(digits)
}

func padCode(digits string) string {
	if len(digits) >= CodeLength {
		return digits
	}
	return strings.Repeat("0", CodeLength-len(digits)) + digits
}
