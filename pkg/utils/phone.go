package utils

import "strings"

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "", "\t", "")

// NormalizePhone converts the accepted Iranian phone spellings into the
// +98 form. Input that matches no known prefix is returned cleaned but
// otherwise untouched. The function is idempotent.
func NormalizePhone(input string) string {
	cleaned := phoneSeparators.Replace(strings.TrimSpace(input))

	switch {
	case cleaned == "":
		return ""
	case strings.HasPrefix(cleaned, "+"):
		return cleaned
	case strings.HasPrefix(cleaned, "0098"):
		return "+98" + cleaned[4:]
	case strings.HasPrefix(cleaned, "98"):
		return "+" + cleaned
	case strings.HasPrefix(cleaned, "00"):
		return "+" + cleaned[2:]
	case strings.HasPrefix(cleaned, "0"):
		return "+98" + cleaned[1:]
	case strings.HasPrefix(cleaned, "9"):
		return "+98" + cleaned
	}

	return cleaned
}
