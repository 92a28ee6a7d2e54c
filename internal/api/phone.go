package api

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")

// NormalizePhone parses raw against region and returns it in E.164 form.
// Numbers that cannot be parsed are a ValidationError on field.
func NormalizePhone(field, raw, region string) (string, error) {
	cleaned := phoneSeparators.Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return "", &ValidationError{Field: field, Reason: "phone number is required"}
	}

	num, err := phonenumbers.Parse(cleaned, region)
	if err != nil {
		return "", &ValidationError{Field: field, Reason: "not a phone number: " + err.Error()}
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
