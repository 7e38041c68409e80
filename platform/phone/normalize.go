// Package phone normalizes contact phone numbers for storage.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// defaultRegion resolves numbers entered without a country prefix.
const defaultRegion = "US"

// NormalizeE164 returns the number in E.164 form. Input that cannot be parsed
// or is not a valid number is stored as entered, trimmed; contact creation
// must not fail on a sloppy phone field.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return trimmed
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}
