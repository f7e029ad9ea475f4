package types

import (
	"strings"
	"time"
)

// DateLayout is the storage and interchange format for calendar dates.
const DateLayout = "2006-01-02"

// ValidateDate checks that s is empty or a YYYY-MM-DD date.
func ValidateDate(field, s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return Invalid(field, "must be in YYYY-MM-DD format")
	}
	return nil
}

// Today returns the current local date in DateLayout.
func Today() string {
	return time.Now().Format(DateLayout)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
