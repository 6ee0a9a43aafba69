package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

var phoneRx = regexp.MustCompile(`^\+?[0-9][0-9\s\-]{6,18}$`)

func Email(v string) error {
	if v == "" {
		return fmt.Errorf("email is required")
	}
	if len(v) > 320 || !emailRx.MatchString(v) {
		return fmt.Errorf("invalid email")
	}
	return nil
}

func Phone(v string) error {
	if !phoneRx.MatchString(v) {
		return fmt.Errorf("invalid phone number")
	}
	return nil
}

// Date checks a YYYY-MM-DD calendar date that is not in the future.
func Date(v string) error {
	d, err := time.Parse("2006-01-02", v)
	if err != nil {
		return fmt.Errorf("invalid date, expected YYYY-MM-DD")
	}
	if d.After(time.Now()) {
		return fmt.Errorf("date is in the future")
	}
	return nil
}

// OneOf checks v against a closed set.
func OneOf(field, v string, allowed ...string) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of: %s", field, strings.Join(allowed, ", "))
}

// Password length bounds. bcrypt rejects input longer than 72 bytes.
const (
	MinPasswordLen   = 6
	MaxPasswordBytes = 72
)

func Password(field, v string) error {
	if err := MinLen(field, v, MinPasswordLen); err != nil {
		return err
	}
	if len(v) > MaxPasswordBytes {
		return fmt.Errorf("%s must be at most %d bytes", field, MaxPasswordBytes)
	}
	return nil
}

func MinLen(field, v string, n int) error {
	if len(v) < n {
		return fmt.Errorf("%s must be at least %d characters", field, n)
	}
	return nil
}

// Missing returns the names in required whose value in body is absent, null or
// a blank string, in the order given.
func Missing(body map[string]any, required ...string) []string {
	var missing []string
	for _, f := range required {
		v, ok := body[f]
		if !ok || v == nil {
			missing = append(missing, f)
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}
