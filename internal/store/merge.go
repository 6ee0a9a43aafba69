package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
)

var fieldRx = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validField(field string) error {
	if !fieldRx.MatchString(field) {
		return fmt.Errorf("invalid field name %q", field)
	}
	return nil
}

// merge applies patch over rec at the JSON level so untouched fields keep their
// encoded form. id and createdAt are owned by the store and cannot be patched.
func merge[T Entity](rec T, patch map[string]any, stamp string) (T, error) {
	var zero T

	b, err := json.Marshal(rec)
	if err != nil {
		return zero, err
	}
	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return zero, err
	}

	for k, v := range patch {
		if k == "id" || k == "createdAt" || k == "updatedAt" {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return zero, fmt.Errorf("field %s: %w", k, err)
		}
		doc[k] = raw
	}
	doc["updatedAt"], _ = json.Marshal(stamp)

	out, err := json.Marshal(doc)
	if err != nil {
		return zero, err
	}
	var merged T
	if err := json.Unmarshal(out, &merged); err != nil {
		return zero, err
	}
	return merged, nil
}

// matches reports whether the JSON encoding of rec holds value under field.
func matches[T Entity](rec T, field string, value any) bool {
	b, err := json.Marshal(rec)
	if err != nil {
		return false
	}
	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return false
	}
	got, ok := doc[field]
	if !ok {
		return false
	}
	want, err := json.Marshal(value)
	if err != nil {
		return false
	}
	return bytes.Equal(got, want)
}
