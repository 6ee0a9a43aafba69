package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const maxBody = 1 << 20

var ErrBadBody = errors.New("invalid request body")

// DecodeBody reads a JSON object. Partial updates need to know which keys were
// sent, so bodies are decoded into a map first and bound to structs afterwards.
func DecodeBody(r *http.Request) (map[string]any, error) {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.UseNumber()

	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadBody, err)
	}
	if body == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrBadBody)
	}
	return body, nil
}

// Bind copies body into v via its JSON tags.
func Bind(body map[string]any, v any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadBody, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadBody, err)
	}
	return nil
}

// IDParam parses the {id} URL parameter as a positive integer.
func IDParam(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", chi.URLParam(r, "id"))
	}
	return id, nil
}

// QueryInt returns the integer query parameter key, or def when absent or malformed.
func QueryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// String reads key from body. ok is false when the key is absent; err is set when
// it is present but not a string.
func String(body map[string]any, key string) (val string, ok bool, err error) {
	v, present := body[key]
	if !present {
		return "", false, nil
	}
	if v == nil {
		return "", true, nil
	}
	s, isStr := v.(string)
	if !isStr {
		return "", true, fmt.Errorf("%s must be a string", key)
	}
	return s, true, nil
}
