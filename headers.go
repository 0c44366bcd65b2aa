package wayback

import "strings"

// Headers is a case-insensitive map of HTTP header names to values, used
// for Memento.Headers. Each name holds a single value; setting it again
// replaces the value. Lookups are case-insensitive; iteration with Keys
// preserves the casing each header was first set with.
type Headers struct {
	values map[string]string
	casing map[string]string
	order  []string
}

// NewHeaders builds an empty Headers value.
func NewHeaders() *Headers {
	return &Headers{
		values: make(map[string]string),
		casing: make(map[string]string),
	}
}

// Set stores value under key, preserving key's casing for iteration if this
// is the first time key has been set (regardless of case).
func (h *Headers) Set(key, value string) {
	fold := strings.ToLower(key)
	if _, ok := h.values[fold]; !ok {
		h.order = append(h.order, fold)
		h.casing[fold] = key
	}
	h.values[fold] = value
}

// Get returns the value stored for key, case-insensitively, and whether it
// was present.
func (h *Headers) Get(key string) (string, bool) {
	v, ok := h.values[strings.ToLower(key)]
	return v, ok
}

// GetDefault returns the value stored for key, or def if key is absent.
func (h *Headers) GetDefault(key, def string) string {
	if v, ok := h.Get(key); ok {
		return v
	}
	return def
}

// Keys returns the header names in the original casing they were first set
// with, in the order they were first set.
func (h *Headers) Keys() []string {
	keys := make([]string, len(h.order))
	for i, fold := range h.order {
		keys[i] = h.casing[fold]
	}
	return keys
}

// Len returns the number of distinct headers stored.
func (h *Headers) Len() int {
	return len(h.order)
}
