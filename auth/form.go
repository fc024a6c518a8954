package auth

import (
	"net/url"
	"strings"
)

// Form is an insertion-ordered application/x-www-form-urlencoded builder.
// url.Values sorts keys on Encode, token requests are built in the order the
// grant documents them instead.
type Form struct {
	keys   []string
	values []string
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{}
}

// Add appends a key/value pair.
func (f *Form) Add(key, value string) *Form {
	f.keys = append(f.keys, key)
	f.values = append(f.values, value)
	return f
}

// AddIf appends the pair only when value is not blank.
func (f *Form) AddIf(key, value string) *Form {
	if strings.TrimSpace(value) == "" {
		return f
	}
	return f.Add(key, value)
}

// Encode percent-encodes every key and value and joins them with '&'.
func (f *Form) Encode() string {
	var b strings.Builder
	for i, k := range f.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(f.values[i]))
	}
	return b.String()
}
