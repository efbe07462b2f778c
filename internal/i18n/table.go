package i18n

import (
	"sort"
	"strings"

	"golang.org/x/text/message"
)

// Table is an immutable key to string mapping for one language.
type Table struct {
	lang     Language
	messages map[string]string
}

// Language returns the language of the table.
func (t *Table) Language() Language {
	return t.lang
}

// Text returns the message for key. Keys are checked at build time, so a
// missing key yields the empty string rather than a fallback.
func (t *Table) Text(key string) string {
	if t == nil {
		return ""
	}
	return t.messages[key]
}

// Lookup returns the message for key and whether it exists.
func (t *Table) Lookup(key string) (string, bool) {
	if t == nil {
		return "", false
	}
	v, ok := t.messages[key]
	return v, ok
}

// Format renders the message for key as a printf template with
// locale-aware number formatting.
func (t *Table) Format(key string, args ...any) string {
	if t == nil {
		return ""
	}
	return message.NewPrinter(t.lang.Tag()).Sprintf(t.messages[key], args...)
}

// Keys returns all keys in the table, sorted.
func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.messages))
	for key := range t.messages {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Messages returns a copy of the messages whose key starts with prefix.
// An empty prefix returns everything.
func (t *Table) Messages(prefix string) map[string]string {
	out := map[string]string{}
	for key, value := range t.messages {
		if prefix == "" || strings.HasPrefix(key, prefix) {
			out[key] = value
		}
	}
	return out
}
