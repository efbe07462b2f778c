package i18n

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnsupportedLanguage is returned when switching to a language outside
// the supported set.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Store scopes the active language for one visitor. SetLanguage is the only
// writer; every page render reads through Table.
type Store struct {
	bundle *Bundle

	mu   sync.RWMutex
	lang Language
}

// NewStore creates a store with its initial language fixed to lang.
func NewStore(bundle *Bundle, lang Language) (*Store, error) {
	if bundle == nil {
		return nil, fmt.Errorf("i18n bundle is required")
	}
	if bundle.Table(lang) == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	return &Store{bundle: bundle, lang: lang}, nil
}

// Language returns the active language.
func (s *Store) Language() Language {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lang
}

// Table returns the table of the active language.
func (s *Store) Table() *Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bundle.Table(s.lang)
}

// SetLanguage switches the active language.
func (s *Store) SetLanguage(lang Language) error {
	if s.bundle.Table(lang) == nil {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	s.mu.Lock()
	s.lang = lang
	s.mu.Unlock()
	return nil
}

// Option is a language switcher entry.
type Option struct {
	Code   string
	Label  string
	Active bool
}

// Options returns the switcher entries with the active language marked.
func (s *Store) Options() []Option {
	active := s.Language()
	out := make([]Option, 0, len(supported))
	for _, lang := range supported {
		out = append(out, Option{
			Code:   lang.String(),
			Label:  lang.Label(),
			Active: lang == active,
		})
	}
	return out
}
