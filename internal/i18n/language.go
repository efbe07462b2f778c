package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is one of the closed set of site languages.
type Language string

const (
	Turkish Language = "tr"
	German  Language = "de"
	English Language = "en"
)

// DefaultLanguage is used when nothing better is known about a visitor.
const DefaultLanguage = German

var supported = []Language{Turkish, German, English}

var matcher = language.NewMatcher([]language.Tag{
	language.Turkish,
	language.German,
	language.English,
})

// Supported returns the site languages in switcher order.
func Supported() []Language {
	out := make([]Language, len(supported))
	copy(out, supported)
	return out
}

// Valid reports whether l is a member of the closed language set.
func (l Language) Valid() bool {
	for _, s := range supported {
		if l == s {
			return true
		}
	}
	return false
}

// Tag returns the x/text tag for l.
func (l Language) Tag() language.Tag {
	switch l {
	case Turkish:
		return language.Turkish
	case English:
		return language.English
	default:
		return language.German
	}
}

// Label returns the language name written in the language itself.
func (l Language) Label() string {
	return display.Self.Name(l.Tag())
}

func (l Language) String() string {
	return string(l)
}

// ParseLanguage accepts a BCP 47 tag and reduces it to a site language, so
// "de-AT" and "DE" both resolve to German.
func ParseLanguage(value string) (Language, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	lang := Language(base.String())
	if !lang.Valid() {
		return "", false
	}
	return lang, true
}

// MatchAcceptLanguage picks the best site language for an Accept-Language
// header value.
func MatchAcceptLanguage(header string, fallback Language) Language {
	header = strings.TrimSpace(header)
	if header == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No || index < 0 || index >= len(supported) {
		return fallback
	}
	return supported[index]
}
