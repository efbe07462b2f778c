package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed locales/*.json
var embeddedLocales embed.FS

// Bundle holds one immutable translation table per supported language.
type Bundle struct {
	tables map[Language]*Table
}

// LoadEmbedded loads the locale files compiled into the binary.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embeddedLocales, "locales")
}

// LoadFromFS loads <lang>.json files from dir. Every supported language must
// have a file and all tables must define the same key set.
func LoadFromFS(fsys fs.FS, dir string) (*Bundle, error) {
	paths, err := fs.Glob(fsys, path.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("glob locales: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no locale files found in %s", dir)
	}
	sort.Strings(paths)

	b := &Bundle{tables: map[Language]*Table{}}
	for _, p := range paths {
		name := strings.TrimSuffix(path.Base(p), ".json")
		lang := Language(name)
		if !lang.Valid() {
			return nil, fmt.Errorf("locale %s: unsupported language %q", p, name)
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", p, err)
		}
		messages, err := parseLocale(data)
		if err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", p, err)
		}
		b.tables[lang] = &Table{lang: lang, messages: messages}
	}

	for _, lang := range supported {
		if _, ok := b.tables[lang]; !ok {
			return nil, fmt.Errorf("locale file for %q is missing", lang)
		}
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Table returns the table for lang, or nil for an unsupported language.
func (b *Bundle) Table(lang Language) *Table {
	if b == nil {
		return nil
	}
	return b.tables[lang]
}

// Languages returns the languages present in the bundle, sorted.
func (b *Bundle) Languages() []Language {
	out := make([]Language, 0, len(b.tables))
	for lang := range b.tables {
		out = append(out, lang)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MissingKeysError lists, per language, keys that other tables define.
type MissingKeysError struct {
	Missing map[Language][]string
}

func (e *MissingKeysError) Error() string {
	langs := make([]string, 0, len(e.Missing))
	for lang := range e.Missing {
		langs = append(langs, string(lang))
	}
	sort.Strings(langs)

	var sb strings.Builder
	sb.WriteString("incomplete translation tables:")
	for _, lang := range langs {
		fmt.Fprintf(&sb, " %s missing [%s];", lang, strings.Join(e.Missing[Language(lang)], ", "))
	}
	return strings.TrimSuffix(sb.String(), ";")
}

// Validate checks that every table defines exactly the union of all keys.
func (b *Bundle) Validate() error {
	union := map[string]struct{}{}
	for _, table := range b.tables {
		for key := range table.messages {
			union[key] = struct{}{}
		}
	}

	missing := map[Language][]string{}
	for lang, table := range b.tables {
		for key := range union {
			if _, ok := table.messages[key]; !ok {
				missing[lang] = append(missing[lang], key)
			}
		}
		sort.Strings(missing[lang])
	}
	for lang, keys := range missing {
		if len(keys) == 0 {
			delete(missing, lang)
		}
	}
	if len(missing) > 0 {
		return &MissingKeysError{Missing: missing}
	}
	return nil
}

func parseLocale(data []byte) (map[string]string, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := map[string]string{}
	if err := flatten("", raw, out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no messages")
	}
	return out, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) error {
	for key, value := range node {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("blank key under %q", prefix)
		}
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch v := value.(type) {
		case string:
			out[full] = v
		case map[string]any:
			if err := flatten(full, v, out); err != nil {
				return err
			}
		default:
			return fmt.Errorf("key %q: value must be a string or object, got %T", full, value)
		}
	}
	return nil
}
