// Package lang loads the embedded localization tables and resolves user
// facing strings by key. Unknown language codes fall back to the default
// language; unknown keys fall back to the key itself so a missing
// translation never breaks a page.
package lang

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFiles embed.FS

// Language is a flat key to string table for one language.
type Language map[string]string

// Get returns the string for key, or the key itself when untranslated.
func (l Language) Get(key string) string {
	if s, ok := l[key]; ok {
		return s
	}
	return key
}

// Name returns the language's self-description used on the language
// selection page.
func (l Language) Name() string {
	return l.Get("lang_name")
}

// Store holds every loaded language.
type Store struct {
	langs       map[string]Language
	defaultCode string
	logger      *slog.Logger
}

// Load parses all embedded locale files. defaultCode must name one of
// them.
func Load(defaultCode string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "lang")

	langs := make(map[string]Language)
	err := fs.WalkDir(localeFiles, "locales", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		raw, err := localeFiles.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read locale %s: %w", path, err)
		}

		table := Language{}
		if err := yaml.Unmarshal(raw, &table); err != nil {
			return fmt.Errorf("failed to parse locale %s: %w", path, err)
		}

		code := strings.TrimSuffix(d.Name(), ".yaml")
		langs[code] = table
		log.Debug("Loaded locale", "code", code, "keys", len(table))
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, ok := langs[defaultCode]; !ok {
		return nil, fmt.Errorf("default language %q has no locale file", defaultCode)
	}

	log.Info("Locales loaded", "count", len(langs), "default", defaultCode)
	return &Store{langs: langs, defaultCode: defaultCode, logger: log}, nil
}

// Get returns the table for code, falling back to the default language
// for unknown codes.
func (s *Store) Get(code string) Language {
	if l, ok := s.langs[code]; ok {
		return l
	}
	return s.langs[s.defaultCode]
}

// Has reports whether code has its own locale file.
func (s *Store) Has(code string) bool {
	_, ok := s.langs[code]
	return ok
}

// DefaultCode returns the configured default language code.
func (s *Store) DefaultCode() string {
	return s.defaultCode
}

// Codes lists the loaded language codes in stable order.
func (s *Store) Codes() []string {
	codes := make([]string, 0, len(s.langs))
	for code := range s.langs {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Format substitutes {name} placeholders in a localized template.
// Placeholders without a value are left as-is.
func Format(template string, args map[string]string) string {
	if len(args) == 0 {
		return template
	}
	pairs := make([]string, 0, len(args)*2)
	for k, v := range args {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
