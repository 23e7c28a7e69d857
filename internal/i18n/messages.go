package i18n

import (
	"bufio"
	"embed"
	"fmt"
	"path"
	"strings"
)

//go:embed messages_*.properties
var catalogFS embed.FS

// MessageSource resolves message codes to locale-specific text. Catalogs are
// java-style properties files embedded at build time; an unknown code resolves
// to the code itself so a missing translation never breaks a response.
type MessageSource struct {
	defaultLocale string
	catalogs      map[string]map[string]string
}

func NewMessageSource(defaultLocale string) (*MessageSource, error) {
	entries, err := catalogFS.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("read i18n catalogs: %w", err)
	}

	catalogs := make(map[string]map[string]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		locale := strings.TrimSuffix(strings.TrimPrefix(name, "messages_"), path.Ext(name))

		content, err := catalogFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", name, err)
		}

		catalogs[locale] = parseProperties(string(content))
	}

	if _, ok := catalogs[defaultLocale]; !ok {
		return nil, fmt.Errorf("no catalog for default locale %q", defaultLocale)
	}

	return &MessageSource{defaultLocale: defaultLocale, catalogs: catalogs}, nil
}

// Supported reports whether a catalog exists for the locale.
func (m *MessageSource) Supported(locale string) bool {
	_, ok := m.catalogs[locale]
	return ok
}

func (m *MessageSource) DefaultLocale() string {
	return m.defaultLocale
}

// Message resolves code in the given locale, falling back to the default
// locale and finally to the code itself. Occurrences of {name} in the text
// are replaced from args.
func (m *MessageSource) Message(code string, locale string, args map[string]string) string {
	catalog, ok := m.catalogs[locale]
	if !ok {
		catalog = m.catalogs[m.defaultLocale]
	}

	text, ok := catalog[code]
	if !ok {
		if fallback, exists := m.catalogs[m.defaultLocale][code]; exists {
			text = fallback
		} else {
			return code
		}
	}

	for name, value := range args {
		text = strings.ReplaceAll(text, "{"+name+"}", value)
	}

	return text
}

func parseProperties(content string) map[string]string {
	messages := make(map[string]string)

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}

		messages[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	return messages
}
