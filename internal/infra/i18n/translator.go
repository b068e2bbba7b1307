package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// Translator resolves message keys for a single language.
type Translator struct {
	translations map[string]string
}

func NewTranslator(fsys fs.FS, langCode string) (*Translator, error) {
	filePath := filepath.Join("locales", fmt.Sprintf("%s.yaml", langCode))
	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file %s: %w", filePath, err)
	}
	return newTranslatorFromBytes(data)
}

func newTranslatorFromBytes(data []byte) (*Translator, error) {
	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation file: %w", err)
	}
	return &Translator{translations: translations}, nil
}

// T returns the translated message, formatting args into it when given.
// An unknown key comes back verbatim so a missing translation is visible
// instead of silent.
func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}

// Bundle holds one Translator per supported language.
type Bundle struct {
	fallback    string
	translators map[string]*Translator
}

// NewBundle loads every language requested. The first language is the
// fallback for unknown codes.
func NewBundle(fsys fs.FS, langCodes ...string) (*Bundle, error) {
	if len(langCodes) == 0 {
		return nil, fmt.Errorf("at least one language code is required")
	}
	b := &Bundle{
		fallback:    langCodes[0],
		translators: make(map[string]*Translator, len(langCodes)),
	}
	for _, code := range langCodes {
		tr, err := NewTranslator(fsys, code)
		if err != nil {
			return nil, err
		}
		b.translators[code] = tr
	}
	return b, nil
}

// ForLanguage returns the translator for the code, or the fallback one.
func (b *Bundle) ForLanguage(code string) *Translator {
	if tr, ok := b.translators[code]; ok {
		return tr
	}
	return b.translators[b.fallback]
}

// Languages lists the loaded language codes, fallback first.
func (b *Bundle) Languages() []string {
	out := []string{b.fallback}
	for code := range b.translators {
		if code != b.fallback {
			out = append(out, code)
		}
	}
	return out
}
