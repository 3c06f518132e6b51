// Package catalog provides the keyed, localized message-template lookup used
// for all tenant-facing text. English and Swahili are supported; English is
// the fallback for missing translations.
package catalog

import "strings"

// Supported language codes.
const (
	LangEnglish = "en"
	LangSwahili = "sw"
)

// Catalog is a static keyed lookup of localized templates. Placeholders use
// {name} syntax and are substituted by Render.
type Catalog struct {
	entries map[string]map[string]string // key -> lang -> template
}

// Supported reports whether lang is a language this catalog serves.
func Supported(lang string) bool {
	return lang == LangEnglish || lang == LangSwahili
}

// Get returns the template for a key in the given language, falling back to
// English, then to the key itself so a missing entry is visible, not fatal.
func (c *Catalog) Get(key, lang string) string {
	langs, ok := c.entries[key]
	if !ok {
		return key
	}
	if t, ok := langs[lang]; ok {
		return t
	}
	if t, ok := langs[LangEnglish]; ok {
		return t
	}
	return key
}

// Render looks up a template and substitutes {placeholder} variables.
func (c *Catalog) Render(key, lang string, vars map[string]string) string {
	return Substitute(c.Get(key, lang), vars)
}

// Substitute replaces {name} placeholders in a template. Unknown placeholders
// are left intact.
func Substitute(tmpl string, vars map[string]string) string {
	if len(vars) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
