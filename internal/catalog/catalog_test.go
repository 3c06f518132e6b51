package catalog

import (
	"strings"
	"testing"
)

func TestGet_LanguageAndFallback(t *testing.T) {
	c := Default()

	en := c.Get("session_expired", LangEnglish)
	sw := c.Get("session_expired", LangSwahili)
	if en == sw {
		t.Error("expected distinct translations")
	}
	if !strings.Contains(sw, "Kikao") {
		t.Errorf("swahili template = %q", sw)
	}

	// Unknown language falls back to English.
	if got := c.Get("session_expired", "fr"); got != en {
		t.Errorf("fallback = %q, want english", got)
	}

	// Unknown key returns the key itself.
	if got := c.Get("no_such_key", LangEnglish); got != "no_such_key" {
		t.Errorf("missing key = %q", got)
	}
}

func TestRender_Placeholders(t *testing.T) {
	c := Default()
	got := c.Render("greeting_known", LangEnglish, map[string]string{"name": "Wanjiku"})
	if !strings.Contains(got, "Wanjiku") {
		t.Errorf("rendered = %q", got)
	}
	if strings.Contains(got, "{name}") {
		t.Errorf("placeholder left behind: %q", got)
	}
}

func TestSubstitute_UnknownPlaceholderKept(t *testing.T) {
	got := Substitute("hello {name}, unit {unit}", map[string]string{"name": "A"})
	if got != "hello A, unit {unit}" {
		t.Errorf("got %q", got)
	}
}

func TestInstructionsExistForAllTypes(t *testing.T) {
	c := Default()
	for _, typ := range []string{"fire", "flood", "break_in", "gas_leak", "electrical", "medical", "other"} {
		key := "instructions_" + typ
		for _, lang := range []string{LangEnglish, LangSwahili} {
			if got := c.Get(key, lang); got == key {
				t.Errorf("missing %s template for %s", key, lang)
			}
		}
	}
}
