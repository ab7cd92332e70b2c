// Package langmeta normalizes locale identifiers into the shape the remote
// project expects and provides language display metadata (native names and
// emoji flags) for CLI output.
package langmeta

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Meta describes language display metadata.
type Meta struct {
	Name string
	Flag string
}

// entry is a registry row: native name plus the region whose flag
// represents the language when the code carries no region itself.
type entry struct {
	name   string
	region string
}

// registry holds the languages most projects ship. Codes not listed here
// fall back to golang.org/x/text display names.
var registry = map[string]entry{
	"ar":      {"العربية", "SA"},
	"bg":      {"Български", "BG"},
	"ca":      {"Català", "ES"},
	"cs":      {"Čeština", "CZ"},
	"da":      {"Dansk", "DK"},
	"de":      {"Deutsch", "DE"},
	"de-AT":   {"Deutsch (Österreich)", ""},
	"de-CH":   {"Deutsch (Schweiz)", ""},
	"el":      {"Ελληνικά", "GR"},
	"en":      {"English", "US"},
	"en-GB":   {"English (UK)", ""},
	"en-US":   {"English (US)", ""},
	"es":      {"Español", "ES"},
	"es-MX":   {"Español (México)", ""},
	"fi":      {"Suomi", "FI"},
	"fr":      {"Français", "FR"},
	"fr-CA":   {"Français (Canada)", ""},
	"he":      {"עברית", "IL"},
	"hi":      {"हिन्दी", "IN"},
	"hu":      {"Magyar", "HU"},
	"id":      {"Bahasa Indonesia", "ID"},
	"it":      {"Italiano", "IT"},
	"ja":      {"日本語", "JP"},
	"ko":      {"한국어", "KR"},
	"nb":      {"Norsk bokmål", "NO"},
	"nl":      {"Nederlands", "NL"},
	"pl":      {"Polski", "PL"},
	"pt":      {"Português", "PT"},
	"pt-BR":   {"Português (Brasil)", ""},
	"ro":      {"Română", "RO"},
	"ru":      {"Русский", "RU"},
	"sk":      {"Slovenčina", "SK"},
	"sv":      {"Svenska", "SE"},
	"th":      {"ไทย", "TH"},
	"tr":      {"Türkçe", "TR"},
	"uk":      {"Українська", "UA"},
	"vi":      {"Tiếng Việt", "VN"},
	"zh":      {"中文", "CN"},
	"zh-Hans": {"简体中文", "CN"},
	"zh-Hant": {"繁體中文", "TW"},
}

// Normalize converts a locale identifier found in a file path or in the
// configuration into the canonical form used by the remote project:
//
//	en_US   -> en-US
//	de-rAT  -> de-AT   (Android resource qualifier)
//	zh-hant -> zh-Hant
//	EN      -> en
//
// Identifiers with any other shape cannot be mapped; ok is false and the
// caller is expected to skip the file.
func Normalize(raw string) (code string, ok bool) {
	if !strings.ContainsAny(raw, "-_") {
		return strings.ToLower(raw), true
	}

	parts := strings.Split(raw, "-")
	if len(parts) != 2 {
		parts = strings.Split(raw, "_")
		if len(parts) != 2 {
			return "", false
		}
	}

	lang := strings.ToLower(parts[0])
	sub := strings.ToLower(parts[1])

	switch {
	case len(sub) == 2:
		return lang + "-" + strings.ToUpper(sub), true
	case len(sub) == 3 && sub[0] == 'r':
		return lang + "-" + strings.ToUpper(sub[1:]), true
	case sub == "hant":
		return lang + "-Hant", true
	case sub == "hans":
		return lang + "-Hans", true
	}
	return "", false
}

// Resolve returns best-effort display metadata for a language code,
// supporting variants like pt_BR, pt-BR and locale fallbacks.
func Resolve(lang string) Meta {
	if e, ok := registry[lang]; ok {
		return meta(lang, e)
	}
	normalized, ok := Normalize(lang)
	if ok {
		if e, ok := registry[normalized]; ok {
			return meta(normalized, e)
		}
		if base, _, found := strings.Cut(normalized, "-"); found {
			if e, ok := registry[base]; ok {
				return meta(normalized, e)
			}
		}
	}

	tag, err := language.Parse(lang)
	if err != nil || tag == language.Und {
		return Meta{Name: lang}
	}
	name := display.Self.Name(tag)
	if name == "" {
		name = lang
	}
	region, conf := tag.Region()
	flag := ""
	if conf == language.Exact {
		flag = FlagFromRegion(region.String())
	}
	return Meta{Name: name, Flag: flag}
}

func meta(code string, e entry) Meta {
	region := e.region
	if _, sub, found := strings.Cut(code, "-"); found && len(sub) == 2 {
		region = sub
	}
	return Meta{Name: e.name, Flag: FlagFromRegion(region)}
}

// FlagFromRegion converts a two-letter region code into its emoji flag.
// Anything else yields an empty string.
func FlagFromRegion(region string) string {
	if len(region) != 2 {
		return ""
	}
	region = strings.ToUpper(region)
	var b strings.Builder
	for _, r := range region {
		if r < 'A' || r > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + (r - 'A'))
	}
	return b.String()
}
