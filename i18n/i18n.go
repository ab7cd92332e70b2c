// Package i18n translates locsync's own user-facing messages.
//
// Catalogs are gettext .po files embedded from locales/<lang>/LC_MESSAGES
// and read through gotext. Call Init once before T or N; until then both
// return the untranslated message.
package i18n

import (
	"embed"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

//go:embed all:locales
var locales embed.FS

const domain = "locsync"

// EnvLanguage overrides the detected message language.
const EnvLanguage = "LOCSYNC_LANGUAGE"

var po *gotext.Locale

// Init loads the catalog for lang. An empty lang is detected from
// $LOCSYNC_LANGUAGE, then LANGUAGE, LC_ALL, LC_MESSAGES and LANG.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}

	po = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// T translates msgid, or returns it unchanged.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// N translates a message with plural forms.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

// detectLanguage follows GNU gettext's variable priority, with
// $LOCSYNC_LANGUAGE in front.
func detectLanguage() string {
	for _, env := range []string{EnvLanguage, "LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if val == "" {
			continue
		}
		// LANGUAGE is a colon-separated list.
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		// "de_DE.UTF-8" -> "de_DE"
		if idx := strings.IndexByte(val, '.'); idx >= 0 {
			val = val[:idx]
		}
		if val == "C" || val == "POSIX" || val == "" {
			continue
		}
		return val
	}
	return "en"
}
