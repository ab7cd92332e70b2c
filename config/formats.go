package config

import (
	"fmt"
	"sort"
	"strings"
)

// ---------------------------------------------------------------------------
// File formats
// ---------------------------------------------------------------------------

// Format describes a file format the remote project can import and export.
type Format struct {
	// ID is the value of the "file_format" key.
	ID string
	// Name is a human-readable label.
	Name string
	// Extension is the usual file extension, without the dot.
	Extension string
	// DefaultPath is the suggested target path (with placeholder).
	DefaultPath string
	// DefaultBasePath is the suggested base-language path for formats whose
	// base language lives in a fixed location. Empty otherwise.
	DefaultBasePath string
	// DefaultTag is the suggested tag for new configurations.
	DefaultTag string
	// Options lists the format-specific option keys the format accepts in
	// addition to the common ones.
	Options []string
}

// Option keys. The common ones are accepted by every format.
const (
	OptExportEmpty        = "export_empty"
	OptKeyPrefix          = "key_prefix"
	OptRemoveCrChar       = "remove_cr_char"
	OptIgnoreDuplicates   = "ignore_duplicates"
	OptDisablePlurals     = "disable_plurals"
	OptConvertPlaceholder = "convert_placeholder"
	OptIncludeMetadata    = "include_metadata"
)

var commonOptions = []string{OptExportEmpty, OptKeyPrefix, OptRemoveCrChar, OptIgnoreDuplicates}

// Formats is the table of supported file formats keyed by ID.
var Formats = map[string]Format{
	"android_xml": {
		ID: "android_xml", Name: "Android XML", Extension: "xml",
		DefaultPath:     "./app/src/main/res/values-<language>/strings.xml",
		DefaultBasePath: "./app/src/main/res/values/strings.xml",
		DefaultTag:      "android",
		Options:         []string{OptDisablePlurals, OptConvertPlaceholder, OptIncludeMetadata},
	},
	"ios_strings": {
		ID: "ios_strings", Name: "iOS strings", Extension: "strings",
		DefaultPath:     "./<language>.lproj/Localizable.strings",
		DefaultBasePath: "./Base.lproj/Localizable.strings",
		DefaultTag:      "ios",
		Options:         []string{OptConvertPlaceholder},
	},
	"ios_stringsdict": {
		ID: "ios_stringsdict", Name: "iOS stringsdict", Extension: "stringsdict",
		DefaultPath:     "./<language>.lproj/Localizable.stringsdict",
		DefaultBasePath: "./Base.lproj/Localizable.stringsdict",
		DefaultTag:      "ios",
		Options:         []string{OptDisablePlurals, OptConvertPlaceholder},
	},
	"xliff": {
		ID: "xliff", Name: "XLIFF", Extension: "xliff",
		DefaultPath: "./<language>.xliff",
		DefaultTag:  "xliff",
		Options:     []string{OptDisablePlurals, OptIncludeMetadata},
	},
	"gettext_po": {
		ID: "gettext_po", Name: "Gettext PO", Extension: "po",
		DefaultPath: "./po/<language>.po",
		DefaultTag:  "gettext",
		Options:     []string{OptDisablePlurals, OptIncludeMetadata},
	},
	"nested_json": {
		ID: "nested_json", Name: "Nested JSON", Extension: "json",
		DefaultPath: "./<language>.json",
		DefaultTag:  "json",
		Options:     []string{OptDisablePlurals, OptConvertPlaceholder},
	},
	"i18next_json": {
		ID: "i18next_json", Name: "i18next JSON", Extension: "json",
		DefaultPath: "./locales/<language>/translation.json",
		DefaultTag:  "i18next",
		Options:     []string{OptDisablePlurals, OptConvertPlaceholder},
	},
	"yaml": {
		ID: "yaml", Name: "YAML", Extension: "yml",
		DefaultPath: "./config/locales/<language>.yml",
		DefaultTag:  "yaml",
	},
	"properties": {
		ID: "properties", Name: "Java Properties", Extension: "properties",
		DefaultPath: "./messages_<language>.properties",
		DefaultTag:  "properties",
		Options:     []string{OptConvertPlaceholder},
	},
	"arb": {
		ID: "arb", Name: "Flutter ARB", Extension: "arb",
		DefaultPath: "./lib/l10n/app_<language>.arb",
		DefaultTag:  "flutter",
		Options:     []string{OptDisablePlurals, OptConvertPlaceholder, OptIncludeMetadata},
	},
	"csv": {
		ID: "csv", Name: "CSV", Extension: "csv",
		DefaultPath: "./<language>.csv",
		DefaultTag:  "csv",
	},
}

// FormatIDs returns the sorted list of supported format IDs.
func FormatIDs() []string {
	ids := make([]string, 0, len(Formats))
	for id := range Formats {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Accepts reports whether the format accepts the given option key.
func (f Format) Accepts(option string) bool {
	for _, o := range commonOptions {
		if o == option {
			return true
		}
	}
	for _, o := range f.Options {
		if o == option {
			return true
		}
	}
	return false
}

// coexistingFormats lists format pairs that legitimately share a base file
// name and tag (Localizable.strings next to Localizable.stringsdict).
var coexistingFormats = [][2]string{
	{"ios_strings", "ios_stringsdict"},
}

// Coexist reports whether two formats may share a file stem and tag.
func Coexist(a, b string) bool {
	for _, pair := range coexistingFormats {
		if (pair[0] == a && pair[1] == b) || (pair[0] == b && pair[1] == a) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Format options
// ---------------------------------------------------------------------------

// FormatOptions holds the per-block options passed through to the remote
// import/export. The field set is fixed; which fields a block may set
// depends on its file format (see Format.Options).
type FormatOptions struct {
	// ExportEmpty exports entries without translation (pull).
	ExportEmpty bool `json:"export_empty,omitempty" yaml:"export_empty,omitempty"`
	// KeyPrefix restricts import/export to keys with this prefix.
	KeyPrefix string `json:"key_prefix,omitempty" yaml:"key_prefix,omitempty"`
	// RemoveCrChar strips carriage returns from values.
	RemoveCrChar bool `json:"remove_cr_char,omitempty" yaml:"remove_cr_char,omitempty"`
	// IgnoreDuplicates skips duplicate keys on import (push).
	IgnoreDuplicates bool `json:"ignore_duplicates,omitempty" yaml:"ignore_duplicates,omitempty"`
	// DisablePlurals treats plural entries as plain keys.
	DisablePlurals bool `json:"disable_plurals,omitempty" yaml:"disable_plurals,omitempty"`
	// ConvertPlaceholder converts placeholders between platform syntaxes.
	ConvertPlaceholder bool `json:"convert_placeholder,omitempty" yaml:"convert_placeholder,omitempty"`
	// IncludeMetadata exports comments and descriptions (pull).
	IncludeMetadata bool `json:"include_metadata,omitempty" yaml:"include_metadata,omitempty"`
}

// set returns the keys of the options that carry a non-default value.
func (o FormatOptions) set() []string {
	var keys []string
	if o.ExportEmpty {
		keys = append(keys, OptExportEmpty)
	}
	if o.KeyPrefix != "" {
		keys = append(keys, OptKeyPrefix)
	}
	if o.RemoveCrChar {
		keys = append(keys, OptRemoveCrChar)
	}
	if o.IgnoreDuplicates {
		keys = append(keys, OptIgnoreDuplicates)
	}
	if o.DisablePlurals {
		keys = append(keys, OptDisablePlurals)
	}
	if o.ConvertPlaceholder {
		keys = append(keys, OptConvertPlaceholder)
	}
	if o.IncludeMetadata {
		keys = append(keys, OptIncludeMetadata)
	}
	return keys
}

// Validate checks the options against the given format.
func (o FormatOptions) Validate(format Format) error {
	var bad []string
	for _, key := range o.set() {
		if !format.Accepts(key) {
			bad = append(bad, key)
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("file format %q does not support option(s) %s", format.ID, strings.Join(bad, ", "))
	}
	return nil
}

// Download returns the export options sent with a download request.
func (o FormatOptions) Download() map[string]any {
	opts := map[string]any{
		"exportOnlyWithTranslation": !o.ExportEmpty,
	}
	o.addShared(opts)
	if o.IncludeMetadata {
		opts["includeMetadata"] = true
	}
	return opts
}

// Upload returns the import options sent with an upload request.
// Without force only empty values are written; draft imports values as
// drafts instead of publishing them.
func (o FormatOptions) Upload(force, draft bool) map[string]any {
	opts := map[string]any{
		"onlyIfTextEmpty": !force,
		"onlyAsDraft":     draft,
	}
	o.addShared(opts)
	if o.IgnoreDuplicates {
		opts["ignoreDuplicates"] = true
	}
	return opts
}

func (o FormatOptions) addShared(opts map[string]any) {
	if o.KeyPrefix != "" {
		opts["keyPrefix"] = o.KeyPrefix
	}
	if o.RemoveCrChar {
		opts["removeCrChar"] = true
	}
	if o.DisablePlurals {
		opts["disablePlurals"] = true
	}
	if o.ConvertPlaceholder {
		opts["convertPlaceholder"] = true
	}
}
