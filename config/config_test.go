package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const sampleJSON = `{
  "app": {
    "access_token": "abc123!secret",
    "base_language": "en",
    "language_map": {"zh": "zh-Hans"},
    "push": {
      "source": [
        {"path": "./en.lproj/Localizable.strings", "file_format": "ios_strings", "language": "en", "tag": "ios"}
      ]
    },
    "pull": {
      "target": [
        {"path": "./<language>.lproj/Localizable.strings", "file_format": "ios_strings",
         "exclude_languages": ["en"], "tag": ["ios", "shared"], "convert_placeholder": true},
        {"path": "./values-<language>/strings.xml", "file_format": "android_xml",
         "export_empty": true, "key_prefix": "app.", "disable_plurals": true}
      ]
    }
  }
}`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestParseJSON(t *testing.T) {
	f, err := Parse([]byte(sampleJSON), ".json")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if f.AppID() != "abc123" {
		t.Fatalf("AppID() = %q, want abc123", f.AppID())
	}
	if got := f.App.LanguageMap.ToRemote("zh"); got != "zh-Hans" {
		t.Fatalf("LanguageMap.ToRemote(zh) = %q", got)
	}

	src := f.Sources()
	if len(src) != 1 || src[0].Language != "en" || !reflect.DeepEqual(src[0].Tag, Tag{"ios"}) {
		t.Fatalf("unexpected sources: %#v", src)
	}

	targets := f.Targets()
	if len(targets) != 2 {
		t.Fatalf("len(targets) = %d, want 2", len(targets))
	}
	if !reflect.DeepEqual(targets[0].Tag, Tag{"ios", "shared"}) {
		t.Fatalf("list tag = %#v", targets[0].Tag)
	}
	if !targets[0].UsesPlaceholder() || targets[0].HasLanguage() {
		t.Fatalf("target 0 should use the placeholder only")
	}
	if !targets[0].Excludes("en") || targets[0].Excludes("de") {
		t.Fatalf("Excludes() mismatch for %#v", targets[0].ExcludeLanguages)
	}
	if !targets[1].ExportEmpty || targets[1].KeyPrefix != "app." || !targets[1].DisablePlurals {
		t.Fatalf("format options not decoded inline: %#v", targets[1].FormatOptions)
	}
}

func TestParseYAML(t *testing.T) {
	data := `
app:
  access_token: "abc!def"
  pull:
    target:
      - path: ./locales/<language>/translation.json
        file_format: i18next_json
        tag: web
        tag_category: frontend
`
	f, err := Parse([]byte(data), ".yaml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Sources() != nil {
		t.Fatalf("Sources() = %#v, want nil without push section", f.Sources())
	}
	b := f.Targets()[0]
	if !reflect.DeepEqual(b.Tag, Tag{"web"}) || b.TagCategory != "frontend" {
		t.Fatalf("unexpected block: %#v", b)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"no sections", `{"app": {"access_token": "a"}}`},
		{"empty target list", `{"app": {"pull": {"target": []}}}`},
		{"missing path", `{"app": {"pull": {"target": [{"file_format": "csv"}]}}}`},
		{"missing format", `{"app": {"pull": {"target": [{"path": "x.csv"}]}}}`},
		{"unknown format", `{"app": {"pull": {"target": [{"path": "x", "file_format": "docx"}]}}}`},
		{"unsupported option", `{"app": {"pull": {"target": [{"path": "x.csv", "file_format": "csv", "disable_plurals": true}]}}}`},
		{"unknown key", `{"app": {"pull": {"target": [{"path": "x.csv", "file_format": "csv", "exclude_language": ["en"]}]}}}`},
		{"bad tag type", `{"app": {"pull": {"target": [{"path": "x.csv", "file_format": "csv", "tag": 5}]}}}`},
	}

	for _, tc := range cases {
		if _, err := Parse([]byte(tc.data), ".json"); err == nil {
			t.Fatalf("%s: Parse() succeeded, want error", tc.name)
		}
	}
}

func TestLoad(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), FileName), nil)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("Load() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("invalid file wraps ErrInvalid", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), FileName)
		writeFile(t, path, `{"app": {"pull": {"target": [{"path": "x", "file_format": "docx"}]}}}`)
		_, err := Load(path, nil)
		if !errors.Is(err, ErrInvalid) {
			t.Fatalf("Load() error = %v, want ErrInvalid", err)
		}
	})

	t.Run("token fallback", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), FileName)
		writeFile(t, path, `{"app": {"pull": {"target": [{"path": "<language>.csv", "file_format": "csv"}]}}}`)

		if _, err := Load(path, func() string { return "" }); !errors.Is(err, ErrInvalid) {
			t.Fatalf("Load() without token error = %v, want ErrInvalid", err)
		}

		f, err := Load(path, func() string { return "app9!tok" })
		if err != nil {
			t.Fatalf("Load() with fallback: %v", err)
		}
		if f.AppID() != "app9" || f.Path() != path {
			t.Fatalf("unexpected file: id=%q path=%q", f.AppID(), f.Path())
		}
	})
}

func TestFindFile(t *testing.T) {
	work := t.TempDir()
	envDir := t.TempDir()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvConfigDir, envDir)

	if path, ok := FindFile(work); ok || path != filepath.Join(work, FileName) {
		t.Fatalf("FindFile() = %q, %v; want current-dir path, false", path, ok)
	}

	writeFile(t, filepath.Join(home, FileName), "{}")
	if path, _ := FindFile(work); path != filepath.Join(home, FileName) {
		t.Fatalf("FindFile() = %q, want home file", path)
	}

	writeFile(t, filepath.Join(envDir, ".locsync.yaml"), "app: {}")
	if path, _ := FindFile(work); path != filepath.Join(envDir, ".locsync.yaml") {
		t.Fatalf("FindFile() = %q, want $%s file", path, EnvConfigDir)
	}

	writeFile(t, filepath.Join(work, FileName), "{}")
	if path, ok := FindFile(work); !ok || path != filepath.Join(work, FileName) {
		t.Fatalf("FindFile() = %q, %v; want current-dir file", path, ok)
	}
}

func TestWriteAndLoadStarterConfig(t *testing.T) {
	format := Formats["ios_strings"]
	f := NewFromFormat("app!tok", "en", format, "./en.lproj/Localizable.strings",
		format.DefaultPath, format.DefaultBasePath, format.DefaultTag)

	path := filepath.Join(t.TempDir(), FileName)
	if err := Write(path, f); err != nil {
		t.Fatalf("Write: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("config mode = %o, want 600", info.Mode().Perm())
	}

	loaded, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	targets := loaded.Targets()
	if len(targets) != 2 {
		t.Fatalf("len(targets) = %d, want base + placeholder target", len(targets))
	}
	if targets[0].Language != "en" || !targets[0].ExportEmpty || targets[0].Path != format.DefaultBasePath {
		t.Fatalf("unexpected base target: %#v", targets[0])
	}
	if !targets[1].Excludes("en") || !targets[1].UsesPlaceholder() {
		t.Fatalf("unexpected placeholder target: %#v", targets[1])
	}
	if loaded.Sources()[0].Path != format.DefaultBasePath {
		t.Fatalf("source path = %q, want base path", loaded.Sources()[0].Path)
	}
}

func TestStem(t *testing.T) {
	cases := map[string]string{
		"./<language>.lproj/Localizable.strings":     "Localizable",
		"./<language>.lproj/Localizable.stringsdict": "Localizable",
		"res/values/strings.xml":                     "strings",
		"README":                                     "README",
	}
	for path, want := range cases {
		if got := (FileBlock{Path: path}).Stem(); got != want {
			t.Fatalf("Stem(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestExcludesCanonical(t *testing.T) {
	b := FileBlock{ExcludeLanguages: []string{"pt_BR", "EN", "sr-Latn"}}
	for _, lang := range []string{"pt-BR", "pt_br", "en", "sr-Latn"} {
		if !b.Excludes(lang) {
			t.Errorf("Excludes(%q) = false, want true", lang)
		}
	}
	if b.Excludes("pt") || b.Excludes("de") {
		t.Error("Excludes() matched a language not on the list")
	}
	if got := CanonicalLanguage("de_de"); got != "de-DE" {
		t.Errorf("CanonicalLanguage(de_de) = %q, want de-DE", got)
	}
	if got := CanonicalLanguage("sr-Latn"); got != "sr-Latn" {
		t.Errorf("CanonicalLanguage(sr-Latn) = %q, want it unchanged", got)
	}
}
