package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minios-linux/locsync/langmeta"
	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

// File is the top-level configuration structure.
type File struct {
	App App `json:"app" yaml:"app"`

	path string
}

// App holds everything below the "app" key.
type App struct {
	// AccessToken authenticates against the remote project. The app ID is
	// the part before the first "!".
	AccessToken string `json:"access_token,omitempty" yaml:"access_token,omitempty"`
	// BaseLanguage is the project's source language.
	BaseLanguage string `json:"base_language,omitempty" yaml:"base_language,omitempty"`
	// LanguageMap aliases local folder codes to remote codes.
	LanguageMap langmeta.Map `json:"language_map,omitempty" yaml:"language_map,omitempty"`
	// Push holds the source blocks uploaded by push.
	Push *Push `json:"push,omitempty" yaml:"push,omitempty"`
	// Pull holds the target blocks downloaded by pull.
	Pull *Pull `json:"pull,omitempty" yaml:"pull,omitempty"`
}

// Push is the "push" section.
type Push struct {
	Source []FileBlock `json:"source" yaml:"source"`
}

// Pull is the "pull" section.
type Pull struct {
	Target []FileBlock `json:"target" yaml:"target"`
}

// FileBlock is one entry of push.source or pull.target.
type FileBlock struct {
	// Path of the file(s). May contain the <language> placeholder.
	Path string `json:"path" yaml:"path"`
	// FileFormat is one of the IDs in Formats.
	FileFormat string `json:"file_format" yaml:"file_format"`
	// Language fixes the language of every file of the block.
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
	// ExcludeLanguages are skipped when the language comes from the placeholder.
	ExcludeLanguages []string `json:"exclude_languages,omitempty" yaml:"exclude_languages,omitempty"`
	// Tag scopes the content remotely.
	Tag Tag `json:"tag,omitempty" yaml:"tag,omitempty"`
	// TagCategory must agree across blocks sharing a tag.
	TagCategory string `json:"tag_category,omitempty" yaml:"tag_category,omitempty"`

	FormatOptions `yaml:",inline"`
}

// Placeholder marks where the language code goes in a block path.
const Placeholder = "<language>"

// Section names used in messages.
const (
	SectionPush = "push.source"
	SectionPull = "pull.target"
)

// UsesPlaceholder reports whether the path contains <language>.
func (b FileBlock) UsesPlaceholder() bool {
	return strings.Contains(b.Path, Placeholder)
}

// HasLanguage reports whether an explicit language is set.
func (b FileBlock) HasLanguage() bool {
	return b.Language != ""
}

// Excludes reports whether lang is on the block's exclude list. Both sides
// are compared in canonical form, so "pt_BR" excludes "pt-BR".
func (b FileBlock) Excludes(lang string) bool {
	lang = CanonicalLanguage(lang)
	for _, l := range b.ExcludeLanguages {
		if CanonicalLanguage(l) == lang {
			return true
		}
	}
	return false
}

// CanonicalLanguage returns code in the form used by the remote project,
// or code unchanged when langmeta cannot map it.
func CanonicalLanguage(code string) string {
	if n, ok := langmeta.Normalize(code); ok {
		return n
	}
	return code
}

// Stem returns the file name of the block path without its extension.
func (b FileBlock) Stem() string {
	base := filepath.Base(filepath.FromSlash(b.Path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Format returns the block's format definition.
func (b FileBlock) Format() (Format, bool) {
	f, ok := Formats[b.FileFormat]
	return f, ok
}

// Path returns the file the configuration was loaded from.
func (f *File) Path() string {
	return f.path
}

// Sources returns push.source, or nil when there is no push section.
func (f *File) Sources() []FileBlock {
	if f.App.Push == nil {
		return nil
	}
	return f.App.Push.Source
}

// Targets returns pull.target, or nil when there is no pull section.
func (f *File) Targets() []FileBlock {
	if f.App.Pull == nil {
		return nil
	}
	return f.App.Pull.Target
}

// AppID returns the app ID embedded in the access token.
func (f *File) AppID() string {
	id, _, _ := strings.Cut(f.App.AccessToken, "!")
	return id
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// ErrInvalid is wrapped by every error describing a malformed or
// self-contradictory configuration.
var ErrInvalid = errors.New("invalid configuration")

// ErrNotFound is returned by Load when no configuration file exists.
var ErrNotFound = errors.New(`the config file does not exist, initialize the project first with "locsync init"`)

// TokenFallback supplies an access token when the file has none.
// Set by the caller; the CLI chains the environment and the token store.
type TokenFallback func() string

// Load reads and validates the configuration at path.
// JSON files are decoded strictly with encoding/json, everything else with yaml.v3.
func Load(path string, fallback TokenFallback) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	f, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}
	f.path = path

	if f.App.AccessToken == "" && fallback != nil {
		f.App.AccessToken = fallback()
	}
	if f.App.AccessToken == "" {
		return nil, fmt.Errorf("%w: %s: no access token set (add access_token or export %s)", ErrInvalid, path, EnvAccessToken)
	}

	return f, nil
}

// Parse decodes and validates configuration data. ext selects the decoder.
func Parse(data []byte, ext string) (*File, error) {
	var f File
	switch strings.ToLower(ext) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parsing: %w", err)
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parsing: %w", err)
		}
	}

	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	if f.App.Push == nil && f.App.Pull == nil {
		return fmt.Errorf("neither push nor pull is configured")
	}
	if f.App.Push != nil {
		if err := validateBlocks(SectionPush, f.App.Push.Source); err != nil {
			return err
		}
	}
	if f.App.Pull != nil {
		if err := validateBlocks(SectionPull, f.App.Pull.Target); err != nil {
			return err
		}
	}
	return nil
}

func validateBlocks(section string, blocks []FileBlock) error {
	if len(blocks) == 0 {
		return fmt.Errorf("%s does not have any entry", section)
	}
	for i, b := range blocks {
		if b.Path == "" {
			return fmt.Errorf("%s #%d has no path", section, i+1)
		}
		if b.FileFormat == "" {
			return fmt.Errorf("%s #%d (%s) has no file_format", section, i+1, b.Path)
		}
		format, ok := b.Format()
		if !ok {
			return fmt.Errorf("%s #%d (%s) has unknown file_format %q (valid: %s)",
				section, i+1, b.Path, b.FileFormat, strings.Join(FormatIDs(), ", "))
		}
		if err := b.FormatOptions.Validate(format); err != nil {
			return fmt.Errorf("%s #%d (%s): %w", section, i+1, b.Path, err)
		}
	}
	return nil
}
