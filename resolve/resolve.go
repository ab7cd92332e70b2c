// Package resolve expands configured file blocks into concrete files on
// disk, each tagged with the language it belongs to.
//
// A block either fixes its language with the "language" key, or carries the
// <language> placeholder in its path. In the latter case the placeholder is
// globbed and the language is recovered from every matched path.
package resolve

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"
	"github.com/minios-linux/locsync/config"
	"github.com/minios-linux/locsync/langmeta"
)

// languagePattern matches the locale shapes accepted in paths:
// "de", "pt-BR", "pt_BR", "zh-Hant", "de-rAT".
const languagePattern = `([a-zA-Z]{2}(?:[-_][a-zA-Z]{2,4})?)`

// ErrNoLanguage is returned for blocks that have neither a language nor the
// placeholder in their path.
var ErrNoLanguage = errors.New(`no language information: use the <language> placeholder in the path or set "language"`)

// File is one concrete file of a block.
type File struct {
	// Path is the file path as matched on disk.
	Path string
	// Language is the normalized remote language code.
	Language string
	// Block is the configuration block the file came from.
	Block config.FileBlock
}

// Result is the outcome of resolving one block.
type Result struct {
	// Found maps matched paths to their resolved file.
	Found map[string]File
	// Skipped lists matched paths whose language could not be normalized.
	Skipped []string
	// UsesPlaceholder is true when languages were recovered from paths.
	UsesPlaceholder bool
}

// Files returns the found files sorted by path.
func (r Result) Files() []File {
	paths := make([]string, 0, len(r.Found))
	for p := range r.Found {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	files := make([]File, 0, len(paths))
	for _, p := range paths {
		files = append(files, r.Found[p])
	}
	return files
}

// Resolver resolves blocks against the filesystem.
type Resolver struct {
	// Root is the directory relative block paths are resolved against.
	// Empty means the working directory.
	Root string
	// Aliases is the project language_map.
	Aliases langmeta.Map

	// glob and dirExists are replaceable in tests.
	glob      func(pattern string) ([]string, error)
	dirExists func(path string) bool
}

// New creates a Resolver.
func New(root string, aliases langmeta.Map) *Resolver {
	return &Resolver{
		Root:      root,
		Aliases:   aliases,
		glob:      doublestar.Glob,
		dirExists: isDir,
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// abs joins a block path onto Root.
func (r *Resolver) abs(path string) string {
	path = filepath.FromSlash(path)
	if r.Root == "" || filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(r.Root, path)
}

// Resolve finds the files of a block on disk (push side). Languages
// recovered from paths go through the alias table and normalization;
// paths whose language cannot be normalized end up in Skipped. Files whose
// language is excluded by the block are dropped.
func (r *Resolver) Resolve(b config.FileBlock) (Result, error) {
	res := Result{Found: make(map[string]File)}

	var (
		search  string
		capture *regexp.Regexp
		fixed   string
	)

	switch {
	case b.HasLanguage():
		fixed = b.Language
		search = r.abs(strings.ReplaceAll(b.Path, config.Placeholder, r.Aliases.ToLocal(b.Language)))
	case b.UsesPlaceholder():
		res.UsesPlaceholder = true
		pattern := r.abs(b.Path)
		search = strings.ReplaceAll(pattern, config.Placeholder, "*")
		re, err := captureRegexp(pattern)
		if err != nil {
			return res, err
		}
		capture = re
	default:
		return res, ErrNoLanguage
	}

	matches, err := r.glob(search)
	if err != nil {
		return res, fmt.Errorf("searching %s: %w", search, err)
	}

	for _, match := range matches {
		raw := ""
		if capture != nil {
			if m := capture.FindStringSubmatch(filepath.ToSlash(filepath.Clean(match))); len(m) > 1 {
				raw = m[1]
			}
		}
		if raw == "" {
			raw = fixed
		}
		if raw == "" {
			continue
		}

		lang, ok := langmeta.Normalize(r.Aliases.ToRemote(raw))
		if !ok {
			res.Skipped = append(res.Skipped, match)
			continue
		}
		if b.Excludes(lang) {
			continue
		}

		res.Found[match] = File{Path: match, Language: lang, Block: b}
	}

	sort.Strings(res.Skipped)
	return res, nil
}

// captureRegexp builds the regexp recovering the language from a matched
// path. Glob wildcards in the pattern match anything.
func captureRegexp(pattern string) (*regexp.Regexp, error) {
	quoted := regexp.QuoteMeta(filepath.ToSlash(pattern))
	quoted = strings.ReplaceAll(quoted, `\*`, `.*`)
	quoted = strings.Replace(quoted, regexp.QuoteMeta(config.Placeholder), languagePattern, 1)
	quoted = strings.ReplaceAll(quoted, regexp.QuoteMeta(config.Placeholder), `[a-zA-Z_-]+`)
	re, err := regexp.Compile("^" + quoted + "$")
	if err != nil {
		return nil, fmt.Errorf("building language pattern for %s: %w", pattern, err)
	}
	return re, nil
}

// TargetPath returns the local path a download for remoteLang is written
// to (pull side). The language goes through the alias table in the
// remote-to-local direction. When the directory of that path does not exist
// but the one with "_" instead of "-" in the code does, the "_" variant is
// used, matching projects whose locale folders use underscores.
func (r *Resolver) TargetPath(b config.FileBlock, remoteLang string) string {
	local := r.Aliases.ToLocal(remoteLang)
	path := r.abs(strings.ReplaceAll(b.Path, config.Placeholder, local))
	if !b.UsesPlaceholder() || !strings.Contains(local, "-") {
		return path
	}
	if r.dirExists(filepath.Dir(path)) {
		return path
	}

	alt := r.abs(strings.ReplaceAll(b.Path, config.Placeholder, strings.ReplaceAll(local, "-", "_")))
	if r.dirExists(filepath.Dir(alt)) {
		return alt
	}
	return path
}
