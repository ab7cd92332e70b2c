// Package plan turns configured blocks into the ordered list of remote
// operations a command performs: one download or upload per file and
// language, in block declaration order.
package plan

import (
	"fmt"

	"github.com/minios-linux/locsync/config"
	"github.com/minios-linux/locsync/langmeta"
	"github.com/minios-linux/locsync/resolve"
)

// Operation is one remote transfer.
type Operation struct {
	// Block is the configuration block the operation belongs to.
	Block config.FileBlock
	// Index is the position of Block in its section, starting at 1.
	Index int
	// Language is the remote language code.
	Language string
	// Path is the local file: the download target on pull, the matched
	// file on push.
	Path string
	// Version is the project version the download is pinned to (pull only).
	Version string
}

// Filter narrows a plan to what was asked for on the command line.
// Empty fields do not filter.
type Filter struct {
	Languages []string
	Tags      []string
}

// Catalog is the remote project's language list at a version.
type Catalog struct {
	Version   string
	Languages []string
}

func (c Catalog) has(lang string) bool {
	for _, l := range c.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// Reason classifies a requested language that was not planned.
type Reason int

const (
	// NotInProject: the project does not have the language.
	NotInProject Reason = iota
	// ExcludedForTarget: the block lists the language in exclude_languages.
	ExcludedForTarget
	// FixedLanguage: the block is pinned to another language.
	FixedLanguage
)

func (r Reason) String() string {
	switch r {
	case NotInProject:
		return "not found in project"
	case ExcludedForTarget:
		return "excluded for this target"
	case FixedLanguage:
		return "ignored, target has a fixed language"
	}
	return "unknown"
}

// Note records a requested language dropped from one block.
type Note struct {
	Index    int
	Path     string
	Language string
	Reason   Reason
}

// BlockError reports a block that produced no operations because it could
// not be resolved. Other blocks are still planned.
type BlockError struct {
	Index int
	Path  string
	Err   error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("#%d (%s): %v", e.Index, e.Path, e.Err)
}

func (e *BlockError) Unwrap() error { return e.Err }

// Plan is the outcome of planning one section.
type Plan struct {
	Operations []Operation
	// Notes lists requested languages that were dropped (pull).
	Notes []Note
	// Errors lists blocks without usable language information.
	Errors []*BlockError
	// Skipped lists files whose language could not be normalized (push).
	Skipped []string
}

// selected reports whether a block survives the tag filter.
func (f Filter) selected(b config.FileBlock) bool {
	return len(f.Tags) == 0 || b.Tag.Intersects(f.Tags)
}

// requested returns the language filter with every code normalized where
// possible, paired with the code as typed.
func (f Filter) requested() []requestedLanguage {
	out := make([]requestedLanguage, 0, len(f.Languages))
	for _, raw := range f.Languages {
		code := raw
		if n, ok := langmeta.Normalize(raw); ok {
			code = n
		}
		out = append(out, requestedLanguage{raw: raw, code: code})
	}
	return out
}

type requestedLanguage struct {
	raw  string
	code string
}

// NeedsCatalog reports whether planning blocks for a pull requires the
// remote language list: true when a selected block takes its languages
// from the placeholder.
func NeedsCatalog(blocks []config.FileBlock, f Filter) bool {
	for _, b := range blocks {
		if f.selected(b) && !b.HasLanguage() && b.UsesPlaceholder() {
			return true
		}
	}
	return false
}

// Pull plans the downloads for blocks. Target paths come from r.
func Pull(r *resolve.Resolver, blocks []config.FileBlock, catalog Catalog, f Filter) *Plan {
	p := &Plan{}
	requested := f.requested()

	for i, b := range blocks {
		index := i + 1
		if !f.selected(b) {
			continue
		}

		var languages []string
		switch {
		case b.HasLanguage():
			languages = []string{b.Language}
		case b.UsesPlaceholder():
			languages = catalog.Languages
		default:
			p.Errors = append(p.Errors, &BlockError{Index: index, Path: b.Path, Err: resolve.ErrNoLanguage})
			continue
		}

		working := make([]string, 0, len(languages))
		for _, lang := range languages {
			if !b.Excludes(lang) {
				working = append(working, lang)
			}
		}

		if len(requested) > 0 {
			working = p.narrow(index, b, working, requested, catalog)
		}

		for _, lang := range working {
			p.Operations = append(p.Operations, Operation{
				Block:    b,
				Index:    index,
				Language: lang,
				Path:     r.TargetPath(b, lang),
				Version:  catalog.Version,
			})
		}
	}
	return p
}

// narrow intersects a block's working languages with the requested ones,
// keeping the working order, and records why the others were dropped.
func (p *Plan) narrow(index int, b config.FileBlock, working []string, requested []requestedLanguage, catalog Catalog) []string {
	want := make(map[string]bool, len(requested))
	for _, req := range requested {
		want[req.code] = true
	}

	note := func(lang string, reason Reason) {
		p.Notes = append(p.Notes, Note{Index: index, Path: b.Path, Language: lang, Reason: reason})
	}

	available := make(map[string]bool, len(working))
	for _, lang := range working {
		available[lang] = true
	}
	for _, req := range requested {
		if available[req.code] {
			continue
		}
		switch {
		case b.HasLanguage() && req.code != b.Language:
			note(req.raw, FixedLanguage)
		case b.Excludes(req.code):
			note(req.raw, ExcludedForTarget)
		case !catalog.has(req.code):
			note(req.raw, NotInProject)
		}
	}

	kept := working[:0:0]
	for _, lang := range working {
		if want[lang] {
			kept = append(kept, lang)
		}
	}
	return kept
}

// Push plans the uploads for blocks, finding their files through r.
// Only the tag filter applies.
func Push(r *resolve.Resolver, blocks []config.FileBlock, f Filter) *Plan {
	p := &Plan{}
	for i, b := range blocks {
		index := i + 1
		if !f.selected(b) {
			continue
		}

		res, err := r.Resolve(b)
		if err != nil {
			p.Errors = append(p.Errors, &BlockError{Index: index, Path: b.Path, Err: err})
			continue
		}
		p.Skipped = append(p.Skipped, res.Skipped...)

		for _, file := range res.Files() {
			p.Operations = append(p.Operations, Operation{
				Block:    b,
				Index:    index,
				Language: file.Language,
				Path:     file.Path,
			})
		}
	}
	return p
}
