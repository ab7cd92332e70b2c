// Package conflict rejects configurations in which two blocks of the same
// section address the same remote content.
//
// Two blocks can only collide through a shared tag. When they share one,
// they must agree on tag_category, and their language sets must not
// overlap unless the pair is a known co-existing format pair with the same
// file stem (iOS .strings next to .stringsdict).
package conflict

import (
	"fmt"
	"sort"

	"github.com/minios-linux/locsync/config"
)

// Error reports two blocks that would write the same remote content.
type Error struct {
	Section  string
	Tag      string
	Language string // config.Placeholder when neither block fixes one
	Existing string // path of the earlier block
	Incoming string // path of the later block
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: conflicting entries %q and %q: tag %q with language %q is already used",
		e.Section, e.Existing, e.Incoming, e.Tag, e.Language)
}

// Unwrap makes conflicts match config.ErrInvalid.
func (e *Error) Unwrap() error { return config.ErrInvalid }

// CategoryError reports two blocks sharing a tag under different categories.
type CategoryError struct {
	Section  string
	Tag      string
	Existing string
	Incoming string
	// Categories holds the tag_category of Existing and Incoming, in that order.
	Categories [2]string
}

func (e *CategoryError) Error() string {
	return fmt.Sprintf("%s: tag %q has different tag_category values: %q (%s) and %q (%s)",
		e.Section, e.Tag, e.Categories[0], e.Existing, e.Categories[1], e.Incoming)
}

// Unwrap makes category mismatches match config.ErrInvalid.
func (e *CategoryError) Unwrap() error { return config.ErrInvalid }

// Validate checks every pair of blocks in one section and returns the first
// conflict found, or nil. blocks is not modified.
func Validate(section string, blocks []config.FileBlock) error {
	ordered := make([]config.FileBlock, len(blocks))
	copy(ordered, blocks)
	// Blocks with a fixed language first.
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].HasLanguage() && !ordered[j].HasLanguage()
	})

	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if err := check(section, ordered[i], ordered[j]); err != nil {
				return err
			}
		}
	}
	return nil
}

func check(section string, a, b config.FileBlock) error {
	if a.Tag.Empty() || b.Tag.Empty() {
		return nil
	}
	tag, ok := a.Tag.Overlap(b.Tag)
	if !ok {
		return nil
	}

	if a.TagCategory != "" && b.TagCategory != "" && a.TagCategory != b.TagCategory {
		return &CategoryError{
			Section:    section,
			Tag:        tag,
			Existing:   a.Path,
			Incoming:   b.Path,
			Categories: [2]string{a.TagCategory, b.TagCategory},
		}
	}

	if a.Stem() == b.Stem() && config.Coexist(a.FileFormat, b.FileFormat) {
		return nil
	}

	lang, clash := languagesOverlap(a, b)
	if !clash {
		return nil
	}
	return &Error{
		Section:  section,
		Tag:      tag,
		Language: lang,
		Existing: a.Path,
		Incoming: b.Path,
	}
}

// languagesOverlap decides whether a and b can produce the same language.
// Codes are compared in canonical form. The returned label names that
// language, or the placeholder when it is open-ended.
func languagesOverlap(a, b config.FileBlock) (string, bool) {
	switch {
	case !a.HasLanguage() && !b.HasLanguage():
		// Two open-ended blocks are told apart only by their exclude
		// lists: a language excluded by one is owned by the other.
		return config.Placeholder, disjoint(a.ExcludeLanguages, b.ExcludeLanguages)
	case !a.HasLanguage():
		return config.CanonicalLanguage(b.Language), !a.Excludes(b.Language)
	case !b.HasLanguage():
		return config.CanonicalLanguage(a.Language), !b.Excludes(a.Language)
	default:
		la, lb := config.CanonicalLanguage(a.Language), config.CanonicalLanguage(b.Language)
		return la, la == lb
	}
}

func disjoint(a, b []string) bool {
	seen := make(map[string]bool, len(a))
	for _, l := range a {
		seen[config.CanonicalLanguage(l)] = true
	}
	for _, l := range b {
		if seen[config.CanonicalLanguage(l)] {
			return false
		}
	}
	return true
}
