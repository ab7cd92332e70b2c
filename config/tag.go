package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tag is the "tag" value of a file block. In the configuration it is either
// a single string or a list of strings; both are held as a slice, a single
// string being a one-element slice. A nil Tag means no tag is set.
type Tag []string

// Overlap reports the first tag of t that also appears in other.
// An empty tag never overlaps anything, including another empty tag.
func (t Tag) Overlap(other Tag) (string, bool) {
	for _, a := range t {
		for _, b := range other {
			if a == b {
				return a, true
			}
		}
	}
	return "", false
}

// Intersects reports whether any value of t is in filter.
// Used for --tag filtering; an untagged block never matches.
func (t Tag) Intersects(filter []string) bool {
	_, ok := t.Overlap(Tag(filter))
	return ok
}

// Empty reports whether no tag is set.
func (t Tag) Empty() bool {
	return len(t) == 0
}

func (t Tag) String() string {
	return strings.Join(t, ", ")
}

// UnmarshalJSON accepts a string or an array of strings. null leaves the
// tag unset.
func (t *Tag) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = nil
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*t = Tag{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("tag must be a string or a list of strings")
	}
	*t = Tag(list)
	return nil
}

// MarshalJSON writes a one-element tag back as a plain string.
func (t Tag) MarshalJSON() ([]byte, error) {
	if len(t) == 1 {
		return json.Marshal(t[0])
	}
	return json.Marshal([]string(t))
}

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (t *Tag) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		*t = nil
		return nil
	}
	switch node.Kind {
	case yaml.ScalarNode:
		*t = Tag{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*t = Tag(list)
		return nil
	}
	return fmt.Errorf("line %d: tag must be a string or a list of strings", node.Line)
}

// MarshalYAML mirrors MarshalJSON.
func (t Tag) MarshalYAML() (any, error) {
	if len(t) == 1 {
		return t[0], nil
	}
	return []string(t), nil
}
