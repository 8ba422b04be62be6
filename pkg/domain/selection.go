package domain

import (
	"encoding/json"
	"sort"
)

// Selection is the set of node ids the user has currently selected.
// Values are treated as immutable: every operation returns a new set.
type Selection map[string]struct{}

// NewSelection creates a selection containing ids.
func NewSelection(ids ...string) Selection {
	s := make(Selection, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is selected.
func (s Selection) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of selected ids.
func (s Selection) Len() int {
	return len(s)
}

// Clone returns an independent copy.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// With returns a copy of s that also contains id.
func (s Selection) With(id string) Selection {
	out := s.Clone()
	out[id] = struct{}{}
	return out
}

// Without returns a copy of s minus every id in drop.
func (s Selection) Without(drop Selection) Selection {
	out := make(Selection, len(s))
	for id := range s {
		if !drop.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Equal reports whether both sets hold the same ids.
func (s Selection) Equal(other Selection) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// IDs returns the selected ids in sorted order.
func (s Selection) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MarshalJSON encodes the selection as a sorted array of ids.
func (s Selection) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}

// UnmarshalJSON decodes an array of ids.
func (s *Selection) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewSelection(ids...)
	return nil
}

// SelectionFromNodes rebuilds a selection from the nodes' Selected flags.
func SelectionFromNodes(nodes []Node) Selection {
	s := NewSelection()
	for _, n := range nodes {
		if n.Selected {
			s[n.ID] = struct{}{}
		}
	}
	return s
}
