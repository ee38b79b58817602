package rubric

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pagecheck/page-contract-tests/dom"
)

var ErrScratchMissing = errors.New("nothing stored under this name")

// Scratch carries elements located by one check to the checks that run after it. A new Scratch
// is created for every run of a sequence.
type Scratch struct {
	entries map[string][]dom.Element
}

func NewScratch() *Scratch {
	return &Scratch{entries: make(map[string][]dom.Element)}
}

// Store records elements under key, replacing anything stored there before.
func (s *Scratch) Store(key string, elements []dom.Element) {
	s.entries[key] = append([]dom.Element(nil), elements...)
}

func (s *Scratch) Elements(key string) ([]dom.Element, error) {
	els, ok := s.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrScratchMissing, key)
	}
	return els, nil
}

func (s *Scratch) Keys() []string {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
