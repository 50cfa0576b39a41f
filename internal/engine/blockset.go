package engine

import (
	"sort"

	"cidrblock/internal/model"
)

// BlockSet is a set of CIDR strings. Entries are compared by their exact
// text, so literal input is kept as written.
type BlockSet struct {
	entries map[string]struct{}
}

func NewBlockSet() *BlockSet {
	return &BlockSet{entries: make(map[string]struct{})}
}

func (s *BlockSet) Add(cidr string) {
	s.entries[cidr] = struct{}{}
}

func (s *BlockSet) AddBlocks(blocks []model.Block) {
	for _, b := range blocks {
		s.entries[b.String()] = struct{}{}
	}
}

// AddRange decomposes [start, end] and inserts every resulting block.
func (s *BlockSet) AddRange(start, end string) error {
	cidrs, err := RangeToCIDRs(start, end)
	if err != nil {
		return err
	}
	for _, c := range cidrs {
		s.Add(c)
	}
	return nil
}

func (s *BlockSet) Merge(other *BlockSet) {
	for c := range other.entries {
		s.entries[c] = struct{}{}
	}
}

func (s *BlockSet) Contains(cidr string) bool {
	_, ok := s.entries[cidr]
	return ok
}

func (s *BlockSet) Len() int {
	return len(s.entries)
}

// Sorted returns the entries in ascending string order.
func (s *BlockSet) Sorted() []string {
	out := make([]string, 0, len(s.entries))
	for c := range s.entries {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
