package matcher

import (
	"github.com/ludo-technologies/astdiff/internal/tree"
)

// Mapping is a correspondence between a source and a destination node.
type Mapping struct {
	Src *tree.Node
	Dst *tree.Node
}

// MappingStore is a partial bijection between the nodes of two trees.
// Iteration follows insertion order so results are reproducible.
type MappingStore struct {
	srcToDst map[*tree.Node]*tree.Node
	dstToSrc map[*tree.Node]*tree.Node
	order    []Mapping
}

// NewMappingStore creates an empty store.
func NewMappingStore() *MappingStore {
	return &MappingStore{
		srcToDst: make(map[*tree.Node]*tree.Node),
		dstToSrc: make(map[*tree.Node]*tree.Node),
	}
}

// Link maps src to dst. It refuses, and returns false, when either node is
// already mapped, so the store never stops being a bijection.
func (s *MappingStore) Link(src, dst *tree.Node) bool {
	if _, ok := s.srcToDst[src]; ok {
		return false
	}
	if _, ok := s.dstToSrc[dst]; ok {
		return false
	}
	s.srcToDst[src] = dst
	s.dstToSrc[dst] = src
	s.order = append(s.order, Mapping{Src: src, Dst: dst})
	return true
}

// Unlink removes the mapping between src and dst if present.
func (s *MappingStore) Unlink(src, dst *tree.Node) bool {
	if s.srcToDst[src] != dst || dst == nil {
		return false
	}
	delete(s.srcToDst, src)
	delete(s.dstToSrc, dst)
	for i, m := range s.order {
		if m.Src == src {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Dst returns the destination node mapped to src, or nil.
func (s *MappingStore) Dst(src *tree.Node) *tree.Node { return s.srcToDst[src] }

// Src returns the source node mapped to dst, or nil.
func (s *MappingStore) Src(dst *tree.Node) *tree.Node { return s.dstToSrc[dst] }

// HasSrc reports whether src is mapped.
func (s *MappingStore) HasSrc(src *tree.Node) bool {
	_, ok := s.srcToDst[src]
	return ok
}

// HasDst reports whether dst is mapped.
func (s *MappingStore) HasDst(dst *tree.Node) bool {
	_, ok := s.dstToSrc[dst]
	return ok
}

// Has reports whether src is mapped to dst.
func (s *MappingStore) Has(src, dst *tree.Node) bool {
	d, ok := s.srcToDst[src]
	return ok && d == dst
}

// Len returns the number of mappings.
func (s *MappingStore) Len() int { return len(s.srcToDst) }

// Mappings returns the mappings in insertion order.
func (s *MappingStore) Mappings() []Mapping {
	out := make([]Mapping, len(s.order))
	copy(out, s.order)
	return out
}

// Copy returns an independent store holding the same mappings.
func (s *MappingStore) Copy() *MappingStore {
	c := NewMappingStore()
	for _, m := range s.Mappings() {
		c.Link(m.Src, m.Dst)
	}
	return c
}

// MultiMappingStore holds candidate correspondences before disambiguation.
// A node may be associated with several nodes on the other side.
type MultiMappingStore struct {
	srcs     map[*tree.Node][]*tree.Node
	dsts     map[*tree.Node][]*tree.Node
	srcOrder []*tree.Node
	dstOrder []*tree.Node
	size     int
}

// NewMultiMappingStore creates an empty multi-mapping store.
func NewMultiMappingStore() *MultiMappingStore {
	return &MultiMappingStore{
		srcs: make(map[*tree.Node][]*tree.Node),
		dsts: make(map[*tree.Node][]*tree.Node),
	}
}

// Link records src and dst as candidates for each other. Duplicates are ignored.
func (m *MultiMappingStore) Link(src, dst *tree.Node) {
	for _, d := range m.srcs[src] {
		if d == dst {
			return
		}
	}
	if _, ok := m.srcs[src]; !ok {
		m.srcOrder = append(m.srcOrder, src)
	}
	if _, ok := m.dsts[dst]; !ok {
		m.dstOrder = append(m.dstOrder, dst)
	}
	m.srcs[src] = append(m.srcs[src], dst)
	m.dsts[dst] = append(m.dsts[dst], src)
	m.size++
}

// Dsts returns the candidates of src in insertion order.
func (m *MultiMappingStore) Dsts(src *tree.Node) []*tree.Node { return m.srcs[src] }

// Srcs returns the candidates of dst in insertion order.
func (m *MultiMappingStore) Srcs(dst *tree.Node) []*tree.Node { return m.dsts[dst] }

// SrcKeys returns every source node with at least one candidate.
func (m *MultiMappingStore) SrcKeys() []*tree.Node { return m.srcOrder }

// DstKeys returns every destination node with at least one candidate.
func (m *MultiMappingStore) DstKeys() []*tree.Node { return m.dstOrder }

// IsSrcUnique reports whether src has exactly one candidate which in turn
// has src as its only candidate.
func (m *MultiMappingStore) IsSrcUnique(src *tree.Node) bool {
	d := m.srcs[src]
	return len(d) == 1 && len(m.dsts[d[0]]) == 1
}

// IsDstUnique is the mirror of IsSrcUnique.
func (m *MultiMappingStore) IsDstUnique(dst *tree.Node) bool {
	s := m.dsts[dst]
	return len(s) == 1 && len(m.srcs[s[0]]) == 1
}

// Len returns the number of candidate pairs.
func (m *MultiMappingStore) Len() int { return m.size }

// Mappings returns every candidate pair, grouped by source in insertion order.
func (m *MultiMappingStore) Mappings() []Mapping {
	out := make([]Mapping, 0, m.size)
	for _, src := range m.srcOrder {
		for _, dst := range m.srcs[src] {
			out = append(out, Mapping{Src: src, Dst: dst})
		}
	}
	return out
}
