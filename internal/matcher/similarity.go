package matcher

import (
	"github.com/ludo-technologies/astdiff/internal/tree"
)

// descendantSets caches descendant sets for the lifetime of one match run.
type descendantSets struct {
	sets map[*tree.Node]map[*tree.Node]struct{}
}

func newDescendantSets() *descendantSets {
	return &descendantSets{sets: make(map[*tree.Node]map[*tree.Node]struct{})}
}

func (d *descendantSets) of(n *tree.Node) map[*tree.Node]struct{} {
	if s, ok := d.sets[n]; ok {
		return s
	}
	desc := tree.Descendants(n)
	s := make(map[*tree.Node]struct{}, len(desc))
	for _, c := range desc {
		s[c] = struct{}{}
	}
	d.sets[n] = s
	return s
}

// CommonDescendants counts descendants of src whose mapped node is a
// descendant of dst.
func CommonDescendants(src, dst *tree.Node, mappings *MappingStore) int {
	return commonDescendants(src, dst, mappings, newDescendantSets())
}

func commonDescendants(src, dst *tree.Node, mappings *MappingStore, cache *descendantSets) int {
	dstDesc := cache.of(dst)
	common := 0
	for _, t := range tree.Descendants(src) {
		m := mappings.Dst(t)
		if m == nil {
			continue
		}
		if _, ok := dstDesc[m]; ok {
			common++
		}
	}
	return common
}

// Dice returns 2*common / (|desc(src)| + |desc(dst)|).
func Dice(src, dst *tree.Node, mappings *MappingStore) float64 {
	return dice(src, dst, mappings, newDescendantSets())
}

// Jaccard returns common / (|desc(src)| + |desc(dst)| - common).
func Jaccard(src, dst *tree.Node, mappings *MappingStore) float64 {
	return jaccard(src, dst, mappings, newDescendantSets())
}

func jaccard(src, dst *tree.Node, mappings *MappingStore, cache *descendantSets) float64 {
	common := float64(commonDescendants(src, dst, mappings, cache))
	union := float64(src.Size()-1+dst.Size()-1) - common
	if union <= 0 {
		return 0
	}
	return common / union
}

func dice(src, dst *tree.Node, mappings *MappingStore, cache *descendantSets) float64 {
	total := float64(src.Size() - 1 + dst.Size() - 1)
	if total == 0 {
		return 0
	}
	return 2 * float64(commonDescendants(src, dst, mappings, cache)) / total
}

// Chawathe returns common / max(|desc(src)|, |desc(dst)|).
func Chawathe(src, dst *tree.Node, mappings *MappingStore) float64 {
	max := src.Size() - 1
	if d := dst.Size() - 1; d > max {
		max = d
	}
	if max == 0 {
		return 0
	}
	return float64(CommonDescendants(src, dst, mappings)) / float64(max)
}
