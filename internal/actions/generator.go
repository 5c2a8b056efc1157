package actions

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/ludo-technologies/astdiff/internal/matcher"
	"github.com/ludo-technologies/astdiff/internal/tree"
)

var (
	// ErrScriptMismatch reports that replaying the script on the working copy
	// did not reproduce the destination tree.
	ErrScriptMismatch = errors.New("edit script does not reproduce destination tree")

	// ErrInvalidMapping reports a mapping that refers to nodes outside the
	// two trees being diffed.
	ErrInvalidMapping = errors.New("mapping refers to nodes outside the diffed trees")
)

// Options tunes script generation.
type Options struct {
	// DistinguishPermute emits Permute instead of Move for reorders that
	// keep a node under the same parent.
	DistinguishPermute bool

	// Logger receives the post-condition report
	Logger *log.Logger
}

// Generator synthesizes edit scripts from mappings.
type Generator struct {
	opts Options
}

// NewGenerator creates a generator.
func NewGenerator(opts Options) *Generator {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	return &Generator{opts: opts}
}

// Generate returns the edit script that turns src into dst under the given
// mapping. Either tree may be nil, meaning empty. When the script fails the
// post-condition it is still returned, together with an error wrapping
// ErrScriptMismatch, so the caller decides how strict to be.
func (g *Generator) Generate(src, dst *tree.Node, mappings *matcher.MappingStore) (*EditScript, error) {
	for _, root := range []*tree.Node{src, dst} {
		if root == nil {
			continue
		}
		if err := tree.Validate(root, nil); err != nil {
			return nil, err
		}
	}
	if mappings == nil {
		mappings = matcher.NewMappingStore()
	}

	w, err := newWorkCopy(src, dst, mappings)
	if err != nil {
		return nil, err
	}
	run := &scriptRun{
		work:       w,
		dst:        dst,
		orig:       mappings,
		opts:       g.opts,
		script:     &EditScript{},
		dstInOrder: make(map[*tree.Node]bool),
	}
	run.generate()

	if got, want := w.digest(), rootDigest(dst); got != want {
		err := fmt.Errorf("%w: working copy digest %016x, destination %016x", ErrScriptMismatch, got, want)
		g.opts.Logger.Printf("WARNING: %v", err)
		return run.script, err
	}
	return run.script, nil
}

// Generate runs a generator with default options.
func Generate(src, dst *tree.Node, mappings *matcher.MappingStore) (*EditScript, error) {
	return NewGenerator(Options{}).Generate(src, dst, mappings)
}

// rootDigest is the digest of the children list of a virtual root holding
// root, so an empty tree and a one-node tree never collide.
func rootDigest(root *tree.Node) uint64 {
	if root == nil {
		return tree.ComputeDigest(tree.NoType, "", nil)
	}
	return tree.ComputeDigest(tree.NoType, "", []uint64{root.Digest()})
}

type scriptRun struct {
	work       *workCopy
	dst        *tree.Node
	orig       *matcher.MappingStore
	opts       Options
	script     *EditScript
	dstInOrder map[*tree.Node]bool
}

func (r *scriptRun) generate() {
	w := r.work
	if r.dst != nil {
		for _, x := range tree.BreadthFirst(r.dst) {
			z := w.virtualRoot
			if y := x.Parent(); y != nil {
				z = w.byDst[y]
			}

			id, mapped := w.byDst[x]
			if !mapped {
				k := r.findPos(x)
				id = w.insert(x, z, k)
				r.script.add(Action{Kind: Insert, Node: x, Parent: w.ref(z), Position: k})
			} else {
				n := &w.nodes[id]
				if n.label != x.Label() {
					r.script.add(Action{Kind: Update, Node: n.orig, OldLabel: n.label, NewLabel: x.Label()})
					n.label = x.Label()
				}
				if n.parent != z {
					k := r.findPos(x)
					w.move(id, z, k)
					r.script.add(Action{Kind: Move, Node: n.orig, Parent: w.ref(z), Position: k})
				}
			}

			w.nodes[id].inOrder = true
			r.dstInOrder[x] = true
			r.alignChildren(id, x)
		}
	}

	for _, id := range w.postOrder(w.virtualRoot) {
		n := &w.nodes[id]
		if id == w.virtualRoot || n.dst != nil {
			continue
		}
		parent := n.parent
		pos := w.position(id)
		w.detach(id)
		r.script.add(Action{Kind: Delete, Node: n.orig, Parent: w.ref(parent), Position: pos})
	}
}

// alignChildren restores the relative order of the children of w that stay
// under w, moving the ones outside a longest common subsequence.
func (r *scriptRun) alignChildren(id int, x *tree.Node) {
	w := r.work
	for _, c := range w.nodes[id].children {
		w.nodes[c].inOrder = false
	}
	for _, c := range x.Children() {
		r.dstInOrder[c] = false
	}

	var s1 []int
	for _, c := range w.nodes[id].children {
		if d := w.nodes[c].dst; d != nil && d.Parent() == x {
			s1 = append(s1, c)
		}
	}
	var s2 []*tree.Node
	for _, c := range x.Children() {
		if cid, ok := w.byDst[c]; ok && w.nodes[cid].parent == id {
			s2 = append(s2, c)
		}
	}

	inLCS := make(map[int]bool)
	for _, p := range r.lcs(s1, s2) {
		w.nodes[p].inOrder = true
		r.dstInOrder[w.nodes[p].dst] = true
		inLCS[p] = true
	}

	for _, a := range s1 {
		n := &w.nodes[a]
		if inLCS[a] || n.orig == nil || !r.orig.Has(n.orig, n.dst) {
			continue
		}
		b := n.dst
		w.detach(a)
		k := r.findPos(b)
		w.attach(a, id, k)
		kind := Move
		if r.opts.DistinguishPermute {
			kind = Permute
		}
		r.script.add(Action{Kind: kind, Node: n.orig, Parent: w.ref(id), Position: k})
		n.inOrder = true
		r.dstInOrder[b] = true
	}
}

// lcs returns the working-copy members of the longest common subsequence
// of s1 and s2 under the working mapping.
func (r *scriptRun) lcs(s1 []int, s2 []*tree.Node) []int {
	m, n := len(s1), len(s2)
	opt := make([][]int, m+1)
	for i := range opt {
		opt[i] = make([]int, n+1)
	}
	same := func(i, j int) bool { return r.work.nodes[s1[i]].dst == s2[j] }

	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			if same(i, j) {
				opt[i][j] = opt[i+1][j+1] + 1
			} else {
				opt[i][j] = max(opt[i+1][j], opt[i][j+1])
			}
		}
	}

	var out []int
	for i, j := 0, 0; i < m && j < n; {
		switch {
		case same(i, j):
			out = append(out, s1[i])
			i++
			j++
		case opt[i+1][j] >= opt[i][j+1]:
			i++
		default:
			j++
		}
	}
	return out
}

// findPos returns the working-copy index at which the partner of x must be
// placed: right after the partner of the nearest in-order sibling on its
// left, or first when there is none.
func (r *scriptRun) findPos(x *tree.Node) int {
	siblings := []*tree.Node{x}
	if y := x.Parent(); y != nil {
		siblings = y.Children()
	}

	for _, c := range siblings {
		if r.dstInOrder[c] {
			if c == x {
				return 0
			}
			break
		}
	}

	var v *tree.Node
	for _, c := range siblings {
		if c == x {
			break
		}
		if r.dstInOrder[c] {
			v = c
		}
	}
	if v == nil {
		return 0
	}
	return r.work.position(r.work.byDst[v]) + 1
}
