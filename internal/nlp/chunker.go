package nlp

import (
	"slices"
	"strings"

	"github.com/tartampluch/go-quickevent/internal/config"
	"github.com/tartampluch/go-quickevent/internal/tree"
)

// Chunk runs every stage over nodes and returns the resulting tree rooted
// at an S node. The input slice is not modified.
//
// A stage sees leaves by their part-of-speech tag and spans built by earlier
// stages by their label. Matches never overlap and never split a node.
func (g *Grammar) Chunk(nodes []*tree.Node) *tree.Node {
	seq := slices.Clone(nodes)
	for _, st := range g.stages {
		seq = st.apply(seq)
	}
	return tree.Group(config.LabelRoot, seq...)
}

func (st stage) apply(seq []*tree.Node) []*tree.Node {
	if len(seq) == 0 {
		return seq
	}

	// starts[i] and ends[i] are the byte offsets of node i in the chunk string.
	var b strings.Builder
	starts := make(map[int]int, len(seq))
	ends := make(map[int]int, len(seq))
	for i, n := range seq {
		starts[b.Len()] = i
		b.WriteByte('<')
		b.WriteString(chunkTag(n))
		b.WriteByte('>')
		ends[b.Len()] = i
	}

	matches := st.pattern.FindAllStringIndex(b.String(), -1)
	if len(matches) == 0 {
		return seq
	}

	out := make([]*tree.Node, 0, len(seq))
	next := 0
	for _, m := range matches {
		first, okStart := starts[m[0]]
		last, okEnd := ends[m[1]]
		if m[0] == m[1] || !okStart || !okEnd || first < next {
			continue
		}
		out = append(out, seq[next:first]...)
		out = append(out, tree.Group(st.label, slices.Clone(seq[first:last+1])...))
		next = last + 1
	}
	return append(out, seq[next:]...)
}

func chunkTag(n *tree.Node) string {
	if n.IsLeaf() {
		return n.Tag
	}
	return n.Label
}
