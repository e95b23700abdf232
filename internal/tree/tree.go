// Package tree models the labeled span tree produced by the tagging and
// chunking stage, and the pure traversals used to classify it.
package tree

import (
	"slices"
	"strings"
)

// Node is either a tagged token (leaf) or a labeled group of child nodes.
// A node with an empty Label is a leaf.
type Node struct {
	Label    string
	Text     string
	Tag      string
	Children []*Node
}

// Leaf creates a tagged token.
func Leaf(text, tag string) *Node {
	return &Node{Text: text, Tag: tag}
}

// Group creates a labeled span over children.
func Group(label string, children ...*Node) *Node {
	return &Node{Label: label, Children: children}
}

// IsLeaf reports whether n is a tagged token.
func (n *Node) IsLeaf() bool {
	return n.Label == ""
}

// Collect returns every sub-tree labeled label, outermost first in document
// order. A matching group is not searched for nested matches.
func Collect(n *Node, label string) []*Node {
	if n == nil || n.IsLeaf() {
		return nil
	}
	if n.Label == label {
		return []*Node{n}
	}
	var out []*Node
	for _, c := range n.Children {
		out = append(out, Collect(c, label)...)
	}
	return out
}

// CollectAny is Collect for several labels at once; matches of any of them
// are returned in document order.
func CollectAny(n *Node, labels ...string) []*Node {
	if n == nil || n.IsLeaf() {
		return nil
	}
	if slices.Contains(labels, n.Label) {
		return []*Node{n}
	}
	var out []*Node
	for _, c := range n.Children {
		out = append(out, CollectAny(c, labels...)...)
	}
	return out
}

// Exclude returns what remains of n once every span labeled label is removed.
//
// Leaves and differently labeled groups are returned as single units. A group
// carrying label is dropped together with its own tokens, but any differently
// labeled groups nested inside it are kept and spliced in, in order.
func Exclude(n *Node, label string) []*Node {
	if n == nil {
		return nil
	}
	if n.IsLeaf() || n.Label != label {
		return []*Node{n}
	}
	var out []*Node
	for _, c := range n.Children {
		if c.IsLeaf() {
			continue
		}
		out = append(out, Exclude(c, label)...)
	}
	return out
}

// ExcludeAll applies Exclude to every node of a sequence.
func ExcludeAll(nodes []*Node, label string) []*Node {
	var out []*Node
	for _, n := range nodes {
		out = append(out, Exclude(n, label)...)
	}
	return out
}

// TagsOf returns the text of every leaf under n tagged tag.
func TagsOf(n *Node, tag string) []string {
	if n == nil {
		return nil
	}
	if n.IsLeaf() {
		if n.Tag == tag {
			return []string{n.Text}
		}
		return nil
	}
	var out []string
	for _, c := range n.Children {
		out = append(out, TagsOf(c, tag)...)
	}
	return out
}

// Leaves returns the tokens under n in document order.
func Leaves(n *Node) []*Node {
	if n == nil {
		return nil
	}
	if n.IsLeaf() {
		return []*Node{n}
	}
	var out []*Node
	for _, c := range n.Children {
		out = append(out, Leaves(c)...)
	}
	return out
}

// Words returns the leaf texts of n joined by single spaces.
func Words(n *Node) string {
	leaves := Leaves(n)
	words := make([]string, 0, len(leaves))
	for _, l := range leaves {
		words = append(words, l.Text)
	}
	return strings.Join(words, " ")
}
