package tree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-quickevent/internal/tree"
)

func mustParse(t *testing.T, s string) *tree.Node {
	t.Helper()
	n, err := tree.Parse(s)
	require.NoError(t, err)
	return n
}

func words(nodes []*tree.Node) []string {
	var out []string
	for _, n := range nodes {
		out = append(out, tree.Words(n))
	}
	return out
}

func TestCollect(t *testing.T) {
	root := mustParse(t, "(S lunch/NN (JUNK with/IN (PERSON Sara/NNP)) (PERSON Bob/NNP Smith/NNP) (DATE (DATE next/JJ) Tuesday/NNP))")

	people := tree.Collect(root, "PERSON")
	assert.Equal(t, []string{"Sara", "Bob Smith"}, words(people), "Nested spans under other labels are found")

	dates := tree.Collect(root, "DATE")
	require.Len(t, dates, 1, "A matching group is not searched for nested matches")
	assert.Equal(t, "next Tuesday", tree.Words(dates[0]))

	assert.Empty(t, tree.Collect(root, "TIME"))
}

func TestCollect_BareLeaf(t *testing.T) {
	assert.Empty(t, tree.Collect(tree.Leaf("Sara", "NNP"), "PERSON"))
}

func TestExclude(t *testing.T) {
	tests := []struct {
		name  string
		input string
		label string
		want  []string
	}{
		{
			name:  "Leaf passes through",
			input: "lunch/NN",
			label: "DATE",
			want:  []string{"lunch/NN"},
		},
		{
			name:  "Different label kept as a unit",
			input: "(PERSON Sara/NNP)",
			label: "DATE",
			want:  []string{"(PERSON Sara/NNP)"},
		},
		{
			name:  "Matching span dropped",
			input: "(DATE next/JJ Tuesday/NNP)",
			label: "DATE",
			want:  nil,
		},
		{
			name:  "Nested different labels spliced in order",
			input: "(PLACE at/IN (ORGANIZATION Cafe/NNP Nero/NNP) in/IN (GPE London/NNP))",
			label: "PLACE",
			want:  []string{"(ORGANIZATION Cafe/NNP Nero/NNP)", "(GPE London/NNP)"},
		},
		{
			name:  "Nested same label walked",
			input: "(DATE on/IN (DATE (TIME at/IN 3/CD) Friday/NNP))",
			label: "DATE",
			want:  []string{"(TIME at/IN 3/CD)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tree.Exclude(mustParse(t, tt.input), tt.label)
			var rendered []string
			for _, n := range got {
				rendered = append(rendered, n.String())
			}
			assert.Equal(t, tt.want, rendered)
		})
	}
}

func TestExcludeAll_IsCumulative(t *testing.T) {
	root := mustParse(t, "(S call/VB (PERSON Ann/NNP) (DATE on/IN Monday/NNP) (TIME at/IN 9/CD))")

	nodes := tree.ExcludeAll(root.Children, "DATE")
	nodes = tree.ExcludeAll(nodes, "TIME")
	nodes = tree.ExcludeAll(nodes, "PERSON")

	require.Len(t, nodes, 1)
	assert.Equal(t, "call", nodes[0].Text)
}

func TestTagsOf(t *testing.T) {
	root := mustParse(t, "(S (TIME at/IN 2/CD pm/NN) (DATE in/IN 3/CD days/NNS) 5/CD)")

	assert.Equal(t, []string{"2", "3", "5"}, tree.TagsOf(root, "CD"))
	assert.Equal(t, []string{"pm"}, tree.TagsOf(root, "NN"))
	assert.Empty(t, tree.TagsOf(root, "JJ"))

	assert.Equal(t, []string{"2"}, tree.TagsOf(tree.Leaf("2", "CD"), "CD"), "A bare leaf is its own match")
	assert.Empty(t, tree.TagsOf(tree.Leaf("2", "CD"), "NN"))
}

func TestWords(t *testing.T) {
	root := mustParse(t, "(S lunch/NN (PERSON Sara/NNP Lee/NNP) (DATE on/IN 15/03/2024/NUM_DATE))")
	assert.Equal(t, "lunch Sara Lee on 15/03/2024", tree.Words(root))
	assert.Len(t, tree.Leaves(root), 5)
}

func TestCollectAny_KeepsDocumentOrder(t *testing.T) {
	root := mustParse(t, "(S (PLACE at/IN (FACILITY Hall/NNP) near/IN (ORGANIZATION Acme/NNP)))")
	got := tree.CollectAny(root, "ORGANIZATION", "FACILITY")
	assert.Equal(t, []string{"Hall", "Acme"}, words(got))
}

func TestNilTreeIsEmpty(t *testing.T) {
	assert.Empty(t, tree.Collect(nil, "DATE"))
	assert.Empty(t, tree.CollectAny(nil, "DATE", "TIME"))
	assert.Empty(t, tree.Exclude(nil, "DATE"))
	assert.Empty(t, tree.ExcludeAll([]*tree.Node{nil}, "DATE"))
	assert.Empty(t, tree.TagsOf(nil, "NN"))
	assert.Empty(t, tree.Leaves(nil))
	assert.Empty(t, tree.Words(nil))
}
