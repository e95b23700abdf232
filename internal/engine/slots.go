package engine

import (
	"strings"

	"github.com/tartampluch/go-quickevent/internal/config"
	"github.com/tartampluch/go-quickevent/internal/tree"
)

// actionStrips lists the spans removed from the message to leave the action,
// in the order they are stripped.
var actionStrips = []string{
	config.LabelDate,
	config.LabelTime,
	config.LabelPlace,
	config.LabelPerson,
	config.LabelJunk,
}

// ExtractPeople returns one space-joined name per PERSON span, in order.
// The result is never nil.
func ExtractPeople(root *tree.Node) []string {
	people := []string{}
	for _, p := range tree.Collect(root, config.LabelPerson) {
		people = append(people, tree.Words(p))
	}
	return people
}

// ExtractPlaces returns one string per organization or facility named inside
// a PLACE span. ok is false when the message has no PLACE span at all.
func ExtractPlaces(root *tree.Node) (places []string, ok bool) {
	spans := tree.Collect(root, config.LabelPlace)
	if len(spans) == 0 {
		return nil, false
	}
	places = []string{}
	for _, span := range spans {
		for _, org := range tree.CollectAny(span, config.LabelOrganization, config.LabelFacility) {
			places = append(places, tree.Words(org))
		}
	}
	return places, true
}

// ExtractAction strips every slot span from root and joins what is left.
// Each pass works on the output of the previous one. Spans uncovered by a
// pass (a venue inside PLACE, a person inside JUNK) belong to the stripped
// slot and never reach the action.
func ExtractAction(root *tree.Node) string {
	nodes := []*tree.Node{root}
	if !root.IsLeaf() {
		nodes = root.Children
	}
	top := make(map[*tree.Node]bool, len(nodes))
	for _, n := range nodes {
		top[n] = true
	}

	for _, label := range actionStrips {
		nodes = tree.ExcludeAll(nodes, label)
	}

	var words []string
	for _, n := range nodes {
		if top[n] {
			words = append(words, tree.Words(n))
		}
	}
	return strings.Join(words, " ")
}
