// Package nlp turns a raw message into the labeled span tree read by the
// engine: part-of-speech tagging and entity recognition by prose, followed
// by a cascade of regular-expression chunk rules.
package nlp

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/jdkato/prose/v2"

	"github.com/tartampluch/go-quickevent/internal/config"
	"github.com/tartampluch/go-quickevent/internal/tree"
)

var (
	// numDatePattern is a day/month date with an optional year: 15/03, 15.03.24, 15-03-2024.
	numDatePattern = regexp.MustCompile(`^\d{1,2}[./-]\d{1,2}([./-](\d{1,2}|\d{4}))?$`)

	// clockPattern is a clock reading the tagger may not see as a number: 2pm, 9:30pm, 14:00.
	clockPattern = regexp.MustCompile(`^\d{1,2}(:\d{2})?(am|pm)?$`)
)

// entityLabels maps recognizer labels to span labels.
var entityLabels = map[string]string{
	"PERSON":   config.LabelPerson,
	"GPE":      config.LabelGPE,
	"ORG":      config.LabelOrganization,
	"FAC":      config.LabelFacility,
	"FACILITY": config.LabelFacility,
}

// token is one tagged word with its byte offsets in the message.
// start is -1 when the word could not be located.
type token struct {
	text  string
	tag   string
	label string
	start int
	end   int
}

// Pipeline tags and chunks messages. It is safe for concurrent use.
type Pipeline struct {
	Grammar *Grammar

	// model holds the tagger and entity weights, decoded once.
	model *prose.Model
}

// NewPipeline builds a pipeline around the grammar at grammarFile, or the
// embedded grammar when grammarFile is empty.
func NewPipeline(grammarFile string) (*Pipeline, error) {
	g, err := LoadGrammar(grammarFile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrNLPInit, err)
	}
	warm, err := prose.NewDocument("", prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrNLPInit, err)
	}
	slog.With(config.LogKeyComponent, config.CompNLP).Info(config.MsgNLPReady,
		config.LogKeyStages, g.Len())
	return &Pipeline{Grammar: g, model: warm.Model}, nil
}

// TagAndChunk produces the span tree of message.
func (p *Pipeline) TagAndChunk(ctx context.Context, message string) (*tree.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := p.document(message)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens := locate(message, doc.Tokens())
	tokens = retagClock(tokens)
	tokens = markNumDates(message, tokens)

	g := p.Grammar
	if g == nil {
		g = DefaultGrammar()
	}
	return g.Chunk(groupEntities(tokens)), nil
}

// document tags message with the pipeline's model. A zero Pipeline lets
// prose load its default model for the call.
func (p *Pipeline) document(message string) (*prose.Document, error) {
	opts := []prose.DocOpt{prose.WithSegmentation(false)}
	if p.model != nil {
		opts = append(opts, prose.UsingModel(p.model))
	}
	return prose.NewDocument(message, opts...)
}

// locate converts prose tokens and finds each word in message, scanning
// forward from the end of the previous one.
func locate(message string, in []prose.Token) []token {
	out := make([]token, 0, len(in))
	cursor := 0
	for _, t := range in {
		tok := token{text: t.Text, tag: t.Tag, label: t.Label, start: -1, end: -1}
		if i := strings.Index(message[cursor:], t.Text); i >= 0 && t.Text != "" {
			tok.start = cursor + i
			tok.end = tok.start + len(t.Text)
			cursor = tok.end
		}
		out = append(out, tok)
	}
	return out
}

// retagClock tags clock readings as numbers.
func retagClock(tokens []token) []token {
	for i := range tokens {
		if clockPattern.MatchString(strings.ToLower(tokens[i].text)) {
			tokens[i].tag = config.TagCardinal
		}
	}
	return tokens
}

// markNumDates merges runs of touching tokens that spell a numeric date into
// one token tagged NUM_DATE.
func markNumDates(message string, tokens []token) []token {
	out := make([]token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		best := -1
		for j := i; j < len(tokens) && tokens[i].start >= 0; j++ {
			if j > i && !touching(tokens[j-1], tokens[j]) {
				break
			}
			if numDatePattern.MatchString(message[tokens[i].start:tokens[j].end]) {
				best = j
			}
		}
		if best < 0 {
			out = append(out, tokens[i])
			continue
		}
		out = append(out, token{
			text:  message[tokens[i].start:tokens[best].end],
			tag:   config.TagNumDate,
			label: tokens[i].label,
			start: tokens[i].start,
			end:   tokens[best].end,
		})
		i = best
	}
	return out
}

func touching(a, b token) bool {
	return a.start >= 0 && b.start >= 0 && a.end == b.start
}

// groupEntities turns the recognizer's IOB labels into entity spans.
// Tokens of unknown entity types stay plain leaves.
func groupEntities(tokens []token) []*tree.Node {
	var out []*tree.Node
	var open *tree.Node
	openType := ""
	for _, t := range tokens {
		leaf := tree.Leaf(t.text, t.tag)
		prefix, typ, _ := strings.Cut(t.label, "-")
		label, known := entityLabels[typ]

		switch {
		case known && prefix == "I" && open != nil && openType == typ:
			open.Children = append(open.Children, leaf)
		case known && (prefix == "B" || prefix == "I"):
			open = tree.Group(label, leaf)
			openType = typ
			out = append(out, open)
		default:
			open, openType = nil, ""
			out = append(out, leaf)
		}
	}
	return out
}
