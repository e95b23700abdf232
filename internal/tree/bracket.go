package tree

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/tartampluch/go-quickevent/internal/config"
)

// ErrSyntax is returned by Parse for malformed bracketed input.
var ErrSyntax = errors.New(config.ErrTreeSyntax)

// String renders n in bracketed notation: (S lunch/NN (PERSON Sara/NNP)).
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	if n.IsLeaf() {
		b.WriteString(n.Text)
		b.WriteByte('/')
		b.WriteString(n.Tag)
		return
	}
	b.WriteByte('(')
	b.WriteString(n.Label)
	for _, c := range n.Children {
		b.WriteByte(' ')
		c.write(b)
	}
	b.WriteByte(')')
}

// Parse reads a tree in the bracketed notation produced by String.
// Leaves are written word/TAG; the tag is taken after the last slash so
// tokens such as 15/03/2024/NUM_DATE keep their inner slashes.
func Parse(s string) (*Node, error) {
	p := &bracketParser{tokens: scanBrackets(s)}
	if len(p.tokens) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrSyntax)
	}
	n, err := p.node()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.tokens) {
		return nil, fmt.Errorf("%w: trailing input %q", ErrSyntax, p.tokens[p.pos])
	}
	return n, nil
}

type bracketParser struct {
	tokens []string
	pos    int
}

func (p *bracketParser) node() (*Node, error) {
	if p.pos >= len(p.tokens) {
		return nil, fmt.Errorf("%w: unexpected end of input", ErrSyntax)
	}
	tok := p.tokens[p.pos]
	p.pos++

	switch tok {
	case ")":
		return nil, fmt.Errorf("%w: unbalanced ')'", ErrSyntax)
	case "(":
		if p.pos >= len(p.tokens) || p.tokens[p.pos] == "(" || p.tokens[p.pos] == ")" {
			return nil, fmt.Errorf("%w: group without label", ErrSyntax)
		}
		g := Group(p.tokens[p.pos])
		p.pos++
		for {
			if p.pos >= len(p.tokens) {
				return nil, fmt.Errorf("%w: unclosed group %s", ErrSyntax, g.Label)
			}
			if p.tokens[p.pos] == ")" {
				p.pos++
				return g, nil
			}
			c, err := p.node()
			if err != nil {
				return nil, err
			}
			g.Children = append(g.Children, c)
		}
	default:
		i := strings.LastIndexByte(tok, '/')
		if i <= 0 || i == len(tok)-1 {
			return nil, fmt.Errorf("%w: token %q is not word/TAG", ErrSyntax, tok)
		}
		return Leaf(tok[:i], tok[i+1:]), nil
	}
}

// scanBrackets splits s into parentheses and whitespace-separated atoms.
func scanBrackets(s string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '(' || r == ')':
			flush()
			tokens = append(tokens, string(r))
		case unicode.IsSpace(r):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}
