package nlp

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/tartampluch/go-quickevent/internal/config"
)

//go:embed default.grammar
var defaultGrammar string

var (
	// ErrGrammarSyntax is returned for lines that are not LABEL:{pattern}.
	ErrGrammarSyntax = errors.New(config.ErrGrammarSyntax)

	// ErrGrammarPattern is returned for tag patterns that do not compile.
	ErrGrammarPattern = errors.New(config.ErrGrammarPattern)
)

// grammarLine matches "LABEL:{pattern}".
var grammarLine = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*:\s*\{(.*)\}$`)

// chunkTagChar stands for "." inside tag patterns: any character of a tag,
// never one of the delimiters of the chunk string.
const chunkTagChar = `[^{}<>]`

// stage is one chunking pass: every match of pattern over the current
// sequence becomes a span labeled label.
type stage struct {
	label   string
	pattern *regexp.Regexp
}

// Grammar is an ordered cascade of chunking stages.
// It is immutable and safe for concurrent use.
type Grammar struct {
	stages []stage
}

// DefaultGrammar returns the embedded grammar.
func DefaultGrammar() *Grammar {
	g, err := ParseGrammar(defaultGrammar)
	if err != nil {
		panic(fmt.Sprintf("embedded grammar: %v", err))
	}
	return g
}

// LoadGrammar reads a grammar file, or returns the embedded grammar when
// path is empty.
func LoadGrammar(path string) (*Grammar, error) {
	if path == "" {
		return DefaultGrammar(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrConfigRead, err)
	}
	g, err := ParseGrammar(string(data))
	if err != nil {
		return nil, err
	}
	slog.With(config.LogKeyComponent, config.CompNLP).Info(config.MsgGrammarLoaded,
		config.LogKeyFile, path,
		config.LogKeyStages, g.Len())
	return g, nil
}

// ParseGrammar reads one stage per non-blank line. Lines starting with '#'
// are comments.
//
// Patterns use the tag notation of regular-expression chunkers: <NN> matches
// one node tagged NN, "." inside angle brackets matches any tag character,
// and the usual regexp operators apply between and inside tags.
func ParseGrammar(text string) (*Grammar, error) {
	g := &Grammar{}
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m := grammarLine.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("%w: line %d: %q", ErrGrammarSyntax, i+1, line)
		}
		expr, err := tagPatternToRegexp(m[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrGrammarPattern, i+1, err)
		}
		g.stages = append(g.stages, stage{label: m[1], pattern: re})
	}
	if len(g.stages) == 0 {
		return nil, fmt.Errorf("%w: no stages", ErrGrammarSyntax)
	}
	return g, nil
}

// Len returns the number of stages.
func (g *Grammar) Len() int {
	return len(g.stages)
}

// Labels returns the stage labels in order.
func (g *Grammar) Labels() []string {
	out := make([]string, len(g.stages))
	for i, s := range g.stages {
		out[i] = s.label
	}
	return out
}

// tagPatternToRegexp rewrites a tag pattern into a regexp over the chunk
// string "<T1><T2>...". Whitespace is ignored.
func tagPatternToRegexp(pattern string) (string, error) {
	var b strings.Builder
	inTag, escaped, empty := false, false, true
	for _, r := range pattern {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		switch {
		case r == ' ' || r == '\t':
		case r == '\\':
			b.WriteRune(r)
			escaped, empty = true, false
		case r == '<':
			if inTag {
				return "", fmt.Errorf("%w: nested '<' in %q", ErrGrammarPattern, pattern)
			}
			inTag, empty = true, true
			b.WriteString("(?:<(?:")
		case r == '>':
			if !inTag || empty {
				return "", fmt.Errorf("%w: unbalanced '>' in %q", ErrGrammarPattern, pattern)
			}
			inTag = false
			b.WriteString(")>)")
		case r == '.' && inTag:
			empty = false
			b.WriteString(chunkTagChar)
		case r == '{' || r == '}':
			return "", fmt.Errorf("%w: brace in %q", ErrGrammarPattern, pattern)
		default:
			empty = false
			b.WriteRune(r)
		}
	}
	if inTag || escaped {
		return "", fmt.Errorf("%w: unterminated tag in %q", ErrGrammarPattern, pattern)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: empty pattern", ErrGrammarPattern)
	}
	return b.String(), nil
}
