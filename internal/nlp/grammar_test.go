package nlp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tartampluch/go-quickevent/internal/config"
)

func TestDefaultGrammar(t *testing.T) {
	g := DefaultGrammar()
	require.Equal(t, 15, g.Len())

	labels := g.Labels()
	assert.Equal(t, config.LabelPlace, labels[0])
	assert.Equal(t, config.LabelJunk, labels[len(labels)-1])
}

func TestParseGrammar_Errors(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{"Empty", "# only a comment\n\n", ErrGrammarSyntax},
		{"Missing braces", "DATE:<IN><NN>", ErrGrammarSyntax},
		{"Missing label", ":{<NN>}", ErrGrammarSyntax},
		{"Nested tag", "DATE:{<IN<NN>>}", ErrGrammarPattern},
		{"Unbalanced close", "DATE:{NN>}", ErrGrammarPattern},
		{"Unterminated tag", "DATE:{<IN><NN}", ErrGrammarPattern},
		{"Empty tag", "DATE:{<>}", ErrGrammarPattern},
		{"Bad regexp", "DATE:{(<NN>}", ErrGrammarPattern},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGrammar(tt.text)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTagPatternToRegexp(t *testing.T) {
	got, err := tagPatternToRegexp("<IN> <NN.*>?")
	require.NoError(t, err)
	assert.Equal(t, `(?:<(?:IN)>)(?:<(?:NN[^{}<>]*)>)?`, got)
}

func TestLoadGrammar(t *testing.T) {
	t.Run("Empty path uses the embedded grammar", func(t *testing.T) {
		g, err := LoadGrammar("")
		require.NoError(t, err)
		assert.Equal(t, DefaultGrammar().Len(), g.Len())
	})

	t.Run("File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.grammar")
		require.NoError(t, os.WriteFile(path, []byte("DATE:{<IN><NNP>}\n"), config.FilePermUserRW))

		g, err := LoadGrammar(path)
		require.NoError(t, err)
		assert.Equal(t, []string{config.LabelDate}, g.Labels())
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := LoadGrammar("/nonexistent/custom.grammar")
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.ErrConfigRead)
	})
}
