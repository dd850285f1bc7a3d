package relevance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "simple words", in: "Blue Mug", want: []string{"blue", "mug"}},
		{name: "punctuation split", in: "wireless-headphones, noise.cancelling!", want: []string{"wireless", "headphones", "noise", "cancelling"}},
		{name: "mixed case and digits", in: "USB-C Cable 2m", want: []string{"usb", "c", "cable", "2m"}},
		{name: "whitespace only", in: "   \t\n", want: nil},
		{name: "empty", in: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.in)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueryTokens_Distinct(t *testing.T) {
	assert.Equal(t, []string{"mug", "blue"}, QueryTokens("mug blue MUG"))
	assert.Empty(t, QueryTokens("   "))
}

func TestScore_ConjunctiveMatch(t *testing.T) {
	doc := Index("Blue ceramic mug with a blue handle")

	// All tokens present.
	assert.Greater(t, doc.Score(QueryTokens("blue mug")), 0.0)

	// One token missing - no partial credit.
	assert.Equal(t, 0.0, doc.Score(QueryTokens("blue teapot")))
}

func TestScore_FrequencyWeighting(t *testing.T) {
	dense := Index("mug mug mug")
	sparse := Index("mug and a very long description of unrelated things")

	q := QueryTokens("mug")
	assert.Greater(t, dense.Score(q), sparse.Score(q))
}

func TestScore_EmptyQueryMatchesAll(t *testing.T) {
	doc := Index("anything at all")
	assert.Equal(t, MatchAllScore, doc.Score(nil))
	assert.Equal(t, MatchAllScore, doc.Score(QueryTokens("")))
}

func TestScore_EmptyDocument(t *testing.T) {
	doc := Index("")
	assert.Equal(t, 0.0, doc.Score(QueryTokens("mug")))
	// Empty query still lists an empty document.
	assert.Equal(t, MatchAllScore, doc.Score(nil))
}

func TestScore_NonNegativeAndBounded(t *testing.T) {
	doc := Index("wireless headphones with noise cancellation")
	for _, q := range []string{"wireless", "headphones noise", "absent", ""} {
		s := doc.Score(QueryTokens(q))
		assert.GreaterOrEqual(t, s, 0.0, "query %q", q)
		assert.LessOrEqual(t, s, 1.0, "query %q", q)
	}
}

func TestScoreText(t *testing.T) {
	assert.Greater(t, ScoreText("Blue Mug", QueryTokens("mug")), 0.0)
	assert.Equal(t, 0.0, ScoreText("Old Shirt", QueryTokens("mug")))
}
