// Package sentiment turns free text into a compound polarity score and a
// three-way label.
package sentiment

import (
	"math"

	"github.com/jonreiter/govader"
)

// Label is the three-way sentiment classification
type Label string

const (
	Positive Label = "positive"
	Neutral  Label = "neutral"
	Negative Label = "negative"
)

// Labels lists every label in reporting order
var Labels = []Label{Positive, Negative, Neutral}

// Compound score cut-offs, inclusive on both sides
const (
	PositiveThreshold = 0.05
	NegativeThreshold = -0.05
)

// Scorer maps text to a compound score in [-1, 1] and its label
type Scorer interface {
	ScoreText(text string) (float64, Label)
}

// LabelFor applies the fixed thresholds to a compound score
func LabelFor(score float64) Label {
	switch {
	case score >= PositiveThreshold:
		return Positive
	case score <= NegativeThreshold:
		return Negative
	default:
		return Neutral
	}
}

// Valid reports whether l is one of the known labels
func (l Label) Valid() bool {
	return l == Positive || l == Neutral || l == Negative
}

// VaderScorer scores text with the VADER lexicon
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVaderScorer loads the VADER lexicon. The analyzer is read-only after
// construction and safe to share between requests.
func NewVaderScorer() *VaderScorer {
	return &VaderScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// ScoreText implements Scorer
func (v *VaderScorer) ScoreText(text string) (float64, Label) {
	if text == "" {
		return 0, Neutral
	}

	score := clamp(v.analyzer.PolarityScores(text).Compound)
	return score, LabelFor(score)
}

func clamp(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return math.Max(-1, math.Min(1, score))
}

// ScorerFunc adapts a plain function to Scorer
type ScorerFunc func(text string) float64

// ScoreText implements Scorer
func (f ScorerFunc) ScoreText(text string) (float64, Label) {
	score := clamp(f(text))
	return score, LabelFor(score)
}
