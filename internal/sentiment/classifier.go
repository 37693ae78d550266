package sentiment

import "github.com/jonreiter/govader"

// Sentiment labels attached to emitted alerts.
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
)

// Scorer produces a VADER-style compound score in [-1, 1] for a piece of text.
type Scorer interface {
	Compound(text string) float64
}

// VaderScorer scores text with the VADER lexicon, the same analyzer family the
// alerting pipeline has always used.
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// Ensure VaderScorer implements Scorer
var _ Scorer = (*VaderScorer)(nil)

// NewVaderScorer creates a VADER-backed scorer.
func NewVaderScorer() *VaderScorer {
	return &VaderScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VaderScorer) Compound(text string) float64 {
	return v.analyzer.PolarityScores(text).Compound
}

// Classifier maps compound scores to a coarse three-way bucket. Scores inside
// the dead zone (-threshold, threshold) are suppressed: they produce no alert.
type Classifier struct {
	scorer    Scorer
	threshold float64
}

// NewClassifier creates a classifier with the given scorer and threshold.
// Thresholds are inclusive on both ends: score >= threshold is positive,
// score <= -threshold is negative.
func NewClassifier(scorer Scorer, threshold float64) *Classifier {
	return &Classifier{scorer: scorer, threshold: threshold}
}

// Classify scores the text and returns its label. The second return value is
// false when the score falls in the dead zone and the item should be dropped.
func (c *Classifier) Classify(text string) (string, bool) {
	score := c.scorer.Compound(text)

	switch {
	case score >= c.threshold:
		return LabelPositive, true
	case score <= -c.threshold:
		return LabelNegative, true
	default:
		return "", false
	}
}
