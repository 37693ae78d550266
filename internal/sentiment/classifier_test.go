package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fixedScorer struct {
	score float64
}

func (f fixedScorer) Compound(text string) float64 {
	return f.score
}

func TestClassifier_ThresholdBoundaries(t *testing.T) {
	tests := []struct {
		name      string
		score     float64
		wantLabel string
		wantEmit  bool
	}{
		{
			name:      "Exactly at positive threshold",
			score:     0.5,
			wantLabel: LabelPositive,
			wantEmit:  true,
		},
		{
			name:     "Just below positive threshold",
			score:    0.4999,
			wantEmit: false,
		},
		{
			name:      "Exactly at negative threshold",
			score:     -0.5,
			wantLabel: LabelNegative,
			wantEmit:  true,
		},
		{
			name:     "Just above negative threshold",
			score:    -0.4999,
			wantEmit: false,
		},
		{
			name:     "Neutral score",
			score:    0.0,
			wantEmit: false,
		},
		{
			name:      "Strongly positive",
			score:     0.9,
			wantLabel: LabelPositive,
			wantEmit:  true,
		},
		{
			name:      "Strongly negative",
			score:     -0.9,
			wantLabel: LabelNegative,
			wantEmit:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier := NewClassifier(fixedScorer{score: tt.score}, 0.5)

			label, ok := classifier.Classify("whatever")
			assert.Equal(t, tt.wantEmit, ok)
			assert.Equal(t, tt.wantLabel, label)
		})
	}
}

func TestClassifier_CustomThreshold(t *testing.T) {
	classifier := NewClassifier(fixedScorer{score: 0.3}, 0.25)

	label, ok := classifier.Classify("whatever")
	assert.True(t, ok)
	assert.Equal(t, LabelPositive, label)
}

func TestVaderScorer_Polarity(t *testing.T) {
	scorer := NewVaderScorer()

	positive := scorer.Compound("I love this, it is wonderful and makes me so happy")
	negative := scorer.Compound("I hate this, it is terrible and awful")

	assert.Greater(t, positive, 0.0)
	assert.Less(t, negative, 0.0)
}
