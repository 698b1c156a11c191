// internal/reports/intent/intent.go
package intent

import (
	"context"
	"sort"
	"strings"

	"report-workers/internal/reports/catalog"
)

const (
	// DefaultConfidence is reported when no catalog entry matches.
	DefaultConfidence = 0.3

	// StrongVoteThreshold separates a decisive external vote from a nudge.
	StrongVoteThreshold = 0.75
	strongVoteBonus     = 10
	weakVoteBonus       = 3

	maxAlternatives = 3
)

// Source records what decided the winning intent.
type Source string

const (
	SourceKeyword Source = "keyword"
	SourceVote    Source = "vote"
	SourceDefault Source = "default"
	SourceContext Source = "context"
)

// Vote is a secondary classifier's opinion about a command.
type Vote struct {
	Label      catalog.ReportID `json:"label"`
	Confidence float64          `json:"confidence"`
}

// Voter is a best-effort secondary classifier. ok is false whenever no
// usable vote is available; implementations never surface errors.
type Voter interface {
	Vote(ctx context.Context, text string) (vote Vote, ok bool)
}

// Alternative is a runner-up intent with its keyword score.
type Alternative struct {
	Type  catalog.ReportID `json:"type"`
	Name  string           `json:"name"`
	Score int              `json:"score"`
}

// Result is the outcome of classifying one command.
type Result struct {
	Definition   catalog.Definition
	Confidence   float64
	Alternatives []Alternative
	Source       Source
}

// Classifier scores catalog entries by keyword overlap.
type Classifier struct {
	catalog *catalog.Catalog
}

func NewClassifier(c *catalog.Catalog) *Classifier {
	return &Classifier{catalog: c}
}

// Score is the summed word count of every keyword phrase found in text.
func Score(def catalog.Definition, text string) int {
	score := 0
	for _, kw := range def.Keywords {
		if strings.Contains(text, kw) {
			score += len(strings.Fields(kw))
		}
	}
	return score
}

// Classify picks the best catalog entry for normalized text. Entries are
// visited in catalog order and a later entry must score strictly higher to
// win, so ties go to the earlier entry.
func (c *Classifier) Classify(text string, vote *Vote) Result {
	var (
		best         catalog.Definition
		bestScore    int
		alternatives []Alternative
	)

	for _, def := range c.catalog.All() {
		score := Score(def, text)
		if score > 0 {
			alternatives = append(alternatives, Alternative{Type: def.ID, Name: def.Name, Score: score})
		}

		if vote != nil && vote.Label == def.ID {
			if vote.Confidence >= StrongVoteThreshold {
				score += strongVoteBonus
			} else {
				score += weakVoteBonus
			}
		}

		if score > bestScore {
			bestScore = score
			best = def
		}
	}

	if bestScore == 0 {
		return Result{
			Definition:   c.catalog.Default(),
			Confidence:   DefaultConfidence,
			Alternatives: []Alternative{},
			Source:       SourceDefault,
		}
	}

	confidence := float64(bestScore) / 3.0
	if confidence > 1 {
		confidence = 1
	}
	source := SourceKeyword
	if vote != nil && vote.Label == best.ID {
		source = SourceVote
		if vote.Confidence > confidence {
			confidence = vote.Confidence
		}
		if confidence > 1 {
			confidence = 1
		}
	}

	sort.SliceStable(alternatives, func(i, j int) bool {
		return alternatives[i].Score > alternatives[j].Score
	})
	ranked := make([]Alternative, 0, maxAlternatives)
	for _, alt := range alternatives {
		if alt.Type == best.ID {
			continue
		}
		ranked = append(ranked, alt)
		if len(ranked) == maxAlternatives {
			break
		}
	}

	return Result{
		Definition:   best,
		Confidence:   confidence,
		Alternatives: ranked,
		Source:       source,
	}
}
