// Package composer turns retrieved element chunks into a conversational answer.
package composer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"ifcrag/internal/domain"
	"ifcrag/internal/generation"
)

// Options hold the sampling parameters and the low-confidence cut-off.
type Options struct {
	MaxTokens        int
	Temperature      float64
	PresencePenalty  float64
	FrequencyPenalty float64
	LowConfidence    float64
}

// DefaultOptions returns the sampling used for building-element answers.
func DefaultOptions() Options {
	return Options{
		MaxTokens:        800,
		Temperature:      0.7,
		PresencePenalty:  0.6,
		FrequencyPenalty: 0.2,
		LowConfidence:    0.5,
	}
}

// SystemPrompt instructs the model to paraphrase element data.
const SystemPrompt = `You are a building information assistant who explains elements from IFC building models in plain, conversational language.

Never answer with the raw data format that separates fields with | symbols. Turn the technical data into natural explanations.

For example:
Instead of: "Wall | Material: Concrete | Thickness: 200mm | Fire Rating: 2 hours"
Say: "I found a concrete wall. It is 200mm thick and has a fire rating of 2 hours."

Instead of: "Door | Width: 900mm | Height: 2100mm | Material: Wood"
Say: "There is a wooden door that is 900mm wide and 2.1 meters tall."

When answering:
1. Never reproduce the | separated format
2. Write complete sentences
3. Explain technical details in simple terms
4. If the similarity score is below 0.5, say that the match may not be exact
5. With several elements, focus on the most relevant and mention that others exist
6. Cover what kind of element it is, what it is made of, and its dimensions and properties when known
7. Offer more detail if it would help
8. Keep a friendly, professional tone
9. Open naturally, for example "I found..." or "Based on the data..."

Interpret and explain the data rather than displaying it.`

// UserPrompt combines the question with the element context.
func UserPrompt(query, info string) string {
	return fmt.Sprintf("Question: %s\n\nBuilding Information:\n%s\n\nPlease provide a natural, conversational response that explains the relevant building elements.", query, info)
}

// Answer is a composed reply and the candidates it was built from.
type Answer struct {
	Text       string
	Candidates []domain.Match
	BestScore  float64
	// Fallback is set when generation failed and Text carries raw data.
	Fallback bool
}

// Composer filters candidates, builds the prompt and calls the generator.
type Composer struct {
	gen    generation.Generator
	opts   Options
	logger *slog.Logger
}

func New(gen generation.Generator, opts Options, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{gen: gen, opts: opts, logger: logger}
}

// CheckCredentials reports a missing generator credential without any network call.
func (c *Composer) CheckCredentials() error { return c.gen.CheckCredentials() }

// Compose answers query from candidates, which must be ordered best first.
// A missing credential fails before any call; a failed generation degrades
// to a message carrying the top candidate's raw text.
func (c *Composer) Compose(ctx context.Context, query string, candidates []domain.Match) (Answer, error) {
	if err := c.CheckCredentials(); err != nil {
		return Answer{}, err
	}
	filtered := FilterByType(query, candidates)
	ans := Answer{Candidates: filtered}
	if len(filtered) > 0 {
		ans.BestScore = filtered[0].SimilarityScore
	}
	info := BuildContext(filtered)

	text, err := c.gen.Generate(ctx, generation.Request{
		System:           SystemPrompt,
		User:             UserPrompt(query, info),
		MaxTokens:        c.opts.MaxTokens,
		Temperature:      c.opts.Temperature,
		PresencePenalty:  c.opts.PresencePenalty,
		FrequencyPenalty: c.opts.FrequencyPenalty,
	})
	if err != nil {
		c.logger.Warn("generation failed, returning raw data", "provider", c.gen.Name(), "error", err)
		raw := "No data found"
		if len(filtered) > 0 {
			raw = filtered[0].Text
		}
		ans.Text = fmt.Sprintf("Error generating response: %v. Here's the raw data I found: %s", err, raw)
		ans.Fallback = true
		return ans, nil
	}
	if ans.BestScore < c.opts.LowConfidence {
		text += Caveat(ans.BestScore)
	}
	ans.Text = text
	return ans, nil
}

// Caveat is appended to answers whose best match scored below the cut-off.
func Caveat(score float64) string {
	return fmt.Sprintf("\n\n*Note: The similarity score is %.2f, which suggests this might not be a perfect match for your question. You might want to try rephrasing your query.*", score)
}

// BuildContext reduces each candidate to its type, id and name segments and
// labels it with its rank and score.
func BuildContext(ms []domain.Match) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = fmt.Sprintf("Element %d (Similarity: %.2f): %s", i+1, m.SimilarityScore, Simplify(m.Text))
	}
	return strings.Join(parts, "\n\n")
}

// Simplify keeps the "Element Type", "ID" and "Name" segments of a chunk.
func Simplify(text string) string {
	var typ, id, name string
	for _, seg := range strings.Split(text, segmentSeparator) {
		switch {
		case typ == "" && strings.HasPrefix(seg, "Element Type: "):
			typ = seg
		case id == "" && strings.HasPrefix(seg, "ID: "):
			id = seg
		case name == "" && strings.HasPrefix(seg, "Name: "):
			name = seg
		}
	}
	var kept []string
	for _, s := range []string{typ, id, name} {
		if s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, segmentSeparator)
}
