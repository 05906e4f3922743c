// Package tfidf is a local TF-IDF embedder over element chunks. It needs no
// credentials and must be selected explicitly.
package tfidf

import (
	"context"
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var (
	errEmptyCorpus = errors.New("tfidf: empty corpus")
	errNoTokens    = errors.New("tfidf: no tokens found in corpus")
	errUnprepared  = errors.New("tfidf: embedder not prepared")

	wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)
)

// Segments whose values are opaque identifiers and carry no meaning for search.
var identifierLabels = map[string]bool{"ID": true, "Global ID": true}

// Embedder weights chunk terms by sublinear term frequency and smoothed IDF.
type Embedder struct {
	terms     map[string]int
	idf       []float64
	stopwords map[string]struct{}
}

// NewEmbedder creates an unprepared TF-IDF embedder.
func NewEmbedder() *Embedder {
	return &Embedder{stopwords: defaultStopwords()}
}

func (e *Embedder) Name() string { return "tfidf" }

// Prepare replaces the vocabulary with the terms of corpus.
func (e *Embedder) Prepare(corpus []string) error {
	if len(corpus) == 0 {
		return errEmptyCorpus
	}
	df := make(map[string]int)
	for _, text := range corpus {
		for tok := range counts(e.tokenize(text)) {
			df[tok]++
		}
	}
	if len(df) == 0 {
		return errNoTokens
	}
	vocab := make([]string, 0, len(df))
	for term := range df {
		vocab = append(vocab, term)
	}
	sort.Strings(vocab)

	n := float64(len(corpus))
	e.terms = make(map[string]int, len(vocab))
	e.idf = make([]float64, len(vocab))
	for i, term := range vocab {
		e.terms[term] = i
		e.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return nil
}

func (e *Embedder) Dimension() int { return len(e.idf) }

// Embed returns the L2-normalised vector of text. Text without known terms
// yields the zero vector.
func (e *Embedder) Embed(_ context.Context, text string) ([]float64, error) {
	if len(e.idf) == 0 {
		return nil, errUnprepared
	}
	vec := make([]float64, len(e.idf))
	var norm float64
	for tok, c := range counts(e.tokenize(text)) {
		idx, ok := e.terms[tok]
		if !ok {
			continue
		}
		w := (1 + math.Log(float64(c))) * e.idf[idx]
		vec[idx] = w
		norm += w * w
	}
	if norm == 0 {
		return vec, nil
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec, nil
}

func counts(tokens []string) map[string]int {
	m := make(map[string]int, len(tokens))
	for _, t := range tokens {
		m[t]++
	}
	return m
}

// tokenize walks the " | " segments of a chunk, skipping identifier
// segments. IFC names such as IfcWallStandardCase yield their parts and the
// whole word; plural "s" is folded.
func (e *Embedder) tokenize(text string) []string {
	var out []string
	for _, seg := range strings.Split(text, " | ") {
		if label, _, ok := strings.Cut(seg, ": "); ok && identifierLabels[label] {
			continue
		}
		for _, word := range wordPattern.FindAllString(seg, -1) {
			parts := splitCamel(word)
			if len(parts) > 1 {
				parts = append(parts, word)
			}
			for _, p := range parts {
				tok := stem(strings.ToLower(p))
				if _, stop := e.stopwords[tok]; !stop {
					out = append(out, tok)
				}
			}
		}
	}
	return out
}

func splitCamel(word string) []string {
	runes := []rune(word)
	var parts []string
	start := 0
	for i := 1; i < len(runes); i++ {
		if unicode.IsUpper(runes[i]) && unicode.IsLower(runes[i-1]) {
			parts = append(parts, string(runes[start:i]))
			start = i
		}
	}
	return append(parts, string(runes[start:]))
}

func stem(tok string) string {
	if len(tok) > 3 && strings.HasSuffix(tok, "s") && !strings.HasSuffix(tok, "ss") {
		return tok[:len(tok)-1]
	}
	return tok
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "for", "to", "of", "in", "on", "at", "by", "with", "as",
		"is", "are", "was", "were", "be", "it", "this", "that", "these", "those", "from", "into", "about",
		"can", "will", "should", "show", "me", "what", "which", "where", "how", "many", "all", "any",
		"there", "do", "doe", "have", "ha", "tell", "list", "give",
		// chunk labels
		"element", "type", "unknown",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
