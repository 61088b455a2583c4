// Package textvec implements a TF-IDF vectorizer and cosine similarity for
// short free-text documents such as symptom lists.
//
// The weighting follows the common smoothed formulation: raw term counts,
// idf(t) = ln((1+n)/(1+df(t))) + 1, and L2-normalized document vectors.
package textvec

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Vector is a dense, L2-normalized TF-IDF vector indexed by vocabulary
// position. Sums over it always run in index order, so equal documents get
// bit-identical scores.
type Vector []float64

// Vectorizer holds a fitted vocabulary and its inverse document frequencies.
type Vectorizer struct {
	vocab map[string]int
	terms []string
	idf   []float64
}

// Tokenize lowercases and NFC-normalizes text and splits it into tokens made
// of at least two letters, digits or underscores.
func Tokenize(text string) []string {
	text = norm.NFC.String(cases.Lower(language.Und).String(text))

	var tokens []string
	var sb strings.Builder
	runes := 0
	flush := func() {
		if runes >= 2 {
			tokens = append(tokens, sb.String())
		}
		sb.Reset()
		runes = 0
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.Is(unicode.Mn, r) {
			sb.WriteRune(r)
			runes++
			continue
		}
		flush()
	}
	flush()
	return tokens
}

// Fit learns the vocabulary and idf weights of docs.
func Fit(docs []string) *Vectorizer {
	df := make(map[string]int)
	for _, d := range docs {
		seen := make(map[string]bool)
		for _, t := range Tokenize(d) {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	v := &Vectorizer{
		vocab: make(map[string]int, len(terms)),
		terms: terms,
		idf:   make([]float64, len(terms)),
	}
	n := float64(len(docs))
	for i, t := range terms {
		v.vocab[t] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	return v
}

// Vocabulary returns the fitted terms in index order.
func (v *Vectorizer) Vocabulary() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Transform maps doc into the fitted vector space. Terms outside the
// vocabulary are dropped; a document with no known terms yields the zero
// vector.
func (v *Vectorizer) Transform(doc string) Vector {
	vec := make(Vector, len(v.terms))
	for _, t := range Tokenize(doc) {
		if i, ok := v.vocab[t]; ok {
			vec[i]++
		}
	}
	length := 0.0
	for i, tf := range vec {
		w := tf * v.idf[i]
		vec[i] = w
		length += w * w
	}
	if length == 0 {
		return vec
	}
	length = math.Sqrt(length)
	for i := range vec {
		vec[i] /= length
	}
	return vec
}

// Cosine returns the cosine similarity of two normalized vectors from the
// same vectorizer, clamped to [0, 1]. Zero vectors have similarity 0.
func Cosine(a, b Vector) float64 {
	n := min(len(a), len(b))
	dot := 0.0
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	return math.Max(0, math.Min(1, dot))
}

// PairSimilarity fits a vectorizer on exactly the two documents and returns
// their cosine similarity. Because vocabulary and idf depend on the pair,
// scores from different pairs do not share a vector space.
func PairSimilarity(a, b string) float64 {
	v := Fit([]string{a, b})
	return Cosine(v.Transform(a), v.Transform(b))
}
