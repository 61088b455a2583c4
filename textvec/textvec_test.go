package textvec

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"lowercases", "Body Aches, FEVER", []string{"body", "aches", "fever"}},
		{"drops single characters", "a b cd", []string{"cd"}},
		{"keeps underscores and digits", "type_2 x1", []string{"type_2", "x1"}},
		{"splits on punctuation", "fever/cough;fatigue", []string{"fever", "cough", "fatigue"}},
		{"normalizes composed forms", "naïve", []string{"naïve"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.in))
		})
	}
}

func TestFitVocabularyAndIDF(t *testing.T) {
	v := Fit([]string{"fever cough", "fever fatigue"})
	assert.Equal(t, []string{"cough", "fatigue", "fever"}, v.Vocabulary())

	// fever appears in both documents so it carries the minimum weight.
	vec := v.Transform("fever")
	require.Len(t, vec, 3)
	assert.Equal(t, Vector{0, 0, 1}, vec)
}

func TestTransformDropsUnknownTerms(t *testing.T) {
	v := Fit([]string{"fever cough"})
	assert.Equal(t, Vector{0, 0}, v.Transform("rash"))
	assert.Equal(t, Vector{0, 1}, v.Transform("rash fever"))
}

func TestPairSimilarity(t *testing.T) {
	influenza := "fever cough fatigue body aches"
	diabetes := "increased thirst frequent urination fatigue blurred vision"

	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical documents", influenza, influenza, 1.0},
		{"disjoint documents", "rash itching", influenza, 0.0},
		{"shared term against influenza", "fatigue", influenza, 0.33518},
		{"shared term against diabetes", "fatigue", diabetes, 0.27893},
		{"no tokens at all", "a", "b", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PairSimilarity(tt.a, tt.b), 1e-4)
		})
	}
}

func TestCosineClampsAndHandlesEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Cosine(Vector{}, Vector{1}))
	assert.Equal(t, 0.0, Cosine(Vector{0, 0}, Vector{1, 0}))
	assert.Equal(t, 1.0, Cosine(Vector{1.0000001}, Vector{1}))
	assert.Equal(t, 0.0, Cosine(Vector{-1}, Vector{1}))
}

func TestPairSimilarityIsOrderIndependent(t *testing.T) {
	symptoms := []string{
		"fever", "cough", "fatigue", "body aches", "headache", "chills", "sore throat",
		"runny nose", "nausea", "vomiting", "diarrhea", "shortness of breath", "dizziness",
	}
	forward := strings.Join(symptoms, " ")
	reversed := slices.Clone(symptoms)
	slices.Reverse(reversed)
	backward := strings.Join(reversed, " ")
	input := "fever fever cough headache headache headache nausea chills"

	want := PairSimilarity(input, forward)
	for i := 0; i < 200; i++ {
		require.Equal(t, want, PairSimilarity(input, forward))
		require.Equal(t, want, PairSimilarity(input, backward))
	}
}
