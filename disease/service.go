// Package disease predicts a disease from free-text symptoms by TF-IDF
// cosine similarity against the catalog.
package disease

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/giygas/d3ai-api/apperrors"
	"github.com/giygas/d3ai-api/catalog"
	"github.com/giygas/d3ai-api/entities"
	"github.com/giygas/d3ai-api/interfaces"
	"github.com/giygas/d3ai-api/logging"
	"github.com/giygas/d3ai-api/metrics"
	"github.com/giygas/d3ai-api/textvec"
)

// Mode selects how the vector space is built.
type Mode string

const (
	// ModePairwise fits a fresh vectorizer on each (input, disease) pair.
	// Vocabulary and idf then differ per comparison, so a score is only
	// meaningful against the disease it was computed for.
	ModePairwise Mode = "pairwise"
	// ModeCorpus fits one vectorizer per catalog snapshot over all disease
	// documents. Input terms outside that vocabulary are ignored.
	ModeCorpus Mode = "corpus"
)

// UnknownDisease is the name returned when nothing matches.
const UnknownDisease = "Unknown"

const unknownDescription = "Unable to determine disease from given symptoms"

// ParseMode accepts "pairwise" or "corpus"; empty selects pairwise.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModePairwise:
		return ModePairwise, nil
	case ModeCorpus:
		return ModeCorpus, nil
	}
	return "", fmt.Errorf("unknown matcher mode %q (want pairwise or corpus)", s)
}

var _ interfaces.DiseaseService = (*Service)(nil)

// corpusIndex is the corpus-mode vector space of one catalog snapshot.
type corpusIndex struct {
	snapshot *catalog.Catalog
	vec      *textvec.Vectorizer
	docs     []textvec.Vector
}

// Service implements interfaces.DiseaseService over a catalog store.
type Service struct {
	store interfaces.CatalogStore
	mode  Mode
	index atomic.Pointer[corpusIndex]
}

// NewService creates a disease service reading from store.
func NewService(store interfaces.CatalogStore, mode Mode) *Service {
	if mode == "" {
		mode = ModePairwise
	}
	return &Service{store: store, mode: mode}
}

// Mode returns the scoring mode.
func (s *Service) Mode() Mode { return s.mode }

// Unknown returns the response used when no disease scores above zero.
func Unknown() entities.DiseaseResponse {
	return entities.DiseaseResponse{
		Disease:            UnknownDisease,
		Confidence:         0,
		PossibleTreatments: []string{},
		Description:        unknownDescription,
	}
}

// PredictDisease returns the catalog disease whose symptom list is most
// similar to symptoms. Diseases are scored in catalog order and the first
// one reaching the best score wins.
func (s *Service) PredictDisease(ctx context.Context, symptoms []string) (entities.DiseaseResponse, error) {
	if err := ctx.Err(); err != nil {
		return entities.DiseaseResponse{}, err
	}

	snap := s.store.Snapshot()
	input := strings.Join(symptoms, " ")

	var scores []float64
	if s.mode == ModeCorpus {
		scores = s.corpusScores(snap, input)
	} else {
		scores = pairwiseScores(snap, input)
	}

	best, bestScore := -1, 0.0
	for i, score := range scores {
		if score > bestScore {
			best, bestScore = i, score
		}
	}

	if best < 0 {
		metrics.ObservePrediction(false)
		logging.Debug("No disease matched", "symptoms", len(symptoms), "mode", s.mode)
		return Unknown(), nil
	}

	d := snap.Diseases()[best]
	metrics.ObservePrediction(true)
	treatments := slices.Clone(d.Treatments)
	if treatments == nil {
		treatments = []string{}
	}
	return entities.DiseaseResponse{
		Disease:            d.Name,
		Confidence:         bestScore,
		PossibleTreatments: treatments,
		Description:        d.Description,
	}, nil
}

func pairwiseScores(snap *catalog.Catalog, input string) []float64 {
	diseases := snap.Diseases()
	scores := make([]float64, len(diseases))
	for i, d := range diseases {
		scores[i] = textvec.PairSimilarity(input, strings.Join(d.Symptoms, " "))
	}
	return scores
}

func (s *Service) corpusScores(snap *catalog.Catalog, input string) []float64 {
	idx := s.corpus(snap)
	q := idx.vec.Transform(input)
	scores := make([]float64, len(idx.docs))
	for i, doc := range idx.docs {
		scores[i] = textvec.Cosine(q, doc)
	}
	return scores
}

// corpus returns the vector space of snap, building it on first use after a
// reload. Concurrent first calls may build it twice; either result is valid.
func (s *Service) corpus(snap *catalog.Catalog) *corpusIndex {
	if idx := s.index.Load(); idx != nil && idx.snapshot == snap {
		return idx
	}

	diseases := snap.Diseases()
	texts := make([]string, len(diseases))
	for i, d := range diseases {
		texts[i] = strings.Join(d.Symptoms, " ")
	}
	vec := textvec.Fit(texts)
	idx := &corpusIndex{snapshot: snap, vec: vec, docs: make([]textvec.Vector, len(texts))}
	for i, t := range texts {
		idx.docs[i] = vec.Transform(t)
	}
	s.index.Store(idx)
	logging.Debug("Built corpus vector space", "diseases", len(texts), "terms", len(vec.Vocabulary()))
	return idx
}

// GetDiseaseInfo looks a disease up by its exact catalog key.
func (s *Service) GetDiseaseInfo(ctx context.Context, name string) (entities.Disease, error) {
	if err := ctx.Err(); err != nil {
		return entities.Disease{}, err
	}
	d, ok := s.store.Snapshot().Disease(name)
	if !ok {
		return entities.Disease{}, apperrors.NotFound("disease.GetDiseaseInfo", "Disease not found")
	}
	return entities.Disease{
		Name:        d.Name,
		Symptoms:    slices.Clone(d.Symptoms),
		Description: d.Description,
		Category:    d.Category,
	}, nil
}
