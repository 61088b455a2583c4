// Package drug looks up drug candidates and computes molecular properties
// with the in-process chem toolkit.
package drug

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/giygas/d3ai-api/apperrors"
	"github.com/giygas/d3ai-api/chem"
	"github.com/giygas/d3ai-api/entities"
	"github.com/giygas/d3ai-api/interfaces"
	"github.com/giygas/d3ai-api/logging"
	"github.com/giygas/d3ai-api/metrics"
)

const (
	// CandidateSource labels candidates served from the catalog.
	CandidateSource = "Internal Database"
	// CandidateConfidence is attached to every catalog candidate.
	CandidateConfidence = 0.9

	// GeneratedSimilarity is reported for every generated molecule.
	GeneratedSimilarity = 0.8

	// PlaceholderVisualizationURL stands in for an image asset store.
	PlaceholderVisualizationURL = "placeholder_url"
)

// Property keys of a DrugPrediction.
const (
	PropMolecularWeight = "molecular_weight"
	PropLogP            = "logp"
	PropTPSA            = "tpsa"
)

var _ interfaces.DrugService = (*Service)(nil)

// Service implements interfaces.DrugService.
type Service struct {
	store  interfaces.CatalogStore
	depict chem.DepictOptions
}

// NewService creates a drug service reading candidates from store.
func NewService(store interfaces.CatalogStore) *Service {
	return &Service{store: store}
}

// guard runs fn and converts a toolkit panic into an upstream error.
func guard(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Recovered panic in chem toolkit", "op", op, "panic", r)
			err = apperrors.Upstream(op, "upstream library failure", fmt.Errorf("panic: %v", r))
		}
	}()
	return fn()
}

// SearchCandidates returns the catalog drug entries for an exact disease key.
// Unknown keys yield an empty list.
func (s *Service) SearchCandidates(ctx context.Context, disease string) ([]entities.DrugCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries := s.store.Snapshot().Drugs(disease)
	out := make([]entities.DrugCandidate, 0, len(entries))
	for _, e := range entries {
		out = append(out, entities.DrugCandidate{
			SMILES:             e.SMILES,
			Name:               e.Name,
			MolecularWeight:    e.MolecularWeight,
			LogP:               e.LogP,
			Bioavailability:    e.Bioavailability,
			Toxicity:           e.Toxicity,
			Source:             CandidateSource,
			Confidence:         CandidateConfidence,
			ResearchReferences: slices.Clone(e.ResearchReferences),
		})
	}
	return out, nil
}

// ValidateStructure reports whether smiles parses and sanitizes.
func (s *Service) ValidateStructure(ctx context.Context, smiles string) bool {
	if ctx.Err() != nil {
		return false
	}
	err := guard("drug.ValidateStructure", func() error {
		_, err := chem.Parse(smiles)
		return err
	})
	if err != nil {
		if !apperrors.IsKind(err, apperrors.KindUpstream) {
			metrics.ObserveParseFailure("validate")
		}
		return false
	}
	return true
}

// PredictProperties computes molecular weight, LogP and TPSA for smiles.
// A structure the toolkit rejects is an invalid-input error.
func (s *Service) PredictProperties(ctx context.Context, smiles string) (*entities.DrugPrediction, error) {
	const op = "drug.PredictProperties"
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var prediction *entities.DrugPrediction
	err := guard(op, func() error {
		m, err := chem.Parse(smiles)
		if err != nil {
			metrics.ObserveParseFailure("predict_properties")
			return apperrors.InvalidInput(op, "Invalid SMILES string", err)
		}
		props := properties(m)
		// The depiction is rendered but not published anywhere yet.
		_ = chem.Depict(m, s.depict)
		prediction = &entities.DrugPrediction{
			SMILES:           smiles,
			Properties:       props,
			VisualizationURL: PlaceholderVisualizationURL,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return prediction, nil
}

// GenerateMolecules returns n copies of the seed molecule as re-serialized by
// the toolkit. An invalid seed yields an empty list and no error.
func (s *Service) GenerateMolecules(ctx context.Context, seed string, n int) ([]entities.GeneratedMolecule, error) {
	const op = "drug.GenerateMolecules"
	if n < 0 {
		return nil, apperrors.InvalidInput(op, "n_molecules must not be negative", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := []entities.GeneratedMolecule{}
	err := guard(op, func() error {
		m, err := chem.Parse(seed)
		if err != nil {
			metrics.ObserveParseFailure("generate")
			logging.Debug("Invalid seed molecule", "smiles", seed, "error", err)
			return nil
		}
		written := chem.Write(m)
		props := properties(m)

		out = make([]entities.GeneratedMolecule, 0, n)
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			out = append(out, entities.GeneratedMolecule{
				SMILES:       written,
				ParentSMILES: seed,
				Similarity:   GeneratedSimilarity,
				Properties:   maps.Clone(props),
				Valid:        true,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func properties(m *chem.Molecule) map[string]entities.DrugProperty {
	return map[string]entities.DrugProperty{
		PropMolecularWeight: {
			Name:       "Molecular Weight",
			Value:      chem.ExactMolWt(m),
			Unit:       "g/mol",
			Confidence: 1.0,
		},
		PropLogP: {
			Name:       "LogP",
			Value:      chem.MolLogP(m),
			Confidence: 0.9,
		},
		PropTPSA: {
			Name:       "TPSA",
			Value:      chem.TPSA(m),
			Unit:       "Å²",
			Confidence: 0.95,
		},
	}
}
