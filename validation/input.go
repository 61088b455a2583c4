// Package validation checks request parameters and catalog contents.
package validation

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/giygas/d3ai-api/apperrors"
	"github.com/giygas/d3ai-api/interfaces"
)

const (
	MaxSymptoms      = 50
	MaxSymptomLength = 100
	MaxSMILESLength  = 500
	MaxNameLength    = 200

	// DefaultMaxMolecules caps n_molecules when no limit is configured.
	DefaultMaxMolecules = 100
)

var _ interfaces.InputValidator = (*InputValidatorImpl)(nil)

// InputValidatorImpl implements interfaces.InputValidator.
type InputValidatorImpl struct {
	maxMolecules int
}

// NewInputValidator creates a validator accepting at most maxMolecules
// generated molecules per request. A non-positive value selects
// DefaultMaxMolecules.
func NewInputValidator(maxMolecules int) *InputValidatorImpl {
	if maxMolecules <= 0 {
		maxMolecules = DefaultMaxMolecules
	}
	return &InputValidatorImpl{maxMolecules: maxMolecules}
}

// MaxMolecules returns the configured n_molecules upper bound.
func (v *InputValidatorImpl) MaxMolecules() int { return v.maxMolecules }

func invalid(op, format string, args ...any) error {
	return apperrors.InvalidInput(op, fmt.Sprintf(format, args...), nil)
}

// ValidateSymptoms checks the symptom list of a prediction request: count,
// length, and encoding. An empty list is accepted: it simply matches nothing.
func (v *InputValidatorImpl) ValidateSymptoms(symptoms []string) error {
	const op = "validation.ValidateSymptoms"
	if len(symptoms) > MaxSymptoms {
		return invalid(op, "too many symptoms: maximum %d allowed", MaxSymptoms)
	}
	for i, s := range symptoms {
		if utf8.RuneCountInString(s) > MaxSymptomLength {
			return invalid(op, "symptom #%d too long: maximum %d characters", i+1, MaxSymptomLength)
		}
		if !isPlainText(s) {
			return invalid(op, "symptom #%d must be valid UTF-8 without control characters", i+1)
		}
	}
	return nil
}

// ValidateSMILESParam checks the shape of a smiles parameter. Whether the
// string is a valid molecule is for the toolkit to decide.
func (v *InputValidatorImpl) ValidateSMILESParam(smiles string) error {
	const op = "validation.ValidateSMILESParam"
	if smiles == "" {
		return invalid(op, "smiles is required")
	}
	if len(smiles) > MaxSMILESLength {
		return invalid(op, "smiles too long: maximum %d characters", MaxSMILESLength)
	}
	if strings.IndexFunc(smiles, unicode.IsSpace) >= 0 {
		return invalid(op, "smiles must not contain whitespace")
	}
	return nil
}

// ValidateMoleculeCount checks n_molecules against [0, max].
func (v *InputValidatorImpl) ValidateMoleculeCount(n int) error {
	if n < 0 || n > v.maxMolecules {
		return invalid("validation.ValidateMoleculeCount", "n_molecules must be between 0 and %d", v.maxMolecules)
	}
	return nil
}

// ValidateName checks a disease name taken from the URL path.
func (v *InputValidatorImpl) ValidateName(name string) error {
	const op = "validation.ValidateName"
	if strings.TrimSpace(name) == "" {
		return invalid(op, "name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return invalid(op, "name too long: maximum %d characters", MaxNameLength)
	}
	if !isPlainText(name) {
		return invalid(op, "name must be valid UTF-8 without control characters")
	}
	return nil
}

// isPlainText reports whether s is valid UTF-8 free of control characters.
// Symptoms and names only feed the matcher and map lookups, so punctuation is
// fine.
func isPlainText(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	return strings.IndexFunc(s, unicode.IsControl) < 0
}
