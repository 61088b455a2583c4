package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/giygas/d3ai-api/catalog"
	"github.com/giygas/d3ai-api/chem"
	"github.com/giygas/d3ai-api/interfaces"
	"github.com/giygas/d3ai-api/logging"
)

var _ interfaces.CatalogValidator = (*CatalogValidatorImpl)(nil)

// CatalogValidatorImpl implements interfaces.CatalogValidator.
type CatalogValidatorImpl struct{}

func NewCatalogValidator() *CatalogValidatorImpl {
	return &CatalogValidatorImpl{}
}

// ReportCatalogQuality lists every data-quality issue of f. Unlike
// catalog.Build it does not stop at the first problem.
func (v *CatalogValidatorImpl) ReportCatalogQuality(f catalog.File) *interfaces.CatalogReport {
	report := &interfaces.CatalogReport{
		DuplicateDiseases:         []string{},
		DiseasesWithoutSymptoms:   []string{},
		DiseasesWithoutTreatments: []string{},
		OrphanDrugKeys:            []string{},
		InvalidSMILES:             []string{},
	}

	seen := make(map[string]bool, len(f.Diseases))
	for _, d := range f.Diseases {
		if strings.TrimSpace(d.Name) == "" {
			report.DiseasesWithoutName++
			continue
		}
		if seen[d.Name] {
			report.DuplicateDiseases = append(report.DuplicateDiseases, d.Name)
		}
		seen[d.Name] = true
		if len(d.Symptoms) == 0 {
			report.DiseasesWithoutSymptoms = append(report.DiseasesWithoutSymptoms, d.Name)
		}
		if len(d.Treatments) == 0 {
			report.DiseasesWithoutTreatments = append(report.DiseasesWithoutTreatments, d.Name)
		}
	}

	keys := make([]string, 0, len(f.Drugs))
	for k := range f.Drugs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, key := range keys {
		if !seen[key] {
			report.OrphanDrugKeys = append(report.OrphanDrugKeys, key)
		}
		for _, drug := range f.Drugs[key] {
			if _, err := chem.Parse(drug.SMILES); err != nil {
				report.InvalidSMILES = append(report.InvalidSMILES, fmt.Sprintf("%s: %s", key, drug.SMILES))
			}
		}
	}

	if HasIssues(report) {
		logging.Warn("Catalog data quality issues detected",
			"duplicates", len(report.DuplicateDiseases),
			"without_name", report.DiseasesWithoutName,
			"without_symptoms", len(report.DiseasesWithoutSymptoms),
			"without_treatments", len(report.DiseasesWithoutTreatments),
			"orphan_drug_keys", len(report.OrphanDrugKeys),
			"invalid_smiles", len(report.InvalidSMILES),
		)
	}
	return report
}

// HasIssues reports whether r lists any problem.
func HasIssues(r *interfaces.CatalogReport) bool {
	return len(r.DuplicateDiseases) > 0 ||
		r.DiseasesWithoutName > 0 ||
		len(r.DiseasesWithoutSymptoms) > 0 ||
		len(r.DiseasesWithoutTreatments) > 0 ||
		len(r.OrphanDrugKeys) > 0 ||
		len(r.InvalidSMILES) > 0
}

// HasBlockingIssues reports problems that make catalog.Build fail.
func HasBlockingIssues(r *interfaces.CatalogReport) bool {
	return len(r.DuplicateDiseases) > 0 || r.DiseasesWithoutName > 0 || len(r.DiseasesWithoutSymptoms) > 0
}
