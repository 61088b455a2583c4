package validation

import (
	"strings"
	"testing"

	"github.com/giygas/d3ai-api/apperrors"
	"github.com/giygas/d3ai-api/catalog"
	"github.com/stretchr/testify/assert"
)

func TestValidateSymptoms(t *testing.T) {
	v := NewInputValidator(0)

	tests := []struct {
		name     string
		symptoms []string
		wantErr  bool
	}{
		{"typical", []string{"fever", "body aches"}, false},
		{"empty list", []string{}, false},
		{"accented", []string{"fièvre", "maux de tête"}, false},
		{"too many", make([]string, MaxSymptoms+1), true},
		{"too long", []string{strings.Repeat("a", MaxSymptomLength+1)}, true},
		{"semicolon", []string{"chest pain; fever"}, false},
		{"double dash", []string{"fever -- since monday"}, false},
		{"pipe", []string{"cough | wheeze"}, false},
		{"comment markers", []string{"blurred vision/*night*/"}, false},
		{"long run", []string{"aaaaaaaaaaaaaaaa"}, false},
		{"control character", []string{"fever\x00"}, true},
		{"newline", []string{"fever\ncough"}, true},
		{"invalid utf8", []string{"fi\xe8vre"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateSymptoms(tt.symptoms)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateSMILESParam(t *testing.T) {
	v := NewInputValidator(0)

	assert.NoError(t, v.ValidateSMILESParam("CCO"))
	assert.NoError(t, v.ValidateSMILESParam("not_a_smiles"), "syntax is the toolkit's job")
	assert.NoError(t, v.ValidateSMILESParam("[NH4+].[Cl-]"))

	for _, bad := range []string{"", "C C", "CCO\n", strings.Repeat("C", MaxSMILESLength+1)} {
		err := v.ValidateSMILESParam(bad)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput), "%q", bad)
	}
}

func TestValidateMoleculeCount(t *testing.T) {
	v := NewInputValidator(10)
	assert.Equal(t, 10, v.MaxMolecules())

	assert.NoError(t, v.ValidateMoleculeCount(0))
	assert.NoError(t, v.ValidateMoleculeCount(10))
	assert.Error(t, v.ValidateMoleculeCount(-1))
	assert.Error(t, v.ValidateMoleculeCount(11))

	assert.Equal(t, DefaultMaxMolecules, NewInputValidator(-5).MaxMolecules())
}

func TestValidateName(t *testing.T) {
	v := NewInputValidator(0)

	assert.NoError(t, v.ValidateName("influenza"))
	assert.NoError(t, v.ValidateName("type_2_diabetes"))
	assert.Error(t, v.ValidateName(" "))
	assert.Error(t, v.ValidateName(strings.Repeat("n", MaxNameLength+1)))
	assert.NoError(t, v.ValidateName("covid-19 (long)"))
	assert.Error(t, v.ValidateName("flu\x07"))
}

func TestReportCatalogQualityDefault(t *testing.T) {
	report := NewCatalogValidator().ReportCatalogQuality(catalog.DefaultFile())
	assert.False(t, HasIssues(report))
	assert.False(t, HasBlockingIssues(report))
}

func TestReportCatalogQualityFindsEverything(t *testing.T) {
	f := catalog.File{
		Diseases: []catalog.DiseaseEntry{
			{Name: "cold", Symptoms: []string{"sneezing"}},
			{Name: "cold", Symptoms: []string{"cough"}, Treatments: []string{"rest"}},
			{Name: "", Symptoms: []string{"x"}},
			{Name: "mystery", Treatments: []string{"wait"}},
		},
		Drugs: map[string][]catalog.DrugEntry{
			"cold":   {{SMILES: "CCO"}, {SMILES: "C1CC"}},
			"orphan": {{SMILES: "c1ccccc1"}},
		},
	}

	report := NewCatalogValidator().ReportCatalogQuality(f)

	assert.Equal(t, []string{"cold"}, report.DuplicateDiseases)
	assert.Equal(t, 1, report.DiseasesWithoutName)
	assert.Equal(t, []string{"mystery"}, report.DiseasesWithoutSymptoms)
	assert.Equal(t, []string{"cold"}, report.DiseasesWithoutTreatments)
	assert.Equal(t, []string{"orphan"}, report.OrphanDrugKeys)
	assert.Equal(t, []string{"cold: C1CC"}, report.InvalidSMILES)
	assert.True(t, HasBlockingIssues(report))
}
