package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestPredictDisease(t *testing.T) {
	code, out, _ := run(t, "predict-disease", "fever", "cough", "fatigue", "body aches")
	require.Equal(t, 0, code)

	var resp struct {
		Disease            string   `json:"disease"`
		Confidence         float64  `json:"confidence"`
		PossibleTreatments []string `json:"possible_treatments"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "influenza", resp.Disease)
	assert.InDelta(t, 1.0, resp.Confidence, 1e-9)
	assert.Equal(t, []string{"antiviral medications", "rest", "fluids"}, resp.PossibleTreatments)
}

func TestPredictDiseaseCorpusMatcher(t *testing.T) {
	code, out, _ := run(t, "--matcher", "corpus", "predict-disease", "sneezing")
	require.Equal(t, 0, code)
	assert.Contains(t, out, `"disease": "Unknown"`)
}

func TestUnknownMatcher(t *testing.T) {
	code, _, stderr := run(t, "--matcher", "fuzzy", "predict-disease", "fever")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error:")
}

func TestDiseaseLookup(t *testing.T) {
	code, out, _ := run(t, "disease", "influenza")
	require.Equal(t, 0, code)
	assert.Contains(t, out, `"name": "influenza"`)

	code, _, stderr := run(t, "disease", "Influenza")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Disease not found")
}

func TestCandidates(t *testing.T) {
	code, out, _ := run(t, "candidates", "influenza")
	require.Equal(t, 0, code)

	var candidates []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &candidates))
	require.Len(t, candidates, 1)
	assert.Equal(t, "Internal Database", candidates[0]["source"])

	code, out, _ = run(t, "candidates", "unknown_disease")
	require.Equal(t, 0, code)
	assert.JSONEq(t, `[]`, out)
}

func TestValidate(t *testing.T) {
	code, out, _ := run(t, "validate", "CCO")
	require.Equal(t, 0, code)
	assert.JSONEq(t, `{"valid": true}`, out)

	code, out, _ = run(t, "validate", "not_a_smiles")
	require.Equal(t, 0, code)
	assert.JSONEq(t, `{"valid": false}`, out)

	code, out, _ = run(t, "validate", "CCO ethanol")
	require.Equal(t, 0, code)
	assert.JSONEq(t, `{"valid": false}`, out)
}

func TestProperties(t *testing.T) {
	code, out, _ := run(t, "properties", "CCO")
	require.Equal(t, 0, code)

	var pred struct {
		Properties map[string]struct {
			Value float64 `json:"value"`
		} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &pred))
	assert.InDelta(t, 46.0419, pred.Properties["molecular_weight"].Value, 1e-3)
	assert.InDelta(t, 20.23, pred.Properties["tpsa"].Value, 1e-2)

	code, _, stderr := run(t, "properties", "C1CC")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Invalid SMILES string")
}

func TestGenerate(t *testing.T) {
	code, out, _ := run(t, "generate", "CCO", "-n", "3")
	require.Equal(t, 0, code)

	var molecules []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &molecules))
	assert.Len(t, molecules, 3)

	code, _, _ = run(t, "generate", "CCO", "-n", "-1")
	assert.Equal(t, 1, code)
}

func TestDepict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ethanol.png")
	code, _, _ := run(t, "depict", "CCO", "-o", path, "--size", "120")
	require.Equal(t, 0, code)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())

	code, _, _ = run(t, "depict", "C(", "-o", path)
	assert.Equal(t, 1, code)
}

func TestCatalogCheck(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`
diseases:
  - name: cold
    symptoms: [sneezing]
drugs:
  flu:
    - smiles: CCO
      molecular_weight: 46.07
      logp: -0.1
      bioavailability: 0.5
      toxicity: 0.1
`), 0o600))

	code, out, _ := run(t, "catalog", "check", good)
	require.Equal(t, 0, code, "warnings do not fail the check")
	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, []any{"cold"}, report["diseases_without_treatments"])
	assert.Equal(t, []any{"flu"}, report["orphan_drug_keys"])

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("diseases:\n  - name: cold\n  - name: cold\n    symptoms: [a]\n"), 0o600))
	code, _, stderr := run(t, "catalog", "check", bad)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "catalog cannot be loaded")
}

func TestCatalogFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("diseases:\n  - name: cold\n    symptoms: [sneezing, runny nose]\n"), 0o600))

	code, out, _ := run(t, "--catalog", path, "predict-disease", "sneezing")
	require.Equal(t, 0, code)
	assert.Contains(t, out, `"disease": "cold"`)

	code, _, _ = run(t, "--catalog", filepath.Join(t.TempDir(), "missing.yaml"), "disease", "cold")
	assert.Equal(t, 1, code)
}
