// Package interfaces defines the contracts between the layers of the D3AI API
// so handlers, services and background jobs can be tested in isolation.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/giygas/d3ai-api/catalog"
	"github.com/giygas/d3ai-api/entities"
)

// CatalogReport summarizes data-quality issues found in a catalog file.
type CatalogReport struct {
	DuplicateDiseases         []string `json:"duplicate_diseases"`
	DiseasesWithoutName       int      `json:"diseases_without_name"`
	DiseasesWithoutSymptoms   []string `json:"diseases_without_symptoms"`
	DiseasesWithoutTreatments []string `json:"diseases_without_treatments"`
	OrphanDrugKeys            []string `json:"orphan_drug_keys"` // drug keys with no matching disease
	InvalidSMILES             []string `json:"invalid_smiles"`   // "disease: smiles" pairs the toolkit rejects
}

// CatalogStore holds the current catalog snapshot. Readers never lock:
// reloading swaps in a new snapshot.
type CatalogStore interface {
	Snapshot() *catalog.Catalog
	Replace(c *catalog.Catalog)
	GetLastUpdated() time.Time
	GetServerStartTime() time.Time

	BeginUpdate() bool
	EndUpdate()
	IsUpdating() bool

	// SetReloadError records the outcome of the last reload; nil clears it.
	SetReloadError(err error)
	LastReloadError() error
}

// CatalogSource produces catalog snapshots, from a file or built-in data.
type CatalogSource interface {
	Load(ctx context.Context) (*catalog.Catalog, error)
	Name() string
}

// DiseaseService matches symptoms against the catalog.
type DiseaseService interface {
	PredictDisease(ctx context.Context, symptoms []string) (entities.DiseaseResponse, error)
	GetDiseaseInfo(ctx context.Context, name string) (entities.Disease, error)
}

// DrugService looks up drug candidates and computes molecule properties.
type DrugService interface {
	SearchCandidates(ctx context.Context, disease string) ([]entities.DrugCandidate, error)
	ValidateStructure(ctx context.Context, smiles string) bool
	PredictProperties(ctx context.Context, smiles string) (*entities.DrugPrediction, error)
	GenerateMolecules(ctx context.Context, seed string, n int) ([]entities.GeneratedMolecule, error)
}

// Scheduler runs the background catalog jobs.
type Scheduler interface {
	Start() error
	Stop()
}

// HTTPHandler serves the API endpoints.
type HTTPHandler interface {
	Root(w http.ResponseWriter, r *http.Request)
	PredictDisease(w http.ResponseWriter, r *http.Request)
	GetDisease(w http.ResponseWriter, r *http.Request)
	DrugCandidates(w http.ResponseWriter, r *http.Request)
	GenerateMolecules(w http.ResponseWriter, r *http.Request)
	PredictProperties(w http.ResponseWriter, r *http.Request)
	ValidateStructure(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker reports service health and the HTTP status to serve it with.
type HealthChecker interface {
	HealthCheck() (status string, details map[string]any, httpStatus int)
}

// InputValidator checks request parameters before they reach the services.
type InputValidator interface {
	ValidateSymptoms(symptoms []string) error
	ValidateSMILESParam(smiles string) error
	ValidateMoleculeCount(n int) error
	ValidateName(name string) error
}

// CatalogValidator inspects catalog contents for data-quality issues.
type CatalogValidator interface {
	ReportCatalogQuality(f catalog.File) *CatalogReport
}
