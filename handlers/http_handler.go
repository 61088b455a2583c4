// Package handlers implements the HTTP endpoints of the D3AI API on top of
// the disease and drug services.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/giygas/d3ai-api/apperrors"
	"github.com/giygas/d3ai-api/entities"
	"github.com/giygas/d3ai-api/interfaces"
	"github.com/giygas/d3ai-api/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	// DefaultMoleculeCount is used when n_molecules is not given.
	DefaultMoleculeCount = 5

	APIVersion = "1.0.0"

	msgInvalidSMILES    = "Invalid SMILES string"
	msgPredictionFailed = "Failed to predict properties"
	msgInternal         = "internal server error"
)

var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

// HTTPHandlerImpl implements interfaces.HTTPHandler.
type HTTPHandlerImpl struct {
	diseases  interfaces.DiseaseService
	drugs     interfaces.DrugService
	validator interfaces.InputValidator
	health    interfaces.HealthChecker
}

// NewHTTPHandler creates a handler with injected dependencies.
func NewHTTPHandler(
	diseases interfaces.DiseaseService,
	drugs interfaces.DrugService,
	validator interfaces.InputValidator,
	health interfaces.HealthChecker,
) *HTTPHandlerImpl {
	return &HTTPHandlerImpl{
		diseases:  diseases,
		drugs:     drugs,
		validator: validator,
		health:    health,
	}
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
	Detail  string `json:"detail"`
}

// RootResponse is served on GET /.
type RootResponse struct {
	Message    string `json:"message"`
	Version    string `json:"version"`
	DocsURL    string `json:"docs_url"`
	OpenAPIURL string `json:"openapi_url"`
}

// RespondWithJSON writes payload as JSON with the given status code.
func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Warn("Failed to write response", "error", err)
	}
}

// RespondWithError writes an ErrorResponse.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
		Code:    code,
		Detail:  message,
	})
}

// StatusForError maps an error to its HTTP status from its kind alone.
func StatusForError(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondWithAppError replies with the status of err. Server-side failures
// are logged with the request ID and answered with a generic message.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	code := StatusForError(err)
	if code >= http.StatusInternalServerError {
		logging.Error("Request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"path", r.URL.Path,
			"kind", apperrors.KindOf(err).String(),
			"error", err,
		)
		RespondWithError(w, code, msgInternal)
		return
	}
	RespondWithError(w, code, apperrors.MessageOf(err))
}

// Root serves the welcome payload.
func (h *HTTPHandlerImpl) Root(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, RootResponse{
		Message:    "Welcome to D3AI API",
		Version:    APIVersion,
		DocsURL:    "/docs",
		OpenAPIURL: "/docs/openapi.yaml",
	})
}

// PredictDisease reads a JSON array of symptoms and returns the best match.
// An object of the form {"symptoms": [...]} is accepted too.
func (h *HTTPHandlerImpl) PredictDisease(w http.ResponseWriter, r *http.Request) {
	symptoms, err := decodeSymptoms(r.Body)
	if err != nil {
		logging.Warn("Malformed predict-disease body", "error", err)
		RespondWithError(w, http.StatusBadRequest, "Request body must be a JSON array of strings")
		return
	}
	if err := h.validator.ValidateSymptoms(symptoms); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	resp, err := h.diseases.PredictDisease(r.Context(), symptoms)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

// GetDisease returns one catalog disease by exact name.
func (h *HTTPHandlerImpl) GetDisease(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.validator.ValidateName(name); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	d, err := h.diseases.GetDiseaseInfo(r.Context(), name)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, d)
}

// DrugCandidates returns the catalog drugs for a disease, possibly none.
func (h *HTTPHandlerImpl) DrugCandidates(w http.ResponseWriter, r *http.Request) {
	disease := chi.URLParam(r, "disease")
	if err := h.validator.ValidateName(disease); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	candidates, err := h.drugs.SearchCandidates(r.Context(), disease)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if candidates == nil {
		candidates = []entities.DrugCandidate{}
	}
	RespondWithJSON(w, http.StatusOK, candidates)
}

// GenerateMolecules returns n_molecules molecules derived from smiles.
func (h *HTTPHandlerImpl) GenerateMolecules(w http.ResponseWriter, r *http.Request) {
	params, err := readMoleculeParams(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	n := DefaultMoleculeCount
	if params.NMolecules != nil {
		n = *params.NMolecules
	}
	if err := h.validator.ValidateSMILESParam(params.SMILES); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if err := h.validator.ValidateMoleculeCount(n); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if !h.drugs.ValidateStructure(r.Context(), params.SMILES) {
		RespondWithError(w, http.StatusBadRequest, msgInvalidSMILES)
		return
	}

	molecules, err := h.drugs.GenerateMolecules(r.Context(), params.SMILES, n)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if molecules == nil {
		molecules = []entities.GeneratedMolecule{}
	}
	RespondWithJSON(w, http.StatusOK, molecules)
}

// PredictProperties computes the descriptors of smiles.
func (h *HTTPHandlerImpl) PredictProperties(w http.ResponseWriter, r *http.Request) {
	params, err := readMoleculeParams(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if err := h.validator.ValidateSMILESParam(params.SMILES); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if !h.drugs.ValidateStructure(r.Context(), params.SMILES) {
		RespondWithError(w, http.StatusBadRequest, msgInvalidSMILES)
		return
	}

	prediction, err := h.drugs.PredictProperties(r.Context(), params.SMILES)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindInvalidInput) {
			RespondWithError(w, http.StatusBadRequest, msgPredictionFailed)
			return
		}
		respondWithAppError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, prediction)
}

// ValidateStructure reports whether smiles is a valid structure. Only a
// missing smiles is a client error; any other string gets a verdict.
func (h *HTTPHandlerImpl) ValidateStructure(w http.ResponseWriter, r *http.Request) {
	params, err := readMoleculeParams(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if params.SMILES == "" {
		RespondWithError(w, http.StatusBadRequest, "smiles is required")
		return
	}

	valid := false
	if h.validator.ValidateSMILESParam(params.SMILES) == nil {
		valid = h.drugs.ValidateStructure(r.Context(), params.SMILES)
	}
	RespondWithJSON(w, http.StatusOK, entities.StructureValidation{Valid: valid})
}

// HealthCheck serves the health report.
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, details, code := h.health.HealthCheck()
	body := make(map[string]any, len(details)+1)
	for k, v := range details {
		body[k] = v
	}
	body["status"] = status
	RespondWithJSON(w, code, body)
}

// moleculeParams are the inputs of the molecule endpoints.
type moleculeParams struct {
	SMILES     string `json:"smiles"`
	NMolecules *int   `json:"n_molecules,omitempty"`
}

// readMoleculeParams takes smiles and n_molecules from the query string, or
// from a JSON object body when the query has no smiles.
func readMoleculeParams(r *http.Request) (moleculeParams, error) {
	const op = "handlers.readMoleculeParams"
	var p moleculeParams
	q := r.URL.Query()

	if q.Has("smiles") {
		p.SMILES = q.Get("smiles")
		if raw := q.Get("n_molecules"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return p, apperrors.InvalidInput(op, "n_molecules must be an integer", err)
			}
			p.NMolecules = &n
		}
		return p, nil
	}

	if r.Body == nil {
		return p, nil
	}
	err := json.NewDecoder(r.Body).Decode(&p)
	switch {
	case errors.Is(err, io.EOF):
		return moleculeParams{}, nil
	case err != nil:
		return moleculeParams{}, apperrors.InvalidInput(op, "Request body must be a JSON object", err)
	}
	if raw := q.Get("n_molecules"); raw != "" && p.NMolecules == nil {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return p, apperrors.InvalidInput(op, "n_molecules must be an integer", err)
		}
		p.NMolecules = &n
	}
	return p, nil
}

func decodeSymptoms(body io.Reader) ([]string, error) {
	if body == nil {
		return nil, errors.New("empty body")
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	var symptoms []string
	if err := json.Unmarshal(raw, &symptoms); err == nil && symptoms != nil {
		return symptoms, nil
	}
	var wrapped struct {
		Symptoms []string `json:"symptoms"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Symptoms == nil {
		return nil, errors.New("missing symptoms")
	}
	return wrapped.Symptoms, nil
}
