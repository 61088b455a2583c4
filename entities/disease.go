// Package entities defines the data-transfer records returned by the D3AI API.
package entities

// Disease is a catalog entry as exposed by the API.
type Disease struct {
	Name        string   `json:"name"`
	Symptoms    []string `json:"symptoms"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
}

// DiseaseResponse is the result of a symptom-based prediction.
type DiseaseResponse struct {
	Disease            string   `json:"disease"`
	Confidence         float64  `json:"confidence"`
	PossibleTreatments []string `json:"possible_treatments"`
	Description        string   `json:"description"`
}
