package entities

// DrugCandidate is a catalog drug returned for a disease lookup.
type DrugCandidate struct {
	SMILES             string   `json:"smiles"`
	Name               string   `json:"name,omitempty"`
	MolecularWeight    float64  `json:"molecular_weight"`
	LogP               float64  `json:"logp"`
	Bioavailability    float64  `json:"bioavailability"`
	Toxicity           float64  `json:"toxicity"`
	Source             string   `json:"source"`
	Confidence         float64  `json:"confidence"`
	ResearchReferences []string `json:"research_references,omitempty"`
}

// DrugProperty is a single computed molecular property.
type DrugProperty struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Unit       string  `json:"unit,omitempty"`
	Confidence float64 `json:"confidence"`
}

// DrugPrediction holds the properties computed for one molecule.
type DrugPrediction struct {
	SMILES           string                  `json:"smiles"`
	Properties       map[string]DrugProperty `json:"properties"`
	VisualizationURL string                  `json:"visualization_url,omitempty"`
}

// GeneratedMolecule is one molecule produced from a seed structure.
type GeneratedMolecule struct {
	SMILES       string                  `json:"smiles"`
	ParentSMILES string                  `json:"parent_smiles"`
	Similarity   float64                 `json:"similarity"`
	Properties   map[string]DrugProperty `json:"properties"`
	Valid        bool                    `json:"valid"`
}

// StructureValidation is the payload of the validate-structure endpoint.
type StructureValidation struct {
	Valid bool `json:"valid"`
}
