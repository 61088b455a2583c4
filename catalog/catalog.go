// Package catalog holds the disease and drug-candidate reference data served
// by the API. A Catalog is immutable once built: reloading produces a new
// snapshot instead of mutating the current one.
package catalog

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// DiseaseEntry is one disease of the catalog, keyed by Name.
type DiseaseEntry struct {
	Name        string   `yaml:"name"`
	Symptoms    []string `yaml:"symptoms"`
	Description string   `yaml:"description,omitempty"`
	Category    string   `yaml:"category,omitempty"`
	Treatments  []string `yaml:"treatments,omitempty"`
}

// DrugEntry is a known drug candidate for a disease.
type DrugEntry struct {
	SMILES             string   `yaml:"smiles"`
	Name               string   `yaml:"name,omitempty"`
	MolecularWeight    float64  `yaml:"molecular_weight"`
	LogP               float64  `yaml:"logp"`
	Bioavailability    float64  `yaml:"bioavailability"`
	Toxicity           float64  `yaml:"toxicity"`
	ResearchReferences []string `yaml:"research_references,omitempty"`
}

// File is the on-disk (YAML) representation of a catalog.
type File struct {
	Diseases []DiseaseEntry         `yaml:"diseases"`
	Drugs    map[string][]DrugEntry `yaml:"drugs,omitempty"`
}

// Catalog is an immutable snapshot of diseases, in catalog order, and the
// drug entries attached to each disease key.
type Catalog struct {
	source   string
	loadedAt time.Time
	diseases []DiseaseEntry
	index    map[string]int
	drugs    map[string][]DrugEntry
}

// Build validates f and returns a snapshot that shares no memory with it.
// Empty disease names, empty symptom lists and duplicate names are rejected.
func Build(source string, f File) (*Catalog, error) {
	c := &Catalog{
		source:   source,
		loadedAt: time.Now(),
		diseases: make([]DiseaseEntry, 0, len(f.Diseases)),
		index:    make(map[string]int, len(f.Diseases)),
		drugs:    make(map[string][]DrugEntry, len(f.Drugs)),
	}

	for i, d := range f.Diseases {
		if strings.TrimSpace(d.Name) == "" {
			return nil, fmt.Errorf("disease #%d: empty name", i)
		}
		if len(d.Symptoms) == 0 {
			return nil, fmt.Errorf("disease %q: no symptoms", d.Name)
		}
		if _, dup := c.index[d.Name]; dup {
			return nil, fmt.Errorf("disease %q: duplicate name", d.Name)
		}
		d.Symptoms = slices.Clone(d.Symptoms)
		d.Treatments = slices.Clone(d.Treatments)
		c.index[d.Name] = len(c.diseases)
		c.diseases = append(c.diseases, d)
	}

	for key, entries := range f.Drugs {
		cloned := make([]DrugEntry, len(entries))
		for i, e := range entries {
			e.ResearchReferences = slices.Clone(e.ResearchReferences)
			cloned[i] = e
		}
		c.drugs[key] = cloned
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Build("builtin", DefaultFile())
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
}

// DefaultFile returns the built-in catalog contents.
func DefaultFile() File {
	return File{
		Diseases: []DiseaseEntry{
			{
				Name:        "influenza",
				Symptoms:    []string{"fever", "cough", "fatigue", "body aches"},
				Description: "A viral infection that attacks your respiratory system",
				Treatments:  []string{"antiviral medications", "rest", "fluids"},
			},
			{
				Name:        "type_2_diabetes",
				Symptoms:    []string{"increased thirst", "frequent urination", "fatigue", "blurred vision"},
				Description: "A chronic condition that affects how your body metabolizes sugar",
				Treatments:  []string{"metformin", "lifestyle changes", "insulin therapy"},
			},
		},
		Drugs: map[string][]DrugEntry{
			"influenza": {
				{
					SMILES:          "CC(=O)OC1=CC=C(N(C)CCN(C)C)C=C1",
					Name:            "Example Drug 1",
					MolecularWeight: 250.3,
					LogP:            2.5,
					Bioavailability: 0.8,
					Toxicity:        0.2,
				},
			},
		},
	}
}

// Source describes where the snapshot came from ("builtin" or a file path).
func (c *Catalog) Source() string { return c.source }

// LoadedAt returns when the snapshot was built.
func (c *Catalog) LoadedAt() time.Time { return c.loadedAt }

// Diseases returns the diseases in catalog order. Callers must not modify
// the returned entries.
func (c *Catalog) Diseases() []DiseaseEntry { return c.diseases }

// Disease looks a disease up by its exact, case-sensitive key.
func (c *Catalog) Disease(name string) (DiseaseEntry, bool) {
	i, ok := c.index[name]
	if !ok {
		return DiseaseEntry{}, false
	}
	return c.diseases[i], true
}

// Drugs returns the drug entries for an exact disease key, in catalog order.
func (c *Catalog) Drugs(disease string) []DrugEntry { return c.drugs[disease] }

// DrugKeys returns the disease keys that have drug entries, sorted.
func (c *Catalog) DrugKeys() []string {
	keys := make([]string, 0, len(c.drugs))
	for k := range c.drugs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// DiseaseCount returns the number of diseases.
func (c *Catalog) DiseaseCount() int { return len(c.diseases) }

// DrugCount returns the total number of drug entries.
func (c *Catalog) DrugCount() int {
	n := 0
	for _, entries := range c.drugs {
		n += len(entries)
	}
	return n
}

// File returns a deep copy of the snapshot in its on-disk shape.
func (c *Catalog) File() File {
	f := File{
		Diseases: make([]DiseaseEntry, len(c.diseases)),
		Drugs:    make(map[string][]DrugEntry, len(c.drugs)),
	}
	for i, d := range c.diseases {
		d.Symptoms = slices.Clone(d.Symptoms)
		d.Treatments = slices.Clone(d.Treatments)
		f.Diseases[i] = d
	}
	for key, entries := range c.drugs {
		cloned := make([]DrugEntry, len(entries))
		for i, e := range entries {
			e.ResearchReferences = slices.Clone(e.ResearchReferences)
			cloned[i] = e
		}
		f.Drugs[key] = cloned
	}
	return f
}
