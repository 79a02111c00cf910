package gamedata

import (
	"errors"
	"fmt"
)

// CasesFile represents the structure of cases.json.
type CasesFile struct {
	Cases []CaseDef `json:"cases"`
}

// CaseRegistry holds the bundled cases, indexed by id.
type CaseRegistry struct {
	cases []CaseDef
	byID  map[string]int
}

// NewCaseRegistry creates a registry from loaded case definitions.
// Defaults are applied to every case.
func NewCaseRegistry(cases []CaseDef) *CaseRegistry {
	r := &CaseRegistry{
		cases: make([]CaseDef, len(cases)),
		byID:  make(map[string]int, len(cases)),
	}
	for i, c := range cases {
		c.ApplyDefaults()
		r.cases[i] = c
		r.byID[c.ID] = i
	}
	return r
}

// LoadCaseRegistry loads and validates the embedded cases.json.
func LoadCaseRegistry() (*CaseRegistry, error) {
	file, err := Load[CasesFile]("cases.json")
	if err != nil {
		return nil, err
	}
	if len(file.Cases) == 0 {
		return nil, errors.New("no cases loaded from cases.json")
	}
	r := NewCaseRegistry(file.Cases)
	for i := range r.cases {
		if err := r.cases[i].Validate(); err != nil {
			return nil, fmt.Errorf("case %q: %w", r.cases[i].ID, err)
		}
	}
	return r, nil
}

// MustLoadCaseRegistry loads the registry, panicking on error.
// Use this only where bundled content must be present.
func MustLoadCaseRegistry() *CaseRegistry {
	r, err := LoadCaseRegistry()
	if err != nil {
		panic(err)
	}
	return r
}

// GetByID returns a copy of the case with the given id.
func (r *CaseRegistry) GetByID(id string) (CaseDef, bool) {
	i, ok := r.byID[id]
	if !ok {
		return CaseDef{}, false
	}
	return r.cases[i], true
}

// Default returns the first bundled case.
func (r *CaseRegistry) Default() CaseDef {
	return r.cases[0]
}

// IDs returns the ids of all cases in file order.
func (r *CaseRegistry) IDs() []string {
	ids := make([]string, len(r.cases))
	for i, c := range r.cases {
		ids[i] = c.ID
	}
	return ids
}

// Count returns the number of cases.
func (r *CaseRegistry) Count() int {
	return len(r.cases)
}
