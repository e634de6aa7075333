// Package breeds serves the breed metadata catalog: listing, lookup by id,
// state and label, government schemes and sustainability comparisons.
package breeds

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"breedd/internal/common/fsutil"
	"breedd/pkg/types"
)

// AnimalTypes is the catalog section order.
var AnimalTypes = []string{"cattle", "buffalo"}

// record is the typed view of one catalog entry. Missing fields keep the
// defaults set by newRecord.
type record struct {
	Name              string   `json:"name"`
	NameHindi         string   `json:"nameHindi"`
	NativeState       []string `json:"nativeState"`
	Image             string   `json:"image"`
	BestFor           []string `json:"bestFor"`
	GovernmentSchemes []string `json:"governmentSchemes"`
	Productivity      struct {
		MilkYieldPerDay string `json:"milkYieldPerDay"`
		LactationYield  string `json:"lactationYield"`
		FatContent      string `json:"fatContent"`
		LactationPeriod string `json:"lactationPeriod"`
	} `json:"productivity"`
	Sustainability struct {
		CarbonScore         float64 `json:"carbonScore"`
		CarbonFootprint     string  `json:"carbonFootprint"`
		HeatTolerance       string  `json:"heatTolerance"`
		DiseaseResistance   string  `json:"diseaseResistance"`
		FeedEfficiency      string  `json:"feedEfficiency"`
		ClimateAdaptability string  `json:"climateAdaptability"`
	} `json:"sustainability"`
	EconomicValue struct {
		PurchaseCost    string `json:"purchaseCost"`
		MaintenanceCost string `json:"maintenanceCost"`
		MarketDemand    string `json:"marketDemand"`
	} `json:"economicValue"`
	Population struct {
		Status             string `json:"status"`
		Trend              string `json:"trend"`
		ConservationStatus string `json:"conservationStatus"`
	} `json:"population"`
}

func newRecord() record {
	var r record
	r.Productivity.MilkYieldPerDay = "N/A"
	r.Productivity.LactationYield = "N/A"
	r.Productivity.FatContent = "N/A"
	r.Productivity.LactationPeriod = "N/A"
	r.Sustainability.CarbonFootprint = "Unknown"
	r.Sustainability.HeatTolerance = "Unknown"
	r.Sustainability.DiseaseResistance = "Unknown"
	r.Sustainability.FeedEfficiency = "Unknown"
	r.Sustainability.ClimateAdaptability = "Unknown"
	r.EconomicValue.PurchaseCost = "N/A"
	r.EconomicValue.MaintenanceCost = "N/A"
	r.EconomicValue.MarketDemand = "Unknown"
	r.Population.Status = "Unknown"
	r.Population.Trend = "unknown"
	r.Population.ConservationStatus = "Unknown"
	return r
}

type entry struct {
	id         string
	animalType string
	raw        json.RawMessage
	rec        record
}

type stateEntry struct {
	name     string
	breedIDs []string
}

type schemeRecord struct {
	Name        string   `json:"name"`
	NameHindi   string   `json:"nameHindi"`
	Description string   `json:"description"`
	Benefits    []string `json:"benefits"`
	Eligibility string   `json:"eligibility"`
	Website     string   `json:"website"`
}

// Catalog is an immutable, document-ordered view of breed_info.json.
// It is safe for concurrent use.
type Catalog struct {
	entries []entry
	byType  map[string][]int
	states  []stateEntry
	schemes []types.Scheme
}

// Empty returns a catalog with no data; every query reports ErrNotLoaded.
func Empty() *Catalog { return &Catalog{byType: map[string][]int{}} }

// Load reads a catalog file.
func Load(path string) (*Catalog, error) {
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open breed data: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a catalog document. Top-level keys other than the animal
// types, stateBreedMapping and governmentSchemes are ignored.
func Parse(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read breed data: %w", err)
	}
	top, err := orderedObject(data)
	if err != nil {
		return nil, fmt.Errorf("parse breed data: %w", err)
	}
	c := Empty()
	for _, f := range top {
		switch f.key {
		case "cattle", "buffalo":
			if err := c.addBreeds(f.key, f.value); err != nil {
				return nil, err
			}
		case "stateBreedMapping":
			if err := c.addStates(f.value); err != nil {
				return nil, err
			}
		case "governmentSchemes":
			if err := c.addSchemes(f.value); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

func (c *Catalog) addBreeds(animalType string, raw json.RawMessage) error {
	fields, err := orderedObject(raw)
	if err != nil {
		return fmt.Errorf("parse %s breeds: %w", animalType, err)
	}
	for _, f := range fields {
		rec := newRecord()
		if err := json.Unmarshal(f.value, &rec); err != nil {
			return fmt.Errorf("parse breed %s/%s: %w", animalType, f.key, err)
		}
		c.byType[animalType] = append(c.byType[animalType], len(c.entries))
		c.entries = append(c.entries, entry{id: f.key, animalType: animalType, raw: f.value, rec: rec})
	}
	return nil
}

func (c *Catalog) addStates(raw json.RawMessage) error {
	fields, err := orderedObject(raw)
	if err != nil {
		return fmt.Errorf("parse stateBreedMapping: %w", err)
	}
	for _, f := range fields {
		var ids []string
		if err := json.Unmarshal(f.value, &ids); err != nil {
			return fmt.Errorf("parse state %s: %w", f.key, err)
		}
		c.states = append(c.states, stateEntry{name: f.key, breedIDs: ids})
	}
	return nil
}

func (c *Catalog) addSchemes(raw json.RawMessage) error {
	fields, err := orderedObject(raw)
	if err != nil {
		return fmt.Errorf("parse governmentSchemes: %w", err)
	}
	for _, f := range fields {
		var s schemeRecord
		if err := json.Unmarshal(f.value, &s); err != nil {
			return fmt.Errorf("parse scheme %s: %w", f.key, err)
		}
		if s.Benefits == nil {
			s.Benefits = []string{}
		}
		c.schemes = append(c.schemes, types.Scheme{
			ID: f.key, Name: s.Name, NameHindi: s.NameHindi, Description: s.Description,
			Benefits: s.Benefits, Eligibility: s.Eligibility, Website: s.Website,
		})
	}
	return nil
}

// Loaded reports whether the catalog holds any data.
func (c *Catalog) Loaded() bool {
	return c != nil && (len(c.entries) > 0 || len(c.states) > 0 || len(c.schemes) > 0)
}

// Len returns the number of breeds.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	AnimalType         string
	State              string
	ConservationStatus string
}

// List returns breed summaries in catalog order, cattle first.
func (c *Catalog) List(f Filter) (types.BreedListResponse, error) {
	if !c.Loaded() {
		return types.BreedListResponse{}, ErrNotLoaded
	}
	animalTypes := AnimalTypes
	if f.AnimalType != "" {
		at := strings.ToLower(f.AnimalType)
		if at != "cattle" && at != "buffalo" {
			return types.BreedListResponse{}, &QueryError{Msg: "animal_type must be 'cattle' or 'buffalo'"}
		}
		animalTypes = []string{at}
	}
	status := strings.ToLower(f.ConservationStatus)
	out := []types.BreedSummary{}
	for _, at := range animalTypes {
		for _, i := range c.byType[at] {
			e := &c.entries[i]
			if f.State != "" && !contains(e.rec.NativeState, f.State) {
				continue
			}
			if status != "" && !strings.Contains(strings.ToLower(e.rec.Population.ConservationStatus), status) {
				continue
			}
			out = append(out, e.summary())
		}
	}
	return types.BreedListResponse{Total: len(out), Breeds: out}, nil
}

// Get returns the entry stored under id, searching cattle then buffalo.
func (c *Catalog) Get(id string) (*types.Breed, error) {
	if !c.Loaded() {
		return nil, ErrNotLoaded
	}
	e := c.lookup(id)
	if e == nil {
		return nil, &NotFoundError{Kind: "breed", Key: id}
	}
	return e.breed(), nil
}

// Find resolves a classifier label to a catalog entry of the given type:
// exact id first, then case-insensitive id, then case-insensitive name.
// It returns nil when nothing matches.
func (c *Catalog) Find(animalType, label string) *types.Breed {
	if c == nil || label == "" {
		return nil
	}
	idx := c.byType[strings.ToLower(animalType)]
	for _, i := range idx {
		if c.entries[i].id == label {
			return c.entries[i].breed()
		}
	}
	for _, i := range idx {
		if strings.EqualFold(c.entries[i].id, label) {
			return c.entries[i].breed()
		}
	}
	for _, i := range idx {
		if strings.EqualFold(c.entries[i].rec.Name, label) {
			return c.entries[i].breed()
		}
	}
	return nil
}

// ByState lists breeds native to a state. The state is matched exactly
// (ignoring case) and then as a substring of a known state name.
func (c *Catalog) ByState(name string) (types.StateBreedsResponse, error) {
	if !c.Loaded() {
		return types.StateBreedsResponse{}, ErrNotLoaded
	}
	st := c.matchState(name)
	if st == nil {
		avail := make([]string, 0, len(c.states))
		for _, s := range c.states {
			avail = append(avail, s.name)
		}
		return types.StateBreedsResponse{}, &NotFoundError{Kind: "state", Key: name, Available: avail}
	}
	out := []types.BreedSummary{}
	for _, id := range st.breedIDs {
		if e := c.lookup(id); e != nil {
			s := e.summary()
			s.NativeStates, s.Image = nil, ""
			out = append(out, s)
		}
	}
	return types.StateBreedsResponse{State: st.name, Total: len(out), Breeds: out}, nil
}

func (c *Catalog) matchState(name string) *stateEntry {
	want := strings.ToLower(name)
	for i := range c.states {
		if strings.ToLower(c.states[i].name) == want {
			return &c.states[i]
		}
	}
	for i := range c.states {
		if strings.Contains(strings.ToLower(c.states[i].name), want) {
			return &c.states[i]
		}
	}
	return nil
}

// States lists every mapped state, sorted by name.
func (c *Catalog) States() (types.StatesResponse, error) {
	if !c.Loaded() {
		return types.StatesResponse{}, ErrNotLoaded
	}
	out := make([]types.StateSummary, 0, len(c.states))
	for _, s := range c.states {
		ids := s.breedIDs
		if ids == nil {
			ids = []string{}
		}
		out = append(out, types.StateSummary{State: s.name, BreedCount: len(ids), BreedIDs: ids})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].State < out[j].State })
	return types.StatesResponse{Total: len(out), States: out}, nil
}

// Schemes lists government schemes in catalog order.
func (c *Catalog) Schemes() (types.SchemesResponse, error) {
	if !c.Loaded() {
		return types.SchemesResponse{}, ErrNotLoaded
	}
	out := make([]types.Scheme, len(c.schemes))
	copy(out, c.schemes)
	return types.SchemesResponse{Total: len(out), Schemes: out}, nil
}

func (c *Catalog) lookup(id string) *entry {
	for _, at := range AnimalTypes {
		for _, i := range c.byType[at] {
			if c.entries[i].id == id {
				return &c.entries[i]
			}
		}
	}
	return nil
}

func (e *entry) displayName() string {
	if e.rec.Name != "" {
		return e.rec.Name
	}
	return e.id
}

func (e *entry) summary() types.BreedSummary {
	states := e.rec.NativeState
	if states == nil {
		states = []string{}
	}
	return types.BreedSummary{
		ID:                 e.id,
		Name:               e.displayName(),
		NameHindi:          e.rec.NameHindi,
		Type:               e.animalType,
		NativeStates:       states,
		MilkYield:          e.rec.Productivity.MilkYieldPerDay,
		ConservationStatus: e.rec.Population.ConservationStatus,
		CarbonScore:        e.rec.Sustainability.CarbonScore,
		Image:              e.rec.Image,
	}
}

func (e *entry) breed() *types.Breed {
	raw := make(json.RawMessage, len(e.raw))
	copy(raw, e.raw)
	return &types.Breed{ID: e.id, AnimalType: e.animalType, Name: e.displayName(), NameHindi: e.rec.NameHindi, Data: raw}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type field struct {
	key   string
	value json.RawMessage
}

// orderedObject splits a JSON object into its members, keeping document order.
func orderedObject(data []byte) ([]field, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected JSON object")
	}
	var out []field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, field{key: key, value: v})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}
