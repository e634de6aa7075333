package types

import "encoding/json"

// Productivity figures are free text in the catalog ("8-10 L", "N/A").
type Productivity struct {
	MilkYieldPerDay string `json:"milk_yield_per_day"`
	LactationYield  string `json:"lactation_yield"`
	FatContent      string `json:"fat_content"`
	LactationPeriod string `json:"lactation_period"`
}

// Sustainability carries the carbon score used for ranking (higher is better).
type Sustainability struct {
	CarbonScore         float64 `json:"carbon_score"`
	CarbonFootprint     string  `json:"carbon_footprint"`
	HeatTolerance       string  `json:"heat_tolerance"`
	DiseaseResistance   string  `json:"disease_resistance"`
	FeedEfficiency      string  `json:"feed_efficiency"`
	ClimateAdaptability string  `json:"climate_adaptability"`
}

type Economic struct {
	PurchaseCost    string `json:"purchase_cost"`
	MaintenanceCost string `json:"maintenance_cost"`
	MarketDemand    string `json:"market_demand"`
}

type Population struct {
	Status             string `json:"status"`
	Trend              string `json:"trend"`
	ConservationStatus string `json:"conservation_status"`
}

// Breed is a catalog entry. Data holds the entry exactly as stored.
type Breed struct {
	ID         string          `json:"id"`
	AnimalType string          `json:"animal_type"`
	Name       string          `json:"name"`
	NameHindi  string          `json:"name_hindi,omitempty"`
	Data       json.RawMessage `json:"data,omitempty" swaggertype:"object"`
}

// BreedSummary is one row of GET /api/v1/breeds.
type BreedSummary struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	NameHindi          string   `json:"name_hindi"`
	Type               string   `json:"type"`
	NativeStates       []string `json:"native_states,omitempty"`
	MilkYield          string   `json:"milk_yield"`
	ConservationStatus string   `json:"conservation_status"`
	CarbonScore        float64  `json:"carbon_score"`
	Image              string   `json:"image,omitempty"`
}

type BreedListResponse struct {
	Total  int            `json:"total"`
	Breeds []BreedSummary `json:"breeds"`
}

type StateBreedsResponse struct {
	State  string         `json:"state"`
	Total  int            `json:"total"`
	Breeds []BreedSummary `json:"breeds"`
}

type StateSummary struct {
	State      string   `json:"state"`
	BreedCount int      `json:"breed_count"`
	BreedIDs   []string `json:"breed_ids"`
}

type StatesResponse struct {
	Total  int            `json:"total"`
	States []StateSummary `json:"states"`
}

type Scheme struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	NameHindi   string   `json:"name_hindi"`
	Description string   `json:"description"`
	Benefits    []string `json:"benefits"`
	Eligibility string   `json:"eligibility"`
	Website     string   `json:"website"`
}

type SchemesResponse struct {
	Total   int      `json:"total"`
	Schemes []Scheme `json:"schemes"`
}

// BreedMetrics is the comparison projection of a breed.
type BreedMetrics struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	NameHindi         string         `json:"name_hindi"`
	Type              string         `json:"type"`
	NativeStates      []string       `json:"native_states"`
	Productivity      Productivity   `json:"productivity"`
	Sustainability    Sustainability `json:"sustainability"`
	Economic          Economic       `json:"economic"`
	Population        Population     `json:"population"`
	BestFor           []string       `json:"best_for"`
	GovernmentSchemes []string       `json:"government_schemes"`
}

type ComparisonMetrics struct {
	CarbonScoreDifference float64 `json:"carbon_score_difference"`
	BetterCarbonScore     string  `json:"better_carbon_score"`
	SameAnimalType        bool    `json:"same_animal_type"`
}

type CompareResponse struct {
	Breeds            []BreedMetrics    `json:"breeds"`
	ComparisonMetrics ComparisonMetrics `json:"comparison_metrics"`
	Recommendation    string            `json:"recommendation"`
}

type MultiCompareEntry struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Type               string  `json:"type"`
	MilkYield          string  `json:"milk_yield"`
	CarbonScore        float64 `json:"carbon_score"`
	PurchaseCost       string  `json:"purchase_cost"`
	ConservationStatus string  `json:"conservation_status"`
	HeatTolerance      string  `json:"heat_tolerance"`
}

type MultiCompareInsights struct {
	BestSustainability string `json:"best_sustainability"`
	TotalCompared      int    `json:"total_compared"`
}

type MultiCompareResponse struct {
	Breeds   []MultiCompareEntry  `json:"breeds"`
	Insights MultiCompareInsights `json:"insights"`
}

type RankingEntry struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	CarbonScore     float64 `json:"carbon_score"`
	CarbonFootprint string  `json:"carbon_footprint"`
	FeedEfficiency  string  `json:"feed_efficiency"`
}

type RankingResponse struct {
	Ranking []RankingEntry `json:"ranking"`
	Total   int            `json:"total"`
}

// AnalyticsSummary aggregates activity since process start.
type AnalyticsSummary struct {
	TotalPredictions    int64            `json:"total_predictions"`
	CattlePredictions   int64            `json:"cattle_predictions"`
	BuffaloPredictions  int64            `json:"buffalo_predictions"`
	ByAnimalType        map[string]int64 `json:"by_animal_type"`
	ByBreed             map[string]int64 `json:"by_breed"`
	AvgConfidence       float64          `json:"avg_confidence"`
	HighConfidenceCount int64            `json:"high_confidence_count"`
	LowConfidenceCount  int64            `json:"low_confidence_count"`
	AvgProcessingTimeMS float64          `json:"avg_processing_time_ms"`
	DuplicateImages     int64            `json:"duplicate_images"`
	FailedPredictions   int64            `json:"failed_predictions"`
	BreedViews          map[string]int64 `json:"breed_views"`
	ComparisonsMade     int64            `json:"comparisons_made"`
	TopBreeds           []BreedCount     `json:"top_breeds"`
	Since               int64            `json:"since_unix"`
}

type BreedCount struct {
	Breed string `json:"breed"`
	Count int64  `json:"count"`
}
