package breeds

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"breedd/pkg/types"
)

// DefaultRankingLimit is used when Ranking gets a non-positive limit.
const DefaultRankingLimit = 10

// Multi-compare bounds.
const (
	MinCompare = 2
	MaxCompare = 4
)

// Compare puts two breeds side by side. The breed with the strictly higher
// carbon score is the better one; on a tie the second breed is reported.
func (c *Catalog) Compare(id1, id2 string) (types.CompareResponse, error) {
	if !c.Loaded() {
		return types.CompareResponse{}, ErrNotLoaded
	}
	a := c.lookup(id1)
	if a == nil {
		return types.CompareResponse{}, &NotFoundError{Kind: "breed", Key: id1}
	}
	b := c.lookup(id2)
	if b == nil {
		return types.CompareResponse{}, &NotFoundError{Kind: "breed", Key: id2}
	}
	ma, mb := a.metrics(), b.metrics()
	sa, sb := ma.Sustainability.CarbonScore, mb.Sustainability.CarbonScore

	better, rec := id2, recommendation(mb.Name, sb, sa)
	if sa > sb {
		better, rec = id1, recommendation(ma.Name, sa, sb)
	}
	return types.CompareResponse{
		Breeds: []types.BreedMetrics{ma, mb},
		ComparisonMetrics: types.ComparisonMetrics{
			CarbonScoreDifference: sa - sb,
			BetterCarbonScore:     better,
			SameAnimalType:        a.animalType == b.animalType,
		},
		Recommendation: rec,
	}, nil
}

func recommendation(name string, winner, loser float64) string {
	return fmt.Sprintf("%s has better sustainability score (%s vs %s)", name, score(winner), score(loser))
}

func score(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// ParseIDs splits a comma separated id list, trimming blanks.
func ParseIDs(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// CompareMulti summarises 2 to 4 breeds. The best sustainability breed is
// the first one holding the highest carbon score.
func (c *Catalog) CompareMulti(ids []string) (types.MultiCompareResponse, error) {
	if !c.Loaded() {
		return types.MultiCompareResponse{}, ErrNotLoaded
	}
	if len(ids) < MinCompare {
		return types.MultiCompareResponse{}, &QueryError{Msg: "At least 2 breeds required for comparison"}
	}
	if len(ids) > MaxCompare {
		return types.MultiCompareResponse{}, &QueryError{Msg: "Maximum 4 breeds allowed for comparison"}
	}
	out := make([]types.MultiCompareEntry, 0, len(ids))
	best := 0
	for i, id := range ids {
		e := c.lookup(id)
		if e == nil {
			return types.MultiCompareResponse{}, &NotFoundError{Kind: "breed", Key: id}
		}
		out = append(out, types.MultiCompareEntry{
			ID:                 id,
			Name:               e.rec.Name,
			Type:               e.animalType,
			MilkYield:          e.rec.Productivity.MilkYieldPerDay,
			CarbonScore:        e.rec.Sustainability.CarbonScore,
			PurchaseCost:       e.rec.EconomicValue.PurchaseCost,
			ConservationStatus: e.rec.Population.ConservationStatus,
			HeatTolerance:      e.rec.Sustainability.HeatTolerance,
		})
		if out[i].CarbonScore > out[best].CarbonScore {
			best = i
		}
	}
	return types.MultiCompareResponse{
		Breeds:   out,
		Insights: types.MultiCompareInsights{BestSustainability: out[best].Name, TotalCompared: len(out)},
	}, nil
}

// Ranking orders breeds by carbon score, highest first. Equal scores keep
// catalog order. An unknown animal type yields an empty ranking.
func (c *Catalog) Ranking(animalType string, limit int) (types.RankingResponse, error) {
	if !c.Loaded() {
		return types.RankingResponse{}, ErrNotLoaded
	}
	if limit <= 0 {
		limit = DefaultRankingLimit
	}
	animalTypes := AnimalTypes
	if animalType != "" {
		animalTypes = []string{strings.ToLower(animalType)}
	}
	all := []types.RankingEntry{}
	for _, at := range animalTypes {
		for _, i := range c.byType[at] {
			e := &c.entries[i]
			all = append(all, types.RankingEntry{
				ID:              e.id,
				Name:            e.displayName(),
				Type:            at,
				CarbonScore:     e.rec.Sustainability.CarbonScore,
				CarbonFootprint: e.rec.Sustainability.CarbonFootprint,
				FeedEfficiency:  e.rec.Sustainability.FeedEfficiency,
			})
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].CarbonScore > all[j].CarbonScore })
	total := len(all)
	if limit < total {
		all = all[:limit]
	}
	return types.RankingResponse{Ranking: all, Total: total}, nil
}

func (e *entry) metrics() types.BreedMetrics {
	r := &e.rec
	orEmpty := func(s []string) []string {
		if s == nil {
			return []string{}
		}
		return s
	}
	return types.BreedMetrics{
		ID:           e.id,
		Name:         r.Name,
		NameHindi:    r.NameHindi,
		Type:         e.animalType,
		NativeStates: orEmpty(r.NativeState),
		Productivity: types.Productivity{
			MilkYieldPerDay: r.Productivity.MilkYieldPerDay,
			LactationYield:  r.Productivity.LactationYield,
			FatContent:      r.Productivity.FatContent,
			LactationPeriod: r.Productivity.LactationPeriod,
		},
		Sustainability: types.Sustainability{
			CarbonScore:         r.Sustainability.CarbonScore,
			CarbonFootprint:     r.Sustainability.CarbonFootprint,
			HeatTolerance:       r.Sustainability.HeatTolerance,
			DiseaseResistance:   r.Sustainability.DiseaseResistance,
			FeedEfficiency:      r.Sustainability.FeedEfficiency,
			ClimateAdaptability: r.Sustainability.ClimateAdaptability,
		},
		Economic: types.Economic{
			PurchaseCost:    r.EconomicValue.PurchaseCost,
			MaintenanceCost: r.EconomicValue.MaintenanceCost,
			MarketDemand:    r.EconomicValue.MarketDemand,
		},
		Population: types.Population{
			Status:             r.Population.Status,
			Trend:              r.Population.Trend,
			ConservationStatus: r.Population.ConservationStatus,
		},
		BestFor:           orEmpty(r.BestFor),
		GovernmentSchemes: orEmpty(r.GovernmentSchemes),
	}
}
