package breeds

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	c := load(t)

	res, err := c.Compare("gir", "kenkatha")
	require.NoError(t, err)
	require.Len(t, res.Breeds, 2)
	require.Equal(t, "gir", res.ComparisonMetrics.BetterCarbonScore)
	require.InDelta(t, 1.0, res.ComparisonMetrics.CarbonScoreDifference, 1e-9)
	require.True(t, res.ComparisonMetrics.SameAnimalType)
	require.Equal(t, "Gir has better sustainability score (8 vs 7)", res.Recommendation)

	gir := res.Breeds[0]
	require.Equal(t, "10-12 L", gir.Productivity.MilkYieldPerDay)
	require.Equal(t, "N/A", gir.Productivity.FatContent)
	require.Equal(t, "Unknown", gir.Sustainability.CarbonFootprint)
	require.Equal(t, "unknown", gir.Population.Trend)
	require.Equal(t, []string{"dairy"}, gir.BestFor)
	require.Empty(t, gir.GovernmentSchemes)
}

func TestCompareTieFavoursSecond(t *testing.T) {
	c := load(t)
	res, err := c.Compare("sahiwal", "murrah")
	require.NoError(t, err)
	require.Equal(t, "murrah", res.ComparisonMetrics.BetterCarbonScore)
	require.False(t, res.ComparisonMetrics.SameAnimalType)
	require.Equal(t, "Murrah has better sustainability score (8.5 vs 8.5)", res.Recommendation)
}

func TestCompareUnknown(t *testing.T) {
	c := load(t)
	_, err := c.Compare("gir", "jersey")
	require.True(t, IsNotFound(err))
	require.Contains(t, err.Error(), "jersey")
}

func TestCompareMulti(t *testing.T) {
	c := load(t)

	res, err := c.CompareMulti(ParseIDs(" gir, sahiwal ,murrah"))
	require.NoError(t, err)
	require.Equal(t, 3, res.Insights.TotalCompared)
	require.Equal(t, "Sahiwal", res.Insights.BestSustainability, "first maximum wins")
	require.Equal(t, "buffalo", res.Breeds[2].Type)

	_, err = c.CompareMulti([]string{"gir"})
	require.True(t, IsQuery(err))
	_, err = c.CompareMulti([]string{"gir", "sahiwal", "murrah", "kenkatha", "nili-ravi"})
	require.True(t, IsQuery(err))
	_, err = c.CompareMulti([]string{"gir", "jersey"})
	require.True(t, IsNotFound(err))
}

func TestRanking(t *testing.T) {
	c := load(t)

	res, err := c.Ranking("", 0)
	require.NoError(t, err)
	require.Equal(t, 5, res.Total)
	ids := []string{}
	for _, r := range res.Ranking {
		ids = append(ids, r.ID)
	}
	require.Equal(t, []string{"sahiwal", "murrah", "gir", "kenkatha", "nili-ravi"}, ids)

	res, err = c.Ranking("cattle", 2)
	require.NoError(t, err)
	require.Equal(t, 3, res.Total)
	require.Len(t, res.Ranking, 2)

	res, err = c.Ranking("yak", 5)
	require.NoError(t, err)
	require.Zero(t, res.Total)
	require.NotNil(t, res.Ranking)
}
