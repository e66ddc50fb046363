package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecommerce-dashboard/internal/dataset"
	"ecommerce-dashboard/internal/models"
)

func reviewed(category string, score float64) models.OrderRecord {
	return models.OrderRecord{Category: category, ReviewScore: score, HasReview: true}
}

func located(lat, lng float64) models.OrderRecord {
	return models.OrderRecord{Lat: lat, Lng: lng, HasLocation: true}
}

func categories[T any](items []T, name func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, name(it))
	}
	return out
}

func scoreCategory(s models.CategoryScore) string { return s.Category }

func TestReviewScoreRanking_Means(t *testing.T) {
	records := []models.OrderRecord{
		reviewed("A", 5), reviewed("A", 3), reviewed("B", 1),
	}

	got := ReviewScoreRanking(records, RankingSize)

	require.Len(t, got.Highest, 2)
	assert.Equal(t, "A", got.Highest[0].Category)
	assert.InDelta(t, 4.0, got.Highest[0].MeanScore, 1e-9)
	assert.Equal(t, 2, got.Highest[0].Reviews)
	assert.Equal(t, "B", got.Highest[1].Category)
	assert.InDelta(t, 1.0, got.Highest[1].MeanScore, 1e-9)

	assert.Equal(t, []string{"A", "B"}, categories(got.Lowest, scoreCategory))
}

func TestReviewScoreRanking_TopAndBottom(t *testing.T) {
	var records []models.OrderRecord
	for i := range 12 {
		records = append(records, reviewed(fmt.Sprintf("c%02d", i), float64(i)))
	}

	got := ReviewScoreRanking(records, 3)

	assert.Equal(t, []string{"c11", "c10", "c09"}, categories(got.Highest, scoreCategory))
	assert.Equal(t, []string{"c02", "c01", "c00"}, categories(got.Lowest, scoreCategory))
}

func TestReviewScoreRanking_TiesOrderedByCategory(t *testing.T) {
	records := []models.OrderRecord{
		reviewed("zeta", 4), reviewed("alpha", 4), reviewed("mid", 4),
	}

	first := ReviewScoreRanking(records, RankingSize)
	shuffled := []models.OrderRecord{records[2], records[0], records[1]}
	second := ReviewScoreRanking(shuffled, RankingSize)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"zeta", "mid", "alpha"}, categories(first.Highest, scoreCategory))
}

func TestReviewScoreRanking_SkipsMissing(t *testing.T) {
	records := []models.OrderRecord{
		reviewed("", 5),
		{Category: "unscored"},
		reviewed("scored", 2),
	}

	got := ReviewScoreRanking(records, RankingSize)

	assert.Equal(t, []string{"scored"}, categories(got.Highest, scoreCategory))
	assert.Equal(t, []string{"scored"}, categories(got.Lowest, scoreCategory))
}

func TestReviewScoreRanking_Empty(t *testing.T) {
	got := ReviewScoreRanking(nil, RankingSize)
	assert.Empty(t, got.Highest)
	assert.Empty(t, got.Lowest)
	assert.NotNil(t, got.Highest)

	got = ReviewScoreRanking([]models.OrderRecord{reviewed("A", 3)}, 0)
	assert.Empty(t, got.Highest)
	assert.Empty(t, got.Lowest)
}

func TestSalesByCategory(t *testing.T) {
	records := []models.OrderRecord{
		{Category: "toys", OrderItemID: 1},
		{Category: "toys", OrderItemID: 3},
		{Category: "books", OrderItemID: 2},
		{Category: "art", OrderItemID: 2},
		{Category: "", OrderItemID: 9},
		{Category: "garden"},
	}

	got := SalesByCategory(records, RankingSize)

	assert.Equal(t, []models.CategorySales{
		{Category: "toys", Orders: 4},
		{Category: "art", Orders: 2},
		{Category: "books", Orders: 2},
		{Category: "garden", Orders: 0},
	}, got)
}

func TestSalesByCategory_Truncates(t *testing.T) {
	var records []models.OrderRecord
	for i := range 15 {
		records = append(records, models.OrderRecord{Category: fmt.Sprintf("c%02d", i), OrderItemID: int64(i + 1)})
	}

	got := SalesByCategory(records, RankingSize)

	require.Len(t, got, RankingSize)
	assert.Equal(t, "c14", got[0].Category)
	assert.Equal(t, "c05", got[RankingSize-1].Category)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Orders, got[i].Orders)
	}
}

func TestCustomerPoints(t *testing.T) {
	records := []models.OrderRecord{
		located(-23.5, -46.6),
		{Category: "no location"},
		located(-23.5, -46.6),
		located(-3.1, -60.0),
	}

	got := CustomerPoints(records)

	assert.Equal(t, []models.GeoPoint{
		{Lat: -23.5, Lng: -46.6},
		{Lat: -23.5, Lng: -46.6},
		{Lat: -3.1, Lng: -60.0},
	}, got)
	assert.Empty(t, CustomerPoints(nil))
}

func TestGeoDensity_ExactCoordinates(t *testing.T) {
	records := []models.OrderRecord{
		located(-15, -47),
		located(-15, -47.0001),
		located(-15, -47),
		{},
		located(-15, -47),
	}

	got := GeoDensity(records)

	assert.Equal(t, []models.GeoBin{
		{Lat: -15, Lng: -47, Count: 3},
		{Lat: -15, Lng: -47.0001, Count: 1},
	}, got)
}

func TestGeoDensity_CountsMatchPoints(t *testing.T) {
	var records []models.OrderRecord
	for i := range 50 {
		records = append(records, located(float64(i%7), float64(i%3)))
	}

	total := 0
	for _, bin := range GeoDensity(records) {
		total += bin.Count
	}
	assert.Equal(t, len(CustomerPoints(records)), total)
}

func TestSummarize(t *testing.T) {
	records := []models.OrderRecord{
		{PaymentValue: decimal.RequireFromString("10.10"), OrderItemID: 1},
		{PaymentValue: decimal.RequireFromString("20.20"), OrderItemID: 2},
		{PaymentValue: decimal.RequireFromString("30.30"), OrderItemID: 1},
	}

	got := Summarize(records)

	assert.True(t, got.TotalSales.Equal(decimal.RequireFromString("60.60")), got.TotalSales.String())
	assert.Equal(t, int64(4), got.TotalOrders)
	assert.Equal(t, 3, got.Records)
	assert.Equal(t, "R$ 61", got.SalesLabel)
	assert.Equal(t, "4 Orders", got.OrdersLabel)
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil)

	assert.True(t, got.TotalSales.IsZero())
	assert.Zero(t, got.TotalOrders)
	assert.Equal(t, "R$ 0", got.SalesLabel)
	assert.Equal(t, "0 Orders", got.OrdersLabel)
}

func TestBuild(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2018, 1, d, 10, 0, 0, 0, time.UTC) }
	table := dataset.NewTable([]models.OrderRecord{
		{ApprovedAt: day(1), Category: "toys", OrderItemID: 1, PaymentValue: decimal.NewFromInt(10), ReviewScore: 5, HasReview: true, Lat: -15, Lng: -47, HasLocation: true},
		{ApprovedAt: day(2), Category: "toys", OrderItemID: 2, PaymentValue: decimal.NewFromInt(20), ReviewScore: 3, HasReview: true, Lat: -15, Lng: -47, HasLocation: true},
		{ApprovedAt: day(3), Category: "books", OrderItemID: 1, PaymentValue: decimal.NewFromInt(30), ReviewScore: 1, HasReview: true},
	})

	r := models.NewDateRange(day(1), day(2))
	d := Build(table, r)

	assert.Equal(t, r, d.Range)
	assert.Equal(t, models.NewDateRange(day(1), day(3)), d.Available)
	assert.Equal(t, 2, d.Summary.Records)
	assert.Equal(t, "R$ 30", d.Summary.SalesLabel)
	assert.Equal(t, []models.CategorySales{{Category: "toys", Orders: 3}}, d.Sales)
	assert.Len(t, d.Points, 2)
	assert.Equal(t, []models.GeoBin{{Lat: -15, Lng: -47, Count: 2}}, d.Density)
	assert.Equal(t, 3.5, d.ClusterMap.Zoom)
	assert.Equal(t, 4.5, d.HeatMap.Zoom)
}

func TestBuild_EmptyView(t *testing.T) {
	table := dataset.NewTable([]models.OrderRecord{
		{ApprovedAt: time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC), Category: "toys", OrderItemID: 1},
	})

	outside := models.NewDateRange(
		time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2019, 2, 1, 0, 0, 0, 0, time.UTC),
	)
	inverted := models.NewDateRange(
		time.Date(2018, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC),
	)

	for _, r := range []models.DateRange{outside, inverted} {
		d := Build(table, r)
		assert.Zero(t, d.Summary.Records)
		assert.Equal(t, "R$ 0", d.Summary.SalesLabel)
		assert.Empty(t, d.Sales)
		assert.Empty(t, d.Reviews.Highest)
		assert.Empty(t, d.Points)
		assert.Empty(t, d.Density)
	}
}

func BenchmarkBuild(b *testing.B) {
	start := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
	records := make([]models.OrderRecord, 100000)
	for i := range records {
		records[i] = models.OrderRecord{
			ApprovedAt:   start.Add(time.Duration(i) * time.Minute),
			Category:     fmt.Sprintf("category_%d", i%70),
			OrderItemID:  int64(i%3 + 1),
			PaymentValue: decimal.NewFromInt(int64(i % 500)),
			ReviewScore:  float64(i%5 + 1),
			HasReview:    true,
			Lat:          -15 - float64(i%40)/10,
			Lng:          -47 - float64(i%30)/10,
			HasLocation:  true,
		}
	}
	table := dataset.NewTable(records)
	bounds, _ := table.Bounds()

	for b.Loop() {
		_ = Build(table, bounds)
	}
}
