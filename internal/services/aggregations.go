package services

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"ecommerce-dashboard/internal/models"
	"ecommerce-dashboard/internal/render"
)

// RankingSize is the number of categories shown per ranked chart.
const RankingSize = 10

// ReviewScoreRanking averages review scores per category and returns the n
// best and n worst, each ordered highest mean first. Rows without a
// category or a score are skipped.
func ReviewScoreRanking(records []models.OrderRecord, n int) models.ReviewRanking {
	type acc struct {
		sum   float64
		count int
	}
	groups := make(map[string]*acc)
	for _, r := range records {
		if r.Category == "" || !r.HasReview {
			continue
		}
		g := groups[r.Category]
		if g == nil {
			g = &acc{}
			groups[r.Category] = g
		}
		g.sum += r.ReviewScore
		g.count++
	}

	scores := make([]models.CategoryScore, 0, len(groups))
	for category, g := range groups {
		scores = append(scores, models.CategoryScore{
			Category:  category,
			MeanScore: g.sum / float64(g.count),
			Reviews:   g.count,
		})
	}
	slices.SortFunc(scores, func(a, b models.CategoryScore) int {
		if c := cmp.Compare(a.MeanScore, b.MeanScore); c != 0 {
			return c
		}
		return strings.Compare(a.Category, b.Category)
	})

	k := min(max(n, 0), len(scores))
	lowest := slices.Clone(scores[:k])
	slices.Reverse(lowest)
	highest := slices.Clone(scores[len(scores)-k:])
	slices.Reverse(highest)

	return models.ReviewRanking{Highest: highest, Lowest: lowest}
}

// SalesByCategory sums the order-item field per category and returns the
// n largest totals. Equal totals are ordered by category name.
func SalesByCategory(records []models.OrderRecord, n int) []models.CategorySales {
	totals := make(map[string]int64)
	for _, r := range records {
		if r.Category == "" {
			continue
		}
		totals[r.Category] += r.OrderItemID
	}

	sales := make([]models.CategorySales, 0, len(totals))
	for category, orders := range totals {
		sales = append(sales, models.CategorySales{Category: category, Orders: orders})
	}
	slices.SortFunc(sales, func(a, b models.CategorySales) int {
		if c := cmp.Compare(b.Orders, a.Orders); c != 0 {
			return c
		}
		return strings.Compare(a.Category, b.Category)
	})

	return sales[:min(max(n, 0), len(sales))]
}

// CustomerPoints returns one point per located row, duplicates included.
func CustomerPoints(records []models.OrderRecord) []models.GeoPoint {
	points := make([]models.GeoPoint, 0, len(records))
	for _, r := range records {
		if !r.HasLocation {
			continue
		}
		points = append(points, models.GeoPoint{Lat: r.Lat, Lng: r.Lng})
	}
	return points
}

// GeoDensity counts rows per exact coordinate pair. No rounding is
// applied, so nearby but distinct coordinates stay separate bins. Bins are
// returned in first-seen order.
func GeoDensity(records []models.OrderRecord) []models.GeoBin {
	index := make(map[models.GeoPoint]int)
	bins := make([]models.GeoBin, 0)
	for _, r := range records {
		if !r.HasLocation {
			continue
		}
		key := models.GeoPoint{Lat: r.Lat, Lng: r.Lng}
		if i, ok := index[key]; ok {
			bins[i].Count++
			continue
		}
		index[key] = len(bins)
		bins = append(bins, models.GeoBin{Lat: r.Lat, Lng: r.Lng, Count: 1})
	}
	return bins
}

// Summarize totals payment values exactly and sums the order-item field.
func Summarize(records []models.OrderRecord) models.Summary {
	total := decimal.Zero
	var orders int64
	for _, r := range records {
		total = total.Add(r.PaymentValue)
		orders += r.OrderItemID
	}
	return models.Summary{
		TotalSales:  total,
		TotalOrders: orders,
		Records:     len(records),
		SalesLabel:  render.SalesLabel(total),
		OrdersLabel: render.OrdersLabel(orders),
	}
}
