package services

import (
	"ecommerce-dashboard/internal/dataset"
	"ecommerce-dashboard/internal/models"
	"ecommerce-dashboard/internal/render"
)

// Build filters table to r and computes every dashboard artifact from the
// filtered rows. An empty view yields empty aggregates and zero totals.
func Build(table *dataset.Table, r models.DateRange) *models.Dashboard {
	available, _ := table.Bounds()
	records := table.Filter(r).Records()

	return &models.Dashboard{
		Range:      models.NewDateRange(r.Start, r.End),
		Available:  available,
		Summary:    Summarize(records),
		Reviews:    ReviewScoreRanking(records, RankingSize),
		Sales:      SalesByCategory(records, RankingSize),
		Points:     CustomerPoints(records),
		Density:    GeoDensity(records),
		ClusterMap: render.ClusterMap(),
		HeatMap:    render.HeatMap(),
	}
}
