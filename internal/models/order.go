package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderRecord is one row of the joined orders dataset. The Has* flags mark
// cells that were present in the source file.
type OrderRecord struct {
	ApprovedAt   time.Time
	Category     string
	OrderItemID  int64
	HasOrderItem bool
	PaymentValue decimal.Decimal
	ReviewScore  float64
	HasReview    bool
	Lat          float64
	Lng          float64
	HasLocation  bool
}

type CategoryScore struct {
	Category  string  `json:"category"`
	MeanScore float64 `json:"mean_score"`
	Reviews   int     `json:"reviews"`
}

// ReviewRanking holds the best and worst rated categories, each ordered
// highest mean first.
type ReviewRanking struct {
	Highest []CategoryScore `json:"highest"`
	Lowest  []CategoryScore `json:"lowest"`
}

type CategorySales struct {
	Category string `json:"category"`
	Orders   int64  `json:"orders"`
}

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type GeoBin struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Count int     `json:"count"`
}

type Summary struct {
	TotalSales  decimal.Decimal `json:"total_sales"`
	TotalOrders int64           `json:"total_orders"`
	Records     int             `json:"records"`
	SalesLabel  string          `json:"sales_label"`
	OrdersLabel string          `json:"orders_label"`
}

// Dashboard is the full artifact set rendered for one date range.
type Dashboard struct {
	Range      DateRange       `json:"range"`
	Available  DateRange       `json:"available"`
	Summary    Summary         `json:"summary"`
	Reviews    ReviewRanking   `json:"reviews"`
	Sales      []CategorySales `json:"sales"`
	Points     []GeoPoint      `json:"points"`
	Density    []GeoBin        `json:"density"`
	ClusterMap MapView         `json:"cluster_map"`
	HeatMap    MapView         `json:"heat_map"`
}
