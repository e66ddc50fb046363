package templates

import (
	"encoding/json"
	"fmt"
	"net/url"

	"ecommerce-dashboard/internal/models"
	"ecommerce-dashboard/internal/render"
)

const (
	Title = "Analysis E-Commerce"

	SummaryID = "summary-tiles"
	ChartsID  = "charts"
)

type ChartImage struct {
	Name  string
	Title string
	Src   string
}

type PageData struct {
	Range      models.DateRange
	Available  models.DateRange
	Summary    models.Summary
	Charts     []ChartImage
	ClusterMap models.MapView
	HeatMap    models.MapView
}

func NewPageData(d *models.Dashboard) PageData {
	return PageData{
		Range:      d.Range,
		Available:  d.Available,
		Summary:    d.Summary,
		Charts:     ChartImages(d.Range),
		ClusterMap: d.ClusterMap,
		HeatMap:    d.HeatMap,
	}
}

var chartTitles = map[string]string{
	render.ChartReviewHighest:   "Highest average review scores",
	render.ChartReviewLowest:    "Lowest average review scores",
	render.ChartSalesByCategory: "Sales by product category",
}

// ChartImages lists the chart image sources for r. The query string makes
// each URL change with the range so browsers refetch the image.
func ChartImages(r models.DateRange) []ChartImage {
	images := make([]ChartImage, 0, len(render.ChartNames))
	for _, name := range render.ChartNames {
		images = append(images, ChartImage{Name: name, Title: chartTitles[name], Src: ChartSrc(name, r)})
	}
	return images
}

func ChartSrc(name string, r models.DateRange) string {
	q := url.Values{}
	q.Set("start", r.Start.Format(models.DateLayout))
	q.Set("end", r.End.Format(models.DateLayout))
	return "/charts/" + name + ".png?" + q.Encode()
}

var conclusion = []string{
	"The majority of products purchased by customers weigh less than 1 kilogram. This could indicate a preference for lightweight items or digital goods.",
	"In terms of review scores, the top three categories are flowers, children’s fashion clothes, and male fashion clothing. These categories consistently receive high ratings from customers. On the other hand, home comfort (2nd category), furniture/mattresses/upholstery, and fashion sport are the three categories with the lowest average review scores.",
	"The most popular product categories among Brazilian customers are bed/bath/table, furniture/decor, and health/beauty. These categories may represent essential and frequently used items in daily life.",
	"Customers are widely distributed across more than half of Brazil, with a significant concentration near Sao Paulo. This city alone ordered for nearly 90,000 customers between 2017 and 2018.",
	"August is the peak month for purchases, which could be related to specific events, holidays, or seasonal shopping habits. Weekdays are the most popular days for making purchases. This could be due to the availability of customers or specific shopping habits during the workweek.",
	"Afternoon is the most popular time of day for customers to make purchases. This could be when customers have free time or when they are most likely to engage in online shopping.",
	"The majority of customers prefer to use credit cards for their purchases. This could indicate a preference for the convenience and security offered by credit card transactions.",
}

// Signals is the Datastar signal set of the page.
type Signals struct {
	StartDate string       `json:"startDate"`
	EndDate   string       `json:"endDate"`
	Points    [][2]float64 `json:"_points"`
	Heat      [][3]float64 `json:"_heat"`
}

const mapConfigID = "map-config"

// MapConfig is read by the page script to build both maps.
type MapConfig struct {
	Cluster models.MapView `json:"cluster"`
	Heat    models.MapView `json:"heat"`
}

// MinDate and MaxDate bound the date inputs to the loaded dataset.
func (p PageData) MinDate() string { return p.Available.Start.Format(models.DateLayout) }

func (p PageData) MaxDate() string { return p.Available.End.Format(models.DateLayout) }

// SignalsJSON is the initial signal set of the page. Underscore signals stay
// in the browser and are never sent back with requests.
func (p PageData) SignalsJSON() (string, error) {
	b, err := json.Marshal(Signals{
		StartDate: p.Range.Start.Format(models.DateLayout),
		EndDate:   p.Range.End.Format(models.DateLayout),
		Points:    [][2]float64{},
		Heat:      [][3]float64{},
	})
	if err != nil {
		return "", fmt.Errorf("marshal page signals: %w", err)
	}
	return string(b), nil
}

func (p PageData) MapConfig() MapConfig {
	return MapConfig{Cluster: p.ClusterMap, Heat: p.HeatMap}
}
