package render

import "ecommerce-dashboard/internal/models"

const (
	darkMatterTiles       = "https://{s}.basemaps.cartocdn.com/dark_all/{z}/{x}/{y}{r}.png"
	darkMatterAttribution = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors &copy; <a href="https://carto.com/attributions">CARTO</a>`
)

// CountryBounds is the map extent for the Brazilian customer base.
var CountryBounds = models.BoundingBox{
	MinLat: -33.71758386653152,
	MaxLat: 6.104935381074177,
	MinLng: -75,
	MaxLng: -30.943182612367426,
}

var mapCenter = models.GeoPoint{Lat: -15, Lng: -50}

func baseMap(zoom float64) models.MapView {
	return models.MapView{
		Center:      mapCenter,
		Zoom:        zoom,
		Bounds:      CountryBounds,
		MaxBounds:   true,
		Tiles:       darkMatterTiles,
		Attribution: darkMatterAttribution,
		Fullscreen: models.Fullscreen{
			Position:            "topright",
			Title:               "Expand me",
			TitleCancel:         "Exit me",
			ForceSeparateButton: true,
		},
	}
}

// ClusterMap is the clustered customer point map.
func ClusterMap() models.MapView {
	return baseMap(3.5)
}

// HeatMap is the order density map.
func HeatMap() models.MapView {
	view := baseMap(4.5)
	view.HeatRadius = 10
	view.HeatMaxZoom = 15
	return view
}

// PointSeries flattens points to [lat, lng] pairs for the browser.
func PointSeries(points []models.GeoPoint) [][2]float64 {
	out := make([][2]float64, len(points))
	for i, p := range points {
		out[i] = [2]float64{p.Lat, p.Lng}
	}
	return out
}

// HeatSeries flattens bins to [lat, lng, count] triples.
func HeatSeries(bins []models.GeoBin) [][3]float64 {
	out := make([][3]float64, len(bins))
	for i, b := range bins {
		out[i] = [3]float64{b.Lat, b.Lng, float64(b.Count)}
	}
	return out
}
