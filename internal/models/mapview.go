package models

// BoundingBox is a lat/lng rectangle in degrees.
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLng float64 `json:"max_lng"`
}

type Fullscreen struct {
	Position            string `json:"position"`
	Title               string `json:"title"`
	TitleCancel         string `json:"title_cancel"`
	ForceSeparateButton bool   `json:"force_separate_button"`
}

// MapView configures one browser-side map.
type MapView struct {
	Center      GeoPoint    `json:"center"`
	Zoom        float64     `json:"zoom"`
	Bounds      BoundingBox `json:"bounds"`
	MaxBounds   bool        `json:"max_bounds"`
	Tiles       string      `json:"tiles"`
	Attribution string      `json:"attribution"`
	Fullscreen  Fullscreen  `json:"fullscreen"`
	HeatRadius  int         `json:"heat_radius,omitempty"`
	HeatMaxZoom int         `json:"heat_max_zoom,omitempty"`
}
