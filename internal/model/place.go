// Package model holds the records that flow through the places sweep.
package model

import (
	"github.com/sells-group/ramen-cli/pkg/google"
)

// Place is a populated locality read from the input sheet.
type Place struct {
	City       string  `json:"city"`
	State      string  `json:"state"`
	Zip        string  `json:"zipcode,omitempty"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Population int64   `json:"population"`
}

// Location returns the place centre as an API coordinate.
func (p Place) Location() google.LatLng {
	return google.LatLng{Lat: p.Lat, Lng: p.Lng}
}

// Label renders the place as "City, State".
func (p Place) Label() string {
	if p.State == "" {
		return p.City
	}
	return p.City + ", " + p.State
}

// OutputRow is one enriched, deduplicated result ready for export.
type OutputRow struct {
	City          string   `json:"city"`
	State         string   `json:"state"`
	Zip           string   `json:"zip"`
	PlaceID       string   `json:"place_id"`
	Name          string   `json:"name"`
	Address       string   `json:"address"`
	Phone         string   `json:"phone"`
	Rating        *float64 `json:"rating"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Website       string   `json:"website"`
	MapsURL       string   `json:"maps_url"`
	StreetViewURL string   `json:"street_view_url"`
}

// Columns is the header of the exported table, in order.
var Columns = []string{
	"City", "State", "Zip", "Name", "Address", "Phone", "Rating",
	"Latitude", "Longitude", "Website", "Maps URL", "Street View URL",
}

// SkipRecord explains why a place produced no rows.
type SkipRecord struct {
	City   string `json:"city"`
	State  string `json:"state"`
	Reason string `json:"reason"`
}

// Skip reasons written to the skip log.
const (
	ReasonBelowThreshold = "Population below threshold"
	ReasonNoResults      = "No results returned"
	reasonAPIErrorPrefix = "API error: "
)

// APIErrorReason formats the skip reason for an upstream error message.
func APIErrorReason(msg string) string {
	return reasonAPIErrorPrefix + msg
}
