package google

import (
	"net/url"
)

const (
	mapsSearchURL = "https://www.google.com/maps/search/"

	// DefaultStreetViewURL is the Street View Static API endpoint.
	DefaultStreetViewURL = "https://maps.googleapis.com/maps/api/streetview"

	// DefaultStreetViewSize is the image size requested for Street View links.
	DefaultStreetViewSize = "600x300"
)

// MapsSearchURL returns a Google Maps search link centred on loc.
func MapsSearchURL(loc LatLng) string {
	return mapsSearchURL + "?api=1&query=" + loc.String()
}

// StreetViewURL returns a Street View Static image link for loc. The key is
// embedded because the link is meant to be opened directly from the export.
func StreetViewURL(base, size string, loc LatLng, apiKey string) string {
	if base == "" {
		base = DefaultStreetViewURL
	}
	if size == "" {
		size = DefaultStreetViewSize
	}
	return base + "?size=" + url.QueryEscape(size) +
		"&location=" + loc.String() +
		"&key=" + url.QueryEscape(apiKey)
}
