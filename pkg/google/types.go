package google

import (
	"encoding/json"
	"strconv"
)

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String formats the coordinate as "lat,lng", the form the API expects.
func (l LatLng) String() string {
	return FormatCoord(l.Lat) + "," + FormatCoord(l.Lng)
}

// FormatCoord renders a coordinate with the shortest exact representation.
func FormatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// TextSearchRequest describes a bounded-radius Text Search call.
type TextSearchRequest struct {
	Query     string
	Location  LatLng
	Radius    int // meters
	PageToken string
}

// TextSearchResponse is the response from Places Text Search.
type TextSearchResponse struct {
	Results       []Place `json:"results"`
	NextPageToken string  `json:"next_page_token,omitempty"`
	Status        string  `json:"status,omitempty"`
	ErrorMessage  string  `json:"error_message,omitempty"`
}

// Place is a single Text Search result. Raw keeps the payload exactly as
// returned so snapshots can be written without losing fields.
type Place struct {
	PlaceID          string    `json:"place_id"`
	Name             string    `json:"name"`
	FormattedAddress string    `json:"formatted_address,omitempty"`
	Rating           *float64  `json:"rating,omitempty"`
	UserRatingsTotal *int      `json:"user_ratings_total,omitempty"`
	Geometry         *Geometry `json:"geometry,omitempty"`
	Types            []string  `json:"types,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the typed fields and retains the raw payload.
func (p *Place) UnmarshalJSON(data []byte) error {
	type alias Place
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = Place(a)
	p.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// Payload returns the raw JSON payload, re-encoding the typed fields when the
// place was built in code rather than decoded.
func (p Place) Payload() json.RawMessage {
	if len(p.Raw) > 0 {
		return p.Raw
	}
	type alias Place
	b, err := json.Marshal(alias(p))
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}

// Geometry holds a place's location.
type Geometry struct {
	Location LatLng `json:"location"`
}

// DetailsResponse is the response from Place Details.
type DetailsResponse struct {
	Result       PlaceDetails `json:"result"`
	Status       string       `json:"status,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
}

// PlaceDetails holds the fields requested from Place Details. Every field is
// optional; a failed lookup yields the zero value.
type PlaceDetails struct {
	Name                 string    `json:"name,omitempty"`
	FormattedAddress     string    `json:"formatted_address,omitempty"`
	FormattedPhoneNumber string    `json:"formatted_phone_number,omitempty"`
	Rating               *float64  `json:"rating,omitempty"`
	Geometry             *Geometry `json:"geometry,omitempty"`
	Website              string    `json:"website,omitempty"`
	URL                  string    `json:"url,omitempty"`
}

// Location returns the precise coordinates, or nil when the payload has none.
func (d PlaceDetails) Location() *LatLng {
	if d.Geometry == nil {
		return nil
	}
	loc := d.Geometry.Location
	return &loc
}
