package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/ramen-cli/pkg/google"
)

func TestPlaceLabel(t *testing.T) {
	assert.Equal(t, "Springfield, IL", Place{City: "Springfield", State: "IL"}.Label())
	assert.Equal(t, "Springfield", Place{City: "Springfield"}.Label())
}

func TestPlaceLocation(t *testing.T) {
	p := Place{Lat: 39.78, Lng: -89.65}
	assert.Equal(t, google.LatLng{Lat: 39.78, Lng: -89.65}, p.Location())
}

func TestAPIErrorReason(t *testing.T) {
	assert.Equal(t, "API error: quota exceeded", APIErrorReason("quota exceeded"))
}

func TestColumns(t *testing.T) {
	assert.Len(t, Columns, 12)
	assert.Equal(t, "City", Columns[0])
	assert.Equal(t, "Street View URL", Columns[len(Columns)-1])
}
