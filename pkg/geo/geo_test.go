package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radruga/pkg/models"
)

func TestHaversineDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     models.GeoCoordinate
		expected float64
		delta    float64
	}{
		{"same point", models.GeoCoordinate{Latitude: 55.75, Longitude: 37.62}, models.GeoCoordinate{Latitude: 55.75, Longitude: 37.62}, 0, 0.001},
		{"one degree of latitude", models.GeoCoordinate{Latitude: 0, Longitude: 0}, models.GeoCoordinate{Latitude: 1, Longitude: 0}, 111195, 50},
		{"moscow to saint petersburg", models.GeoCoordinate{Latitude: 55.7558, Longitude: 37.6173}, models.GeoCoordinate{Latitude: 59.9343, Longitude: 30.3351}, 634000, 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Distance(tt.a, tt.b), tt.delta)
			assert.InDelta(t, Distance(tt.a, tt.b), Distance(tt.b, tt.a), 0.0001)
		})
	}
}

func TestCellsWithinCoversRadius(t *testing.T) {
	center := models.GeoCoordinate{Latitude: 55.7558, Longitude: 37.6173}
	// ~400 m north-east
	near := models.GeoCoordinate{Latitude: 55.7588, Longitude: 37.6213}
	require.Less(t, Distance(center, near), 500.0)

	cells := CellsWithin(center, 500)
	assert.Contains(t, cells, Cell(center))
	assert.Contains(t, cells, Cell(near))
}

func TestCellDistance(t *testing.T) {
	a := Cell(models.GeoCoordinate{Latitude: 55.7558, Longitude: 37.6173})
	d, err := CellDistance(a, a)
	require.NoError(t, err)
	assert.Equal(t, 0, d)

	_, err = CellDistance("not-a-cell", a)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(models.GeoCoordinate{Latitude: 10, Longitude: 20}))
	assert.ErrorIs(t, Validate(models.GeoCoordinate{Latitude: 91, Longitude: 0}), ErrInvalidCoordinates)
	assert.ErrorIs(t, Validate(models.GeoCoordinate{Latitude: 0, Longitude: -181}), ErrInvalidCoordinates)
}

func TestCentroid(t *testing.T) {
	c := Centroid([]models.GeoCoordinate{
		{Latitude: 10, Longitude: 20},
		{Latitude: 12, Longitude: 22},
		{Latitude: 14, Longitude: 24},
	})
	assert.InDelta(t, 12, c.Latitude, 1e-9)
	assert.InDelta(t, 22, c.Longitude, 1e-9)
	assert.Equal(t, models.GeoCoordinate{}, Centroid(nil))
}
