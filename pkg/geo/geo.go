// Package geo wraps uber/h3-go with the distance helpers used by
// location-based missions.
package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/uber/h3-go/v4"

	"radruga/pkg/models"
)

var ErrInvalidCoordinates = errors.New("invalid coordinates")

const (
	// CellResolution is the H3 resolution places are indexed at (~0.1 km² per hexagon)
	CellResolution = 9

	// cellEdgeMeters is the average edge length at CellResolution
	cellEdgeMeters = 174.375668

	earthRadius = 6371000 // meters
)

// Validate checks latitude and longitude ranges
func Validate(c models.GeoCoordinate) error {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) ||
		c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: %f,%f", ErrInvalidCoordinates, c.Latitude, c.Longitude)
	}
	return nil
}

// HaversineDistance returns the great-circle distance in meters
func HaversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(deltaLng/2)*math.Sin(deltaLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// Distance is HaversineDistance over two coordinates
func Distance(a, b models.GeoCoordinate) float64 {
	return HaversineDistance(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// Cell returns the H3 cell id containing c
func Cell(c models.GeoCoordinate) string {
	return h3.LatLngToCell(h3.NewLatLng(c.Latitude, c.Longitude), CellResolution).String()
}

// ringsFor is the grid-disk radius that fully covers radiusMeters around any
// point of the center cell.
func ringsFor(radiusMeters float64) int {
	if radiusMeters < 0 {
		radiusMeters = 0
	}
	// each ring adds at least 1.5 edges of coverage; both end points may
	// sit up to one edge away from their cell centers
	ringStep := cellEdgeMeters * 1.5
	return int(math.Ceil((radiusMeters + 2*cellEdgeMeters) / ringStep))
}

// CellsWithin returns the ids of every cell that may hold a point closer than
// radiusMeters to c. It over-approximates; callers confirm with Distance.
func CellsWithin(c models.GeoCoordinate, radiusMeters float64) []string {
	center := h3.LatLngToCell(h3.NewLatLng(c.Latitude, c.Longitude), CellResolution)
	disk := center.GridDisk(ringsFor(radiusMeters))
	out := make([]string, len(disk))
	for i, cell := range disk {
		out[i] = cell.String()
	}
	return out
}

// CellDistance returns the grid distance between two cell ids
func CellDistance(cellID1, cellID2 string) (int, error) {
	var a, b h3.Cell
	if err := a.UnmarshalText([]byte(cellID1)); err != nil || !a.IsValid() {
		return 0, fmt.Errorf("invalid H3 cell ID: %s", cellID1)
	}
	if err := b.UnmarshalText([]byte(cellID2)); err != nil || !b.IsValid() {
		return 0, fmt.Errorf("invalid H3 cell ID: %s", cellID2)
	}
	return h3.GridDistance(a, b), nil
}

// Centroid averages the points. Inputs are expected to be close together;
// no antimeridian handling.
func Centroid(points []models.GeoCoordinate) models.GeoCoordinate {
	if len(points) == 0 {
		return models.GeoCoordinate{}
	}
	var lat, lng float64
	for _, p := range points {
		lat += p.Latitude
		lng += p.Longitude
	}
	n := float64(len(points))
	return models.GeoCoordinate{Latitude: lat / n, Longitude: lng / n}
}
