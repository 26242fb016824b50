// Package geo provides the geospatial math used by live tracking:
// great-circle distances, compass bearings, and projection of GPS
// paths onto a fixed-size drawing canvas.
package geo

import "math"

// EarthRadiusKm is the Earth's mean radius in kilometers.
const EarthRadiusKm = 6371.0

// Coords is a WGS84 position in decimal degrees.
type Coords struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CardinalDirection is one of the eight compass directions.
type CardinalDirection string

const (
	North     CardinalDirection = "North"
	Northeast CardinalDirection = "Northeast"
	East      CardinalDirection = "East"
	Southeast CardinalDirection = "Southeast"
	South     CardinalDirection = "South"
	Southwest CardinalDirection = "Southwest"
	West      CardinalDirection = "West"
	Northwest CardinalDirection = "Northwest"
)

var directions = [8]CardinalDirection{
	North, Northeast, East, Southeast, South, Southwest, West, Northwest,
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// HaversineDistance returns the great-circle distance between two
// points in kilometers. It is symmetric and returns 0 for identical
// points. No range validation is performed on the inputs.
func HaversineDistance(a, b Coords) float64 {
	dLat := toRad(b.Latitude - a.Latitude)
	dLon := toRad(b.Longitude - a.Longitude)
	lat1 := toRad(a.Latitude)
	lat2 := toRad(b.Latitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1)*math.Cos(lat2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

// CalculateBearing returns the cardinal direction of the initial
// bearing from one point toward another. Index 0 is North; each
// direction covers a 45 degree slice.
func CalculateBearing(from, to Coords) CardinalDirection {
	lat1 := toRad(from.Latitude)
	lat2 := toRad(to.Latitude)
	dLon := toRad(to.Longitude - from.Longitude)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	brng := toDeg(math.Atan2(y, x))
	brng = math.Mod(brng+360, 360)

	idx := int(math.Round(brng/45)) % 8
	return directions[idx]
}

// Point is a 2D canvas position in pixels.
type Point struct {
	X float64
	Y float64
}

// NormalizePathToCanvas maps the geographic extent of path onto a
// width x height canvas with the given padding on all sides. Aspect
// ratio is preserved by scaling both axes with the smaller of the two
// scale factors. Longitude increases to the right; latitude is
// inverted so that north is up. Paths with fewer than two points
// collapse to the canvas center, and a zero-width extent on either
// axis uses a denominator of 1 so nothing divides by zero.
func NormalizePathToCanvas(path []Coords, width, height, padding float64) []Point {
	if len(path) < 2 {
		points := make([]Point, len(path))
		for i := range points {
			points[i] = Point{X: width / 2, Y: height / 2}
		}
		return points
	}

	minLat, maxLat := path[0].Latitude, path[0].Latitude
	minLon, maxLon := path[0].Longitude, path[0].Longitude
	for _, p := range path[1:] {
		minLat = math.Min(minLat, p.Latitude)
		maxLat = math.Max(maxLat, p.Latitude)
		minLon = math.Min(minLon, p.Longitude)
		maxLon = math.Max(maxLon, p.Longitude)
	}

	latRange := maxLat - minLat
	lonRange := maxLon - minLon
	if latRange == 0 {
		latRange = 1
	}
	if lonRange == 0 {
		lonRange = 1
	}

	scaleX := (width - 2*padding) / lonRange
	scaleY := (height - 2*padding) / latRange
	scale := math.Min(scaleX, scaleY)

	points := make([]Point, len(path))
	for i, p := range path {
		points[i] = Point{
			X: (p.Longitude-minLon)*scale + padding,
			Y: (maxLat-p.Latitude)*scale + padding,
		}
	}
	return points
}
