// Package geo provides great-circle geometry for pedestrian navigation:
// distances, bearings, compass labels, and heading-relative directions.
package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used for great-circle math.
const EarthRadiusMeters = 6371000.0

// Point is a WGS 84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Haversine returns the great-circle distance in meters between two points.
func Haversine(a, b Point) float64 {
	phi1 := radians(a.Lat)
	phi2 := radians(b.Lat)
	dPhi := radians(b.Lat - a.Lat)
	dLambda := radians(b.Lng - a.Lng)

	s := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(s), math.Sqrt(1-s))

	return EarthRadiusMeters * c
}

// Bearing returns the initial great-circle bearing from a to b in degrees,
// normalized to [0, 360) with 0 = true north.
func Bearing(a, b Point) float64 {
	phi1 := radians(a.Lat)
	phi2 := radians(b.Lat)
	dLambda := radians(b.Lng - a.Lng)

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)

	return normalizeDegrees(degrees(math.Atan2(y, x)))
}

// Direction is a heading-relative direction of travel.
type Direction int

const (
	Forward Direction = iota
	Right
	Left
	Behind
)

// String returns the spoken form of the direction.
func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Right:
		return "right"
	case Left:
		return "left"
	default:
		return "behind"
	}
}

// Relative classifies a target bearing against the user's compass heading.
// The signed delta is folded into (-180, 180]: forward is [-45, 45],
// right is (45, 135], left is [-135, -45), everything else is behind.
func Relative(bearing, heading float64) Direction {
	delta := math.Mod(bearing-heading+540, 360) - 180
	switch {
	case delta >= -45 && delta <= 45:
		return Forward
	case delta > 45 && delta <= 135:
		return Right
	case delta >= -135 && delta < -45:
		return Left
	default:
		return Behind
	}
}

var compassLabels = [8]string{
	"north", "northeast", "east", "southeast",
	"south", "southwest", "west", "northwest",
}

// CompassLabel returns the 8-point compass name for a bearing in degrees.
func CompassLabel(bearing float64) string {
	idx := int(math.Mod(normalizeDegrees(bearing)+22.5, 360) / 45)
	return compassLabels[idx]
}

func normalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
