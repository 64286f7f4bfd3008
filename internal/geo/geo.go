// Package geo implements great-circle distance and radius membership on a
// spherical Earth.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used for all distance calculations
const EarthRadiusKm = 6371.0

// kmPerDegreeLat is the arc length of one degree of latitude
const kmPerDegreeLat = math.Pi * EarthRadiusKm / 180

// Point is a coordinate in signed decimal degrees
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the point lies within latitude [-90, 90] and longitude [-180, 180]
func (p Point) Valid() bool {
	if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) {
		return false
	}
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// DistanceKm returns the haversine great-circle distance between two points in kilometers
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	// Rounding can push a marginally outside [0, 1] for identical or antipodal points.
	a = math.Max(0, math.Min(1, a))

	return EarthRadiusKm * 2 * math.Asin(math.Sqrt(a))
}

// Distance is DistanceKm over two points
func Distance(from, to Point) float64 {
	return DistanceKm(from.Latitude, from.Longitude, to.Latitude, to.Longitude)
}

// WithinRadius reports whether point is at most radiusKm from center
func WithinRadius(center, point Point, radiusKm float64) bool {
	return Distance(center, point) <= radiusKm
}

// Box is a latitude/longitude window. When HasLongitude is false the window
// spans every longitude.
type Box struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
	HasLongitude   bool
}

// BoundingBox returns a window that contains every point within radiusKm of
// center. It is a coarse pre-filter only; callers still apply WithinRadius.
func BoundingBox(center Point, radiusKm float64) Box {
	dLat := radiusKm / kmPerDegreeLat
	box := Box{
		MinLat: math.Max(-90, center.Latitude-dLat),
		MaxLat: math.Min(90, center.Latitude+dLat),
	}

	// Near a pole or across the antimeridian the longitude window degenerates.
	if box.MinLat <= -90 || box.MaxLat >= 90 {
		return box
	}
	maxAbsLat := math.Max(math.Abs(box.MinLat), math.Abs(box.MaxLat))
	cosLat := math.Cos(radians(maxAbsLat))
	if cosLat <= 0 {
		return box
	}
	dLon := dLat / cosLat
	if dLon >= 180 || center.Longitude-dLon < -180 || center.Longitude+dLon > 180 {
		return box
	}

	box.MinLon = center.Longitude - dLon
	box.MaxLon = center.Longitude + dLon
	box.HasLongitude = true
	return box
}

// Contains reports whether p falls inside the window
func (b Box) Contains(p Point) bool {
	if p.Latitude < b.MinLat || p.Latitude > b.MaxLat {
		return false
	}
	if !b.HasLongitude {
		return true
	}
	return p.Longitude >= b.MinLon && p.Longitude <= b.MaxLon
}
