package models

// SearchFilters are the optional, independently combinable post search criteria.
// The geo filter applies only when Latitude, Longitude and RadiusKm are all set.
type SearchFilters struct {
	Query     string   `json:"query,omitempty" validate:"omitempty,max=200"`
	Type      PostType `json:"type,omitempty" validate:"omitempty,oneof=lost found"`
	Category  Category `json:"category,omitempty" validate:"omitempty,oneof=person car furniture electronics documents jewelry clothing other"`
	Location  string   `json:"location,omitempty" validate:"omitempty,max=200"`
	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,min=-90,max=90"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,min=-180,max=180"`
	RadiusKm  *float64 `json:"radius_km,omitempty" validate:"omitempty,gt=0"`
	Limit     int      `json:"limit,omitempty" validate:"min=0,max=100"`
	Offset    int      `json:"offset,omitempty" validate:"min=0"`
}

// NearbyRequest is the location-only lookup used by the map view
type NearbyRequest struct {
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
	RadiusKm  float64 `json:"radius_km" validate:"gt=0"`
	Limit     int     `json:"limit,omitempty" validate:"min=0,max=500"`
}
