package utils

import (
	"encoding/json"

	"github.com/mmcloughlin/geohash"
)

// PickupGeohashPrecision gives cells of roughly 150m by 150m
const PickupGeohashPrecision uint = 7

// GeoPoint represents a geographical point with latitude and longitude
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

type coordinates struct {
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	Lon       *float64 `json:"lon"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// ParseGeoPoint reads a point from an opaque location document. It accepts
// {lat,lng}, {lat,lon} and {latitude,longitude}; anything else, or
// coordinates out of range, reports false.
func ParseGeoPoint(raw json.RawMessage) (GeoPoint, bool) {
	var c coordinates
	if len(raw) == 0 || json.Unmarshal(raw, &c) != nil {
		return GeoPoint{}, false
	}

	lat := firstSet(c.Lat, c.Latitude)
	lng := firstSet(c.Lng, c.Lon, c.Longitude)
	if lat == nil || lng == nil {
		return GeoPoint{}, false
	}
	if *lat < -90 || *lat > 90 || *lng < -180 || *lng > 180 {
		return GeoPoint{}, false
	}

	return GeoPoint{Latitude: *lat, Longitude: *lng}, true
}

// PickupGeohash encodes the pickup location as a geohash. Locations without
// readable coordinates have none.
func PickupGeohash(raw json.RawMessage) *string {
	point, ok := ParseGeoPoint(raw)
	if !ok {
		return nil
	}
	hash := geohash.EncodeWithPrecision(point.Latitude, point.Longitude, PickupGeohashPrecision)
	return &hash
}

func firstSet(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
