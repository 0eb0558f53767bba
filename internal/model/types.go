package model

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// GeometryKind classifies the upstream geodata record shape.
type GeometryKind string

const (
	KindNode     GeometryKind = "node"
	KindWay      GeometryKind = "way"
	KindRelation GeometryKind = "relation"
)

// Status tags the outcome of a retrieval or generation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusNoData  Status = "no_data"
	StatusError   Status = "error"
)

// TagMap is an insertion-ordered string map. Prompt output depends on tag
// iteration order, so upstream tags are never held in a plain Go map.
type TagMap = orderedmap.OrderedMap[string, string]

// NewTagMap returns an empty ordered tag map.
func NewTagMap() *TagMap {
	return orderedmap.New[string, string]()
}

// LatLon is a bare WGS 84 coordinate pair.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// RawGeoRecord is one element as returned by the geodata discovery API.
// Nodes carry lat/lon directly; ways and relations carry a computed center.
type RawGeoRecord struct {
	Type   GeometryKind `json:"type"`
	ID     int64        `json:"id"`
	Lat    *float64     `json:"lat,omitempty"`
	Lon    *float64     `json:"lon,omitempty"`
	Center *LatLon      `json:"center,omitempty"`
	Tags   *TagMap      `json:"tags,omitempty"`
}

// Landmark is a normalized point of interest. DistanceKm is relative to the
// reference point of the discovery query that produced it, not a durable
// property of the landmark itself.
type Landmark struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Lat          float64      `json:"lat"`
	Lon          float64      `json:"lon"`
	DistanceKm   float64      `json:"distance_km"`
	Kind         GeometryKind `json:"kind"`
	UpstreamID   int64        `json:"upstream_id"`
	Tags         *TagMap      `json:"tags"`
	WikidataID   string       `json:"wikidata_id,omitempty"`
	WikipediaRef string       `json:"wikipedia,omitempty"`
}

// HistoricalTextRecord is the outcome of resolving descriptive text for one
// landmark. Exactly one of {Text set} or {Status != success} holds.
type HistoricalTextRecord struct {
	LandmarkID  string `json:"landmark_id"`
	Status      Status `json:"status"`
	Text        string `json:"text,omitempty"`
	Source      string `json:"source,omitempty"`
	SourceURL   string `json:"source_url,omitempty"`
	Error       string `json:"error,omitempty"`
	RetrievedAt string `json:"retrieved_at,omitempty"`
}

// GeneratedAnswer is the outcome of one grounded question. A nil Year means
// the question carried no year filter; the year is part of the cache key.
type GeneratedAnswer struct {
	LandmarkID  string  `json:"landmark_id"`
	Question    string  `json:"question"`
	Year        *int    `json:"year,omitempty"`
	Answer      string  `json:"answer,omitempty"`
	Status      Status  `json:"status"`
	Error       string  `json:"error,omitempty"`
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	GeneratedAt string  `json:"generated_at,omitempty"`
}

// EvaluationRecord is one self-check outcome. Append-only.
type EvaluationRecord struct {
	TestName   string `json:"test_name"`
	Category   string `json:"category"`
	LandmarkID string `json:"landmark_id,omitempty"`
	Question   string `json:"question,omitempty"`
	Passed     bool   `json:"passed"`
	Error      string `json:"error,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// PlaceMatch is a geocoding best match.
type PlaceMatch struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name"`
}
