package normalize

import (
	"fmt"
	"math"
	"sort"

	"github.com/intelligrit/histmap/internal/model"
)

const earthRadiusKm = 6371.0

// UnnamedLandmark is the display name used when upstream has no name tag.
const UnnamedLandmark = "Unnamed landmark"

// Normalize converts raw geodata records into Landmarks relative to a
// reference point. Records without a usable coordinate (direct or centroid)
// are dropped silently; partial upstream data is routine, not an error.
// Output is ordered by ascending distance, ties keeping input order.
func Normalize(raw []model.RawGeoRecord, refLat, refLon float64) []model.Landmark {
	landmarks := make([]model.Landmark, 0, len(raw))

	for _, rec := range raw {
		lat, lon, ok := resolveCoordinate(rec)
		if !ok {
			continue
		}

		tags := rec.Tags
		if tags == nil {
			tags = model.NewTagMap()
		}

		name := UnnamedLandmark
		if v, present := tags.Get("name"); present && v != "" {
			name = v
		}

		lm := model.Landmark{
			ID:         fmt.Sprintf("%s-%d", rec.Type, rec.ID),
			Name:       name,
			Lat:        lat,
			Lon:        lon,
			DistanceKm: Haversine(refLat, refLon, lat, lon),
			Kind:       rec.Type,
			UpstreamID: rec.ID,
			Tags:       tags,
		}
		if v, present := tags.Get("wikidata"); present {
			lm.WikidataID = v
		}
		if v, present := tags.Get("wikipedia"); present {
			lm.WikipediaRef = v
		}

		landmarks = append(landmarks, lm)
	}

	sort.SliceStable(landmarks, func(i, j int) bool {
		return landmarks[i].DistanceKm < landmarks[j].DistanceKm
	})

	return landmarks
}

// resolveCoordinate picks the direct lat/lon if present, else the computed
// centroid carried by ways and relations.
func resolveCoordinate(rec model.RawGeoRecord) (lat, lon float64, ok bool) {
	if rec.Lat != nil && rec.Lon != nil {
		return *rec.Lat, *rec.Lon, true
	}
	if rec.Center != nil {
		return rec.Center.Lat, rec.Center.Lon, true
	}
	return 0, 0, false
}

// Haversine returns the great-circle distance between two points in
// kilometers, using a fixed Earth radius of 6371 km.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
