package discovery

import (
	"dream_weaver/internal/geo"
	"dream_weaver/internal/models"
)

// NearbyRadiusKm is what "nearby" means for discovery.
const NearbyRadiusKm = 50.0

type Nearby struct {
	User       models.DirectoryUser
	DistanceKm float64
}

// FilterNearby keeps the users within radiusKm of loc, in their original order.
// Without a location nothing is nearby.
func FilterNearby(users []models.DirectoryUser, loc *models.Location, radiusKm float64) []Nearby {
	if loc == nil {
		return []Nearby{}
	}

	nearby := make([]Nearby, 0, len(users))
	for _, u := range users {
		d := geo.Distance(loc.Latitude, loc.Longitude, u.Latitude, u.Longitude)
		if d <= radiusKm {
			nearby = append(nearby, Nearby{User: u, DistanceKm: d})
		}
	}
	return nearby
}
