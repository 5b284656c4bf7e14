package discovery

import (
	"dream_weaver/internal/models"
)

// FollowState is the read side of the follow store.
type FollowState interface {
	IsFollowing(id string) bool
	Followed() []string
}

type Candidate struct {
	User              models.DirectoryUser `json:"user"`
	DistanceKm        *float64             `json:"distanceKm,omitempty"`
	IsFollowing       bool                 `json:"isFollowing"`
	HasSharedInterest bool                 `json:"hasSharedInterest"`
	SharedInterests   []string             `json:"sharedInterests"`
}

// Discoverer chains proximity, search and relevance over a fixed directory.
type Discoverer struct {
	users        []models.DirectoryUser
	userKeywords map[string]KeywordSet
	radiusKm     float64
	follows      FollowState
}

func NewDiscoverer(users []models.DirectoryUser, follows FollowState) *Discoverer {
	// directory users never change, so their keyword sets are computed once
	kw := make(map[string]KeywordSet, len(users))
	for _, u := range users {
		kw[u.ID] = ExtractUserKeywords(u)
	}
	return &Discoverer{
		users:        users,
		userKeywords: kw,
		radiusKm:     NearbyRadiusKm,
		follows:      follows,
	}
}

// Candidates returns nearby users matching query, annotated with relevance and follow state.
func (d *Discoverer) Candidates(loc *models.Location, query string, current KeywordSet) []Candidate {
	nearby := FilterByName(FilterNearby(d.users, loc, d.radiusKm), query)

	out := make([]Candidate, 0, len(nearby))
	for _, n := range nearby {
		dist := n.DistanceKm
		c := d.annotate(n.User, current)
		c.DistanceKm = &dist
		out = append(out, c)
	}
	return out
}

// Profile returns one directory user with shared interests and follow state.
func (d *Discoverer) Profile(userID string, current KeywordSet) (Candidate, bool) {
	for _, u := range d.users {
		if u.ID == userID {
			return d.annotate(u, current), true
		}
	}
	return Candidate{}, false
}

// Connections returns every followed directory user in directory order.
func (d *Discoverer) Connections(current KeywordSet) []Candidate {
	out := []Candidate{}
	for _, u := range d.users {
		if d.follows.IsFollowing(u.ID) {
			out = append(out, d.annotate(u, current))
		}
	}
	return out
}

func (d *Discoverer) annotate(u models.DirectoryUser, current KeywordSet) Candidate {
	shared := SharedInterests(current, d.userKeywords[u.ID])
	return Candidate{
		User:              u,
		IsFollowing:       d.follows.IsFollowing(u.ID),
		HasSharedInterest: len(shared) > 0,
		SharedInterests:   shared,
	}
}
