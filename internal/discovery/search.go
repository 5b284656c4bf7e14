package discovery

import "strings"

// FilterByName keeps candidates whose username contains query, ignoring case.
// An empty query keeps everything.
func FilterByName(candidates []Nearby, query string) []Nearby {
	if query == "" {
		return candidates
	}
	needle := strings.ToLower(query)

	out := make([]Nearby, 0, len(candidates))
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c.User.Username), needle) {
			out = append(out, c)
		}
	}
	return out
}
