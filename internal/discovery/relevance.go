package discovery

// SharedInterests lists, in the candidate's order, the candidate tokens longer than two
// characters that the current user also has.
func SharedInterests(current, candidate KeywordSet) []string {
	shared := []string{}
	for _, token := range candidate.tokens {
		if longEnough(token) && current.Contains(token) {
			shared = append(shared, token)
		}
	}
	return shared
}

func HasSharedInterest(current, candidate KeywordSet) bool {
	for _, token := range candidate.tokens {
		if longEnough(token) && current.Contains(token) {
			return true
		}
	}
	return false
}
