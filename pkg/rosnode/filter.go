package rosnode

// FilterSelf removes selfURI from uris, if present, and returns the
// remaining URIs. Subscription.PubUpdate never negotiates a connection
// to the node's own advertised URI.
func FilterSelf(uris []string, selfURI string) []string {
	if selfURI == "" {
		out := make([]string, len(uris))
		copy(out, uris)
		return out
	}
	out := make([]string, 0, len(uris))
	for _, u := range uris {
		if u == selfURI {
			continue
		}
		out = append(out, u)
	}
	return out
}
