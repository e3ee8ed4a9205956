package stats

// LocalRate is the fraction of countryASNs that appear in members.
// An empty countryASNs gives 0.
func LocalRate(members, countryASNs []int) float64 {
	if len(countryASNs) == 0 {
		return 0
	}
	known := toSet(countryASNs)
	inCountry := 0
	for asn := range toSet(members) {
		if _, ok := known[asn]; ok {
			inCountry++
		}
	}
	return float64(inCountry) / float64(len(known))
}

// share is part/total, 0 when total is 0.
func share(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}

func toSet(asns []int) map[int]struct{} {
	set := make(map[int]struct{}, len(asns))
	for _, asn := range asns {
		set[asn] = struct{}{}
	}
	return set
}

func union(a, b []int) []int {
	set := toSet(a)
	for _, asn := range b {
		set[asn] = struct{}{}
	}
	out := make([]int, 0, len(set))
	for asn := range set {
		out = append(out, asn)
	}
	return out
}
