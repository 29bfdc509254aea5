package flights

import "strings"

// group returns the first fallback group with a fragment that starts a word of name.
// The home group is checked before Order.
func (f FallbackTables) group(name string) (FallbackGroup, bool) {
	lower := strings.ToLower(name)
	for _, g := range append([]FallbackGroup{f.Home}, f.Order...) {
		for _, frag := range f.Groups[g] {
			if containsWordPrefix(lower, strings.ToLower(frag)) {
				return g, true
			}
		}
	}
	return "", false
}

// containsWordPrefix reports whether frag occurs in s at the start of a word,
// so "rio" matches "rio de janeiro" but not "ontario".
func containsWordPrefix(s, frag string) bool {
	if frag == "" {
		return false
	}
	for i := 0; i+len(frag) <= len(s); {
		j := strings.Index(s[i:], frag)
		if j < 0 {
			return false
		}
		pos := i + j
		if pos == 0 || strings.ContainsRune(" ,-/(", rune(s[pos-1])) {
			return true
		}
		i = pos + 1
	}
	return false
}

// basePrice is the coarse pre-variance estimate for a route without coordinates.
// It always returns a positive price.
func (f FallbackTables) basePrice(origin, destination string) float64 {
	og, oOK := f.group(origin)
	dg, dOK := f.group(destination)
	originHome := oOK && og == f.Home
	destHome := dOK && dg == f.Home

	price := f.Generic
	switch {
	case originHome && dOK:
		price = f.PairPrice[dg]
	case originHome:
		price = f.HomeOther
	case destHome && oOK:
		price = f.PairPrice[og]
	case destHome:
		price = f.HomeOther
	}

	if price <= 0 {
		price = f.Generic
	}
	if price <= 0 {
		price = 1
	}
	return price
}
