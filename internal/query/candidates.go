package query

import (
	"sort"
	"strings"

	"github.com/neexbeast/destinations/internal/dataset"
)

// candidate is a city paired with its country.
type candidate struct {
	city    dataset.City
	country dataset.Country
}

var defaultNotableCities = []string{
	"rio de janeiro", "são paulo", "salvador", "fortaleza", "brasília", "recife", "belo horizonte", "porto alegre", "curitiba", "manaus",
	"new york", "los angeles", "san francisco", "las vegas", "miami", "chicago", "boston", "washington", "seattle", "philadelphia",
	"paris", "marseille", "nice", "lyon", "cannes", "bordeaux", "toulouse", "strasbourg",
	"london", "manchester", "edinburgh", "liverpool", "birmingham", "glasgow", "oxford", "cambridge",
	"rome", "milan", "venice", "florence", "naples", "turin", "bologna", "genoa", "palermo",
	"barcelona", "madrid", "seville", "valencia", "bilbao", "granada", "toledo", "salamanca",
	"berlin", "munich", "hamburg", "cologne", "frankfurt", "stuttgart", "dresden", "heidelberg",
	"amsterdam", "rotterdam", "the hague", "utrecht", "eindhoven",
	"vienna", "salzburg", "innsbruck", "graz",
	"prague", "brno", "ostrava",
	"tokyo", "osaka", "kyoto", "hiroshima", "nagoya", "yokohama", "kobe", "fukuoka",
	"seoul", "busan", "incheon", "daegu",
	"bangkok", "phuket", "chiang mai", "pattaya",
	"singapore", "hong kong",
	"beijing", "shanghai", "guangzhou", "shenzhen", "chengdu", "hangzhou", "nanjing",
	"sydney", "melbourne", "perth", "brisbane", "adelaide", "canberra",
	"dubai", "abu dhabi", "sharjah",
	"istanbul", "ankara", "izmir", "antalya",
	"moscow", "st petersburg", "novosibirsk", "yekaterinburg",
	"cairo", "alexandria", "luxor", "aswan",
	"marrakech", "casablanca", "fez", "rabat",
	"cape town", "johannesburg", "durban", "pretoria",
	"buenos aires", "córdoba", "rosario", "mendoza",
	"santiago", "valparaíso", "concepción",
	"lima", "cusco", "arequipa",
	"mumbai", "delhi", "bangalore", "goa", "kolkata", "chennai", "hyderabad", "pune",
	"lisbon", "porto", "faro", "coimbra",
	"athens", "thessaloniki", "patras",
	"zurich", "geneva", "basel", "bern",
	"toronto", "vancouver", "montreal", "calgary", "ottawa",
	"mexico city", "guadalajara", "monterrey", "cancun", "puerto vallarta",
}

// defaultCountryPriority breaks ties between notable cities sharing a name.
var defaultCountryPriority = map[string]int{
	"Egypt":          10,
	"United States":  9,
	"United Kingdom": 8,
	"France":         8,
	"Italy":          8,
	"Japan":          8,
	"Spain":          7,
	"Germany":        7,
	"China":          7,
	"Brazil":         6,
	"Australia":      5,
	"Mexico":         5,
	"Canada":         4,
}

func (p *Processor) priority(country string) int {
	if v, ok := p.countryPriority[country]; ok {
		return v
	}
	return 1
}

func countryIndex(countries []dataset.Country) map[int]dataset.Country {
	m := make(map[int]dataset.Country, len(countries))
	for _, c := range countries {
		m[c.ID] = c
	}
	return m
}

// searchCandidates returns cities whose name, country or state contains term.
// Exact name matches come first, then name prefixes, then the rest.
func (p *Processor) searchCandidates(term string, cities []dataset.City, byID map[int]dataset.Country) []candidate {
	term = strings.ToLower(term)

	var exact, prefix, rest []candidate
	for _, c := range cities {
		country, ok := byID[c.CountryID]
		if !ok {
			continue
		}
		name := strings.ToLower(c.Name)
		switch {
		case name == term:
			exact = append(exact, candidate{c, country})
		case strings.HasPrefix(name, term):
			prefix = append(prefix, candidate{c, country})
		case strings.Contains(name, term),
			strings.Contains(strings.ToLower(c.CountryName), term),
			strings.Contains(strings.ToLower(country.Name), term),
			c.StateName != "" && strings.Contains(strings.ToLower(c.StateName), term):
			rest = append(rest, candidate{c, country})
		}
	}

	out := append(append(exact, prefix...), rest...)
	if len(out) > p.maxCandidates {
		out = out[:p.maxCandidates]
	}
	return out
}

// defaultCandidates returns capitals and notable cities, one per name: when
// several share a name a capital wins, then the country with the highest
// priority. Capitals come first, then higher-priority countries, then names
// alphabetically.
func (p *Processor) defaultCandidates(cities []dataset.City, byID map[int]dataset.Country) []candidate {
	chosen := make(map[string]int)
	var out []candidate
	for _, c := range cities {
		country, ok := byID[c.CountryID]
		if !ok {
			continue
		}
		name := strings.ToLower(c.Name)
		if !c.IsCapitalOf(country) && !p.notable[name] {
			continue
		}
		if i, seen := chosen[name]; seen {
			if cand := (candidate{c, country}); better(p, cand, out[i]) {
				out[i] = cand
			}
			continue
		}
		chosen[name] = len(out)
		out = append(out, candidate{c, country})
	}

	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := out[i].city.IsCapitalOf(out[i].country), out[j].city.IsCapitalOf(out[j].country)
		if ci != cj {
			return ci
		}
		pi, pj := p.priority(out[i].country.Name), p.priority(out[j].country.Name)
		if pi != pj {
			return pi > pj
		}
		return strings.ToLower(out[i].city.Name) < strings.ToLower(out[j].city.Name)
	})

	if len(out) > p.maxCandidates {
		out = out[:p.maxCandidates]
	}
	return out
}

// lookupCandidate picks the best city for an exact name: a capital first,
// then the highest-priority country. A "City, Country" name restricts the country.
func (p *Processor) lookupCandidate(name string, cities []dataset.City, byID map[int]dataset.Country) (candidate, bool) {
	cityName, countryHint, _ := strings.Cut(name, ",")
	cityName = strings.TrimSpace(cityName)
	countryHint = strings.TrimSpace(countryHint)

	var best candidate
	found := false
	for _, c := range cities {
		if !strings.EqualFold(c.Name, cityName) {
			continue
		}
		country, ok := byID[c.CountryID]
		if !ok {
			continue
		}
		if countryHint != "" && !strings.EqualFold(country.Name, countryHint) &&
			!strings.EqualFold(country.ISO2, countryHint) && !strings.EqualFold(country.ISO3, countryHint) {
			continue
		}
		cand := candidate{c, country}
		if !found || better(p, cand, best) {
			best, found = cand, true
		}
	}
	return best, found
}

func better(p *Processor, a, b candidate) bool {
	ac, bc := a.city.IsCapitalOf(a.country), b.city.IsCapitalOf(b.country)
	if ac != bc {
		return ac
	}
	return p.priority(a.country.Name) > p.priority(b.country.Name)
}
