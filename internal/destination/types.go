package destination

import "strings"

// PriceTier is a coarse cost classification derived from region.
type PriceTier string

const (
	PriceLow    PriceTier = "low"
	PriceMedium PriceTier = "medium"
	PriceHigh   PriceTier = "high"
)

// Climate is derived from absolute latitude.
type Climate string

const (
	ClimateCold      Climate = "cold"
	ClimateTemperate Climate = "temperate"
	ClimateHot       Climate = "hot"
)

// Activity tags a destination with something to do there.
type Activity string

const (
	ActivityCity    Activity = "city"
	ActivityBeach   Activity = "beach"
	ActivitySnow    Activity = "snow"
	ActivityCulture Activity = "culture"
)

// ParsePriceTier accepts the English names and the pt-BR labels used by the UI.
func ParsePriceTier(s string) (PriceTier, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "baixo":
		return PriceLow, true
	case "medium", "medio", "médio":
		return PriceMedium, true
	case "high", "alto":
		return PriceHigh, true
	}
	return "", false
}

// ParseClimate accepts the English names and the pt-BR labels used by the UI.
func ParseClimate(s string) (Climate, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cold", "frio":
		return ClimateCold, true
	case "temperate", "temperado":
		return ClimateTemperate, true
	case "hot", "quente":
		return ClimateHot, true
	}
	return "", false
}

// ParseActivity accepts the English names and the pt-BR labels used by the UI.
func ParseActivity(s string) (Activity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "city", "cidade":
		return ActivityCity, true
	case "beach", "praia":
		return ActivityBeach, true
	case "snow", "neve":
		return ActivitySnow, true
	case "culture", "cultura":
		return ActivityCulture, true
	}
	return "", false
}

// Currency of a country.
type Currency struct {
	Code   string `json:"code,omitempty"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// CountryInfo is the country summary nested in a Destination.
type CountryInfo struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	OfficialName string   `json:"official_name"`
	ISO2         string   `json:"iso2"`
	Capital      string   `json:"capital"`
	Region       string   `json:"region"`
	Subregion    string   `json:"subregion"`
	Currency     Currency `json:"currency"`
	FlagURL      string   `json:"flag_url"`
}

// Destination is a display-ready record derived from a city and its country.
// Values are never mutated in place; use WithFavorite to tag a copy.
type Destination struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	CountryName string      `json:"country_name"`
	Region      string      `json:"region"`
	Subregion   string      `json:"subregion"`
	State       string      `json:"state,omitempty"`
	Population  int         `json:"population"`
	Latitude    float64     `json:"latitude"`
	Longitude   float64     `json:"longitude"`
	Country     CountryInfo `json:"country_info"`
	PriceTier   PriceTier   `json:"price_tier"`
	Climate     Climate     `json:"climate"`
	Activities  []Activity  `json:"activities"`
	IsCapital   bool        `json:"is_capital"`
	IsFavorite  bool        `json:"is_favorite"`
}

// WithFavorite returns a copy of d with IsFavorite set.
func (d Destination) WithFavorite(fav bool) Destination {
	out := d
	out.Activities = append([]Activity(nil), d.Activities...)
	out.IsFavorite = fav
	return out
}

// HasActivities reports whether d offers every activity in required.
func (d Destination) HasActivities(required []Activity) bool {
	for _, want := range required {
		found := false
		for _, a := range d.Activities {
			if a == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Image is a photo of a destination, either from the image provider or
// one of the local fallbacks.
type Image struct {
	ID              int64  `json:"id"`
	URL             string `json:"url"`
	Thumbnail       string `json:"thumbnail"`
	Alt             string `json:"alt"`
	Photographer    string `json:"photographer"`
	PhotographerURL string `json:"photographer_url"`
}

// Details is a destination together with its images and star rating.
type Details struct {
	Destination
	Rating int     `json:"rating"`
	Images []Image `json:"images"`
}
