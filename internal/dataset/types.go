package dataset

import (
	"strconv"
	"strings"
)

// Country is a country reference record in the countries-states-cities layout.
type Country struct {
	ID             int               `json:"id"`
	Name           string            `json:"name"`
	ISO3           string            `json:"iso3"`
	ISO2           string            `json:"iso2"`
	Capital        string            `json:"capital"`
	Currency       string            `json:"currency"`
	CurrencyName   string            `json:"currency_name"`
	CurrencySymbol string            `json:"currency_symbol"`
	Region         string            `json:"region"`
	Subregion      string            `json:"subregion"`
	Translations   map[string]string `json:"translations"`
	Latitude       Coord             `json:"latitude"`
	Longitude      Coord             `json:"longitude"`
}

// LocalizedName returns the country name for locale, or the English name when
// no translation exists.
func (c Country) LocalizedName(locale string) string {
	if name := c.Translations[locale]; name != "" {
		return name
	}
	return c.Name
}

// City is a city reference record.
type City struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	StateID     int    `json:"state_id"`
	StateName   string `json:"state_name"`
	CountryID   int    `json:"country_id"`
	CountryCode string `json:"country_code"`
	CountryName string `json:"country_name"`
	Latitude    Coord  `json:"latitude"`
	Longitude   Coord  `json:"longitude"`
}

// IsCapitalOf reports whether c is the capital of country.
func (c City) IsCapitalOf(country Country) bool {
	return country.Capital != "" && strings.EqualFold(country.Capital, c.Name)
}

// Coord is a coordinate that decodes from a JSON number or a numeric string.
// Unparseable values decode as zero.
type Coord float64

func (c *Coord) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*c = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*c = 0
		return nil
	}
	*c = Coord(f)
	return nil
}
