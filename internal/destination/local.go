package destination

import (
	"fmt"
	"html"
	"net/url"
	"unicode/utf8"
)

var placeholderColors = []string{"#3B82F6", "#EF4444", "#10B981", "#F59E0B", "#8B5CF6", "#EC4899"}

const placeholderSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 800 600">` +
	`<rect width="800" height="600" fill="%s"/>` +
	`<text x="400" y="300" text-anchor="middle" dominant-baseline="middle" font-family="sans-serif" font-size="48" font-weight="bold" fill="#FFFFFF">%s</text>` +
	`</svg>`

// Placeholder renders a solid-colour SVG card with the city name. The
// colour depends only on the name, so repeated calls return equal images.
func Placeholder(city string) Image {
	color := placeholderColors[utf8.RuneCountInString(city)%len(placeholderColors)]
	name := html.EscapeString(city)
	svg := func(w, h int) string {
		return "data:image/svg+xml," + url.PathEscape(fmt.Sprintf(placeholderSVG, w, h, color, name))
	}
	return Image{
		URL:          svg(800, 600),
		Thumbnail:    svg(400, 300),
		Alt:          "Placeholder for " + city,
		Photographer: "Destinations",
	}
}

// LocalImages is the offline image set for a city: the placeholder card,
// followed by the country flag when flagURL is known.
func LocalImages(city, country, flagURL string) []Image {
	imgs := []Image{Placeholder(city)}
	if flagURL == "" {
		return imgs
	}
	alt := "Flag"
	if country != "" {
		alt = "Flag of " + country
	}
	return append(imgs, Image{
		ID:        -1,
		URL:       flagURL,
		Thumbnail: flagURL,
		Alt:       alt,
	})
}
