package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"
)

const (
	CountriesFile = "countries.json"
	CitiesFile    = "cities.json"

	defaultSearchLimit = 10
)

// ErrDataUnavailable is returned when the reference dataset cannot be read.
var ErrDataUnavailable = errors.New("reference data unavailable")

// Loader holds the country and city reference lists. The backing files are
// read at most once; every later call returns the same slices.
type Loader struct {
	fsys fs.FS

	once sync.Once
	done chan struct{}

	countries  []Country
	cities     []City
	lowerNames []string
	byID       map[int]int
	byCode     map[string]int
	err        error
}

// New returns a Loader reading countries.json and cities.json from fsys.
func New(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys, done: make(chan struct{})}
}

// NewFromDir returns a Loader reading from a directory on disk.
func NewFromDir(dir string) *Loader {
	return New(os.DirFS(dir))
}

// FromRecords returns an already loaded Loader over in-memory records.
func FromRecords(countries []Country, cities []City) *Loader {
	l := &Loader{done: make(chan struct{})}
	l.once.Do(func() {
		l.index(countries, cities)
		close(l.done)
	})
	return l
}

// wait starts the load on first use and blocks until it completes or ctx ends.
func (l *Loader) wait(ctx context.Context) error {
	l.once.Do(func() {
		go l.load()
	})
	select {
	case <-l.done:
		return l.err
	case <-ctx.Done():
		return fmt.Errorf("%w: waiting for dataset: %w", ErrDataUnavailable, ctx.Err())
	}
}

func (l *Loader) load() {
	defer close(l.done)
	defer func() {
		if r := recover(); r != nil {
			l.err = fmt.Errorf("%w: loading dataset panicked: %v", ErrDataUnavailable, r)
		}
	}()

	var countries []Country
	if err := decodeFile(l.fsys, CountriesFile, &countries); err != nil {
		l.err = err
		return
	}
	var cities []City
	if err := decodeFile(l.fsys, CitiesFile, &cities); err != nil {
		l.err = err
		return
	}
	l.index(countries, cities)
}

func decodeFile(fsys fs.FS, name string, v any) error {
	f, err := fsys.Open(name)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %w", ErrDataUnavailable, name, err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("%w: decoding %s: %w", ErrDataUnavailable, name, err)
	}
	return nil
}

func (l *Loader) index(countries []Country, cities []City) {
	l.countries = countries
	l.cities = cities
	l.byID = make(map[int]int, len(countries))
	l.byCode = make(map[string]int, 2*len(countries))
	for i, c := range countries {
		l.byID[c.ID] = i
		if c.ISO2 != "" {
			l.byCode[strings.ToUpper(c.ISO2)] = i
		}
		if c.ISO3 != "" {
			l.byCode[strings.ToUpper(c.ISO3)] = i
		}
	}
	l.lowerNames = make([]string, len(cities))
	for i, c := range cities {
		l.lowerNames[i] = strings.ToLower(c.Name)
	}
}

// Countries returns every country record.
func (l *Loader) Countries(ctx context.Context) ([]Country, error) {
	if err := l.wait(ctx); err != nil {
		return nil, err
	}
	return l.countries, nil
}

// Cities returns every city record.
func (l *Loader) Cities(ctx context.Context) ([]City, error) {
	if err := l.wait(ctx); err != nil {
		return nil, err
	}
	return l.cities, nil
}

// FindCountryByCode looks a country up by ISO2 or ISO3 code, case-insensitively.
// Returns nil, nil when no country matches.
func (l *Loader) FindCountryByCode(ctx context.Context, code string) (*Country, error) {
	if err := l.wait(ctx); err != nil {
		return nil, err
	}
	i, ok := l.byCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil, nil
	}
	c := l.countries[i]
	return &c, nil
}

// FindCountryByID returns the country with the given id, or nil, nil.
func (l *Loader) FindCountryByID(ctx context.Context, id int) (*Country, error) {
	if err := l.wait(ctx); err != nil {
		return nil, err
	}
	i, ok := l.byID[id]
	if !ok {
		return nil, nil
	}
	c := l.countries[i]
	return &c, nil
}

// SearchCitiesByName matches term against city names case-insensitively.
// Exact matches come first, then substring matches, each in dataset order.
func (l *Loader) SearchCitiesByName(ctx context.Context, term string, limit int) ([]City, error) {
	if err := l.wait(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil, nil
	}

	var exact, partial []City
	for i, name := range l.lowerNames {
		switch {
		case name == term:
			exact = append(exact, l.cities[i])
		case strings.Contains(name, term):
			partial = append(partial, l.cities[i])
		}
		if len(exact) >= limit {
			break
		}
	}

	out := append(exact, partial...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CitiesByCountry returns up to limit cities of the country with the given ISO2
// code, sorted by name.
func (l *Loader) CitiesByCountry(ctx context.Context, code string, limit int) ([]City, error) {
	if err := l.wait(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	code = strings.ToUpper(strings.TrimSpace(code))

	var out []City
	for _, c := range l.cities {
		if strings.ToUpper(c.CountryCode) == code {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
