package helpers

import (
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/siportevent/siports/internal/client"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	foldCaser  = cases.Fold()
	spacesRe   = regexp.MustCompile(`\s+`)
	slugCharRe = regexp.MustCompile(`[^a-z0-9\- ]+`)
	hyphensRe  = regexp.MustCompile(`[- ]+`)
)

// Fold returns s without diacritics, case folded and with runs of white space collapsed,
// so that "Équipements  Portuaires" and "equipements portuaires" compare equal.
func Fold(s string) string {
	normalized := norm.NFD.String(s)

	withoutDiacritics, _, err := transform.String(runes.Remove(runes.In(unicode.Mn)), normalized)
	if err != nil {
		withoutDiacritics = normalized
	}

	folded := foldCaser.String(withoutDiacritics)
	return strings.TrimSpace(spacesRe.ReplaceAllString(folded, " "))
}

// Slug generates a URL-friendly identifier, e.g for category filter links
func Slug(input string) string {
	hyphenated := slugCharRe.ReplaceAllString(Fold(input), "-")
	hyphenated = hyphensRe.ReplaceAllString(hyphenated, "-")
	return strings.Trim(hyphenated, "-")
}

// ExhibitorFilter selects exhibitors from the directory
type ExhibitorFilter struct {
	Query    string // matched against name, category, description and specialties
	Category string // exact match (case and accent insensitive)
}

// FilterExhibitors returns the exhibitors matching the filter, in their original order
func FilterExhibitors(exhibitors []client.Exhibitor, f ExhibitorFilter) []client.Exhibitor {
	query := Fold(f.Query)
	category := Fold(f.Category)

	out := make([]client.Exhibitor, 0, len(exhibitors))
	for _, e := range exhibitors {
		if category != "" && Fold(e.Category) != category {
			continue
		}
		if query != "" && !matchesQuery(e, query) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func matchesQuery(e client.Exhibitor, foldedQuery string) bool {
	fields := append([]string{e.Name, e.Category, e.Description}, e.Specialties...)
	for _, field := range fields {
		if strings.Contains(Fold(field), foldedQuery) {
			return true
		}
	}
	return false
}

// Categories returns the distinct exhibitor categories sorted alphabetically (ignoring accents).
// The first spelling seen is kept when categories differ only by case or accents.
func Categories(exhibitors []client.Exhibitor) []string {
	seen := make(map[string]bool)
	var categories []string
	for _, e := range exhibitors {
		key := Fold(e.Category)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		categories = append(categories, e.Category)
	}

	slices.SortFunc(categories, func(a, b string) int {
		return strings.Compare(Fold(a), Fold(b))
	})
	return categories
}
