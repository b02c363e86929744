package services

import (
	"regexp"
	"strings"

	"dispatch-route-engine/internal/domain"
)

// Dispatchers paste addresses straight out of spreadsheets and text
// threads, so raw input carries gate codes, notes, story counts, and
// inconsistent abbreviations. The variant generator turns one raw address
// into an ordered, de-duplicated list of candidate queries, from most to
// least specific: full-cleaned, junk-stripped, abbreviation-expanded,
// street-only, street-only-expanded, and a ZIP-stripped fallback.

var (
	countryExpr = regexp.MustCompile(`(?i)[,\s]+(?:USA|U\.S\.A\.|United States(?: of America)?|US)\.?\s*$`)
	storyExpr   = regexp.MustCompile(`(?i)\b(?:\d+|one|two|three|single|multi)[-\s]?stor(?:y|ey|ies)\b\.?`)
	zipExpr     = regexp.MustCompile(`\s*\b\d{5}(?:-\d{4})?\b\s*$`)
	spaceExpr   = regexp.MustCompile(`\s+`)
)

// Junk markers: everything from the first marker onward is an annotation
// (gate code, note), never part of the postal address.
var junkMarkers = []string{"#", "(", "[", " - "}

var abbreviations = map[string]string{
	"n":    "North",
	"s":    "South",
	"e":    "East",
	"w":    "West",
	"ne":   "Northeast",
	"nw":   "Northwest",
	"se":   "Southeast",
	"sw":   "Southwest",
	"st":   "Street",
	"ave":  "Avenue",
	"av":   "Avenue",
	"rd":   "Road",
	"dr":   "Drive",
	"blvd": "Boulevard",
	"ln":   "Lane",
	"ct":   "Court",
	"pl":   "Place",
	"pkwy": "Parkway",
	"cir":  "Circle",
	"hwy":  "Highway",
	"trl":  "Trail",
	"ter":  "Terrace",
}

// variantGenerator produces candidate query strings for one region. The
// street-boundary expression recognizes either a comma or a known regional
// city name as the end-of-street marker.
type variantGenerator struct {
	streetExpr *regexp.Regexp
}

func newVariantGenerator(region domain.Region) *variantGenerator {
	alts := make([]string, 0, len(region.Cities))
	for _, city := range region.Cities {
		alts = append(alts, regexp.QuoteMeta(city))
	}
	expr := regexp.MustCompile(`(?i)^(.+?)(?:\s*,|\s+(?:` + strings.Join(alts, "|") + `)\b)`)
	return &variantGenerator{streetExpr: expr}
}

// Candidates returns the ordered candidate queries for one raw address.
func (g *variantGenerator) Candidates(raw string) []string {
	cleaned := cleanAddress(raw)
	if cleaned == "" {
		return nil
	}

	junkStripped := stripTrailingJunk(cleaned)
	street := g.streetOnly(junkStripped)

	ordered := []string{
		cleaned,
		junkStripped,
		expandAbbreviations(junkStripped),
		street,
		expandAbbreviations(street),
		stripZip(junkStripped),
	}

	seen := make(map[string]struct{}, len(ordered))
	out := make([]string, 0, len(ordered))
	for _, c := range ordered {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		key := strings.ToLower(c)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}

	return out
}

// cleanAddress removes country tokens and story qualifiers and collapses
// whitespace. The raw string itself is never mutated elsewhere: it stays
// the cache key.
func cleanAddress(raw string) string {
	s := countryExpr.ReplaceAllString(raw, "")
	s = storyExpr.ReplaceAllString(s, "")
	s = spaceExpr.ReplaceAllString(s, " ")
	s = strings.Trim(s, " ,")
	return s
}

// stripTrailingJunk cuts the address at the first annotation marker.
func stripTrailingJunk(s string) string {
	cut := len(s)
	for _, marker := range junkMarkers {
		if idx := strings.Index(s, marker); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	return strings.Trim(s[:cut], " ,")
}

// streetOnly extracts the leading street portion, bounded by the first
// comma or recognized city name. Returns "" when no boundary is found or
// the match would be the whole string.
func (g *variantGenerator) streetOnly(s string) string {
	m := g.streetExpr.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	street := strings.Trim(m[1], " ,")
	if street == "" || strings.EqualFold(street, s) {
		return ""
	}
	return street
}

// expandAbbreviations rewrites directional and street-suffix abbreviations
// to their full words, token by token, preserving trailing punctuation.
func expandAbbreviations(s string) string {
	if s == "" {
		return ""
	}

	tokens := strings.Fields(s)
	for i, tok := range tokens {
		word := tok
		suffix := ""
		for len(word) > 0 {
			last := word[len(word)-1]
			if last == ',' || last == '.' {
				suffix = string(last) + suffix
				word = word[:len(word)-1]
				continue
			}
			break
		}
		if full, ok := abbreviations[strings.ToLower(word)]; ok {
			// A trailing period is part of the abbreviation, not the
			// expanded word.
			suffix = strings.TrimPrefix(suffix, ".")
			tokens[i] = full + suffix
		}
	}

	return strings.Join(tokens, " ")
}

// stripZip drops a trailing ZIP or ZIP+4 code.
func stripZip(s string) string {
	return strings.Trim(zipExpr.ReplaceAllString(s, ""), " ,")
}
