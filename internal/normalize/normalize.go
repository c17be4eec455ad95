// Package normalize maps free-text team and stadium names onto canonical
// keys so the same real-world entity can be joined across sources that
// disagree on spelling, sponsor tokens and legal forms.
package normalize

import (
	"strings"
	"unicode"
)

// Profile selects the separator and identifier rules for a canonical key.
type Profile int

const (
	// ProfileSlug produces URL-path segments ("manchester-united").
	ProfileSlug Profile = iota
	// ProfileIdentifier produces database identifier components
	// ("manchester_united"). Identifiers cannot start with a digit, so a
	// leading digit group is rewritten as a word prefix.
	ProfileIdentifier
)

// exceptions holds names that do not reduce cleanly under the generic
// pattern pipeline. Matched against the raw input before anything else.
var exceptions = map[string]string{
	"SV Darmstadt 98":          "sv-darmstadt-98",
	"1.FC Heidenheim 1846":     "1-fc-heidenheim-1846",
	"Borussia Mönchengladbach": "mgladbach",
	"1.FC Köln":                "cologne",
	"Stade Brestois 29":        "brest",
	"Stade Rennais FC":         "rennes",
	"RCD Mallorca":             "real-mallorca",
	"RCD Espanyol Barcelona":   "espanyol",
	"SD Huesca":                "sd-huesca",
	"AS Saint-Étienne":         "st-etienne",
	"Hertha BSC":               "hertha-berlin",
	"1.FC Nuremberg":           "fc-nurnberg",
	"FC Girondins Bordeaux":    "bordeaux",
	"RC Lens":                  "rc-lens",
	"Dijon FCO":                "dijon",
	"1.FC Union Berlin":        "1-fc-union-berlin",
	"FC Augsburg":              "fc-augsburg",
	"1.FSV Mainz 05":           "mainz",
	"AC Ajaccio":               "ac-ajaccio",
	"AC Milan":                 "ac-milan",
	"Genoa CFC":                "genoa",
	"SS Lazio":                 "lazio",
	"ACF Fiorentina":           "fiorentina",
	"Chievo Verona":            "chievo",
}

// stripPatterns are removed in order; several later entries only become
// free-standing once an earlier entry has taken the surrounding token with
// it, so the order is load-bearing.
var stripPatterns = []string{
	" FC", "AFC ", " AFC", "SV ", "04 ", "VfL ", "TSG 1899 ", "VfB ", "LOSC ",
	" Calcio", "OGC ", " Foot 63", "AS ", "RC ", " Alsace", "Olympique ",
	"UD ", " UD", " CF", "US ", " de", "CA ", " Balompié", "Deportivo ",
	"SD ", "CD ", " SCO", "AJ ", "ESTAC ", "AC ", " AC", " Olympique", " SC",
	"EA ", "SM ", "SpVgg ", " 04", "FC ", " HSC", "Stade ", " 1919",
	"Hellas ", " BC", "SSC ", " 1909", "UC ", " 1913",
}

var charSubstitutions = []struct {
	old string
	new string
}{
	{"&", "and"},
	{".", "-"},
	{"í", "i"},
	{"á", "a"},
	{"é", "e"},
	{"î", "i"},
	{"ü", "u"},
	{"ö", "o"},
	{"ä", "a"},
	{"ç", "c"},
	{"ñ", "n"},
	{"è", "e"},
	{"ô", "o"},
}

// digitPrefixes rewrites a leading digit for the identifier profile.
var digitPrefixes = map[byte]string{
	'1': "first_",
	'2': "second_",
	'3': "third_",
}

// Normalize reduces a raw entity name to its canonical key under the given
// profile. Pure and deterministic; idempotent for ProfileIdentifier.
func Normalize(raw string, profile Profile) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return ""
	}

	if mapped, ok := exceptions[name]; ok {
		return applyProfile(mapped, profile)
	}

	for _, pattern := range stripPatterns {
		name = strings.ReplaceAll(name, pattern, "")
	}
	for _, sub := range charSubstitutions {
		name = strings.ReplaceAll(name, sub.old, sub.new)
	}

	return applyProfile(name, profile)
}

func applyProfile(name string, profile Profile) string {
	sep := byte('-')
	if profile == ProfileIdentifier {
		sep = '_'
	}

	name = strings.ToLower(strings.TrimSpace(name))

	var out strings.Builder
	out.Grow(len(name))
	lastSep := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z' || unicode.IsDigit(r):
			out.WriteRune(r)
			lastSep = false
		case r == ' ' || r == '-' || r == '_':
			if !lastSep && out.Len() > 0 {
				out.WriteByte(sep)
				lastSep = true
			}
		default:
			// Unmapped punctuation and residual diacritics are dropped.
		}
	}

	key := strings.Trim(out.String(), string(sep))
	if profile == ProfileIdentifier && key != "" {
		if prefix, ok := digitPrefixes[key[0]]; ok {
			rest := strings.TrimLeft(key, "0123456789")
			rest = strings.TrimLeft(rest, "_")
			if rest == "" {
				return strings.TrimSuffix(prefix, "_")
			}
			key = prefix + rest
		}
	}
	return key
}

// FixtureKey builds the cross-source join key for one fixture. Home and away
// order must match between sources; both sides use the slug profile.
func FixtureKey(home, away string) string {
	return Normalize(home, ProfileSlug) + "-vs-" + Normalize(away, ProfileSlug)
}
