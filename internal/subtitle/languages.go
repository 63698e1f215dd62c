package subtitle

import "strings"

// DefaultLanguage is assumed for labels the table does not know
const DefaultLanguage = "en"

// languageCodes maps lowercased display labels to ISO 639-1 codes
var languageCodes = map[string]string{
	"arabic":                  "ar",
	"bengali":                 "bn",
	"brazilian portuguese":    "pt",
	"bulgarian":               "bg",
	"chinese (simplified)":    "zh",
	"chinese (traditional)":   "zh",
	"chinese":                 "zh",
	"croatian":                "hr",
	"czech":                   "cs",
	"danish":                  "da",
	"dutch":                   "nl",
	"english":                 "en",
	"estonian":                "et",
	"farsi/persian":           "fa",
	"finnish":                 "fi",
	"french":                  "fr",
	"german":                  "de",
	"greek":                   "el",
	"hebrew":                  "he",
	"hindi":                   "hi",
	"hungarian":               "hu",
	"indonesian":              "id",
	"italian":                 "it",
	"japanese":                "ja",
	"korean":                  "ko",
	"malay":                   "ms",
	"norwegian":               "no",
	"persian":                 "fa",
	"polish":                  "pl",
	"portuguese (brazil)":     "pt",
	"portuguese":              "pt",
	"romanian":                "ro",
	"russian":                 "ru",
	"serbian":                 "sr",
	"slovak":                  "sk",
	"slovenian":               "sl",
	"spanish (latin america)": "es",
	"spanish":                 "es",
	"swedish":                 "sv",
	"thai":                    "th",
	"turkish":                 "tr",
	"ukrainian":               "uk",
	"vietnamese":              "vi",
}

// LanguageCode maps a display label such as "English" or "English - SDH"
// to its ISO 639-1 code, falling back to DefaultLanguage.
func LanguageCode(label string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	if code, ok := languageCodes[l]; ok {
		return code
	}
	// Strip qualifiers: "English - SDH", "English [CC]", "English (forced)"
	if i := strings.IndexAny(l, "-[("); i > 0 {
		if code, ok := languageCodes[strings.TrimSpace(l[:i])]; ok {
			return code
		}
	}
	// Already a code
	if len(l) == 2 {
		for _, code := range languageCodes {
			if code == l {
				return l
			}
		}
	}
	return DefaultLanguage
}
