package wx

import "strings"

// phenomenonTable maps two-character METAR weather codes to display
// text. Decoding is display-only and lossy; classification never reads
// it.
var phenomenonTable = map[string]string{
	// Descriptors
	"MI": "shallow",
	"PR": "partial",
	"BC": "patches of",
	"DR": "drifting",
	"BL": "blowing",
	"SH": "showers of",
	"TS": "thunderstorm",
	"FZ": "freezing",
	// Precipitation
	"DZ": "drizzle",
	"RA": "rain",
	"SN": "snow",
	"SG": "snow grains",
	"IC": "ice crystals",
	"PL": "ice pellets",
	"GR": "hail",
	"GS": "small hail",
	"UP": "unknown precipitation",
	// Obscuration
	"BR": "mist",
	"FG": "fog",
	"FU": "smoke",
	"VA": "volcanic ash",
	"DU": "dust",
	"SA": "sand",
	"HZ": "haze",
	"PY": "spray",
	// Other
	"PO": "dust whirls",
	"SQ": "squalls",
	"FC": "funnel cloud",
	"SS": "sandstorm",
	"DS": "duststorm",
	"VC": "in the vicinity",
}

// DecodePhenomena splits a METAR weather phenomenon string into its raw
// token groups and a decoded display string. Each group optionally
// starts with an intensity marker ("-" light, "+" heavy) followed by
// two-character codes. Unrecognized codes are dropped from the decoded
// output; the raw groups are preserved as reported.
func DecodePhenomena(wxString string) (raw []string, decoded string) {
	groups := strings.Fields(wxString)
	if len(groups) == 0 {
		return nil, ""
	}

	var parts []string
	for _, group := range groups {
		raw = append(raw, group)

		var words []string
		rest := group
		if strings.HasPrefix(rest, "-") {
			words = append(words, "light")
			rest = rest[1:]
		} else if strings.HasPrefix(rest, "+") {
			words = append(words, "heavy")
			rest = rest[1:]
		}

		for len(rest) >= 2 {
			if name, ok := phenomenonTable[rest[:2]]; ok {
				words = append(words, name)
			}
			rest = rest[2:]
		}

		if len(words) > 0 {
			parts = append(parts, strings.Join(words, " "))
		}
	}

	return raw, strings.Join(parts, ", ")
}
