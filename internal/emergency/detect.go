// Package emergency implements detection, incident lifecycle, and the
// escalation protocol for tenant-reported emergencies.
package emergency

import "strings"

// Emergency types, in fixed detection priority order. When a message matches
// several types, the highest-priority one wins.
const (
	TypeFire       = "fire"
	TypeFlood      = "flood"
	TypeBreakIn    = "break_in"
	TypeGasLeak    = "gas_leak"
	TypeElectrical = "electrical"
	TypeMedical    = "medical"
	TypeOther      = "other"
)

// Detection confidence levels. High activates the protocol immediately;
// medium asks the tenant to confirm first.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
)

// Detection is the outcome of scanning one message.
type Detection struct {
	Type       string
	Confidence string
}

var typePriority = []string{TypeFire, TypeFlood, TypeBreakIn, TypeGasLeak, TypeElectrical, TypeMedical}

// typeKeywords holds the English and Swahili triggers per type. Single-word
// entries match whole words only; multi-word entries match as phrases.
var typeKeywords = map[string][]string{
	TypeFire: {
		"fire", "smoke", "burning", "flames",
		"moto", "moshi", "inaungua", "unawaka",
	},
	TypeFlood: {
		"flood", "flooding", "flooded", "burst pipe", "water everywhere",
		"mafuriko", "maji yamejaa", "bomba limepasuka",
	},
	TypeBreakIn: {
		"intruder", "thief", "thieves", "robbery", "burglar",
		"break in", "breaking in", "broke in", "broken into",
		"mwizi", "wezi", "wizi", "wameingia",
	},
	TypeGasLeak: {
		"gas leak", "gas leaking", "smell gas", "smell of gas", "gas smell",
		"gesi inavuja", "harufu ya gesi", "uvujaji wa gesi",
	},
	TypeElectrical: {
		"electric shock", "sparks", "sparking", "live wire", "wires burning",
		"umeme unanishtua", "cheche", "nyaya zinaungua",
	},
	TypeMedical: {
		"unconscious", "bleeding", "not breathing", "heart attack", "collapsed", "seizure",
		"amezimia", "anavuja damu", "hapumui", "ajali",
	},
}

// genericKeywords signal an unspecified emergency at medium confidence.
var genericKeywords = []string{
	"emergency", "help", "sos", "danger",
	"dharura", "msaada", "saidia", "okoa", "hatari",
}

// immediacyKeywords promote a generic match to high confidence.
var immediacyKeywords = []string{
	"now", "right now", "immediately", "urgent", "quickly", "hurry", "please help",
	"sasa", "hivi sasa", "haraka", "mara moja", "tafadhali saidia",
}

// Detect scans a message for emergency signals. Specific type keywords yield
// high confidence; generic distress words yield medium, promoted to high when
// an immediacy marker accompanies them. Returns false when nothing matches.
func Detect(text string) (Detection, bool) {
	lower := strings.ToLower(text)
	tokens := tokenSet(lower)

	for _, typ := range typePriority {
		if matchAny(lower, tokens, typeKeywords[typ]) {
			return Detection{Type: typ, Confidence: ConfidenceHigh}, true
		}
	}

	if matchAny(lower, tokens, genericKeywords) {
		confidence := ConfidenceMedium
		if matchAny(lower, tokens, immediacyKeywords) {
			confidence = ConfidenceHigh
		}
		return Detection{Type: TypeOther, Confidence: confidence}, true
	}
	return Detection{}, false
}

// matchAny checks keywords against the message. Whole-word matching for
// single words keeps "now" from firing inside "know".
func matchAny(lower string, tokens map[string]bool, keywords []string) bool {
	for _, kw := range keywords {
		if strings.ContainsRune(kw, ' ') {
			if strings.Contains(lower, kw) {
				return true
			}
		} else if tokens[kw] {
			return true
		}
	}
	return false
}

func tokenSet(lower string) map[string]bool {
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	})
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}
