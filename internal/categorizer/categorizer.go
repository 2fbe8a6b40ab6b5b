// Package categorizer implements offline categorisation for security
// equipment. Materials are scored against a static table of weighted token
// patterns plus learned token aliases; the highest scoring category above
// zero wins, with confidence capped at 1.0.
package categorizer

import (
	"regexp"
	"strings"

	"mywarehouse/internal/logging"
)

// Pattern maps a compiled regex to a category with a score weight.
// The label ends up in the evidence list so a guess can be explained.
type Pattern struct {
	Regex    *regexp.Regexp
	Weight   float64
	Category string
	Label    string
}

// patterns holds heuristics for common security equipment naming
// conventions. Matched against the normalized material text.
var patterns = []Pattern{
	// Cameras
	{regexp.MustCompile(`\bds 2cd`), 0.6, "Camera", "ds-2cd"},
	{regexp.MustCompile(`\bipc\b`), 0.5, "Camera", "ipc"},
	{regexp.MustCompile(`\bip cam|ipcam|bullet|dome`), 0.4, "Camera", "cam_keyword"},
	// NVR
	{regexp.MustCompile(`\bnvr\d*`), 0.6, "NVR", "nvr"},
	{regexp.MustCompile(`\bds 76|dhi nvr`), 0.5, "NVR", "nvr_prefix"},
	// DVR/XVR
	{regexp.MustCompile(`\bdvr\b`), 0.5, "DVR", "dvr"},
	{regexp.MustCompile(`\bxvr\b`), 0.5, "DVR", "xvr"},
	// Switches / PoE
	{regexp.MustCompile(`\bpoe\b`), 0.3, "Switch", "poe"},
	{regexp.MustCompile(`\bswitch|sg\d`), 0.5, "Switch", "switch"},
	// Sensors
	{regexp.MustCompile(`\bsensor\b|pir|motion`), 0.5, "Sensor", "sensor"},
	{regexp.MustCompile(`\bmagnetic|doorcontact`), 0.4, "Sensor", "doorcontact"},
	// Panels / Keypads
	{regexp.MustCompile(`\bpanel\b|hub|control|keypad`), 0.5, "Panel", "panel"},
	{regexp.MustCompile(`\bds pk`), 0.5, "Panel", "ds-pk"},
	// Access control / locks
	{regexp.MustCompile(`\breader\b|access|lock|strike`), 0.5, "Access Control", "access"},
	// Siren
	{regexp.MustCompile(`\bsiren\b|horn`), 0.5, "Siren", "siren"},
	// Power
	{regexp.MustCompile(`\bups\b|psu|power supply`), 0.5, "Power", "power"},
}

// Weight contributed by each learned alias token hit.
const aliasWeight = 0.25

var (
	nonAlnum   = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespace = regexp.MustCompile(`\s+`)
	familyRe   = regexp.MustCompile(`^([A-Za-z]+-\d+[A-Za-z]*)`)
)

// greeklish camera synonyms seen in field data
var synonyms = map[string]string{
	"κάμερα": "camera",
	"kamera": "camera",
	"καμερα": "camera",
}

// Fields carries the free-text attributes of a material the categorizer
// looks at. Kept independent of the store types so the store can depend
// on this package.
type Fields struct {
	Name        string
	Model       string
	Producer    string
	Description string
}

// Result is the outcome of a guess.
type Result struct {
	Category   string   // empty when nothing matched
	Confidence float64  // 0..1
	Family     string   // model family prefix, e.g. DS-2CD2343G2-I -> DS-2CD
	Evidence   []string // pattern labels and alias tokens that fired
}

// AliasSource provides learned token->category aliases. The store
// satisfies this.
type AliasSource interface {
	AliasMap() (map[string]string, error)
}

// Normalize lowercases, maps known synonyms, strips punctuation and
// compresses whitespace.
func Normalize(text string) string {
	text = strings.ToLower(text)
	for k, v := range synonyms {
		text = strings.ReplaceAll(text, k, v)
	}
	text = nonAlnum.ReplaceAllString(text, " ")
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

// ExtractFamily returns a model family prefix used to group materials.
// For example, DS-2CD2343G2-I -> DS-2CD.
func ExtractFamily(model string) string {
	if m := familyRe.FindStringSubmatch(model); m != nil {
		return m[1]
	}
	fields := strings.Fields(model)
	if len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// Guess scores the material against the pattern table and any learned
// aliases and returns the best category. A nil aliases source is allowed.
func Guess(f Fields, aliases AliasSource) Result {
	text := Normalize(strings.Join([]string{f.Name, f.Model, f.Producer, f.Description}, " "))
	result := Result{Family: ExtractFamily(f.Model)}

	scores := make(map[string]float64)
	evidence := make(map[string][]string)

	for _, p := range patterns {
		if p.Regex.MatchString(text) {
			scores[p.Category] += p.Weight
			evidence[p.Category] = append(evidence[p.Category], p.Label)
		}
	}

	if aliases != nil {
		aliasMap, err := aliases.AliasMap()
		if err != nil {
			logging.Get(logging.CategoryCategorizer).Warn("failed to load category aliases: %v", err)
		}
		seen := make(map[string]bool)
		for _, token := range strings.Fields(text) {
			if seen[token] {
				continue
			}
			seen[token] = true
			if cat, ok := aliasMap[token]; ok {
				scores[cat] += aliasWeight
				evidence[cat] = append(evidence[cat], "alias:"+token)
			}
		}
	}

	if len(scores) == 0 {
		return result
	}

	best := ""
	for cat, score := range scores {
		if best == "" || score > scores[best] || (score == scores[best] && cat < best) {
			best = cat
		}
	}

	result.Category = best
	result.Confidence = scores[best]
	if result.Confidence > 1.0 {
		result.Confidence = 1.0
	}
	result.Evidence = evidence[best]

	logging.CategorizerDebug("guess %q -> %s (%.2f) family=%s evidence=%v",
		f.Model, result.Category, result.Confidence, result.Family, result.Evidence)
	return result
}
