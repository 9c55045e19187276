// Package trust scores how far a shopping result can be trusted.
package trust

import (
	"math"
	"strings"

	"github.com/yf-2009/veribuy/internal/models"
)

// Tag is the verdict shown next to a result.
type Tag int

const (
	Verified Tag = iota
	Mixed
	Flagged
)

func (t Tag) String() string {
	switch t {
	case Verified:
		return "Verified"
	case Mixed:
		return "Mixed"
	default:
		return "Flagged"
	}
}

// MarshalText encodes the tag by name.
func (t Tag) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Tone drives how a verdict is styled.
type Tone int

const (
	Good Tone = iota
	Warn
	Bad
)

// Style holds the colours used to paint a tone.
type Style struct {
	Border     string
	Background string
	Text       string
}

type toneInfo struct {
	name  string
	label string
	style Style
}

var tones = [...]toneInfo{
	Good: {"good", "Trusted", Style{"rgba(54,211,153,.35)", "rgba(54,211,153,.10)", "rgba(240,255,250,.92)"}},
	Warn: {"warn", "Mixed", Style{"rgba(251,191,36,.35)", "rgba(251,191,36,.10)", "rgba(255,250,235,.92)"}},
	Bad:  {"bad", "Flagged", Style{"rgba(251,113,133,.35)", "rgba(251,113,133,.10)", "rgba(255,240,244,.92)"}},
}

// NeutralStyle is used for status that carries no verdict.
var NeutralStyle = Style{"rgba(255,255,255,.14)", "rgba(255,255,255,.05)", "rgba(255,255,255,.70)"}

func (t Tone) info() toneInfo {
	if t < Good || t > Bad {
		return tones[Bad]
	}
	return tones[t]
}

func (t Tone) String() string { return t.info().name }

// Label is the comparison-table wording for the tone.
func (t Tone) Label() string { return t.info().label }

// Style returns the colour set for the tone.
func (t Tone) Style() Style { return t.info().style }

// MarshalText encodes the tone by name.
func (t Tone) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Assessment is the outcome of scoring one product.
type Assessment struct {
	Score   int      `json:"score"`
	Tag     Tag      `json:"tag"`
	Tone    Tone     `json:"tone"`
	Reasons []string `json:"reasons"`
}

// FirstReason returns the reason surfaced in compact displays, or "".
func (a Assessment) FirstReason() string {
	if len(a.Reasons) == 0 {
		return ""
	}
	return a.Reasons[0]
}

const (
	baseScore = 72

	ReasonNonMajor     = "Non-major seller"
	ReasonNoRating     = "No rating signal"
	ReasonNoReviews    = "No review count"
	ReasonFewReviews   = "Low review volume"
	lowReviewThreshold = 20
	highReviewVolume   = 300
)

var majorRetailers = []string{
	"sephora", "ulta", "target", "walmart", "amazon", "cvs", "walgreens", "macys", "kohls",
}

// IsMajorRetailer reports whether source names a known large retailer.
// Matching is a case-insensitive substring test.
func IsMajorRetailer(source *string) bool {
	if source == nil {
		return false
	}
	s := strings.ToLower(*source)
	for _, m := range majorRetailers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// Score rates a product. strict doubles the penalty for missing signals.
func Score(p models.Product, strict bool) Assessment {
	score := baseScore
	var reasons []string

	if IsMajorRetailer(p.Source) {
		score += 10
	} else {
		score -= 5
		reasons = append(reasons, ReasonNonMajor)
	}

	if p.Rating == nil {
		score -= pick(strict, 12, 6)
		reasons = append(reasons, ReasonNoRating)
	}

	// Unknown review counts carry the same penalty as zero.
	reviews := 0
	if p.Reviews != nil {
		reviews = *p.Reviews
	}
	switch {
	case reviews == 0:
		score -= pick(strict, 14, 7)
		reasons = append(reasons, ReasonNoReviews)
	case reviews < lowReviewThreshold:
		score -= pick(strict, 9, 5)
		reasons = append(reasons, ReasonFewReviews)
	case reviews > highReviewVolume:
		score += 6
	}

	score = max(0, min(100, score))
	tag, tone := classify(score)
	return Assessment{Score: score, Tag: tag, Tone: tone, Reasons: reasons}
}

func classify(score int) (Tag, Tone) {
	switch {
	case score < 55:
		return Flagged, Bad
	case score < 70:
		return Mixed, Warn
	default:
		return Verified, Good
	}
}

func pick(strict bool, hard, soft int) int {
	if strict {
		return hard
	}
	return soft
}

// Aspect is one line of the illustrative multi-aspect rating.
type Aspect struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

var aspectOffsets = []struct {
	name   string
	offset float64
}{
	{"Value", 2},
	{"Longevity", 1},
	{"Comfort", 3},
	{"Pigmentation", 0},
}

// Aspects derives demo per-aspect ratings on a 3.5 to 4.9 scale from a trust score.
func Aspects(score int) []Aspect {
	base := 3.6 + float64(score)/100*1.2
	out := make([]Aspect, 0, len(aspectOffsets))
	for _, a := range aspectOffsets {
		v := max(3.5, min(4.9, base+(a.offset-1.5)*0.08))
		out = append(out, Aspect{Name: a.name, Score: math.Round(v*10) / 10})
	}
	return out
}
