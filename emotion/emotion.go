// Package emotion scores the emotional content of user messages and selects a
// conversational tone from the resulting vector. Scoring is keyword-table
// driven; there is no model inference on this path.
package emotion

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Vector holds the six emotion scalars. Every scalar stays within [0,1].
type Vector struct {
	Happiness  float64 `json:"happiness"`
	Sadness    float64 `json:"sadness"`
	Excitement float64 `json:"excitement"`
	Calmness   float64 `json:"calmness"`
	Curiosity  float64 `json:"curiosity"`
	Empathy    float64 `json:"empathy"`
}

// Baseline returns the starting vector every analysis begins from.
func Baseline() Vector {
	return Vector{
		Happiness:  0.5,
		Sadness:    0.2,
		Excitement: 0.4,
		Calmness:   0.6,
		Curiosity:  0.7,
		Empathy:    0.8,
	}
}

// Tone is a closed set of conversational registers.
type Tone string

const (
	ToneFriendly     Tone = "friendly"
	ToneProfessional Tone = "professional"
	ToneEmpathetic   Tone = "empathetic"
	TonePlayful      Tone = "playful"
	ToneCurious      Tone = "curious"
)

// Engine analyzes text and composes tone-appropriate response elements.
// The random source is injectable so tests can pin phrase selection.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine creates an Engine. A nil rng gets a time-seeded source.
func NewEngine(rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // phrase selection, not crypto
	}
	return &Engine{rng: rng}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// intensityMultiplier combines surface cues into a single multiplier:
// exclamation tiers, question tiers, ellipsis dampening, whole-message caps,
// and multi-character emoji cues. Cues compound multiplicatively.
func intensityMultiplier(text string) float64 {
	multiplier := 1.0

	if exclaims := strings.Count(text, "!"); exclaims > 0 {
		switch {
		case exclaims >= 3:
			multiplier *= intensityExclaim3
		case exclaims >= 2:
			multiplier *= intensityExclaim2
		default:
			multiplier *= intensityExclaim1
		}
	}

	if questions := strings.Count(text, "?"); questions > 0 {
		if questions >= 2 {
			multiplier *= intensityQuestion2
		} else {
			multiplier *= intensityQuestion
		}
	}

	if strings.Contains(text, "...") {
		multiplier *= intensityEllipsis
	}

	if len(text) > 3 && isShouting(text) {
		multiplier *= intensityAllCaps
	}

	for cue, m := range emojiModifiers {
		if strings.Contains(text, cue) {
			multiplier *= m
		}
	}

	return multiplier
}

// isShouting reports whether the text is entirely upper-cased and contains at
// least one cased letter.
func isShouting(text string) bool {
	return text == strings.ToUpper(text) && text != strings.ToLower(text)
}

// Analyze scores the emotional content of text. It starts from the baseline
// vector, derives an intensity multiplier from surface cues, then applies
// every keyword hit per trigger category with category-specific fan-out.
// Hits are not deduplicated: repeated cues are deliberate emphasis.
func Analyze(text string) Vector {
	scores := Baseline()
	lower := strings.ToLower(text)
	intensity := intensityMultiplier(text)

	for _, cat := range triggerCategories {
		for _, word := range cat.words {
			if !strings.Contains(lower, word) {
				continue
			}
			w := cat.weight * intensity
			switch cat.name {
			case "positive":
				scores.Happiness = clamp01(scores.Happiness + w)
				scores.Excitement = clamp01(scores.Excitement + w*0.5)
			case "negative":
				scores.Sadness = clamp01(scores.Sadness + w)
				scores.Empathy = clamp01(scores.Empathy + w)
			case "curiosity":
				scores.Curiosity = clamp01(scores.Curiosity + w)
			case "urgency":
				scores.Excitement = clamp01(scores.Excitement + w)
				scores.Calmness = clamp01(scores.Calmness - w*0.5)
			case "gratitude":
				scores.Happiness = clamp01(scores.Happiness + w*0.7)
				scores.Empathy = clamp01(scores.Empathy + w*0.3)
			}
		}
	}

	return scores
}

// DetermineTone maps an emotion vector to a tone. The rules form a priority
// list; the first match wins. All comparisons are strict.
func DetermineTone(v Vector) Tone {
	dominance := v.Happiness - v.Sadness

	switch {
	case v.Empathy > 0.7 && v.Sadness > 0.5:
		return ToneEmpathetic
	case v.Curiosity > 0.7:
		return ToneCurious
	case v.Excitement > 0.6 && v.Curiosity > 0.6:
		return TonePlayful
	case dominance > 0.4:
		return TonePlayful
	case v.Excitement > 0.7:
		return TonePlayful
	case dominance > -0.2:
		return ToneFriendly
	default:
		return ToneProfessional
	}
}
