package emotion

import (
	"fmt"
	"strings"
)

// patternChance is the probability that a response opener is wrapped in a
// connective template with a second phrase from the same bank.
const patternChance = 0.3

// Response carries the emotional steering for a single turn.
type Response struct {
	Tone              Tone   `json:"tone"`
	Scores            Vector `json:"emotion_scores"`
	ResponseOpener    string `json:"response_opener"`
	EmotionalMarkers  string `json:"emotional_markers"`
	ShouldShowEmpathy bool   `json:"should_show_empathy"`
	IsExcited         bool   `json:"is_excited"`
	IsCurious         bool   `json:"is_curious"`
	IsPlayful         bool   `json:"is_playful"`
}

// Respond analyzes text and composes tone-appropriate response elements:
// a randomly drawn opener (occasionally pattern-wrapped for variety) and
// emotional markers chosen from threshold-gated emoji pools.
func (e *Engine) Respond(text string) Response {
	scores := Analyze(text)
	tone := DetermineTone(scores)
	profile := toneProfiles[tone]

	var markers []string
	if scores.Happiness > 0.7 {
		markers = append(markers, e.pick(happinessMarkers))
	} else if scores.Sadness > 0.6 {
		markers = append(markers, e.pick(sadnessMarkers))
	}
	if scores.Excitement > 0.7 {
		markers = append(markers, e.pick(excitementMarkers))
	}
	if scores.Curiosity > 0.7 {
		markers = append(markers, e.pick(curiosityMarkers))
	}
	if scores.Empathy > 0.7 {
		markers = append(markers, e.pick(empathyMarkers))
	}
	if len(markers) == 0 {
		markers = append(markers, e.pick(profile.emojis))
	}

	opener := e.pick(profile.responses)
	if e.chance(patternChance) {
		pattern := e.pick(responsePatterns)
		if strings.Count(pattern, "%s") == 2 {
			followUp := e.pick(profile.responses)
			opener = fmt.Sprintf(pattern, opener, strings.ToLower(followUp))
		} else {
			opener = fmt.Sprintf(pattern, opener)
		}
	}

	return Response{
		Tone:              tone,
		Scores:            scores,
		ResponseOpener:    opener,
		EmotionalMarkers:  strings.Join(markers, " "),
		ShouldShowEmpathy: scores.Empathy > 0.6 && scores.Sadness > 0.4,
		IsExcited:         scores.Excitement > 0.7,
		IsCurious:         scores.Curiosity > 0.7,
		IsPlayful:         tone == TonePlayful,
	}
}

// Greeting returns a greeting phrase for the tone. An empty tone picks a
// random profile.
func (e *Engine) Greeting(tone Tone) string {
	profile, ok := toneProfiles[tone]
	if !ok {
		tones := []Tone{ToneFriendly, ToneProfessional, ToneEmpathetic, TonePlayful, ToneCurious}
		profile = toneProfiles[tones[e.intn(len(tones))]]
	}
	return e.pick(profile.greetings)
}

// Closing returns a closing phrase for the tone.
func (e *Engine) Closing(tone Tone) string {
	profile, ok := toneProfiles[tone]
	if !ok {
		profile = toneProfiles[ToneFriendly]
	}
	return e.pick(profile.closings)
}

// Pick selects one element from items using the engine's random source.
func Pick[T any](e *Engine, items []T) T {
	return items[e.intn(len(items))]
}

func (e *Engine) pick(items []string) string {
	return items[e.intn(len(items))]
}

func (e *Engine) intn(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Intn(n)
}

func (e *Engine) chance(p float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Float64() < p
}
