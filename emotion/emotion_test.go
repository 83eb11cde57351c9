package emotion

import (
	"math/rand"
	"strings"
	"testing"
)

func vectorScalars(v Vector) map[string]float64 {
	return map[string]float64{
		"happiness":  v.Happiness,
		"sadness":    v.Sadness,
		"excitement": v.Excitement,
		"calmness":   v.Calmness,
		"curiosity":  v.Curiosity,
		"empathy":    v.Empathy,
	}
}

func TestAnalyzeScoresStayBounded(t *testing.T) {
	inputs := []string{
		"",
		"hello",
		"this is great great great awesome wonderful amazing!!! I love love love it!!!",
		"I hate hate hate this terrible awful sad bad miserable situation!!! 😢😠",
		"why how what when where who which??? explain explain explain",
		"HELP NOW URGENT ASAP EMERGENCY!!!",
		"thanks thanks thanks, I really appreciate it, so grateful ❤️",
		strings.Repeat("fantastic perfect excellent brilliant ", 50),
	}
	for _, input := range inputs {
		v := Analyze(input)
		for name, score := range vectorScalars(v) {
			if score < 0 || score > 1 {
				t.Errorf("Analyze(%q): %s = %v out of [0,1]", input, name, score)
			}
		}
	}
}

func TestAnalyzeBaselineForNeutralText(t *testing.T) {
	v := Analyze("zzz qqq")
	if v != Baseline() {
		t.Errorf("Expected baseline vector for neutral text, got %+v", v)
	}
}

func TestAnalyzePositiveRaisesHappinessAndHalfExcitement(t *testing.T) {
	v := Analyze("great")
	base := Baseline()
	if v.Happiness <= base.Happiness {
		t.Errorf("Expected happiness above baseline, got %v", v.Happiness)
	}
	wantHappiness := base.Happiness + 0.1
	wantExcitement := base.Excitement + 0.05
	if diff := v.Happiness - wantHappiness; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Expected happiness %v, got %v", wantHappiness, v.Happiness)
	}
	if diff := v.Excitement - wantExcitement; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Expected excitement %v, got %v", wantExcitement, v.Excitement)
	}
}

func TestAnalyzeUrgencyLowersCalmness(t *testing.T) {
	v := Analyze("urgent")
	if v.Calmness >= Baseline().Calmness {
		t.Errorf("Expected calmness below baseline, got %v", v.Calmness)
	}
}

func TestIntensityMultiplierTiers(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"fine", 1.0},
		{"fine!", 1.5},
		{"fine!!", 2.0},
		{"fine!!!", 2.5},
		{"fine!!!!!!", 2.5},
		{"fine?", 1.2},
		{"fine??", 1.5},
		{"fine...", 0.8},
		{"FINE", 1.8},
		{"HI", 1.0}, // too short for the caps multiplier
		{"fine 😢", 1.4},
		{"fine!?", 1.5 * 1.2},
	}
	for _, tt := range tests {
		got := intensityMultiplier(tt.text)
		if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("intensityMultiplier(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestDetermineTonePriorityOrder(t *testing.T) {
	base := Baseline()
	tests := []struct {
		name   string
		vector Vector
		want   Tone
	}{
		{
			name:   "empathetic when empathy and sadness high",
			vector: Vector{Empathy: 0.71, Sadness: 0.51, Happiness: 0.9, Curiosity: 0.9},
			want:   ToneEmpathetic,
		},
		{
			name:   "empathy rule is strict at the boundary",
			vector: Vector{Empathy: 0.7, Sadness: 0.5, Curiosity: 0.71},
			want:   ToneCurious,
		},
		{
			name:   "curious when curiosity high",
			vector: Vector{Curiosity: 0.71, Happiness: 0.3, Sadness: 0.3},
			want:   ToneCurious,
		},
		{
			name:   "curiosity rule is strict at the boundary",
			vector: Vector{Curiosity: 0.7, Happiness: 0.5, Sadness: 0.5},
			want:   ToneFriendly,
		},
		{
			name:   "playful on excitement plus curiosity",
			vector: Vector{Excitement: 0.61, Curiosity: 0.61, Sadness: 0.5},
			want:   TonePlayful,
		},
		{
			name:   "playful on happiness dominance",
			vector: Vector{Happiness: 0.9, Sadness: 0.2},
			want:   TonePlayful,
		},
		{
			name:   "dominance rule is strict at 0.4",
			vector: Vector{Happiness: 0.6, Sadness: 0.2},
			want:   ToneFriendly,
		},
		{
			name:   "playful on excitement alone",
			vector: Vector{Excitement: 0.71, Happiness: 0.2, Sadness: 0.2},
			want:   TonePlayful,
		},
		{
			name:   "professional when clearly negative",
			vector: Vector{Happiness: 0.1, Sadness: 0.5},
			want:   ToneProfessional,
		},
		{
			name:   "baseline falls through to friendly",
			vector: base,
			want:   ToneFriendly, // curiosity sits exactly at 0.7; the rule is strict
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineTone(tt.vector); got != tt.want {
				t.Errorf("DetermineTone(%+v) = %v, want %v", tt.vector, got, tt.want)
			}
		})
	}
}

func TestDetermineToneIsPure(t *testing.T) {
	v := Analyze("I am so happy and excited today!")
	first := DetermineTone(v)
	for i := 0; i < 10; i++ {
		if got := DetermineTone(v); got != first {
			t.Fatalf("DetermineTone returned %v then %v for the same vector", first, got)
		}
	}
}

func TestRespondFlagsFollowThresholds(t *testing.T) {
	e := NewEngine(rand.New(rand.NewSource(1)))
	resp := e.Respond("I am sad, heartbroken, depressed, miserable and upset")
	if !resp.ShouldShowEmpathy {
		t.Errorf("Expected empathy flag for sad message, scores %+v", resp.Scores)
	}
	if resp.Tone != ToneEmpathetic {
		t.Errorf("Expected empathetic tone, got %v", resp.Tone)
	}

	resp = e.Respond("why is that? how does it work?")
	if !resp.IsCurious {
		t.Errorf("Expected curiosity flag, scores %+v", resp.Scores)
	}
}

func TestRespondIsDeterministicUnderFixedSeed(t *testing.T) {
	a := NewEngine(rand.New(rand.NewSource(42)))
	b := NewEngine(rand.New(rand.NewSource(42)))
	for i := 0; i < 20; i++ {
		ra := a.Respond("that is awesome news!")
		rb := b.Respond("that is awesome news!")
		if ra.ResponseOpener != rb.ResponseOpener || ra.EmotionalMarkers != rb.EmotionalMarkers {
			t.Fatalf("Seeded engines diverged at turn %d: %+v vs %+v", i, ra, rb)
		}
	}
}

func TestRespondAlwaysHasOpenerAndMarkers(t *testing.T) {
	e := NewEngine(rand.New(rand.NewSource(7)))
	for i := 0; i < 50; i++ {
		resp := e.Respond("hello there")
		if resp.ResponseOpener == "" {
			t.Fatal("Expected non-empty response opener")
		}
		if resp.EmotionalMarkers == "" {
			t.Fatal("Expected non-empty emotional markers")
		}
	}
}

func TestGreetingComesFromToneBank(t *testing.T) {
	e := NewEngine(rand.New(rand.NewSource(3)))
	greeting := e.Greeting(TonePlayful)
	found := false
	for _, g := range toneProfiles[TonePlayful].greetings {
		if g == greeting {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Greeting %q not in playful bank", greeting)
	}
}

func TestClosingComesFromToneBank(t *testing.T) {
	e := NewEngine(rand.New(rand.NewSource(3)))
	closing := e.Closing(ToneEmpathetic)
	found := false
	for _, c := range toneProfiles[ToneEmpathetic].closings {
		if c == closing {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Closing %q not in empathetic bank", closing)
	}
}

func TestClosingUnknownToneFallsBackToFriendly(t *testing.T) {
	e := NewEngine(rand.New(rand.NewSource(3)))
	closing := e.Closing(Tone("mysterious"))
	found := false
	for _, c := range toneProfiles[ToneFriendly].closings {
		if c == closing {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Closing %q not in friendly bank", closing)
	}
}
