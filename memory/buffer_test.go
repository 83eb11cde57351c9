package memory

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/emberworks/aria/emotion"
)

func newTestBuffer(t *testing.T, threshold int) (*Buffer, *Store) {
	t.Helper()
	store := NewStore(setupTestDB(t), Config{}, rand.New(rand.NewSource(1)), zerolog.Nop())
	return NewBuffer(store, threshold, zerolog.Nop()), store
}

func exchange(userInput, botResponse string, tone emotion.Tone) Exchange {
	return Exchange{
		UserInput:        userInput,
		BotResponse:      botResponse,
		EmotionalContext: emotion.Response{Tone: tone},
		Timestamp:        time.Now(),
	}
}

func TestBufferHoldsBelowThreshold(t *testing.T) {
	buf, store := newTestBuffer(t, 5)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		buf.Append(ctx, "u1", exchange(fmt.Sprintf("message %d", i), "reply", emotion.ToneFriendly))
	}
	if got := buf.Len("u1"); got != 4 {
		t.Errorf("expected 4 buffered exchanges, got %d", got)
	}
	// Exchanges persist immediately; only summarization waits for the threshold.
	if got := store.GetRecentMemories(ctx, "u1", 10); len(got) != 4 {
		t.Errorf("expected 4 persisted exchanges, got %d", len(got))
	}
	if got := store.GetMemorySummaries(ctx, "u1", 10); len(got) != 0 {
		t.Errorf("expected no summaries below threshold, got %d", len(got))
	}
}

func TestBufferFlushesAtThreshold(t *testing.T) {
	buf, store := newTestBuffer(t, 3)
	ctx := context.Background()

	buf.Append(ctx, "u1", exchange("I watched a great movie yesterday", "nice!", emotion.ToneFriendly))
	buf.Append(ctx, "u1", exchange("the film had amazing actors", "sounds good", emotion.ToneFriendly))
	buf.Append(ctx, "u1", exchange("do you like cinema?", "I do!", emotion.ToneCurious))

	if got := buf.Len("u1"); got != 0 {
		t.Errorf("expected empty buffer after flush, got %d", got)
	}
	recent := store.GetRecentMemories(ctx, "u1", 10)
	if len(recent) != 3 {
		t.Errorf("expected 3 persisted exchanges, got %d", len(recent))
	}

	summaries := store.GetMemorySummaries(ctx, "u1", 10)
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	if !strings.Contains(summaries[0].Text, "movies") {
		t.Errorf("expected summary to mention movies, got %q", summaries[0].Text)
	}
	if !strings.Contains(summaries[0].Text, "friendly") {
		t.Errorf("expected friendly as dominant tone, got %q", summaries[0].Text)
	}
	if !strings.Contains(summaries[0].Text, "3 exchanges") {
		t.Errorf("expected exchange count in summary, got %q", summaries[0].Text)
	}
}

func TestBufferFlushRaisesImportanceForPersonalInfo(t *testing.T) {
	buf, store := newTestBuffer(t, 2)
	ctx := context.Background()

	buf.Append(ctx, "u1", exchange("my name is Ada", "hi Ada!", emotion.ToneFriendly))
	buf.Append(ctx, "u1", exchange("just saying hello", "hello!", emotion.ToneFriendly))

	important := store.GetImportantMemories(ctx, "u1", 10)
	if len(important) != 1 {
		t.Fatalf("expected personal-info exchange to be important, got %d", len(important))
	}
	if important[0].Importance != ImportanceIdentity {
		t.Errorf("expected identity importance, got %d", important[0].Importance)
	}
	if !strings.Contains(important[0].Text, "my name is Ada") {
		t.Errorf("unexpected important memory text %q", important[0].Text)
	}
}

func TestBufferSummaryWithoutKnownTopics(t *testing.T) {
	buf, store := newTestBuffer(t, 2)
	ctx := context.Background()

	buf.Append(ctx, "u1", exchange("hmm", "yes?", emotion.ToneFriendly))
	buf.Append(ctx, "u1", exchange("ok", "alright", emotion.ToneFriendly))

	summaries := store.GetMemorySummaries(ctx, "u1", 10)
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	if !strings.Contains(summaries[0].Text, "various topics") {
		t.Errorf("expected various-topics fallback, got %q", summaries[0].Text)
	}
}

func TestBufferIsolatesUsers(t *testing.T) {
	buf, store := newTestBuffer(t, 3)
	ctx := context.Background()

	buf.Append(ctx, "u1", exchange("one", "r", emotion.ToneFriendly))
	buf.Append(ctx, "u1", exchange("two", "r", emotion.ToneFriendly))
	buf.Append(ctx, "u2", exchange("other", "r", emotion.ToneFriendly))

	if got := buf.Len("u1"); got != 2 {
		t.Errorf("expected 2 buffered for u1, got %d", got)
	}
	if got := buf.Len("u2"); got != 1 {
		t.Errorf("expected 1 buffered for u2, got %d", got)
	}
	if got := store.GetMemorySummaries(ctx, "u1", 10); len(got) != 0 {
		t.Errorf("u1 should not have summarized yet, got %d summaries", len(got))
	}
}

func TestContainsPersonalInfo(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"my name is Ada", true},
		{"I work as an engineer", true},
		{"I live in Berlin", true},
		{"nice weather today", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ContainsPersonalInfo(tt.text); got != tt.want {
			t.Errorf("ContainsPersonalInfo(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestDominantToneTieBreaksDeterministically(t *testing.T) {
	counts := map[string]int{"playful": 2, "curious": 2, "friendly": 1}
	if got := dominantTone(counts); got != "curious" {
		t.Errorf("expected lexicographically smallest tied tone, got %q", got)
	}
	if got := dominantTone(nil); got != "neutral" {
		t.Errorf("expected neutral for empty counts, got %q", got)
	}
}
