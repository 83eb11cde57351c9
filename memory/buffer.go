package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// personalInfoKeywords flag exchanges worth keeping at identity importance.
var personalInfoKeywords = []string{
	"name", "live", "from", "work", "job", "like", "love", "hate",
	"dislike", "favorite", "family", "friend", "pet", "hobby", "born",
	"grew up", "grow up", "childhood", "school", "college", "university",
}

// topicKeywords maps membership cues to topic labels for summaries.
// Evaluated in slice order so summaries list topics deterministically.
var topicKeywords = []struct {
	topic string
	words []string
}{
	{"movies", []string{"movie", "film"}},
	{"music", []string{"music", "song"}},
	{"reading", []string{"book", "read"}},
	{"sports", []string{"sport", "game"}},
	{"work", []string{"work", "job"}},
	{"travel", []string{"travel", "vacation"}},
}

const maxSummaryTopics = 3

// Buffer is the per-user short-term exchange buffer. Reaching the threshold
// triggers summarization into the store, after which the user's buffer is
// cleared. Callers serialize per user; the internal mutex only protects the
// keyed map across users.
type Buffer struct {
	store     *Store
	threshold int
	logger    zerolog.Logger

	mu        sync.Mutex
	exchanges map[string][]Exchange
}

// NewBuffer creates a Buffer flushing into store every threshold exchanges.
func NewBuffer(store *Store, threshold int, logger zerolog.Logger) *Buffer {
	if threshold <= 0 {
		threshold = 5
	}
	return &Buffer{
		store:     store,
		threshold: threshold,
		logger:    logger.With().Str("component", "session_buffer").Logger(),
		exchanges: make(map[string][]Exchange),
	}
}

// Append records an exchange: it is pushed onto the user's buffer and written
// to the store as a durable conversation memory. Exchanges mentioning
// personal information are stored at identity importance so they outlive the
// normal retention window. When the buffer reaches the summarization
// threshold it is summarized and cleared.
func (b *Buffer) Append(ctx context.Context, userID string, ex Exchange) {
	b.mu.Lock()
	b.exchanges[userID] = append(b.exchanges[userID], ex)
	buffered := b.exchanges[userID]
	shouldFlush := len(buffered) >= b.threshold
	var snapshot []Exchange
	if shouldFlush {
		snapshot = buffered
		b.exchanges[userID] = nil
	}
	b.mu.Unlock()

	importance := ImportanceOrdinary
	if ContainsPersonalInfo(ex.UserInput) {
		importance = ImportanceIdentity
	}

	if !b.store.StoreExchange(ctx, userID, ex, importance) {
		b.logger.Warn().Str("user_id", userID).Msg("failed to persist exchange memory")
	}

	if shouldFlush {
		b.summarize(ctx, userID, snapshot)
	}
}

// Len returns the number of buffered exchanges for the user.
func (b *Buffer) Len(userID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.exchanges[userID])
}

// ContainsPersonalInfo reports whether text mentions any personal-info cue.
func ContainsPersonalInfo(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range personalInfoKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// summarize compresses a batch of exchanges into a topic/tone digest and
// persists it. The buffer is already cleared by the caller; a failed write
// is logged but the cleared exchanges are not restored.
func (b *Buffer) summarize(ctx context.Context, userID string, exchanges []Exchange) {
	if len(exchanges) == 0 {
		return
	}

	var topics []string
	seen := make(map[string]bool)
	toneCounts := make(map[string]int)
	for _, ex := range exchanges {
		lower := strings.ToLower(ex.UserInput)
		for _, tk := range topicKeywords {
			if seen[tk.topic] {
				continue
			}
			for _, word := range tk.words {
				if strings.Contains(lower, word) {
					topics = append(topics, tk.topic)
					seen[tk.topic] = true
					break
				}
			}
		}
		tone := string(ex.EmotionalContext.Tone)
		if tone == "" {
			tone = "neutral"
		}
		toneCounts[tone]++
	}

	topicStr := "various topics"
	if len(topics) > 0 {
		if len(topics) > maxSummaryTopics {
			topics = topics[:maxSummaryTopics]
		}
		topicStr = strings.Join(topics, ", ")
	}

	summary := fmt.Sprintf("Conversation about %s. Overall tone was %s. %d exchanges.",
		topicStr, dominantTone(toneCounts), len(exchanges))

	if !b.store.CreateMemorySummary(ctx, userID, summary) {
		b.logger.Warn().Str("user_id", userID).Int("exchanges", len(exchanges)).
			Msg("summary write failed; buffered exchanges were dropped")
		return
	}
	b.logger.Info().Str("user_id", userID).Str("summary", truncateString(summary, 80)).Msg("created conversation summary")
}

// dominantTone returns the most frequent tone, breaking ties by taking the
// lexicographically smallest name so summaries are deterministic.
func dominantTone(counts map[string]int) string {
	if len(counts) == 0 {
		return "neutral"
	}
	tones := make([]string, 0, len(counts))
	for tone := range counts {
		tones = append(tones, tone)
	}
	sort.Strings(tones)

	best := tones[0]
	for _, tone := range tones[1:] {
		if counts[tone] > counts[best] {
			best = tone
		}
	}
	return best
}
