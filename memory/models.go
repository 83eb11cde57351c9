package memory

import (
	"encoding/json"
	"time"

	"github.com/emberworks/aria/emotion"
)

// MemoryType describes the kind of durable memory row.
type MemoryType string

const (
	TypeConversationExchange MemoryType = "conversation_exchange"
	TypePersonalInfo         MemoryType = "personal_info"
	TypePreference           MemoryType = "preference"
	TypePersonalEvent        MemoryType = "personal_event"
)

// Importance tiers. Importance buys retention time and inclusion in the
// important-memories queries; it never mutates after creation.
const (
	ImportanceOrdinary   = 1 // everyday exchanges
	ImportancePreference = 2 // preference and location facts
	ImportanceIdentity   = 3 // identity facts (name, profession) and personal exchanges
)

// Preferences holds the structured attributes extracted for a user.
// Likes and dislikes are duplicate-free lists; the rest are scalars or a
// relation-kind -> name mapping.
type Preferences struct {
	Likes         []string          `json:"likes,omitempty"`
	Dislikes      []string          `json:"dislikes,omitempty"`
	Profession    string            `json:"profession,omitempty"`
	Location      string            `json:"location,omitempty"`
	Relationships map[string]string `json:"relationships,omitempty"`
}

// Profile is the durable per-user profile row.
type Profile struct {
	UserID            string             `json:"user_id"`
	Name              string             `json:"name,omitempty"`
	Preferences       Preferences        `json:"preferences"`
	PersonalityTraits map[string]float64 `json:"personality_traits,omitempty"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// ProfileDelta carries profile changes to merge. List fields are unioned
// without duplicates; scalar fields overwrite when non-empty.
type ProfileDelta struct {
	Name          string
	Likes         []string
	Dislikes      []string
	Profession    string
	Location      string
	Relationships map[string]string
	Traits        map[string]float64
}

// Empty reports whether the delta carries no changes.
func (d *ProfileDelta) Empty() bool {
	return d == nil ||
		(d.Name == "" && len(d.Likes) == 0 && len(d.Dislikes) == 0 &&
			d.Profession == "" && d.Location == "" &&
			len(d.Relationships) == 0 && len(d.Traits) == 0)
}

// Memory is a single durable memory row. Rows are append-only; the retention
// sweep is the only thing that removes them.
type Memory struct {
	ID               int64           `json:"id"`
	UserID           string          `json:"user_id"`
	Text             string          `json:"text"`
	Type             MemoryType      `json:"type"`
	EmotionalContext json.RawMessage `json:"emotional_context,omitempty"`
	Importance       int             `json:"importance"`
	CreatedAt        time.Time       `json:"created_at"`
}

// RecentPayload is the snapshot stored in the recent-memory ring. The ring is
// a fast-path cache of the latest exchanges, distinct from Memory rows.
// UserInput and BotResponse are set for conversation exchanges only.
type RecentPayload struct {
	Text             string          `json:"text"`
	Type             MemoryType      `json:"type"`
	UserInput        string          `json:"user_input,omitempty"`
	BotResponse      string          `json:"bot_response,omitempty"`
	EmotionalContext json.RawMessage `json:"emotional_context,omitempty"`
	Timestamp        time.Time       `json:"timestamp"`
}

// Summary is a compressed digest of a batch of buffered exchanges.
type Summary struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Exchange is one buffered user/bot turn awaiting summarization.
type Exchange struct {
	UserInput        string           `json:"user_input"`
	BotResponse      string           `json:"bot_response"`
	EmotionalContext emotion.Response `json:"emotional_context"`
	Timestamp        time.Time        `json:"timestamp"`
}

// ConversationContext is everything the assembler gathers for one prompt.
type ConversationContext struct {
	Profile            *Profile        `json:"user_profile,omitempty"`
	RecentConversation []RecentPayload `json:"recent_conversation"`
	ImportantMemories  []Memory        `json:"important_memories"`
	MemorySummaries    []Summary       `json:"memory_summaries"`
}
