package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Per-section caps for the assembled context. Truncation is character-count
// based, not word-boundary aware: the point is a deterministic prompt size.
const (
	maxRecentExchanges     = 3
	maxImportantMemories   = 3
	maxSummaries           = 2
	maxLikesShown          = 3
	maxDislikesShown       = 2
	importantMemoryExcerpt = 120
	exchangeSideExcerpt    = 60
)

// Assembler builds the bounded prompt context from the store.
type Assembler struct {
	store  *Store
	budget int // hard character cap on the formatted context
}

// NewAssembler creates an Assembler with the given character budget.
func NewAssembler(store *Store, budget int) *Assembler {
	if budget <= 0 {
		budget = 1000
	}
	return &Assembler{store: store, budget: budget}
}

// BuildContext gathers the profile, recent exchanges, important memories and
// summaries for one prompt. The store soft-fails, so every section may come
// back empty; that is a normal input for FormatForPrompt, not an error.
func (a *Assembler) BuildContext(ctx context.Context, userID string) ConversationContext {
	return ConversationContext{
		Profile:            a.store.GetProfile(ctx, userID),
		RecentConversation: a.store.GetRecentMemories(ctx, userID, maxRecentExchanges),
		ImportantMemories:  a.store.GetImportantMemories(ctx, userID, maxImportantMemories),
		MemorySummaries:    a.store.GetMemorySummaries(ctx, userID, maxSummaries),
	}
}

// FormatForPrompt renders the context in a fixed order: profile facts,
// summaries, important memories, then recent exchanges. The result is
// hard-truncated to the configured budget.
func (a *Assembler) FormatForPrompt(conv ConversationContext, profile *Profile) string {
	if profile == nil {
		profile = conv.Profile
	}

	var parts []string

	if profile != nil {
		if profile.Name != "" {
			parts = append(parts, fmt.Sprintf("User's name: %s", profile.Name))
		}
		prefs := profile.Preferences
		if len(prefs.Likes) > 0 {
			parts = append(parts, fmt.Sprintf("User likes: %s", strings.Join(capList(prefs.Likes, maxLikesShown), ", ")))
		}
		if len(prefs.Dislikes) > 0 {
			parts = append(parts, fmt.Sprintf("User dislikes: %s", strings.Join(capList(prefs.Dislikes, maxDislikesShown), ", ")))
		}
		if prefs.Profession != "" {
			parts = append(parts, fmt.Sprintf("User's profession: %s", prefs.Profession))
		}
		if prefs.Location != "" {
			parts = append(parts, fmt.Sprintf("User's location: %s", prefs.Location))
		}
		for _, kind := range sortedKeys(prefs.Relationships) {
			parts = append(parts, fmt.Sprintf("User's %s: %s", kind, prefs.Relationships[kind]))
		}
	}

	for i, summary := range conv.MemorySummaries {
		if i >= maxSummaries {
			break
		}
		parts = append(parts, fmt.Sprintf("Previous conversation summary: %s", summary.Text))
	}

	if len(conv.ImportantMemories) > 0 {
		parts = append(parts, "Important memories from past conversations:")
		for i, m := range conv.ImportantMemories {
			if i >= maxImportantMemories {
				break
			}
			parts = append(parts, fmt.Sprintf("- %s", excerpt(m.Text, importantMemoryExcerpt)))
		}
	}

	if len(conv.RecentConversation) > 0 {
		parts = append(parts, "Recent conversation:")
		for i, recent := range conv.RecentConversation {
			if i >= maxRecentExchanges {
				break
			}
			if recent.UserInput != "" || recent.BotResponse != "" {
				parts = append(parts, fmt.Sprintf("User: %s", excerpt(recent.UserInput, exchangeSideExcerpt)))
				parts = append(parts, fmt.Sprintf("Assistant: %s", excerpt(recent.BotResponse, exchangeSideExcerpt)))
			} else {
				parts = append(parts, excerpt(recent.Text, 2*exchangeSideExcerpt))
			}
		}
	}

	return excerpt(strings.Join(parts, "\n"), a.budget)
}

// capList returns at most n leading elements.
func capList(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// excerpt hard-truncates s to n runes.
func excerpt(s string, n int) string {
	rs := []rune(s)
	if len(rs) > n {
		return string(rs[:n])
	}
	return s
}
