// Package extract derives durable user facts from raw utterances via ordered
// regex pattern tables. There is no NLU here: first matching pattern wins per
// attribute kind, and validation is purely lexical.
package extract

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/emberworks/aria/memory"
)

// factContext is the emotional-context stub attached to fact memories.
type factContext struct {
	DominantEmotion string `json:"dominant_emotion"`
	Importance      string `json:"importance"`
}

// Extractor matches utterances against the pattern tables and records the
// extracted facts as important memories.
type Extractor struct {
	store  *memory.Store
	logger zerolog.Logger
}

// NewExtractor creates an Extractor writing fact memories into store.
func NewExtractor(store *memory.Store, logger zerolog.Logger) *Extractor {
	return &Extractor{
		store:  store,
		logger: logger.With().Str("component", "extractor").Logger(),
	}
}

// Extract scans text for user facts. Every successful extraction is written
// as a dedicated memory record, and the combined profile changes are
// returned as a delta for the caller to merge. The second return reports
// whether anything was extracted, so callers can skip a no-op profile write.
// A single message may yield several attribute kinds at once.
func (e *Extractor) Extract(ctx context.Context, userID, text string) (*memory.ProfileDelta, bool) {
	profile := e.store.GetProfile(ctx, userID)
	delta := &memory.ProfileDelta{}

	if name := e.extractName(text); name != "" {
		delta.Name = name
		e.storeFact(ctx, userID, "User's name is "+name, memory.TypePersonalInfo,
			factContext{DominantEmotion: "neutral", Importance: "high"}, memory.ImportanceIdentity)
	}

	if like := firstMatch(likePatterns, text); like != "" && !hasPreference(profile, like, true) {
		delta.Likes = append(delta.Likes, like)
		e.storeFact(ctx, userID, "User likes "+like, memory.TypePreference,
			factContext{DominantEmotion: "positive", Importance: "medium"}, memory.ImportancePreference)
	}

	if dislike := firstMatch(dislikePatterns, text); dislike != "" && !hasPreference(profile, dislike, false) {
		delta.Dislikes = append(delta.Dislikes, dislike)
		e.storeFact(ctx, userID, "User dislikes "+dislike, memory.TypePreference,
			factContext{DominantEmotion: "negative", Importance: "medium"}, memory.ImportancePreference)
	}

	if profession := firstMatch(professionPatterns, text); profession != "" {
		delta.Profession = profession
		e.storeFact(ctx, userID, "User works as "+profession, memory.TypePersonalInfo,
			factContext{DominantEmotion: "neutral", Importance: "high"}, memory.ImportanceIdentity)
	}

	if location := firstMatch(locationPatterns, text); location != "" {
		delta.Location = location
		e.storeFact(ctx, userID, "User is from "+location, memory.TypePersonalInfo,
			factContext{DominantEmotion: "neutral", Importance: "medium"}, memory.ImportancePreference)
	}

	if m := relationshipPattern.FindStringSubmatch(text); m != nil {
		kind := strings.ToLower(strings.TrimSpace(m[1]))
		who := strings.TrimSpace(m[2])
		if who != "" {
			delta.Relationships = map[string]string{kind: who}
			e.storeFact(ctx, userID, "User's "+kind+" is "+who, memory.TypePersonalInfo,
				factContext{DominantEmotion: "neutral", Importance: "medium"}, memory.ImportancePreference)
		}
	}

	if delta.Empty() {
		return nil, false
	}
	return delta, true
}

func (e *Extractor) storeFact(ctx context.Context, userID, text string, typ memory.MemoryType, emoCtx factContext, importance int) {
	if !e.store.StoreMemory(ctx, userID, text, typ, emoCtx, importance) {
		e.logger.Warn().Str("user_id", userID).Str("fact", text).Msg("failed to persist fact memory")
	}
}

// extractName runs the name patterns and validates the capture: it must be
// longer than one rune and must not be a pronoun-like token.
func (e *Extractor) extractName(text string) string {
	for _, pattern := range namePatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		if len([]rune(name)) > 1 && !pronounLike[strings.ToLower(name)] {
			return titleCase(name)
		}
	}
	return ""
}

// firstMatch returns the trimmed first capture of the first matching pattern.
func firstMatch(patterns []*regexp.Regexp, text string) string {
	for _, pattern := range patterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			if v := strings.TrimSpace(m[1]); v != "" {
				return v
			}
		}
	}
	return ""
}

func hasPreference(profile *memory.Profile, value string, likes bool) bool {
	if profile == nil {
		return false
	}
	if likes {
		return lo.Contains(profile.Preferences.Likes, value)
	}
	return lo.Contains(profile.Preferences.Dislikes, value)
}

// titleCase upper-cases the first rune of each space-separated word and
// lower-cases the rest.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		rs := []rune(strings.ToLower(word))
		rs[0] = unicode.ToUpper(rs[0])
		words[i] = string(rs)
	}
	return strings.Join(words, " ")
}
