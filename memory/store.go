package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Config holds the store's retention and ring tunables.
type Config struct {
	RecentCap       int     // max recent-memory ring entries kept per user
	TrimProbability float64 // per-insert chance of trimming the ring
	RetentionDays   int     // normal retention window; importance >= 2 gets double
}

// DefaultConfig returns the store defaults.
func DefaultConfig() Config {
	return Config{
		RecentCap:       100,
		TrimProbability: 0.1,
		RetentionDays:   90,
	}
}

// Store persists profiles, memories, the recent-memory ring, and summaries.
//
// The store soft-fails by contract: every operation logs internal errors and
// returns an empty/false result instead of propagating. Callers must treat
// "no data" and "a failure occurred" as indistinguishable.
type Store struct {
	db     *sql.DB
	cfg    Config
	logger zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewStore creates a Store. A nil rng gets a time-seeded source; zero config
// fields fall back to the defaults.
func NewStore(db *sql.DB, cfg Config, rng *rand.Rand, logger zerolog.Logger) *Store {
	def := DefaultConfig()
	if cfg.RecentCap <= 0 {
		cfg.RecentCap = def.RecentCap
	}
	if cfg.TrimProbability <= 0 {
		cfg.TrimProbability = def.TrimProbability
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = def.RetentionDays
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // trim sampling, not crypto
	}
	logger = logger.With().Str("component", "memory_store").Logger()
	return &Store{db: db, cfg: cfg, logger: logger, rng: rng}
}

func now() int64 { return time.Now().Unix() }

// GetProfile retrieves a user profile, or nil when the user is unknown.
func (s *Store) GetProfile(ctx context.Context, userID string) *Profile {
	queryStr, args, err := StatementBuilder().
		Select("name", "preferences", "personality_traits", "updated_at").
		From("user_profiles").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		s.logger.Error().Str("method", "GetProfile").Err(err).Msg("failed to build query")
		return nil
	}

	var (
		name      sql.NullString
		prefs     sql.NullString
		traits    sql.NullString
		updatedAt int64
	)
	row := s.db.QueryRowContext(ctx, queryStr, args...)
	if err := row.Scan(&name, &prefs, &traits, &updatedAt); err != nil {
		if err != sql.ErrNoRows {
			s.logger.Error().Str("method", "GetProfile").Str("user_id", userID).Err(err).Msg("failed to scan profile")
		}
		return nil
	}

	profile := &Profile{
		UserID:    userID,
		Name:      name.String,
		UpdatedAt: time.Unix(updatedAt, 0),
	}
	if prefs.Valid && prefs.String != "" {
		if err := json.Unmarshal([]byte(prefs.String), &profile.Preferences); err != nil {
			s.logger.Warn().Str("method", "GetProfile").Str("user_id", userID).Err(err).Msg("malformed preferences JSON; ignoring")
		}
	}
	if traits.Valid && traits.String != "" {
		if err := json.Unmarshal([]byte(traits.String), &profile.PersonalityTraits); err != nil {
			s.logger.Warn().Str("method", "GetProfile").Str("user_id", userID).Err(err).Msg("malformed traits JSON; ignoring")
		}
	}
	return profile
}

// UpsertProfile merges a delta into the user's profile, creating the row on
// first write. List attributes union without duplicates; scalars overwrite
// when the delta carries a value. Callers must hold the per-user exclusion:
// the read-modify-write here is not safe under concurrent merges for the
// same user.
func (s *Store) UpsertProfile(ctx context.Context, userID string, delta *ProfileDelta) bool {
	if delta.Empty() {
		return true
	}
	s.logger.Debug().
		Str("method", "UpsertProfile").
		Str("user_id", userID).
		Str("name", delta.Name).
		Strs("likes", delta.Likes).
		Strs("dislikes", delta.Dislikes).
		Msg("called")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error().Str("method", "UpsertProfile").Err(err).Msg("failed to begin transaction")
		return false
	}
	defer func() { _ = tx.Rollback() }()

	var (
		name   sql.NullString
		prefs  sql.NullString
		traits sql.NullString
	)
	existing := true
	row := tx.QueryRowContext(ctx,
		"SELECT name, preferences, personality_traits FROM user_profiles WHERE user_id = ?", userID)
	if err := row.Scan(&name, &prefs, &traits); err != nil {
		if err != sql.ErrNoRows {
			s.logger.Error().Str("method", "UpsertProfile").Str("user_id", userID).Err(err).Msg("failed to read existing profile")
			return false
		}
		existing = false
	}

	merged := Preferences{}
	if prefs.Valid && prefs.String != "" {
		_ = json.Unmarshal([]byte(prefs.String), &merged)
	}
	mergedTraits := map[string]float64{}
	if traits.Valid && traits.String != "" {
		_ = json.Unmarshal([]byte(traits.String), &mergedTraits)
	}

	merged.Likes = lo.Union(merged.Likes, delta.Likes)
	merged.Dislikes = lo.Union(merged.Dislikes, delta.Dislikes)
	if delta.Profession != "" {
		merged.Profession = delta.Profession
	}
	if delta.Location != "" {
		merged.Location = delta.Location
	}
	if len(delta.Relationships) > 0 {
		if merged.Relationships == nil {
			merged.Relationships = make(map[string]string, len(delta.Relationships))
		}
		for kind, who := range delta.Relationships {
			merged.Relationships[kind] = who
		}
	}
	for k, v := range delta.Traits {
		mergedTraits[k] = v
	}

	mergedName := name.String
	if delta.Name != "" {
		mergedName = delta.Name
	}

	prefsJSON, err := json.Marshal(merged)
	if err != nil {
		s.logger.Error().Str("method", "UpsertProfile").Err(err).Msg("failed to marshal preferences")
		return false
	}
	traitsJSON, err := json.Marshal(mergedTraits)
	if err != nil {
		s.logger.Error().Str("method", "UpsertProfile").Err(err).Msg("failed to marshal traits")
		return false
	}

	nowUnix := now()
	var query sq.Sqlizer
	if existing {
		query = StatementBuilder().
			Update("user_profiles").
			Set("name", mergedName).
			Set("preferences", string(prefsJSON)).
			Set("personality_traits", string(traitsJSON)).
			Set("updated_at", nowUnix).
			Where(sq.Eq{"user_id": userID})
	} else {
		query = StatementBuilder().
			Insert("user_profiles").
			Columns("user_id", "name", "preferences", "personality_traits", "created_at", "updated_at").
			Values(userID, mergedName, string(prefsJSON), string(traitsJSON), nowUnix, nowUnix)
	}

	queryStr, args, err := query.ToSql()
	if err != nil {
		s.logger.Error().Str("method", "UpsertProfile").Err(err).Msg("failed to build query")
		return false
	}
	if _, err := tx.ExecContext(ctx, queryStr, args...); err != nil {
		s.logger.Error().Str("method", "UpsertProfile").Str("user_id", userID).Err(err).Msg("failed to write profile")
		return false
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error().Str("method", "UpsertProfile").Err(err).Msg("transaction commit failed")
		return false
	}
	return true
}

// StoreMemory appends a durable memory row and a recent-ring snapshot.
// On a small random fraction of inserts the ring is trimmed back to the
// configured cap, amortizing the cost instead of trimming every insert.
func (s *Store) StoreMemory(ctx context.Context, userID, text string, typ MemoryType, emotionalContext any, importance int) bool {
	return s.storeMemory(ctx, userID, text, typ, emotionalContext, importance, "", "")
}

// StoreExchange appends a conversation exchange as a durable memory row plus
// a ring snapshot that keeps both sides of the exchange available for the
// context assembler.
func (s *Store) StoreExchange(ctx context.Context, userID string, ex Exchange, importance int) bool {
	text := "User: " + truncateString(ex.UserInput, 100) + " | Bot: " + truncateString(ex.BotResponse, 100)
	return s.storeMemory(ctx, userID, text, TypeConversationExchange, ex.EmotionalContext, importance, ex.UserInput, ex.BotResponse)
}

func (s *Store) storeMemory(ctx context.Context, userID, text string, typ MemoryType, emotionalContext any, importance int, userInput, botResponse string) bool {
	s.logger.Debug().
		Str("method", "StoreMemory").
		Str("user_id", userID).
		Str("type", string(typ)).
		Int("importance", importance).
		Str("text", truncateString(text, 40)).
		Msg("called")

	if importance < ImportanceOrdinary {
		importance = ImportanceOrdinary
	}

	var ctxJSON []byte
	if emotionalContext != nil {
		var err error
		ctxJSON, err = json.Marshal(emotionalContext)
		if err != nil {
			s.logger.Error().Str("method", "StoreMemory").Err(err).Msg("failed to marshal emotional context")
			return false
		}
	}

	nowTime := time.Now()
	payload := RecentPayload{
		Text:             text,
		Type:             typ,
		UserInput:        userInput,
		BotResponse:      botResponse,
		EmotionalContext: ctxJSON,
		Timestamp:        nowTime,
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error().Str("method", "StoreMemory").Err(err).Msg("failed to marshal recent payload")
		return false
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error().Str("method", "StoreMemory").Err(err).Msg("failed to begin transaction")
		return false
	}
	defer func() { _ = tx.Rollback() }()

	queryStr, args, err := StatementBuilder().
		Insert("conversation_memories").
		Columns("user_id", "memory_text", "memory_type", "emotional_context", "importance", "created_at").
		Values(userID, text, string(typ), nullableJSON(ctxJSON), importance, nowTime.Unix()).
		ToSql()
	if err != nil {
		s.logger.Error().Str("method", "StoreMemory").Err(err).Msg("failed to build memory insert")
		return false
	}
	if _, err := tx.ExecContext(ctx, queryStr, args...); err != nil {
		s.logger.Error().Str("method", "StoreMemory").Str("user_id", userID).Err(err).Msg("failed to insert memory")
		return false
	}

	queryStr, args, err = StatementBuilder().
		Insert("recent_memories").
		Columns("user_id", "memory_data", "created_at").
		Values(userID, string(payloadJSON), nowTime.Unix()).
		ToSql()
	if err != nil {
		s.logger.Error().Str("method", "StoreMemory").Err(err).Msg("failed to build recent insert")
		return false
	}
	if _, err := tx.ExecContext(ctx, queryStr, args...); err != nil {
		s.logger.Error().Str("method", "StoreMemory").Str("user_id", userID).Err(err).Msg("failed to insert recent memory")
		return false
	}

	if s.rollTrim() {
		if _, err := tx.ExecContext(ctx, `
DELETE FROM recent_memories WHERE user_id = ? AND id NOT IN (
    SELECT id FROM recent_memories
    WHERE user_id = ?
    ORDER BY created_at DESC, id DESC
    LIMIT ?
)`, userID, userID, s.cfg.RecentCap); err != nil {
			s.logger.Error().Str("method", "StoreMemory").Str("user_id", userID).Err(err).Msg("failed to trim recent ring")
			return false
		}
		s.logger.Debug().Str("method", "StoreMemory").Str("user_id", userID).Int("cap", s.cfg.RecentCap).Msg("trimmed recent ring")
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error().Str("method", "StoreMemory").Err(err).Msg("transaction commit failed")
		return false
	}
	return true
}

func (s *Store) rollTrim() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() < s.cfg.TrimProbability
}

// nullableJSON converts empty JSON to a SQL NULL.
func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

// GetRecentMemories returns the newest ring snapshots for the user, newest
// first. Malformed rows are skipped.
func (s *Store) GetRecentMemories(ctx context.Context, userID string, limit int) []RecentPayload {
	queryStr, args, err := StatementBuilder().
		Select("memory_data").
		From("recent_memories").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)). //nolint:gosec // caller-provided small limit
		ToSql()
	if err != nil {
		s.logger.Error().Str("method", "GetRecentMemories").Err(err).Msg("failed to build query")
		return nil
	}

	rows, err := s.db.QueryContext(ctx, queryStr, args...)
	if err != nil {
		s.logger.Error().Str("method", "GetRecentMemories").Str("user_id", userID).Err(err).Msg("query failed")
		return nil
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	var memories []RecentPayload
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			s.logger.Error().Str("method", "GetRecentMemories").Err(err).Msg("scan failed")
			return nil
		}
		var payload RecentPayload
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			s.logger.Warn().Str("method", "GetRecentMemories").Err(err).Msg("skipping malformed recent memory")
			continue
		}
		memories = append(memories, payload)
	}
	if err := rows.Err(); err != nil {
		s.logger.Error().Str("method", "GetRecentMemories").Err(err).Msg("row iteration failed")
		return nil
	}
	return memories
}

// GetImportantMemories returns memories with importance >= 2, ordered by
// importance then recency.
func (s *Store) GetImportantMemories(ctx context.Context, userID string, limit int) []Memory {
	queryStr, args, err := StatementBuilder().
		Select(SelectMemoryColumns()...).
		From("conversation_memories").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.GtOrEq{"importance": ImportancePreference}).
		OrderBy("importance DESC", "created_at DESC").
		Limit(uint64(limit)). //nolint:gosec // caller-provided small limit
		ToSql()
	if err != nil {
		s.logger.Error().Str("method", "GetImportantMemories").Err(err).Msg("failed to build query")
		return nil
	}
	return s.queryMemories(ctx, "GetImportantMemories", queryStr, args)
}

// GetConversationHistory returns durable memory rows created within the
// trailing number of days, newest first.
func (s *Store) GetConversationHistory(ctx context.Context, userID string, days int) []Memory {
	cutoff := time.Now().AddDate(0, 0, -days).Unix()
	queryStr, args, err := StatementBuilder().
		Select(SelectMemoryColumns()...).
		From("conversation_memories").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.GtOrEq{"created_at": cutoff}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		s.logger.Error().Str("method", "GetConversationHistory").Err(err).Msg("failed to build query")
		return nil
	}
	return s.queryMemories(ctx, "GetConversationHistory", queryStr, args)
}

func (s *Store) queryMemories(ctx context.Context, method, queryStr string, args []any) []Memory {
	rows, err := s.db.QueryContext(ctx, queryStr, args...)
	if err != nil {
		s.logger.Error().Str("method", method).Err(err).Msg("query failed")
		return nil
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	var memories []Memory
	for rows.Next() {
		var (
			m         Memory
			emoCtx    sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&m.ID, &m.UserID, &m.Text, &m.Type, &emoCtx, &m.Importance, &createdAt); err != nil {
			s.logger.Error().Str("method", method).Err(err).Msg("scan failed")
			return nil
		}
		if emoCtx.Valid {
			m.EmotionalContext = json.RawMessage(emoCtx.String)
		}
		m.CreatedAt = time.Unix(createdAt, 0)
		memories = append(memories, m)
	}
	if err := rows.Err(); err != nil {
		s.logger.Error().Str("method", method).Err(err).Msg("row iteration failed")
		return nil
	}
	return memories
}

// CreateMemorySummary appends a summary row for the user.
func (s *Store) CreateMemorySummary(ctx context.Context, userID, text string) bool {
	s.logger.Debug().
		Str("method", "CreateMemorySummary").
		Str("user_id", userID).
		Str("text", truncateString(text, 60)).
		Msg("called")

	queryStr, args, err := StatementBuilder().
		Insert("memory_summaries").
		Columns("user_id", "summary_text", "created_at").
		Values(userID, text, now()).
		ToSql()
	if err != nil {
		s.logger.Error().Str("method", "CreateMemorySummary").Err(err).Msg("failed to build query")
		return false
	}
	if _, err := s.db.ExecContext(ctx, queryStr, args...); err != nil {
		s.logger.Error().Str("method", "CreateMemorySummary").Str("user_id", userID).Err(err).Msg("insert failed")
		return false
	}
	return true
}

// GetMemorySummaries returns summaries for the user, newest first.
func (s *Store) GetMemorySummaries(ctx context.Context, userID string, limit int) []Summary {
	queryStr, args, err := StatementBuilder().
		Select("id", "user_id", "summary_text", "created_at").
		From("memory_summaries").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)). //nolint:gosec // caller-provided small limit
		ToSql()
	if err != nil {
		s.logger.Error().Str("method", "GetMemorySummaries").Err(err).Msg("failed to build query")
		return nil
	}

	rows, err := s.db.QueryContext(ctx, queryStr, args...)
	if err != nil {
		s.logger.Error().Str("method", "GetMemorySummaries").Str("user_id", userID).Err(err).Msg("query failed")
		return nil
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	var summaries []Summary
	for rows.Next() {
		var (
			summary   Summary
			createdAt int64
		)
		if err := rows.Scan(&summary.ID, &summary.UserID, &summary.Text, &createdAt); err != nil {
			s.logger.Error().Str("method", "GetMemorySummaries").Err(err).Msg("scan failed")
			return nil
		}
		summary.CreatedAt = time.Unix(createdAt, 0)
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		s.logger.Error().Str("method", "GetMemorySummaries").Err(err).Msg("row iteration failed")
		return nil
	}
	return summaries
}

// CleanupOldMemories runs the two-tier retention sweep: ordinary memories
// older than the normal window are deleted, important ones get double the
// window, and the recent ring is purged past the normal window. Importance
// buys survival time, not immunity.
func (s *Store) CleanupOldMemories(ctx context.Context) {
	normalCutoff := time.Now().AddDate(0, 0, -s.cfg.RetentionDays).Unix()
	importantCutoff := time.Now().AddDate(0, 0, -2*s.cfg.RetentionDays).Unix()

	sweeps := []struct {
		desc  string
		query string
		args  []any
	}{
		{
			desc:  "ordinary memories",
			query: "DELETE FROM conversation_memories WHERE created_at < ? AND importance < ?",
			args:  []any{normalCutoff, ImportancePreference},
		},
		{
			desc:  "important memories",
			query: "DELETE FROM conversation_memories WHERE created_at < ? AND importance >= ?",
			args:  []any{importantCutoff, ImportancePreference},
		},
		{
			desc:  "recent ring",
			query: "DELETE FROM recent_memories WHERE created_at < ?",
			args:  []any{normalCutoff},
		},
	}

	for _, sweep := range sweeps {
		res, err := s.db.ExecContext(ctx, sweep.query, sweep.args...)
		if err != nil {
			s.logger.Error().Str("method", "CleanupOldMemories").Str("sweep", sweep.desc).Err(err).Msg("sweep failed")
			continue
		}
		if deleted, err := res.RowsAffected(); err == nil && deleted > 0 {
			s.logger.Info().Str("sweep", sweep.desc).Int64("deleted", deleted).Msg("Cleaned up old memories")
		}
	}
}

// Helper function to safely truncate strings (for log safety).
func truncateString(s string, n int) string {
	rs := []rune(s)
	if len(rs) > n {
		return string(rs[:n]) + "..."
	}
	return s
}
