package memory

import (
	sq "github.com/Masterminds/squirrel"
)

// StatementBuilder returns a Squirrel StatementBuilder configured for SQLite.
// SQLite uses '?' as placeholders, which is Squirrel's default.
func StatementBuilder() sq.StatementBuilderType {
	return sq.StatementBuilder
}

// SelectMemoryColumns returns the standard column list for
// conversation_memories SELECT queries.
func SelectMemoryColumns() []string {
	return []string{
		"id", "user_id", "memory_text", "memory_type",
		"emotional_context", "importance", "created_at",
	}
}
