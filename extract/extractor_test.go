package extract

import (
	"context"
	"database/sql"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"

	"github.com/emberworks/aria/memory"
	"github.com/emberworks/aria/migrations"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestStore(t *testing.T) *memory.Store {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := migrations.Run(db, "../migrations", zerolog.Nop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return memory.NewStore(db, memory.Config{}, rand.New(rand.NewSource(1)), zerolog.Nop())
}

func TestExtractName(t *testing.T) {
	store := setupTestStore(t)
	e := NewExtractor(store, zerolog.Nop())
	ctx := context.Background()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"explicit introduction", "My name is John Smith", "John Smith"},
		{"casual introduction", "i am sam", "Sam"},
		{"call-me form", "You can call me Ada", "Ada"},
		{"pronoun is rejected", "it's me", ""},
		{"no name at all", "what a nice day", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta, changed := e.Extract(ctx, "u-name-"+tt.name, tt.text)
			if tt.want == "" {
				if changed && delta.Name != "" {
					t.Errorf("expected no name from %q, got %q", tt.text, delta.Name)
				}
				return
			}
			if !changed {
				t.Fatalf("expected extraction from %q", tt.text)
			}
			if delta.Name != tt.want {
				t.Errorf("expected name %q, got %q", tt.want, delta.Name)
			}
		})
	}
}

func TestExtractPreferencesCaptureWholePhrase(t *testing.T) {
	store := setupTestStore(t)
	e := NewExtractor(store, zerolog.Nop())
	ctx := context.Background()

	delta, changed := e.Extract(ctx, "u1", "I love pizza and hiking")
	if !changed {
		t.Fatal("expected a like to be extracted")
	}
	// The capture runs to the end of the clause, not the first noun.
	if len(delta.Likes) != 1 || delta.Likes[0] != "pizza and hiking" {
		t.Errorf("expected likes [pizza and hiking], got %v", delta.Likes)
	}

	delta, changed = e.Extract(ctx, "u1", "I hate mondays. They drag.")
	if !changed || len(delta.Dislikes) != 1 || delta.Dislikes[0] != "mondays" {
		t.Errorf("expected dislikes [mondays], got %+v (changed=%v)", delta, changed)
	}
}

func TestExtractSkipsKnownPreference(t *testing.T) {
	store := setupTestStore(t)
	e := NewExtractor(store, zerolog.Nop())
	ctx := context.Background()

	store.UpsertProfile(ctx, "u1", &memory.ProfileDelta{Likes: []string{"jazz"}})

	delta, changed := e.Extract(ctx, "u1", "I love jazz")
	if changed {
		t.Errorf("expected no delta for an already-known like, got %+v", delta)
	}
	if got := store.GetImportantMemories(ctx, "u1", 10); len(got) != 0 {
		t.Errorf("expected no fact memory for a duplicate like, got %d", len(got))
	}
}

func TestExtractProfessionAndLocation(t *testing.T) {
	store := setupTestStore(t)
	e := NewExtractor(store, zerolog.Nop())
	ctx := context.Background()

	delta, changed := e.Extract(ctx, "u1", "I work as a software engineer. I live in Berlin")
	if !changed {
		t.Fatal("expected extraction")
	}
	if delta.Profession != "a software engineer" {
		t.Errorf("expected profession %q, got %q", "a software engineer", delta.Profession)
	}
	if delta.Location != "Berlin" {
		t.Errorf("expected location Berlin, got %q", delta.Location)
	}
}

func TestExtractRelationshipKind(t *testing.T) {
	store := setupTestStore(t)
	e := NewExtractor(store, zerolog.Nop())
	ctx := context.Background()

	delta, changed := e.Extract(ctx, "u1", "My brother's name is Tom")
	if !changed {
		t.Fatal("expected extraction")
	}
	if delta.Relationships["brother"] != "Tom" {
		t.Errorf("expected relationship brother=Tom, got %v", delta.Relationships)
	}
}

func TestExtractWritesFactMemories(t *testing.T) {
	store := setupTestStore(t)
	e := NewExtractor(store, zerolog.Nop())
	ctx := context.Background()

	_, changed := e.Extract(ctx, "u1", "My name is Ada")
	if !changed {
		t.Fatal("expected extraction")
	}
	important := store.GetImportantMemories(ctx, "u1", 10)
	if len(important) != 1 {
		t.Fatalf("expected 1 fact memory, got %d", len(important))
	}
	if important[0].Text != "User's name is Ada" {
		t.Errorf("unexpected fact text %q", important[0].Text)
	}
	if important[0].Importance != memory.ImportanceIdentity {
		t.Errorf("expected identity importance, got %d", important[0].Importance)
	}
}

func TestExtractNothingReturnsNoDelta(t *testing.T) {
	store := setupTestStore(t)
	e := NewExtractor(store, zerolog.Nop())

	delta, changed := e.Extract(context.Background(), "u1", "the weather is lovely today")
	if changed || delta != nil {
		t.Errorf("expected nil delta for a fact-free message, got %+v", delta)
	}
}
