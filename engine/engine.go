// Package engine orchestrates a conversation turn: emotion scoring, fact
// extraction, context assembly, prompt construction and generation.
package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/emberworks/aria/config"
	"github.com/emberworks/aria/emotion"
	"github.com/emberworks/aria/extract"
	"github.com/emberworks/aria/llm"
	"github.com/emberworks/aria/memory"
)

// emptyMessageReplies are rotated when the user sends a blank message.
var emptyMessageReplies = []string{
	"I'd love to chat! What would you like to talk about? 😊",
	"Hello there! What's on your mind today? 🌟",
	"I'm here and ready to chat! What would you like to discuss? 💬",
	"Hi! I'm listening. What would you like to talk about? 👂",
}

// conversationStarters seed topic suggestions before personalization.
var conversationStarters = []string{
	"How's your day going so far?",
	"What's something interesting that happened recently?",
	"Have you discovered any new hobbies or interests lately?",
	"What kind of music have you been listening to?",
	"Read any good books or watched any great shows recently?",
	"How's the weather where you are?",
	"What's been on your mind lately?",
	"Any exciting plans coming up?",
	"What's your favorite way to relax?",
	"Learn anything new recently?",
}

const (
	backendTroubleReply    = "I'm having trouble connecting to my AI brain. Could you try again? 🤔"
	processingTroubleReply = "I apologize, but I'm having trouble processing that right now. Could you try again? 🫤"
)

// Reply is one bot turn: the message plus the emotional steering that shaped
// it, which clients may use for presentation.
type Reply struct {
	Message string           `json:"message"`
	Emotion emotion.Response `json:"emotional_context"`
}

// Snapshot is the debug view of everything stored for a user.
type Snapshot struct {
	Profile           *memory.Profile        `json:"profile"`
	ImportantMemories []memory.Memory        `json:"important_memories"`
	RecentMemories    []memory.RecentPayload `json:"recent_memories"`
}

// Params carries the engine's dependencies.
type Params struct {
	Store     *memory.Store
	Buffer    *memory.Buffer
	Assembler *memory.Assembler
	Extractor *extract.Extractor
	Emotions  *emotion.Engine
	Generator llm.Generator

	Persona         config.PersonaConfig
	Generation      config.GenerationConfig
	MaxSystemPrompt int

	Logger zerolog.Logger
}

// Engine serializes turns per user and never surfaces storage errors to the
// conversation; a turn degrades to a generic reply instead of failing.
type Engine struct {
	store     *memory.Store
	buffer    *memory.Buffer
	assembler *memory.Assembler
	extractor *extract.Extractor
	emotions  *emotion.Engine
	generator llm.Generator

	persona         config.PersonaConfig
	generation      config.GenerationConfig
	maxSystemPrompt int

	logger zerolog.Logger

	userLocks sync.Map // user ID -> *sync.Mutex
}

// New creates an Engine from its dependencies.
func New(p Params) *Engine {
	if p.MaxSystemPrompt <= 0 {
		p.MaxSystemPrompt = 1500
	}
	return &Engine{
		store:           p.Store,
		buffer:          p.Buffer,
		assembler:       p.Assembler,
		extractor:       p.Extractor,
		emotions:        p.Emotions,
		generator:       p.Generator,
		persona:         p.Persona,
		generation:      p.Generation,
		maxSystemPrompt: p.MaxSystemPrompt,
		logger:          p.Logger.With().Str("component", "engine").Logger(),
	}
}

// lockUser serializes turns for one user so profile merges and buffer flushes
// never race across connections.
func (e *Engine) lockUser(userID string) func() {
	v, _ := e.userLocks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Greet composes the connection greeting. Returning users with a known name
// get a personalized welcome referencing one of their interests.
func (e *Engine) Greet(ctx context.Context, userID string) Reply {
	profile := e.store.GetProfile(ctx, userID)
	emo := e.emotions.Respond("hello")

	if profile != nil && profile.Name != "" {
		msg := fmt.Sprintf("Welcome back, %s! %s How have you been?",
			profile.Name, e.emotions.Greeting(emo.Tone))
		if likes := profile.Preferences.Likes; len(likes) > 0 {
			top := likes
			if len(top) > 3 {
				top = top[:3]
			}
			msg += fmt.Sprintf(" Still enjoying %s?", emotion.Pick(e.emotions, top))
		}
		return Reply{Message: msg, Emotion: emo}
	}

	msg := fmt.Sprintf("%s I'm %s. %s",
		e.emotions.Greeting(emo.Tone), e.persona.Name, emo.EmotionalMarkers)
	return Reply{Message: msg, Emotion: emo}
}

// Farewell composes the goodbye sent when a client ends its chat session,
// closing in the current tone and addressing the user by name when known.
func (e *Engine) Farewell(ctx context.Context, userID string) Reply {
	emo := e.emotions.Respond("goodbye")
	msg := e.emotions.Closing(emo.Tone)
	if profile := e.store.GetProfile(ctx, userID); profile != nil && profile.Name != "" {
		msg = fmt.Sprintf("%s Take care, %s!", msg, profile.Name)
	}
	return Reply{Message: msg, Emotion: emo}
}

// HandleMessage runs one full conversation turn. Persistence happens after
// the reply is composed, detached from the request context so a disconnect
// doesn't lose the exchange.
func (e *Engine) HandleMessage(ctx context.Context, userID, text string) Reply {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{
			Message: emotion.Pick(e.emotions, emptyMessageReplies),
			Emotion: emotion.Response{Tone: emotion.ToneFriendly, EmotionalMarkers: "😊"},
		}
	}

	// The per-user lock covers only context assembly and, later, the
	// persistence phase. Holding it across Generate would head-of-line block
	// a second connection for the same user for the full request timeout.
	unlock := e.lockUser(userID)
	emo := e.emotions.Respond(text)
	profile := e.store.GetProfile(ctx, userID)
	conv := e.assembler.BuildContext(ctx, userID)
	unlock()

	userContext := e.assembler.FormatForPrompt(conv, profile)
	system := e.systemPrompt(userContext, emo, profile)

	timeout := time.Duration(e.generation.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	genCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	response, err := e.generator.Generate(genCtx, system, text, llm.Options{
		Temperature:   e.generation.Temperature,
		TopP:          e.generation.TopP,
		ContextWindow: e.generation.ContextWindow,
		MaxTokens:     e.generation.MaxTokens,
	})
	if err != nil {
		e.logger.Error().Str("user_id", userID).Err(err).Msg("generation failed")
		if llm.IsRetryableError(err) || llm.IsTimeoutError(err) {
			return Reply{Message: backendTroubleReply, Emotion: emo}
		}
		return Reply{Message: processingTroubleReply, Emotion: emo}
	}

	// Persist with a detached context: the reply is already composed, and a
	// dropped connection must not lose the exchange. The lock is re-acquired
	// so profile merges and buffer flushes stay serialized per user.
	unlock = e.lockUser(userID)
	defer unlock()

	persistCtx := context.WithoutCancel(ctx)
	if delta, changed := e.extractor.Extract(persistCtx, userID, text); changed {
		if !e.store.UpsertProfile(persistCtx, userID, delta) {
			e.logger.Warn().Str("user_id", userID).Msg("profile update failed")
		}
	}
	e.buffer.Append(persistCtx, userID, memory.Exchange{
		UserInput:        text,
		BotResponse:      response,
		EmotionalContext: emo,
		Timestamp:        time.Now(),
	})

	return Reply{Message: response, Emotion: emo}
}

// SuggestTopic returns a conversation starter, personalized with the user's
// interests and profession when known.
func (e *Engine) SuggestTopic(ctx context.Context, userID string) Reply {
	topics := make([]string, len(conversationStarters))
	copy(topics, conversationStarters)

	if profile := e.store.GetProfile(ctx, userID); profile != nil {
		likes := profile.Preferences.Likes
		if len(likes) > 2 {
			likes = likes[:2]
		}
		for _, interest := range likes {
			topics = append(topics, fmt.Sprintf("How's your interest in %s going?", interest))
		}
		if profile.Preferences.Profession != "" {
			topics = append(topics, fmt.Sprintf("How's work as a %s treating you?", profile.Preferences.Profession))
		}
	}

	topic := emotion.Pick(e.emotions, topics)
	return Reply{Message: topic, Emotion: e.emotions.Respond(topic)}
}

// UserSnapshot returns the stored state for a user: profile, the top
// important memories and the latest recent exchanges.
func (e *Engine) UserSnapshot(ctx context.Context, userID string) Snapshot {
	return Snapshot{
		Profile:           e.store.GetProfile(ctx, userID),
		ImportantMemories: e.store.GetImportantMemories(ctx, userID, 10),
		RecentMemories:    e.store.GetRecentMemories(ctx, userID, 5),
	}
}
