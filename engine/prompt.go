package engine

import (
	"fmt"
	"strings"

	"github.com/emberworks/aria/emotion"
	"github.com/emberworks/aria/memory"
)

const (
	maxPromptLikes    = 3
	maxPromptDislikes = 2
)

// systemPrompt builds the full system prompt: persona, per-turn instructions,
// the user's profile facts and the assembled conversation context. The result
// is hard-capped so prompt size stays bounded no matter how much is known
// about the user.
func (e *Engine) systemPrompt(userContext string, emo emotion.Response, profile *memory.Profile) string {
	var personal strings.Builder
	name := ""
	if profile != nil {
		name = profile.Name
		if name != "" {
			fmt.Fprintf(&personal, "The user's name is %s. ", name)
		}
		prefs := profile.Preferences
		if len(prefs.Likes) > 0 {
			likes := prefs.Likes
			if len(likes) > maxPromptLikes {
				likes = likes[:maxPromptLikes]
			}
			fmt.Fprintf(&personal, "They like: %s. ", strings.Join(likes, ", "))
		}
		if len(prefs.Dislikes) > 0 {
			dislikes := prefs.Dislikes
			if len(dislikes) > maxPromptDislikes {
				dislikes = dislikes[:maxPromptDislikes]
			}
			fmt.Fprintf(&personal, "They dislike: %s. ", strings.Join(dislikes, ", "))
		}
		if prefs.Profession != "" {
			fmt.Fprintf(&personal, "They work as: %s. ", prefs.Profession)
		}
		if prefs.Location != "" {
			fmt.Fprintf(&personal, "They're from: %s. ", prefs.Location)
		}
	}

	personaLine := fmt.Sprintf("You are %s, %s.", e.persona.Name, e.persona.Persona)
	if e.persona.Backstory != "" {
		personaLine += " " + e.persona.Backstory
	}

	prompt := fmt.Sprintf(`%s

# Instructions:
1. Be conversational and engaging
2. Tone: %s
3. Emotional context: %s
4. Keep responses under 3 sentences when possible
5. Remember and reference previous conversations when relevant
6. Use the user's name if you know it: %s
7. Reference the user's preferences when appropriate

# Personal Context:
%s

# User Context:
%s

# Response Guidelines:
- Be natural and vary your responses
- Show genuine interest in the user
- Reference past conversations when relevant
- Personalize responses using known information
- Avoid repetitive or generic responses
- Adapt to the user's communication style
`, personaLine, emo.Tone, emo.EmotionalMarkers, name, personal.String(), userContext)

	rs := []rune(prompt)
	if len(rs) > e.maxSystemPrompt {
		return string(rs[:e.maxSystemPrompt])
	}
	return prompt
}
