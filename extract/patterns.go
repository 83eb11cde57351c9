package extract

import "regexp"

// Ordered pattern lists per attribute kind. Within one call the patterns for
// a kind are tried in slice order and the first match wins, so keep the more
// specific patterns first.
var (
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:my name is|i am called|you can call me|i'm|call me|name's)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`),
		regexp.MustCompile(`(?i)(?:i am|it's|this is)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`),
		// Bare-name introductions stay case sensitive so short lowercase
		// sentences are not mistaken for names.
		regexp.MustCompile(`^([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)$`),
	}

	likePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:i like|i love|i enjoy|i'm into|i really like|i adore)\s+([^.!?]+)`),
		regexp.MustCompile(`(?i)(?:my favorite|my fav|i prefer)\s+(?:thing|activity|hobby|sport|food|color|movie|book|music|band|artist)\s+is\s+([^.!?]+)`),
	}

	dislikePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:i hate|i dislike|i don't like|i can't stand)\s+([^.!?]+)`),
	}

	professionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:i work as|i am a|i'm a|my job is)\s+([^.!?]+)`),
		regexp.MustCompile(`(?i)(?:i work in|i'm in)\s+the\s+([^.!?]+)\s+(?:industry|field)`),
	}

	locationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:i live in|i'm from|based in|located in)\s+([^.!?]+)`),
	}

	// relationshipPattern captures the relation kind and the name together.
	relationshipPattern = regexp.MustCompile(`(?i)(?:my\s+)?(wife|husband|partner|boyfriend|girlfriend|friend|mom|dad|parent|sister|brother|family)(?:'s name is| is called)\s+([A-Z][a-z]+)`)
)

// pronounLike tokens are rejected as names.
var pronounLike = map[string]bool{
	"i":   true,
	"me":  true,
	"you": true,
}
