package emotion

// triggerCategory pairs a fixed keyword list with a base weight. Matching is
// lower-cased substring containment, and every hit applies independently, so
// repeated cues compound instead of being normalized away.
type triggerCategory struct {
	name   string
	words  []string
	weight float64
}

// triggerCategories is evaluated in slice order. Keep the order fixed: scalar
// updates clamp after every application, so ordering is behaviorally relevant.
var triggerCategories = []triggerCategory{
	{
		name: "positive",
		words: []string{
			"great", "awesome", "wonderful", "amazing", "happy", "excited",
			"love", "like", "good", "nice", "fantastic", "perfect", "excellent",
			"joy", "pleasure", "delighted", "thrilled", "bliss", "ecstatic",
			"brilliant", "super", "wow", "yay", "celebrate", "win", "success",
		},
		weight: 0.1,
	},
	{
		name: "negative",
		words: []string{
			"sad", "angry", "mad", "hate", "terrible", "awful", "bad", "upset",
			"disappointed", "worried", "stress", "problem", "issue",
			"frustrated", "annoyed", "depressed", "miserable", "heartbroken",
			"tired", "exhausted", "sick", "pain", "hurt", "loss", "fail",
		},
		weight: 0.1,
	},
	{
		name: "curiosity",
		words: []string{
			"why", "how", "what if", "explain", "tell me about", "curious",
			"question", "wonder", "understand", "learn", "teach", "know",
			"who", "what", "when", "where", "which", "describe", "define",
		},
		weight: 0.15,
	},
	{
		name: "urgency",
		words: []string{
			"now", "quick", "urgent", "asap", "immediately", "emergency",
			"help", "important", "hurry", "rush", "critical", "stat", "deadline",
			"fast", "quickly", "immediate", "pressing", "time-sensitive",
		},
		weight: 0.1,
	},
	{
		name: "gratitude",
		words: []string{
			"thanks", "thank you", "appreciate", "grateful", "gratitude", "kind",
			"helpful", "support", "owe you", "bless you", "owe you one",
		},
		weight: 0.08,
	},
}

// Intensity multipliers derived from surface cues (punctuation, casing, emoji).
const (
	intensityExclaim1  = 1.5
	intensityExclaim2  = 2.0
	intensityExclaim3  = 2.5
	intensityQuestion  = 1.2
	intensityQuestion2 = 1.5
	intensityEllipsis  = 0.8
	intensityAllCaps   = 1.8
)

// emojiModifiers are multi-character cues; each present cue multiplies in.
var emojiModifiers = map[string]float64{
	"❤️": 1.3,
	"😢": 1.4,
	"😠": 1.4,
}

type toneProfile struct {
	greetings []string
	responses []string
	closings  []string
	emojis    []string
}

var toneProfiles = map[Tone]toneProfile{
	ToneFriendly: {
		greetings: []string{
			"Hey there!", "Hello!", "Hi!", "Hey! How's it going?", "Hi there!",
			"Good to see you!", "Howdy!", "Ahoy!", "Greetings!", "Well hello!",
		},
		responses: []string{
			"I see", "Interesting", "That's fascinating", "Tell me more",
			"I'd love to hear more about that", "How interesting!", "That's cool!",
			"Neat!", "Fascinating!", "I'm curious about that",
		},
		closings: []string{
			"Talk to you soon!", "Looking forward to chatting again!", "Take care!",
			"Have a great day!", "Catch you later!", "Until next time!", "See you around!",
		},
		emojis: []string{"😊", "🙂", "👍", "👋", "💫", "🌟"},
	},
	ToneProfessional: {
		greetings: []string{
			"Good day", "Hello", "Greetings", "Thank you for reaching out",
			"Welcome", "Pleased to connect", "Good to meet you",
		},
		responses: []string{
			"I understand", "I see your point", "That is noteworthy",
			"I appreciate that information", "That's a valid perspective",
			"I comprehend your meaning", "That's quite insightful",
		},
		closings: []string{
			"Have a productive day", "Best regards", "Thank you for the conversation",
			"Wishing you success", "I look forward to our next discussion",
		},
		emojis: []string{"💼", "📊", "📈", "📋", "🎯", "🔍"},
	},
	ToneEmpathetic: {
		greetings: []string{
			"Hi there, how are you feeling today?", "Hello, I'm here to listen",
			"I'm here for you", "How are you holding up?", "I'm listening whenever you're ready",
			"Take your time, I'm here", "How's your heart today?",
		},
		responses: []string{
			"I can imagine how that feels", "That sounds challenging",
			"I appreciate you sharing that", "That must be difficult",
			"Your feelings are completely valid", "I hear you", "That sounds tough",
			"I'm here with you in this", "Thank you for trusting me with that",
		},
		closings: []string{
			"Take care of yourself", "Be kind to yourself today",
			"I'm here if you need to talk", "Sending you positive thoughts",
			"Be gentle with yourself", "You're not alone",
		},
		emojis: []string{"🤗", "💖", "🌷", "💝", "🌻", "🌈"},
	},
	TonePlayful: {
		greetings: []string{
			"Hey you! 😊", "Well hello there!", "Howdy partner!",
			"Ahoy there! ⚓", "Greetings, earthling! 👽", "Hey there, superstar! 🌟",
			"Well howdy! 🤠", "Hello, lovely human! 💫",
		},
		responses: []string{
			"No way! That's wild!", "Seriously? That's amazing!",
			"You're kidding me!", "That's incredible! 🤩", "Whoa! That's awesome!",
			"Get out of here! That's fantastic!", "Shut the front door! That's great!",
			"Holy moly! That's impressive!",
		},
		closings: []string{
			"Catch you on the flip side!", "TTYL! 😊", "Stay awesome!",
			"Until next time! 🎉", "Peace out! ✌️", "Later, alligator! 🐊",
			"Stay curious, my friend! 🔍",
		},
		emojis: []string{"😄", "🎭", "🎪", "🎨", "🤩", "✨"},
	},
	ToneCurious: {
		greetings: []string{
			"Hello! What shall we explore today?", "Hi there! What's on your mind?",
			"Greetings! I'm curious what you're thinking about", "Hey! What wonders shall we discuss?",
		},
		responses: []string{
			"That makes me wonder...", "I'm curious to know more about",
			"What an interesting perspective!", "I'd love to dive deeper into that",
			"That raises some fascinating questions", "How intriguing!",
			"That's got me thinking...",
		},
		closings: []string{
			"So much to think about!", "Looking forward to continuing this exploration!",
			"So many interesting ideas!", "Until our next intellectual adventure!",
		},
		emojis: []string{"🤔", "🧐", "🔍", "💡", "🌌", "🔬"},
	},
}

// responsePatterns wrap an opener with a connective and a second phrase to cut
// down on repetition across turns. Single-slot patterns use the opener only.
var responsePatterns = []string{
	"%s What do you think about that?",
	"%s By the way, %s",
	"%s Speaking of which, %s",
	"%s Anyway, %s",
	"%s On a different note, %s",
	"%s Changing topics slightly, %s",
	"%s That reminds me, %s",
	"%s Incidentally, %s",
}

// Threshold-gated emoji pools used before falling back to the tone defaults.
var (
	happinessMarkers  = []string{"😊", "😄", "🤗", "🥰", "😁"}
	sadnessMarkers    = []string{"😔", "😢", "💔", "😞", "🥺"}
	excitementMarkers = []string{"🎉", "🤩", "✨", "🔥", "⚡"}
	curiosityMarkers  = []string{"🤔", "🧐", "🔍", "💭", "❓"}
	empathyMarkers    = []string{"💖", "🤲", "🌷", "💝", "❤️"}
)
