// Package memory provides the typed memory records and the in-process store
// that back the companion's recall and proactive follow-ups.
package memory

import "time"

// Category classifies a memory record.
//
// The set of categories is closed: each category carries its own static
// keyword set, and callers iterate them explicitly via Categories().
type Category string

const (
	// CategoryEvent covers appointments, deadlines, and other dated commitments.
	CategoryEvent Category = "event"

	// CategoryEmotion covers emotional states the user has expressed.
	CategoryEmotion Category = "emotion"

	// CategoryHealth covers health and wellbeing topics.
	CategoryHealth Category = "health"

	// CategoryActivity covers work, school, travel, and recurring activities.
	CategoryActivity Category = "activity"

	// CategoryPerson covers people and relationships the user mentions.
	CategoryPerson Category = "person"
)

// categoryKeywords holds the keyword set for each category. Keywords are
// lowercase single words matched as whole words against the turn text.
//
// The sets are deliberately broad: a false positive is a harmless extra
// memory, while a false negative is a missed chance to follow up.
var categoryKeywords = map[Category][]string{
	CategoryEvent: {
		"meeting", "interview", "appointment", "exam", "test",
		"deadline", "presentation",
	},
	CategoryEmotion: {
		"stressed", "worried", "excited", "anxious", "nervous",
		"happy", "sad", "tired", "overwhelmed",
	},
	CategoryHealth: {
		"doctor", "sick", "medicine", "sleep", "exercise", "diet", "therapy",
	},
	CategoryActivity: {
		"job", "work", "school", "vacation", "trip", "birthday",
		"anniversary", "graduation", "gym",
	},
	CategoryPerson: {
		"friend", "family", "mom", "dad", "sister", "brother",
		"boyfriend", "girlfriend", "partner", "colleague",
	},
}

// categoryOrder is the fixed priority order used when two records are
// equally old: event > emotion > health > activity > person.
var categoryOrder = []Category{
	CategoryEvent,
	CategoryEmotion,
	CategoryHealth,
	CategoryActivity,
	CategoryPerson,
}

// Categories returns all categories in priority order.
//
// The returned slice is a copy; callers may reorder it freely.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// Keywords returns the keyword set of the category.
//
// The returned slice is a copy. An unknown category has no keywords.
func (c Category) Keywords() []string {
	kws := categoryKeywords[c]
	out := make([]string, len(kws))
	copy(out, kws)
	return out
}

// Valid reports whether the category is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categoryKeywords[c]
	return ok
}

// Record is a single extracted memory.
//
// A record is immutable after creation except for FollowedUp, which the
// store flips from false to true exactly once when a proactive follow-up
// references it.
type Record struct {
	// ID is the unique identifier of the record.
	ID int64 `json:"id"`

	// Category is the memory category that matched during extraction.
	Category Category `json:"category"`

	// Content is the normalized excerpt that triggered extraction,
	// e.g. "job interview tomorrow".
	Content string `json:"content"`

	// SourceText is the verbatim turn text, kept for context when the
	// record is referenced in a proactive follow-up.
	SourceText string `json:"source_text"`

	// Keyword is the trigger word that matched. It selects the follow-up
	// template when the record is referenced later.
	Keyword string `json:"keyword"`

	// CreatedAt is the timestamp of the turn that produced the record.
	CreatedAt time.Time `json:"created_at"`

	// FollowedUp is true once a proactive message has referenced the record.
	FollowedUp bool `json:"followed_up"`
}
