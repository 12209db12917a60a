package intelligence_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emma-labs/emma-go/pkg/intelligence"
	"github.com/emma-labs/emma-go/pkg/memory"
)

var extractNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func categoriesOf(recs []*memory.Record) []memory.Category {
	var out []memory.Category
	for _, rec := range recs {
		out = append(out, rec.Category)
	}
	return out
}

func TestExtractEventKeyword(t *testing.T) {
	extractor := intelligence.NewExtractor()

	recs := extractor.Extract("I have a job interview tomorrow", extractNow)

	require.NotEmpty(t, recs)
	assert.Contains(t, categoriesOf(recs), memory.CategoryEvent)

	for _, rec := range recs {
		if rec.Category == memory.CategoryEvent {
			assert.Equal(t, "interview", rec.Keyword)
			assert.Contains(t, rec.Content, "interview")
			assert.Equal(t, "I have a job interview tomorrow", rec.SourceText)
			assert.Equal(t, extractNow, rec.CreatedAt)
			assert.False(t, rec.FollowedUp)
		}
	}
}

func TestExtractEveryCategory(t *testing.T) {
	tests := []struct {
		name     string
		turn     string
		category memory.Category
		keyword  string
	}{
		{"event", "My exam is on Friday", memory.CategoryEvent, "exam"},
		{"emotion", "Feeling really stressed about everything", memory.CategoryEmotion, "stressed"},
		{"health", "Seeing the doctor next week", memory.CategoryHealth, "doctor"},
		{"activity", "Finally booked a vacation", memory.CategoryActivity, "vacation"},
		{"person", "My sister is visiting", memory.CategoryPerson, "sister"},
	}

	extractor := intelligence.NewExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := extractor.Extract(tt.turn, extractNow)
			require.NotEmpty(t, recs)

			var found *memory.Record
			for _, rec := range recs {
				if rec.Category == tt.category {
					found = rec
				}
			}
			require.NotNil(t, found, "expected a %s record", tt.category)
			assert.Equal(t, tt.keyword, found.Keyword)
		})
	}
}

func TestExtractNoMatchYieldsNothing(t *testing.T) {
	extractor := intelligence.NewExtractor()

	assert.Empty(t, extractor.Extract("the weather is quite nice", extractNow))
	assert.Empty(t, extractor.Extract("", extractNow))
	assert.Empty(t, extractor.Extract("   ", extractNow))
}

func TestExtractMultipleCategoriesFromOneTurn(t *testing.T) {
	extractor := intelligence.NewExtractor()

	recs := extractor.Extract("I'm worried about my exam and haven't been getting much sleep", extractNow)

	cats := categoriesOf(recs)
	assert.Contains(t, cats, memory.CategoryEvent)
	assert.Contains(t, cats, memory.CategoryEmotion)
	assert.Contains(t, cats, memory.CategoryHealth)
}

func TestExtractAtMostOneRecordPerCategory(t *testing.T) {
	extractor := intelligence.NewExtractor()

	// Two event keywords in one turn still produce one event record,
	// and the category's first declared keyword wins.
	recs := extractor.Extract("the interview is right before my meeting", extractNow)

	var events []*memory.Record
	for _, rec := range recs {
		if rec.Category == memory.CategoryEvent {
			events = append(events, rec)
		}
	}
	require.Len(t, events, 1)
	assert.Equal(t, "meeting", events[0].Keyword)
}

func TestExtractMatchesWholeWordsOnly(t *testing.T) {
	extractor := intelligence.NewExtractor()

	// "testing" must not match the keyword "test", and "coworker" must
	// not match "work".
	recs := extractor.Extract("testing my coworker's patience", extractNow)
	assert.NotContains(t, categoriesOf(recs), memory.CategoryEvent)
	assert.NotContains(t, categoriesOf(recs), memory.CategoryActivity)
}

func TestExtractStripsPunctuationForMatching(t *testing.T) {
	extractor := intelligence.NewExtractor()

	recs := extractor.Extract("Wish me luck for the interview!", extractNow)
	assert.Contains(t, categoriesOf(recs), memory.CategoryEvent)
}

func TestExtractPersonNameHeuristic(t *testing.T) {
	extractor := intelligence.NewExtractor()

	recs := extractor.Extract("I had lunch with Sarah today", extractNow)

	var person *memory.Record
	for _, rec := range recs {
		if rec.Category == memory.CategoryPerson {
			person = rec
		}
	}
	require.NotNil(t, person)
	assert.Equal(t, "sarah", person.Keyword)
}

func TestExtractPersonHeuristicSkipsSentenceStarts(t *testing.T) {
	extractor := intelligence.NewExtractor()

	// "Today" opens the sentence and "Monday" is a stop word; neither
	// should be mistaken for a name.
	recs := extractor.Extract("Today went fine. Monday will be better", extractNow)
	assert.NotContains(t, categoriesOf(recs), memory.CategoryPerson)
}

func TestExtractExcerptIsBounded(t *testing.T) {
	extractor := intelligence.NewExtractor()

	long := "so here is everything that happened to me this week in far too much detail because " +
		"I really cannot stop talking about it and right in the middle of all of this I had my interview " +
		"which honestly went better than expected even though the commute was terrible and the building " +
		"was impossible to find and the coffee machine was broken"

	recs := extractor.Extract(long, extractNow)
	require.NotEmpty(t, recs)

	for _, rec := range recs {
		assert.LessOrEqual(t, len([]rune(rec.Content)), 100)
		assert.Contains(t, rec.Content, rec.Keyword)
		assert.Equal(t, long, rec.SourceText)
	}
}

func TestExtractShortTurnUsesWholeText(t *testing.T) {
	extractor := intelligence.NewExtractor()

	recs := extractor.Extract("job interview tomorrow", extractNow)
	require.NotEmpty(t, recs)

	for _, rec := range recs {
		assert.Equal(t, "job interview tomorrow", rec.Content)
	}
}
