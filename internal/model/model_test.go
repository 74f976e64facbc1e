package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("messages")
	assert.True(t, ok)
	assert.Equal(t, KindMessages, k)

	_, ok = ParseKind("sermons")
	assert.False(t, ok)
}

func TestEventEndFallsBackToStart(t *testing.T) {
	assert.Equal(t, "2024-02-03", Event{DateStart: "2024-02-03"}.End())
	assert.Equal(t, "2024-02-05", Event{DateStart: "2024-02-03", DateEnd: "2024-02-05"}.End())
}

func TestEventReadOnly(t *testing.T) {
	assert.False(t, Event{}.ReadOnly())
	assert.False(t, Event{Source: SourceLocal}.ReadOnly())
	assert.True(t, Event{Source: "diocese"}.ReadOnly())
}

func TestToday(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	// 03:00 UTC on the 2nd is still the evening of the 1st in Chicago.
	now := time.Date(2024, 3, 2, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-01", Today(now, chicago))
	assert.Equal(t, "2024-03-02", Today(now, time.UTC))
}

func TestDateHelpers(t *testing.T) {
	assert.True(t, IsDate("2024-02-29"))
	assert.False(t, IsDate("2023-02-29"))
	assert.False(t, IsDate("02/03/2024"))
	assert.Equal(t, "2024-03-01", AddDays("2024-02-29", 1))
	assert.Equal(t, "bogus", AddDays("bogus", 1))
}
