package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseEventDate(t *testing.T) {
	tests := map[string]time.Time{
		"2026-05-01":                 time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		"2026-05-01T18:30":           time.Date(2026, 5, 1, 18, 30, 0, 0, time.UTC),
		"2026-05-01T18:30:15":        time.Date(2026, 5, 1, 18, 30, 15, 0, time.UTC),
		"2026-05-01T18:30:15Z":       time.Date(2026, 5, 1, 18, 30, 15, 0, time.UTC),
		" 2026-05-01T20:30:15+02:00": time.Date(2026, 5, 1, 18, 30, 15, 0, time.UTC),
	}
	for in, want := range tests {
		got, err := parseEventDate(in)
		require.NoError(t, err, in)
		require.NotNil(t, got, in)
		assert.True(t, want.Equal(*got), "%s parsed as %s", in, got)
	}

	got, err := parseEventDate("  ")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseEventDate("01/05/2026")
	assert.Error(t, err)
}

func TestUniqueIDsKeepsFirstOccurrence(t *testing.T) {
	a, b := mustID("65f0c0ffee0000000000000a"), mustID("65f0c0ffee0000000000000b")
	assert.Equal(t, []primitive.ObjectID{a, b}, uniqueIDs([]primitive.ObjectID{a, b, a, b}))
}
