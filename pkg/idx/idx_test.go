package idx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewProducesValidULID(t *testing.T) {
	t.Parallel()

	id := New()
	require.False(t, id.IsZero())

	parsed, err := Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)
}

func TestNewAtEmbedsTimestamp(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	id := NewAt(at)

	// ULID timestamps have millisecond precision.
	require.WithinDuration(t, at, id.Time(), time.Millisecond)
}

func TestIDsSortByTime(t *testing.T) {
	t.Parallel()

	earlier := NewAt(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	later := NewAt(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.Less(t, earlier.String(), later.String())
}

func TestParseRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "   ", "not-a-ulid", "0000"} {
		_, err := Parse(input)
		require.ErrorIs(t, err, ErrInvalid)
	}
}

func TestMonotonicWithinSameMillisecond(t *testing.T) {
	t.Parallel()

	at := time.Now().UTC()
	a := NewAt(at)
	b := NewAt(at)
	require.Less(t, a.String(), b.String())
}
