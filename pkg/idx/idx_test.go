package idx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/idkit/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNewAndParse(t *testing.T) {
	t.Parallel()

	id := idx.New()
	require.False(t, id.IsZero())

	parsed, err := idx.Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	for _, bad := range []string{"", "   ", "not-a-ulid", "elsewhere"} {
		_, err := idx.Parse(bad)
		require.ErrorIs(t, err, idx.ErrInvalid, bad)
	}
}

// Not parallel: the entropy source is shared and only increments while the
// timestamp stays the same.
func TestMonotonic(t *testing.T) {
	at := time.Unix(1700000000, 0)
	prev := idx.NewAt(at)
	for range 100 {
		next := idx.NewAt(at)
		require.Equal(t, -1, idx.Compare(prev, next))
		prev = next
	}

	require.Equal(t, 1, idx.Compare(idx.NewAt(at.Add(time.Second)), prev))
	require.Equal(t, 0, idx.Compare(prev, prev))
}

func TestTime(t *testing.T) {
	t.Parallel()

	tm := time.Unix(1700000000, 0).UTC()
	require.WithinDuration(t, tm, idx.NewAt(tm).Time(), time.Millisecond)
	require.True(t, idx.ID("elsewhere").Time().IsZero())
	require.True(t, idx.Zero.Time().IsZero())
}

func TestFromHref(t *testing.T) {
	t.Parallel()

	id := idx.MustParse("01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV")

	tests := []struct {
		href string
		want idx.ID
	}{
		{"https://id.example.com/v1/accounts/01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV", id},
		{"https://id.example.com/v1/accounts/01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV/", id},
		{"https://id.example.com/v1/directories/elsewhere?expand=accounts", "elsewhere"},
		{"/v1/applications/app", "app"},
		{"", idx.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, idx.FromHref(tt.href))
		})
	}
}

func TestMustParsePanics(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() { idx.MustParse("nope") })
}
