package lookup

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseQueryBlockNumber(t *testing.T) {
	// Every spelling of block A lot 1 must resolve to the same filter.
	for _, q := range []string{"A-1", "A1", "A 1", "a-1", "  a 1  ", "A - 1"} {
		t.Run(q, func(t *testing.T) {
			f := ParseQuery(q)
			require.Equal(t, FilterBlockNumber, f.Kind)
			require.Equal(t, "A", f.Block)
			require.Equal(t, 1, f.Number)
		})
	}
}

func TestParseQueryVerboseNotation(t *testing.T) {
	for _, q := range []string{"MZ A LT 1", "mz a lt 1", "MZ. A LT. 1", "MZ A - LT 1"} {
		t.Run(q, func(t *testing.T) {
			f := ParseQuery(q)
			require.Equal(t, FilterBlockNumber, f.Kind)
			require.Equal(t, "A", f.Block)
			require.Equal(t, 1, f.Number)
		})
	}
}

func TestParseQueryVerboseMatchesShortForm(t *testing.T) {
	require.Equal(t, ParseQuery("A-1"), ParseQuery("MZ A LT 1"))
}

func TestParseQueryNumberOnly(t *testing.T) {
	for _, q := range []string{"LT 1", "lt 1", "LT. 1", "LT-1"} {
		t.Run(q, func(t *testing.T) {
			f := ParseQuery(q)
			require.Equal(t, FilterNumber, f.Kind)
			require.Equal(t, 1, f.Number)
			require.Empty(t, f.Block)
		})
	}
}

func TestParseQueryNationalIDFallback(t *testing.T) {
	f := ParseQuery("45678912")
	require.Equal(t, FilterNationalID, f.Kind)
	require.Equal(t, "45678912", f.NationalID)
}

func TestParseQueryEmpty(t *testing.T) {
	require.Equal(t, FilterNone, ParseQuery("").Kind)
	require.Equal(t, FilterNone, ParseQuery("   ").Kind)
}

func TestParseQueryFirstPatternWins(t *testing.T) {
	// "B2" matches the short block+number pattern; it must never fall
	// through to a national-ID lookup even if no lot B-2 exists.
	f := ParseQuery("B2")
	require.Equal(t, FilterBlockNumber, f.Kind)
	require.Equal(t, "B", f.Block)
	require.Equal(t, 2, f.Number)
}
