package lookup

import (
	"regexp"
	"strconv"
	"strings"
)

// FilterKind distinguishes what a query resolved to.
type FilterKind int

const (
	// FilterNone means the query was empty.
	FilterNone FilterKind = iota
	// FilterBlockNumber matches a single (block, lot number) pair.
	FilterBlockNumber
	// FilterNumber matches a lot number across every block.
	FilterNumber
	// FilterNationalID matches the owner's national ID exactly.
	FilterNationalID
)

// Filter is the structured form of a free-text lookup query.
type Filter struct {
	Kind       FilterKind
	Block      string
	Number     int
	NationalID string
}

// The matchers are tried in order; the first one whose pattern matches wins,
// even if it later yields zero rows. An unmatched input falls through to a
// national-ID exact lookup.
var (
	reBlockNumber = regexp.MustCompile(`^([A-Z])\s*-?\s*(\d+)$`)
	reVerbose     = regexp.MustCompile(`^MZ\.?\s*([A-Z])\s*-?\s*LT\.?\s*(\d+)$`)
	reNumberOnly  = regexp.MustCompile(`^LT\.?\s*-?\s*(\d+)$`)
)

// ParseQuery normalizes a free-text query and resolves it to a Filter.
// Accepted forms: "A-1", "A1", "A 1", "MZ A LT 1", "LT 1", or a national ID.
func ParseQuery(q string) Filter {
	q = strings.ToUpper(strings.TrimSpace(q))
	if q == "" {
		return Filter{Kind: FilterNone}
	}

	if m := reBlockNumber.FindStringSubmatch(q); m != nil {
		n, _ := strconv.Atoi(m[2])
		return Filter{Kind: FilterBlockNumber, Block: m[1], Number: n}
	}
	if m := reVerbose.FindStringSubmatch(q); m != nil {
		n, _ := strconv.Atoi(m[2])
		return Filter{Kind: FilterBlockNumber, Block: m[1], Number: n}
	}
	if m := reNumberOnly.FindStringSubmatch(q); m != nil {
		n, _ := strconv.Atoi(m[1])
		return Filter{Kind: FilterNumber, Number: n}
	}
	return Filter{Kind: FilterNationalID, NationalID: q}
}
