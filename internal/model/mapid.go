package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MapID errors.
var (
	// ErrEmptyMapID is returned when the ID string is empty.
	ErrEmptyMapID = errors.New("map ID cannot be empty")
	// ErrInvalidMapID is returned when the ID is not of the form <community>-<sequence>.
	ErrInvalidMapID = errors.New("invalid map ID format")
	// ErrInvalidCommunity is returned when the community part is not numeric.
	ErrInvalidCommunity = errors.New("invalid community prefix: must be numeric")
	// ErrInvalidSequence is returned when the sequence part is not an
	// integer in [1, MaxSequence].
	ErrInvalidSequence = errors.New("invalid sequence number: must be between 1 and 99")
)

// MaxSequence is the highest sequence number a plat sheet can carry.
// County plat books number sheets 01-99 within a community; the fallback
// neighbor guess in the extractor is bounded by this value.
const MaxSequence = 99

// MapID is an immutable value object identifying one plat map.
// The canonical form is "<community>-<sequence>" with the sequence
// zero-padded to two digits, e.g. "001-07".
//
// Design decision: We store the community as a string rather than an
// integer because the prefix is a fixed-width code ("001", not "1").
// Formatting must never widen or narrow it beyond what was parsed.
type MapID struct {
	community string // Fixed-width numeric community prefix
	sequence  int    // Sheet number within the community, >= 1
}

// NewMapID creates a MapID from a community prefix and a sequence number.
// The community must be all digits and the sequence must be in
// [1, MaxSequence].
func NewMapID(community string, sequence int) (MapID, error) {
	if community == "" || !isDigits(community) {
		return MapID{}, ErrInvalidCommunity
	}
	if sequence < 1 || sequence > MaxSequence {
		return MapID{}, ErrInvalidSequence
	}
	return MapID{community: community, sequence: sequence}, nil
}

// ParseMapID parses a canonical map ID string.
// The string must contain exactly one "-" separating a numeric community
// prefix from a numeric sequence. Parse failures are reported, never
// coerced; callers decide whether to discard or propagate.
func ParseMapID(s string) (MapID, error) {
	if s == "" {
		return MapID{}, ErrEmptyMapID
	}
	if strings.Count(s, "-") != 1 {
		return MapID{}, ErrInvalidMapID
	}

	community, seqStr, _ := strings.Cut(s, "-")
	if community == "" || !isDigits(community) {
		return MapID{}, ErrInvalidCommunity
	}

	seq, err := strconv.Atoi(seqStr)
	if err != nil || seqStr == "" || !isDigits(seqStr) {
		return MapID{}, ErrInvalidSequence
	}
	if seq < 1 || seq > MaxSequence {
		return MapID{}, ErrInvalidSequence
	}

	return MapID{community: community, sequence: seq}, nil
}

// MustParseMapID parses a map ID or panics if invalid.
// Use only for known-valid IDs in tests or initialization.
func MustParseMapID(s string) MapID {
	id, err := ParseMapID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// isDigits reports whether s consists only of ASCII digits.
func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// String returns the canonical form, zero-padding the sequence to two
// digits. The community prefix is emitted exactly as stored.
func (m MapID) String() string {
	return fmt.Sprintf("%s-%02d", m.community, m.sequence)
}

// Community returns the community prefix.
func (m MapID) Community() string {
	return m.community
}

// Sequence returns the sheet number within the community.
func (m MapID) Sequence() int {
	return m.sequence
}

// SameCommunity reports whether two IDs belong to the same community.
func (m MapID) SameCommunity(other MapID) bool {
	return m.community == other.community
}

// Equals reports whether two MapID values are equal.
// Equality is by canonical string, which reduces to field equality here.
func (m MapID) Equals(other MapID) bool {
	return m.community == other.community && m.sequence == other.sequence
}

// IsZero reports whether this is the zero value.
func (m MapID) IsZero() bool {
	return m.community == ""
}

// Neighbor returns the ID at sequence+offset within the same community.
// The second return value is false when the resulting sequence falls
// outside [1, MaxSequence]; sequence numbers never wrap.
func (m MapID) Neighbor(offset int) (MapID, bool) {
	seq := m.sequence + offset
	if seq < 1 || seq > MaxSequence {
		return MapID{}, false
	}
	return MapID{community: m.community, sequence: seq}, true
}
