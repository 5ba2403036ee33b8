package reference

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Prefix tags every booking reference issued by this system.
const Prefix = "NCB"

const (
	suffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	suffixLength   = 6
	dateLength     = 8
)

// FormatError reports a structurally malformed booking reference.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid booking reference: %s", e.Reason)
}

// InvalidDateError reports a reference whose date segment is well-formed
// but does not name a real calendar date, or a generation instant that
// cannot be rendered as one.
type InvalidDateError struct {
	Component string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid booking reference date: %q is not a real calendar date", e.Component)
}

// Reference is the decoded form of a booking reference string.
type Reference struct {
	Prefix        string
	DateComponent string
	Suffix        string
	ParsedDate    time.Time // UTC midnight of the minting date
}

// String re-assembles the canonical NCB-YYYYMMDD-XXXXXX form.
func (r Reference) String() string {
	return r.Prefix + "-" + r.DateComponent + "-" + r.Suffix
}

// Source supplies random indices for suffix sampling. *math/rand.Rand
// satisfies it; tests inject a deterministic sequence.
type Source interface {
	Intn(n int) int
}

// globalSource delegates to the locked package-level source in math/rand,
// so concurrent generation needs no coordination here.
type globalSource struct{}

func (globalSource) Intn(n int) int { return rand.Intn(n) }

// Generator mints booking references. The zero-dependency constructor uses
// the shared global random source and the system clock.
//
// Generated references carry no uniqueness guarantee beyond the birthday
// bound of the 36^6 suffix space; the booking repository enforces
// uniqueness with a unique index and the caller retries on conflict.
type Generator struct {
	src Source
	now func() time.Time
}

// NewGenerator creates a Generator. A nil src falls back to the shared
// global random source.
func NewGenerator(src Source) *Generator {
	if src == nil {
		src = globalSource{}
	}
	return &Generator{src: src, now: time.Now}
}

// Generate mints a reference for the current instant.
func (g *Generator) Generate() string {
	ref, _ := g.GenerateAt(g.now())
	return ref
}

// GenerateAt mints a reference whose date component is the UTC calendar
// date of t. A zero instant is rejected with *InvalidDateError.
func (g *Generator) GenerateAt(t time.Time) (string, error) {
	if t.IsZero() {
		return "", &InvalidDateError{Component: t.String()}
	}

	t = t.UTC()
	date := fmt.Sprintf("%04d%02d%02d", t.Year(), int(t.Month()), t.Day())

	suffix := make([]byte, suffixLength)
	for i := range suffix {
		suffix[i] = suffixAlphabet[g.src.Intn(len(suffixAlphabet))]
	}

	return Prefix + "-" + date + "-" + string(suffix), nil
}

// Parse validates and decodes a booking reference. Checks run in a fixed
// order and fail fast: non-empty, segment count, prefix, date digits,
// suffix alphabet, then real-calendar-date reconstruction. Structural
// failures return *FormatError; a well-formed date segment naming a
// nonexistent day (e.g. 20250230) returns *InvalidDateError.
func Parse(ref string) (*Reference, error) {
	if ref == "" {
		return nil, &FormatError{Reason: "reference is empty"}
	}

	segments := strings.Split(ref, "-")
	if len(segments) != 3 {
		return nil, &FormatError{Reason: fmt.Sprintf("expected 3 segments, got %d", len(segments))}
	}

	if segments[0] != Prefix {
		return nil, &FormatError{Reason: fmt.Sprintf("unknown prefix %q", segments[0])}
	}

	dateComponent := segments[1]
	if len(dateComponent) != dateLength || !isDigits(dateComponent) {
		return nil, &FormatError{Reason: "date segment must be exactly 8 digits"}
	}

	suffix := segments[2]
	if len(suffix) != suffixLength || !isSuffixChars(suffix) {
		return nil, &FormatError{Reason: "suffix must be exactly 6 characters A-Z or 0-9"}
	}

	year := atoi(dateComponent[0:4])
	month := atoi(dateComponent[4:6])
	day := atoi(dateComponent[6:8])

	// time.Date normalizes overflow (day 32 rolls into the next month), so
	// a round-trip mismatch means the segment named a nonexistent date.
	parsed := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if parsed.Year() != year || int(parsed.Month()) != month || parsed.Day() != day {
		return nil, &InvalidDateError{Component: dateComponent}
	}

	return &Reference{
		Prefix:        segments[0],
		DateComponent: dateComponent,
		Suffix:        suffix,
		ParsedDate:    parsed,
	}, nil
}

// Validate is the total-function form of Parse: it never fails, returning
// false for blank input or anything Parse rejects.
func Validate(ref string) bool {
	if strings.TrimSpace(ref) == "" {
		return false
	}
	_, err := Parse(ref)
	return err == nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isSuffixChars(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// atoi converts a digits-only string; inputs are pre-validated.
func atoi(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}
