// Package id generates context identifiers.
//
// Identifiers are prefixed ULIDs ("ctx_01J...") drawn from monotonic entropy,
// so two contexts created in the same millisecond still compare in creation
// order and the creation time can be read back from the identifier.
package id

import (
	"crypto/rand"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ContextID identifies a vfs context and the bridge session that wraps it.
type ContextID string

// ContextPrefix tags context identifiers in logs and URLs.
const ContextPrefix = "ctx"

// ErrMalformed is returned for strings that are not prefixed ULIDs.
var ErrMalformed = errors.New("id: malformed identifier")

// Generator produces ULIDs. It is safe for concurrent use.
type Generator struct {
	mu      sync.Mutex // Protects entropy
	entropy io.Reader
	now     func() time.Time
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator(rand.Reader)
	})
	return defaultGenerator
}

// NewGenerator creates a generator drawing monotonic entropy from r.
func NewGenerator(r io.Reader) *Generator {
	return &Generator{
		entropy: ulid.Monotonic(r, 0),
		now:     time.Now,
	}
}

// Generate returns a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
}

// ContextID returns a new context identifier.
func (g *Generator) ContextID() ContextID {
	return ContextID(ContextPrefix + "_" + g.Generate().String())
}

// NewContextID returns a new context identifier from the default generator.
func NewContextID() ContextID {
	return Default().ContextID()
}

func (c ContextID) String() string { return string(c) }

// ParseContextID validates s and returns it typed.
func ParseContextID(s string) (ContextID, error) {
	if _, err := ulidOf(s); err != nil {
		return "", err
	}
	return ContextID(s), nil
}

// Time returns the creation time encoded in the identifier.
func (c ContextID) Time() (time.Time, error) {
	u, err := ulidOf(string(c))
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()), nil
}

func ulidOf(s string) (ulid.ULID, error) {
	raw, ok := strings.CutPrefix(s, ContextPrefix+"_")
	if !ok {
		return ulid.ULID{}, ErrMalformed
	}
	u, err := ulid.ParseStrict(raw)
	if err != nil {
		return ulid.ULID{}, errors.Join(ErrMalformed, err)
	}
	return u, nil
}
