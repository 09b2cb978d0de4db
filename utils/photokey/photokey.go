package photokey

import (
	"crypto/rand"
	"strings"

	"github.com/oklog/ulid/v2"
)

// entropy is shared by every caller. The locked reader keeps New safe for
// concurrent use; uploads generate keys from arbitrary goroutines.
var entropy = &ulid.LockedMonotonicReader{
	MonotonicReader: ulid.Monotonic(rand.Reader, 0),
}

// New returns a lowercase ULID suitable as a collision-resistant object key.
func New() string {
	id := ulid.MustNew(ulid.Now(), entropy)
	return strings.ToLower(id.String())
}

// IsValid reports whether the string parses as a ULID.
func IsValid(value string) bool {
	_, err := ulid.Parse(strings.TrimSpace(value))
	return err == nil
}
