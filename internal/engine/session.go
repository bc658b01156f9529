package engine

import (
	"github.com/google/uuid"
)

// UUIDv7Generator is the default SessionGenerator. Tokens are time-ordered,
// so sorting log lines by session groups playthroughs by start time.
type UUIDv7Generator struct{}

// Generate returns a hyphenated UUIDv7.
// Panics if the random source fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
