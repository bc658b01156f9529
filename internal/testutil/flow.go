package testutil

// FixedSessionGenerator returns the same session token every time.
//
// Engine log lines carry the session token, so a fixed token keeps
// transcripts and captured logs byte-identical across runs.
//
// Thread-safety: FixedSessionGenerator is stateless and safe for concurrent use.
type FixedSessionGenerator struct {
	token string
}

// NewFixedSessionGenerator creates a fixed generator.
// If token is empty, Generate() returns "test-session".
func NewFixedSessionGenerator(token string) *FixedSessionGenerator {
	if token == "" {
		token = "test-session"
	}
	return &FixedSessionGenerator{token: token}
}

// Generate returns the fixed token.
//
// Implements engine.SessionGenerator.
func (g *FixedSessionGenerator) Generate() string {
	return g.token
}
