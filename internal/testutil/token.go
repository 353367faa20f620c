package testutil

// FixedTokenGenerator returns the same operation token every time.
//
// The engine tags each façade operation with a token for log correlation;
// fixing the token makes scenario traces byte-identical across runs, which
// golden snapshot comparison depends on.
//
// Thread-safety: FixedTokenGenerator is stateless and safe for concurrent use.
type FixedTokenGenerator struct {
	token string
}

// NewFixedTokenGenerator creates a fixed token generator.
// If token is empty, Generate() returns "test-op-default".
func NewFixedTokenGenerator(token string) *FixedTokenGenerator {
	if token == "" {
		token = "test-op-default"
	}
	return &FixedTokenGenerator{token: token}
}

// Generate returns the fixed token.
//
// Implements engine.TokenGenerator.
func (g *FixedTokenGenerator) Generate() string {
	return g.token
}
