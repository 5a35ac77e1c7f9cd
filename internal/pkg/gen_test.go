package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateAcceptKey(t *testing.T) {
	// Given: the sample nonce from RFC 6455 section 1.3
	key := "dGhlIHNhbXBsZSBub25jZQ=="

	// When: deriving the accept key
	accept := GenerateAcceptKey(key)

	// Then: it matches the published handshake value
	assert.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", accept)
}

func TestGenerateNewPlayerID(t *testing.T) {
	// When: generating two identities
	first := GenerateNewPlayerID()
	second := GenerateNewPlayerID()

	// Then: both are non-empty and distinct
	assert.NotEmpty(t, first)
	assert.NotEmpty(t, second)
	assert.NotEqual(t, first, second)
}

func TestGenerateSessionID(t *testing.T) {
	// When: generating a session id
	id := GenerateSessionID()

	// Then: it is non-empty
	assert.NotEmpty(t, id)
}
