package rabbitmq

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPublishBackoff(t *testing.T) {
	base := 100 * time.Millisecond

	assert.Equal(t, 100*time.Millisecond, publishBackoff(base, 2, 0))
	assert.Equal(t, 200*time.Millisecond, publishBackoff(base, 2, 1))
	assert.Equal(t, 400*time.Millisecond, publishBackoff(base, 2, 2))

	// The configured multiplier is honored
	assert.Equal(t, 150*time.Millisecond, publishBackoff(base, 1.5, 1))
	assert.Equal(t, 225*time.Millisecond, publishBackoff(base, 1.5, 2))

	// Unusable multipliers fall back to doubling
	assert.Equal(t, 200*time.Millisecond, publishBackoff(base, 0, 1))
}
