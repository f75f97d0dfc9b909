package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualClock_Advance(t *testing.T) {
	c := NewManualClock(testInstant)

	assert.Equal(t, testInstant, c.Now())

	c.Advance(90 * time.Second)
	assert.Equal(t, testInstant.Add(90*time.Second), c.Now())

	c.Advance(0)
	assert.Equal(t, testInstant.Add(90*time.Second), c.Now(), "zero advance holds the instant")
}

func TestSystemClock_TracksWallTime(t *testing.T) {
	before := time.Now()
	got := SystemClock{}.Now()
	after := time.Now()

	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}
