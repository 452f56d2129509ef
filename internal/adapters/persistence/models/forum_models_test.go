package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextLockStatus(t *testing.T) {
	assert.Equal(t, TopicLocked, NextLockStatus(TopicOpen))
	assert.Equal(t, TopicLockedAdmin, NextLockStatus(TopicLocked))
	assert.Equal(t, TopicOpen, NextLockStatus(TopicLockedAdmin))

	// corrupt states fall back to open rather than sticking
	assert.Equal(t, TopicOpen, NextLockStatus("GARBAGE"))
	assert.Equal(t, TopicOpen, NextLockStatus(""))
}
