package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alanle1011/contract-marketplace/domain"
)

func TestReentrancyGuard(t *testing.T) {
	g := &reentrancyGuard{}

	assert.NoError(t, g.enter())
	assert.Equal(t, domain.ErrReentrantCall, g.enter())

	g.exit()
	assert.NoError(t, g.enter())
	g.exit()
}
