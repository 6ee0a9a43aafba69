package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsFold(t *testing.T) {
	assert.True(t, ContainsFold("", "anything"))
	assert.True(t, ContainsFold("CRUZ", "Juan", "dela Cruz"))
	assert.True(t, ContainsFold(" ana@", "ANA@example.com"))
	assert.False(t, ContainsFold("santos", "Juan", "Cruz"))
}

func TestName(t *testing.T) {
	assert.Equal(t, "Juan Dela Cruz", Name("  juan   DELA cruz "))
	assert.Equal(t, "Ma. Luisa", Name("ma. luisa"))
}

func TestEmail(t *testing.T) {
	assert.Equal(t, "a@b.com", Email("  A@B.com "))
}
