package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummary_HasGoal(t *testing.T) {
	assert.False(t, (&Summary{}).HasGoal())
	assert.True(t, (&Summary{Target: &Macros{Kcal: 2000}}).HasGoal())
}
