package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionBudget(t *testing.T) {
	ctx := context.Background()
	budget := NewMemorySessionBudget()

	spent, err := budget.Spent(ctx, 1, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, spent)

	require.NoError(t, budget.Consume(ctx, 1, "s1"))
	require.NoError(t, budget.Consume(ctx, 1, "s1"))

	spent, err = budget.Spent(ctx, 1, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, spent)

	// 额度按 (用户, 会话) 隔离
	spent, err = budget.Spent(ctx, 1, "s2")
	require.NoError(t, err)
	assert.Equal(t, 0, spent)

	spent, err = budget.Spent(ctx, 2, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, spent)
}

func TestMemorySessionBudget_Sweep(t *testing.T) {
	ctx := context.Background()
	budget := NewMemorySessionBudget()

	require.NoError(t, budget.Consume(ctx, 1, "old"))

	// 足够久未活跃的条目被清理
	budget.Sweep(0)

	spent, err := budget.Spent(ctx, 1, "old")
	require.NoError(t, err)
	assert.Equal(t, 0, spent)

	// 活跃条目保留
	require.NoError(t, budget.Consume(ctx, 1, "fresh"))
	budget.Sweep(time.Hour)
	spent, err = budget.Spent(ctx, 1, "fresh")
	require.NoError(t, err)
	assert.Equal(t, 1, spent)
}
