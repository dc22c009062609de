package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-planner/schedule"
	"github.com/warp/leave-planner/schedule/store"
)

func TestMemory_EmptyByDefault(t *testing.T) {
	mem := store.NewMemory()

	snap, err := mem.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestMemory_SaveThenLoad(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.Save(ctx, schedule.Snapshot{
		"A1_2024-06-03": schedule.DefaultWeek(),
	}))

	snap, err := mem.Load(ctx)
	require.NoError(t, err)
	assert.Contains(t, snap, "A1_2024-06-03")
	assert.Len(t, snap["A1_2024-06-03"], 16)
}

func TestMemory_LoadReturnsIsolatedCopy(t *testing.T) {
	// GIVEN: A stored snapshot
	// WHEN: A caller mutates what Load handed out
	// THEN: The stored state is unaffected
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.Save(ctx, schedule.Snapshot{
		"A1_2024-06-03": schedule.DefaultWeek(),
	}))

	loaded, err := mem.Load(ctx)
	require.NoError(t, err)
	loaded["A1_2024-06-03"][0].Status = schedule.StatusOff
	delete(loaded, "A1_2024-06-03")

	fresh, err := mem.Load(ctx)
	require.NoError(t, err)
	require.Contains(t, fresh, "A1_2024-06-03")
	assert.Equal(t, schedule.StatusWorking, fresh["A1_2024-06-03"][0].Status)
}

func TestMemory_SaveCopiesInput(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	snap := schedule.Snapshot{"A1_2024-06-03": schedule.DefaultWeek()}
	require.NoError(t, mem.Save(ctx, snap))

	// Mutating the caller's snapshot after Save must not leak in.
	snap["A1_2024-06-03"][0].Status = schedule.StatusOff

	stored, err := mem.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusWorking, stored["A1_2024-06-03"][0].Status)
}

func TestMemory_LastWriterWins(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.Save(ctx, schedule.Snapshot{"A1_2024-06-03": schedule.DefaultWeek()}))
	require.NoError(t, mem.Save(ctx, schedule.Snapshot{"A2_2024-06-10": schedule.DefaultWeek()}))

	snap, err := mem.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Contains(t, snap, "A2_2024-06-10")
}
