package pbsat

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/napolitain/lob-optimizer/internal/ilp"
)

func smallModel() *ilp.Model {
	m := ilp.NewModel()
	x := m.NewIntVar(0, 6, "x")
	y := m.NewIntVar(0, 6, "y")
	m.AddLessOrEqual(ilp.NewLinearExpr().AddTerm(x, 2).AddTerm(y, 3), 12)
	m.Maximize(ilp.NewLinearExpr().AddTerm(x, 3).AddTerm(y, 4))
	return m
}

// A solve waiting behind another search returns as soon as its context ends,
// and the abandoned search releases the lock without running.
func TestSolveReturnsWhileWaitingForLock(t *testing.T) {
	solveMu.Lock()
	locked := true
	defer func() {
		if locked {
			solveMu.Unlock()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := New().Solve(ctx, smallModel())
	assert.True(t, eris.Is(err, context.DeadlineExceeded), "got %v", err)
	assert.Less(t, time.Since(start), 5*time.Second)

	solveMu.Unlock()
	locked = false

	sol, err := New().Solve(context.Background(), smallModel())
	require.NoError(t, err)
	assert.Equal(t, 18, sol.Objective)
}
