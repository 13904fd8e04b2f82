package api

import (
	"context"
	"testing"
	"time"

	"github.com/motorph/payroll-engine/engine"
	"github.com/motorph/payroll-engine/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow(y int, m time.Month, d int) func() time.Time {
	return func() time.Time { return time.Date(y, m, d, 9, 0, 0, 0, time.UTC) }
}

func TestScheduler_ClosedPeriod(t *testing.T) {
	ps := NewPayrollScheduler(store.NewMemory(), nil)

	ps.Now = fixedNow(2024, time.July, 15)
	assert.Equal(t, engine.MonthPeriod(2024, time.June), ps.ClosedPeriod())

	ps.Now = fixedNow(2024, time.January, 1)
	assert.Equal(t, engine.MonthPeriod(2023, time.December), ps.ClosedPeriod())

	ps.Now = fixedNow(2024, time.March, 31)
	assert.Equal(t, engine.MonthPeriod(2024, time.February), ps.ClosedPeriod(), "leap February")
}

func TestScheduler_RunNowPaysEachEmployeeOnce(t *testing.T) {
	// GIVEN: the roster with June attendance, and the clock in July
	// WHEN: the scheduler runs twice
	// THEN: June is paid for everyone on the first run and skipped on the second
	st := store.NewMemory()
	h := NewHandler(st, nil)
	ctx := context.Background()
	require.NoError(t, h.loadRosterScenario(ctx))

	ps := NewPayrollScheduler(st, h)
	ps.Now = fixedNow(2024, time.July, 2)

	n, err := ps.RunNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = ps.RunNow(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	records, err := st.PayrollForPeriod(ctx, ScenarioPeriod)
	require.NoError(t, err)
	require.Len(t, records, 5)
	for _, r := range records {
		assert.Equal(t, 20, r.DaysWorked)
	}
}

func TestScheduler_NewHireCaughtUp(t *testing.T) {
	st := store.NewMemory()
	h := NewHandler(st, nil)
	ctx := context.Background()
	require.NoError(t, h.loadRosterScenario(ctx))

	ps := NewPayrollScheduler(st, h)
	ps.Now = fixedNow(2024, time.July, 2)
	_, err := ps.RunNow(ctx)
	require.NoError(t, err)

	require.NoError(t, h.loadProbationaryScenario(ctx))
	n, err := ps.RunNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestScheduler_StartStop(t *testing.T) {
	st := store.NewMemory()
	h := NewHandler(st, nil)
	require.NoError(t, h.loadProbationaryScenario(context.Background()))

	ps := NewPayrollScheduler(st, h)
	ps.Now = fixedNow(2024, time.July, 2)
	ps.CheckInterval = time.Hour
	ps.Start()

	// the first check runs immediately on start
	require.Eventually(t, func() bool {
		records, err := st.PayrollForPeriod(context.Background(), ScenarioPeriod)
		return err == nil && len(records) == 2
	}, time.Second, 10*time.Millisecond)

	ps.Stop()
	ps.Stop() // idempotent
}

func TestScheduler_Disabled(t *testing.T) {
	st := store.NewMemory()
	ps := NewPayrollScheduler(st, NewHandler(st, nil))
	ps.Enabled = false
	ps.Start()
	assert.Nil(t, ps.ticker)
	ps.Stop()

	ps.Now = fixedNow(2024, time.July, 2)
	assert.Equal(t, fixedNow(2024, time.July, 2)().Add(time.Hour), ps.GetNextRunTime())
}
