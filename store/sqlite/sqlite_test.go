package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/motorph/payroll-engine/engine"
	"github.com/motorph/payroll-engine/store"
	"github.com/motorph/payroll-engine/store/sqlite"
	"github.com/motorph/payroll-engine/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSQLite_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return newStore(t) })
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	// GIVEN: a file-backed database with one employee and one day logged
	// WHEN: the store is closed and reopened
	// THEN: the data is still there
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "payroll.db")

	st, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, st.SaveEmployee(ctx, storetest.Garcia()))
	in := engine.MustClock(8, 5)
	require.NoError(t, st.SaveAttendance(ctx, engine.AttendanceEntry{
		EmployeeID: 10001, Date: engine.NewDate(2024, time.June, 3), LogIn: &in,
	}))
	require.NoError(t, st.Close())

	reopened, err := sqlite.New(path)
	require.NoError(t, err)
	defer reopened.Close()

	emp, err := reopened.GetEmployee(ctx, 10001)
	require.NoError(t, err)
	assert.Equal(t, "Garcia", emp.LastName)

	entries, err := reopened.Attendance(ctx, 10001, engine.MonthPeriod(2024, time.June))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "08:05", entries[0].LogIn.String())
}

func TestSQLite_Reset(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	require.NoError(t, st.SaveEmployee(ctx, storetest.Garcia()))

	require.NoError(t, st.Reset(ctx))

	all, err := st.ListEmployees(ctx, store.EmployeeFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}
