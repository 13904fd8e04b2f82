package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/motorph/payroll-engine/engine"
	"github.com/motorph/payroll-engine/store"
	"github.com/motorph/payroll-engine/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return store.NewMemory() })
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	require.NoError(t, m.SaveEmployee(ctx, storetest.Garcia()))

	got, err := m.GetEmployee(ctx, 10001)
	require.NoError(t, err)
	got.Allowances[engine.AllowanceRice] = engine.MustParseDecimal("0")

	again, err := m.GetEmployee(ctx, 10001)
	require.NoError(t, err)
	assert.True(t, again.Allowances[engine.AllowanceRice].Equal(engine.MustParseDecimal("1500")))
}

func TestMemory_KeepsCreatedAtOnUpdate(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	require.NoError(t, m.SaveEmployee(ctx, storetest.Garcia()))
	first, err := m.GetEmployee(ctx, 10001)
	require.NoError(t, err)

	emp := storetest.Garcia()
	emp.CreatedAt = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, m.SaveEmployee(ctx, emp))

	second, err := m.GetEmployee(ctx, 10001)
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
}

func TestEmployeeFilter_Matches(t *testing.T) {
	emp := storetest.Garcia()

	assert.True(t, store.EmployeeFilter{}.Matches(emp))
	assert.True(t, store.EmployeeFilter{Query: "GARC"}.Matches(emp))
	assert.True(t, store.EmployeeFilter{Query: "manuel"}.Matches(emp))
	assert.False(t, store.EmployeeFilter{Status: store.StatusProbationary}.Matches(emp))
	assert.False(t, store.EmployeeFilter{Query: "lim"}.Matches(emp))
}
