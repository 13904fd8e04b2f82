/*
Package payrun drives the engine for one or many employees.

PURPOSE:
  The engine is pure and takes everything as arguments. A pay run has to load
  the compensation profile and attendance, evaluate, aggregate, compute, and
  optionally persist the result. Runner does that, one employee at a time or
  for a whole roster in parallel.

PIPELINE (per employee):
  Directory.Profile -> AttendanceSource.Attendance -> engine.Aggregate
    -> engine.Computer.ComputePayroll -> Recorder.SavePayroll

CONCURRENCY:
  RunAll fans out over golang.org/x/sync/errgroup bounded by Workers. Results
  come back in input order. The first failure cancels the remaining work.

USAGE:
  r := &payrun.Runner{Directory: st, Attendance: st, Recorder: st, Rules: deductions.Standard()}
  records, err := r.RunAll(ctx, []engine.EmployeeID{10001, 10002}, period)

SEE ALSO:
  - engine/: the computation itself
  - store/: Directory/AttendanceSource/Recorder implementations
*/
package payrun

import (
	"context"
	"fmt"

	"github.com/motorph/payroll-engine/engine"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds RunAll when Runner.Workers is not set.
const DefaultWorkers = 4

// =============================================================================
// COLLABORATORS
// =============================================================================

// Directory resolves an employee's compensation profile.
type Directory interface {
	Profile(ctx context.Context, id engine.EmployeeID) (engine.CompensationProfile, error)
}

// AttendanceSource loads an employee's attendance entries for a period.
type AttendanceSource interface {
	Attendance(ctx context.Context, id engine.EmployeeID, period engine.PayPeriod) ([]engine.AttendanceEntry, error)
}

// Recorder persists computed payroll records.
type Recorder interface {
	SavePayroll(ctx context.Context, rec engine.PayrollRecord) error
}

// =============================================================================
// RUNNER
// =============================================================================

// Runner computes payroll from its collaborators. Recorder is optional;
// Evaluator and Computer default to the engine's standard ones.
type Runner struct {
	Directory  Directory
	Attendance AttendanceSource
	Recorder   Recorder
	Evaluator  engine.DayEvaluator
	Computer   *engine.Computer
	Rules      []engine.DeductionRule
	Workers    int
}

func (r *Runner) computer() *engine.Computer {
	if r.Computer == nil {
		return engine.NewComputer(engine.DefaultScale)
	}
	return r.Computer
}

func (r *Runner) workers() int {
	if r.Workers <= 0 {
		return DefaultWorkers
	}
	return r.Workers
}

// Summarize loads attendance and aggregates it without computing pay.
func (r *Runner) Summarize(ctx context.Context, id engine.EmployeeID, period engine.PayPeriod) (engine.PeriodAggregate, error) {
	if err := ctx.Err(); err != nil {
		return engine.PeriodAggregate{}, err
	}
	entries, err := r.Attendance.Attendance(ctx, id, period)
	if err != nil {
		return engine.PeriodAggregate{}, fmt.Errorf("employee %d: load attendance: %w", id, err)
	}
	return engine.Aggregate(id, period, entries, r.Evaluator)
}

// Run computes (and records, when a Recorder is set) one employee's payroll.
func (r *Runner) Run(ctx context.Context, id engine.EmployeeID, period engine.PayPeriod) (engine.PayrollRecord, error) {
	if err := ctx.Err(); err != nil {
		return engine.PayrollRecord{}, err
	}
	if err := period.Validate(); err != nil {
		return engine.PayrollRecord{}, err
	}
	profile, err := r.Directory.Profile(ctx, id)
	if err != nil {
		return engine.PayrollRecord{}, fmt.Errorf("employee %d: load profile: %w", id, err)
	}

	agg, err := r.Summarize(ctx, id, period)
	if err != nil {
		return engine.PayrollRecord{}, err
	}

	rec, err := r.computer().ComputePayroll(&profile, period, agg, r.Rules)
	if err != nil {
		return engine.PayrollRecord{}, err
	}

	if r.Recorder != nil {
		if err := r.Recorder.SavePayroll(ctx, rec); err != nil {
			return engine.PayrollRecord{}, fmt.Errorf("employee %d: save payroll: %w", id, err)
		}
	}
	return rec, nil
}

// RunAll runs every employee concurrently and returns records in ids order.
// The period is validated once up front.
func (r *Runner) RunAll(ctx context.Context, ids []engine.EmployeeID, period engine.PayPeriod) ([]engine.PayrollRecord, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	records := make([]engine.PayrollRecord, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())

	for i, id := range ids {
		g.Go(func() error {
			rec, err := r.Run(gctx, id, period)
			if err != nil {
				return err
			}
			records[i] = rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}
