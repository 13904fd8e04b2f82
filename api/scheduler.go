/*
scheduler.go - Automated month-end payroll scheduler

PURPOSE:
  Periodically checks whether the previous calendar month has closed and
  computes payroll for every employee who has no record for it yet.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - The closed period is always the month before Now()
  - Employees already paid for that month are skipped, so restarts and
    repeated ticks never recompute a period
  - Uses payrun.Runner with the store as Recorder

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewPayrollScheduler(store, handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: RunPayroll endpoint (manual runs)
  - payrun/runner.go: the pipeline
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/motorph/payroll-engine/engine"
	"github.com/motorph/payroll-engine/store"
)

// PayrollScheduler closes each month's payroll automatically.
type PayrollScheduler struct {
	Store         store.Store
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool
	Now           func() time.Time

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewPayrollScheduler creates a new scheduler.
func NewPayrollScheduler(st store.Store, handler *Handler) *PayrollScheduler {
	return &PayrollScheduler{
		Store:         st,
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		Now:           time.Now,
	}
}

// Start begins the scheduler.
func (ps *PayrollScheduler) Start() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if !ps.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	ps.ticker = time.NewTicker(ps.CheckInterval)
	ps.stop = make(chan struct{})
	ps.wg.Add(1)

	go ps.run()

	log.Printf("[Scheduler] Started with check interval: %v", ps.CheckInterval)
}

// Stop stops the scheduler.
func (ps *PayrollScheduler) Stop() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.ticker != nil {
		ps.ticker.Stop()
		close(ps.stop)
		ps.wg.Wait()
		ps.ticker = nil
		log.Println("[Scheduler] Stopped")
	}
}

func (ps *PayrollScheduler) run() {
	defer ps.wg.Done()

	// Run immediately on start
	ps.checkAndProcess()

	for {
		select {
		case <-ps.ticker.C:
			ps.checkAndProcess()
		case <-ps.stop:
			return
		}
	}
}

func (ps *PayrollScheduler) checkAndProcess() {
	ctx, cancel := context.WithTimeout(context.Background(), ps.CheckInterval)
	defer cancel()

	period := ps.ClosedPeriod()
	processed, err := ps.RunNow(ctx)
	if err != nil {
		log.Printf("[Scheduler] Payroll for %s failed: %v", period.Label(), err)
		return
	}
	if processed > 0 {
		log.Printf("[Scheduler] Payroll for %s: %d employees processed", period.Label(), processed)
	}
}

// ClosedPeriod is the calendar month before Now().
func (ps *PayrollScheduler) ClosedPeriod() engine.PayPeriod {
	now := ps.Now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return engine.MonthPeriod(first.Year(), first.Month())
}

// RunNow computes and records the closed month for every employee without a
// record for it, returning how many were processed.
func (ps *PayrollScheduler) RunNow(ctx context.Context) (int, error) {
	period := ps.ClosedPeriod()

	existing, err := ps.Store.PayrollForPeriod(ctx, period)
	if err != nil {
		return 0, err
	}
	paid := make(map[engine.EmployeeID]bool, len(existing))
	for _, e := range existing {
		paid[e.EmployeeID] = true
	}

	employees, err := ps.Store.ListEmployees(ctx, store.EmployeeFilter{})
	if err != nil {
		return 0, err
	}
	var pending []engine.EmployeeID
	for _, e := range employees {
		if !paid[e.ID] {
			pending = append(pending, e.ID)
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}

	runner := ps.Handler.Runner()
	runner.Recorder = ps.Store
	if _, err := runner.RunAll(ctx, pending, period); err != nil {
		return 0, err
	}
	return len(pending), nil
}

// GetNextRunTime returns when the next scheduled check will occur.
func (ps *PayrollScheduler) GetNextRunTime() time.Time {
	return ps.Now().Add(ps.CheckInterval)
}
