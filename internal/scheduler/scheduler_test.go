package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Paulkm2006/hust-ledger-back/internal/domain"
	"github.com/Paulkm2006/hust-ledger-back/internal/kv"
	"github.com/Paulkm2006/hust-ledger-back/internal/queue"
	"github.com/Paulkm2006/hust-ledger-back/internal/report"
)

type genCall struct {
	account string
	period  domain.Period
	token   string
}

type fakeGenerator struct {
	err   error
	calls []genCall
}

func (g *fakeGenerator) Generate(ctx context.Context, account string, period domain.Period, token string) (*domain.ReportDocument, report.Locator, error) {
	g.calls = append(g.calls, genCall{account, period, token})
	if g.err != nil {
		return nil, report.Locator{}, g.err
	}
	label := domain.PeriodWeek.Label(time.Now())
	return &domain.ReportDocument{Date: label}, report.Locator{
		Store:      report.DatabaseName(period),
		Collection: account,
		DocumentID: label,
	}, nil
}

func newTestScheduler(gen Generator) (*Scheduler, *queue.Queue) {
	q := queue.New(kv.NewMemory())
	return New(q, gen, time.Millisecond, zerolog.Nop()), q
}

func TestTickCompletesJob(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{}
	s, q := newTestScheduler(gen)

	key := queue.Key{Account: "123456", Period: domain.PeriodWeek}
	if _, err := q.Submit(ctx, key, "tok-abc"); err != nil {
		t.Fatal(err)
	}

	s.Tick(ctx)

	if len(gen.calls) != 1 {
		t.Fatalf("generator called %d times, want 1", len(gen.calls))
	}
	if gen.calls[0] != (genCall{"123456", domain.PeriodWeek, "tok-abc"}) {
		t.Errorf("generator call = %+v", gen.calls[0])
	}

	st, err := q.Status(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if st.State != queue.StateFinished {
		t.Errorf("state after tick = %v, want Finished", st.State)
	}
	if st.Locator == "" {
		t.Error("finished job must carry a locator")
	}
}

func TestTickRecordsErrorAndSelfHeals(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{err: &domain.CardSystemError{Message: "card locked"}}
	s, q := newTestScheduler(gen)

	key := queue.Key{Account: "123456", Period: domain.PeriodMonth}
	if _, err := q.Submit(ctx, key, "tok"); err != nil {
		t.Fatal(err)
	}

	s.Tick(ctx)

	st, err := q.Status(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if st.State != queue.StateError {
		t.Fatalf("state = %v, want Error", st.State)
	}
	if st.Message != "card system error: card locked" {
		t.Errorf("message = %q, want upstream message", st.Message)
	}

	// the error was one-shot; the key is back to Created and resubmittable
	st, err = q.Status(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if st.State != queue.StateCreated {
		t.Errorf("state after error read = %v, want Created", st.State)
	}
}

func TestTickProcessesEveryPendingJob(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{}
	s, q := newTestScheduler(gen)

	keys := []queue.Key{
		{Account: "111", Period: domain.PeriodWeek},
		{Account: "222", Period: domain.PeriodWeek},
		{Account: "222", Period: domain.PeriodMonth},
	}
	for _, key := range keys {
		if _, err := q.Submit(ctx, key, "tok"); err != nil {
			t.Fatal(err)
		}
	}

	s.Tick(ctx)

	if len(gen.calls) != 3 {
		t.Fatalf("generator called %d times, want 3", len(gen.calls))
	}
	// every job ended in a terminal state, none silently disappeared
	for _, key := range keys {
		st, err := q.Status(ctx, key)
		if err != nil {
			t.Fatal(err)
		}
		if st.State != queue.StateFinished {
			t.Errorf("job %v state = %v, want Finished", key, st.State)
		}
	}
}

func TestTickDoesNotReprocessTakenJobs(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{}
	s, q := newTestScheduler(gen)

	key := queue.Key{Account: "123456", Period: domain.PeriodWeek}
	if _, err := q.Submit(ctx, key, "tok"); err != nil {
		t.Fatal(err)
	}

	s.Tick(ctx)
	s.Tick(ctx)

	if len(gen.calls) != 1 {
		t.Errorf("generator called %d times across two ticks, want 1", len(gen.calls))
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s, _ := newTestScheduler(&fakeGenerator{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v, want nil on cancel", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
