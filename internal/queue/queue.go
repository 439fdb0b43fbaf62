// Package queue implements the Redis-backed job ledger shared with the web
// layer. Key formats are part of the external contract and must not change:
//
//	request:{account}:{period} -> waiting:{token}
//	result:{account}:{period}  -> {store}/{collection}/{documentId}
//	result:{account}:{period}  -> error:{message}
package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Paulkm2006/hust-ledger-back/internal/domain"
	"github.com/Paulkm2006/hust-ledger-back/internal/kv"
)

const (
	requestPrefix = "request:"
	resultPrefix  = "result:"
	waitingPrefix = "waiting:"
	errorPrefix   = "error:"
)

// Key identifies at most one in-flight job per account and period.
type Key struct {
	Account string
	Period  domain.Period
}

func (k Key) requestKey() string {
	return fmt.Sprintf("%s%s:%s", requestPrefix, k.Account, k.Period)
}

func (k Key) resultKey() string {
	return fmt.Sprintf("%s%s:%s", resultPrefix, k.Account, k.Period)
}

// Job is one pending unit of work: the key plus the auth token the worker
// needs to re-authenticate against the upstream API.
type Job struct {
	Key   Key
	Token string
}

// State is the client-visible job state.
type State int

const (
	// StateCreated: neither job key nor result pointer exist.
	StateCreated State = iota
	// StateProcessing: the job key exists and the worker has not taken it yet.
	StateProcessing
	// StateFinished: a result pointer to a stored report document exists.
	StateFinished
	// StateError: the result pointer carries an error marker.
	StateError
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateProcessing:
		return "processing"
	case StateFinished:
		return "finished"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Status is the outcome of a state-machine read.
type Status struct {
	State   State
	Locator string // set when State is StateFinished
	Message string // set when State is StateError
}

// Queue is the job-queue state machine over a single kv handle.
type Queue struct {
	store kv.Store
}

// New wraps a kv handle in the state machine.
func New(store kv.Store) *Queue {
	return &Queue{store: store}
}

// Submit accepts a report request. If a job for the key is already pending it
// reports Processing without enqueueing a duplicate. If a finished report
// pointer exists it reports Finished with the locator. If the pointer carries
// an error, the pointer is cleared (one-shot delivery) and a fresh job is
// enqueued. Otherwise a new job key is written and Created is reported.
func (q *Queue) Submit(ctx context.Context, key Key, token string) (Status, error) {
	if _, err := domain.ParsePeriod(string(key.Period)); err != nil {
		return Status{}, err
	}

	if _, err := q.store.Get(ctx, key.requestKey()); err == nil {
		return Status{State: StateProcessing}, nil
	} else if !errors.Is(err, kv.ErrNotFound) {
		return Status{}, &domain.StoreError{Op: "queue submit", Err: err}
	}

	res, err := q.store.Get(ctx, key.resultKey())
	switch {
	case errors.Is(err, kv.ErrNotFound):
		// fall through to enqueue
	case err != nil:
		return Status{}, &domain.StoreError{Op: "queue submit", Err: err}
	case strings.HasPrefix(res, errorPrefix):
		if err := q.store.Del(ctx, key.resultKey()); err != nil {
			return Status{}, &domain.StoreError{Op: "queue submit", Err: err}
		}
		// fall through to enqueue the retry
	default:
		return Status{State: StateFinished, Locator: res}, nil
	}

	if err := q.store.Set(ctx, key.requestKey(), waitingPrefix+token); err != nil {
		return Status{}, &domain.StoreError{Op: "queue submit", Err: err}
	}
	return Status{State: StateCreated}, nil
}

// Status reads the current state for a key. Error pointers are deleted as
// they are read, so an error is delivered to the client exactly once and the
// key returns to Created for resubmission.
func (q *Queue) Status(ctx context.Context, key Key) (Status, error) {
	if _, err := q.store.Get(ctx, key.requestKey()); err == nil {
		return Status{State: StateProcessing}, nil
	} else if !errors.Is(err, kv.ErrNotFound) {
		return Status{}, &domain.StoreError{Op: "queue status", Err: err}
	}

	res, err := q.store.Get(ctx, key.resultKey())
	if errors.Is(err, kv.ErrNotFound) {
		return Status{State: StateCreated}, nil
	}
	if err != nil {
		return Status{}, &domain.StoreError{Op: "queue status", Err: err}
	}

	if msg, ok := strings.CutPrefix(res, errorPrefix); ok {
		if err := q.store.Del(ctx, key.resultKey()); err != nil {
			return Status{}, &domain.StoreError{Op: "queue status", Err: err}
		}
		return Status{State: StateError, Message: strings.TrimSpace(msg)}, nil
	}
	return Status{State: StateFinished, Locator: res}, nil
}

// Pending enumerates all jobs currently waiting for the worker. Request keys
// with an unrecognized shape are skipped rather than failing the whole tick.
func (q *Queue) Pending(ctx context.Context) ([]Job, error) {
	keys, err := q.store.Keys(ctx, requestPrefix+"*")
	if err != nil {
		return nil, &domain.StoreError{Op: "queue scan", Err: err}
	}

	jobs := make([]Job, 0, len(keys))
	for _, raw := range keys {
		parts := strings.SplitN(strings.TrimPrefix(raw, requestPrefix), ":", 2)
		if len(parts) != 2 {
			continue
		}
		period, err := domain.ParsePeriod(parts[1])
		if err != nil {
			continue
		}

		val, err := q.store.Get(ctx, raw)
		if errors.Is(err, kv.ErrNotFound) {
			// raced with a concurrent delete; skip
			continue
		}
		if err != nil {
			return nil, &domain.StoreError{Op: "queue scan", Err: err}
		}

		jobs = append(jobs, Job{
			Key:   Key{Account: parts[0], Period: period},
			Token: strings.TrimPrefix(val, waitingPrefix),
		})
	}
	return jobs, nil
}

// Take removes the job key so the next tick cannot reprocess the job. Called
// before processing begins; the job is then guaranteed to end in Finished or
// Error via Complete or Fail.
func (q *Queue) Take(ctx context.Context, key Key) error {
	if err := q.store.Del(ctx, key.requestKey()); err != nil {
		return &domain.StoreError{Op: "queue take", Err: err}
	}
	return nil
}

// Complete records a successful job outcome as a locator pointer.
func (q *Queue) Complete(ctx context.Context, key Key, locator string) error {
	if err := q.store.Set(ctx, key.resultKey(), locator); err != nil {
		return &domain.StoreError{Op: "queue complete", Err: err}
	}
	return nil
}

// Fail records a failed job outcome as an error marker.
func (q *Queue) Fail(ctx context.Context, key Key, jobErr error) error {
	if err := q.store.Set(ctx, key.resultKey(), errorPrefix+jobErr.Error()); err != nil {
		return &domain.StoreError{Op: "queue fail", Err: err}
	}
	return nil
}
