package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDBError_Is(t *testing.T) {
	err := NewDBError(ErrNotFound, "load match m1")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.Equal(t, "load match m1: record not found", err.Error())

	wrapped := fmt.Errorf("service: %w", err)
	assert.ErrorIs(t, wrapped, ErrNotFound)
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, "ignored"))

	inner := NewDBError(ErrQueryFailed, "execute").WithQuery("UPSERT x")
	outer := WrapError(inner, "save match m1")

	assert.ErrorIs(t, outer, ErrQueryFailed)
	assert.Contains(t, outer.Error(), "save match m1: execute")
	assert.Contains(t, outer.Error(), "Query: UPSERT x")
	assert.Equal(t, "execute\nQuery: UPSERT x: query execution failed", inner.Error(), "wrapping leaves the original untouched")
}

func TestClassify_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	err := classify(ctx.Err(), "load match m1")

	assert.ErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NoError(t, classify(nil, "noop"))
}

func TestGetTimeoutFromContext(t *testing.T) {
	ctx, cancel := getTimeoutFromContext(context.Background(), time.Hour, ContextKeyQueryTimeout)
	defer cancel()
	deadline, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Hour), deadline, time.Minute)

	override := WithQueryTimeout(context.Background(), time.Second)
	ctx2, cancel2 := getTimeoutFromContext(override, time.Hour, ContextKeyQueryTimeout)
	defer cancel2()
	deadline, _ = ctx2.Deadline()
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 500*time.Millisecond)

	ctx3, cancel3 := getTimeoutFromContext(WithExecuteTimeout(context.Background(), time.Second), 0, ContextKeyQueryTimeout)
	defer cancel3()
	_, ok = ctx3.Deadline()
	assert.False(t, ok, "an execute override does not affect reads")
}

func TestRetryer(t *testing.T) {
	r := &Retryer{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}

	calls := 0
	err := r.Retry(context.Background(), func() error {
		calls++
		if calls < 2 {
			return errors.New("connection refused")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)

	calls = 0
	boom := errors.New("boom")
	err = r.Retry(context.Background(), func() error { calls++; return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.Retry(ctx, func() error { return nil }), context.Canceled)
}

func TestIsConnectionError(t *testing.T) {
	assert.True(t, isConnectionError(errors.New("dial tcp: Connection Refused")))
	assert.True(t, isConnectionError(context.DeadlineExceeded))
	assert.False(t, isConnectionError(errors.New("parse error")))
	assert.False(t, isConnectionError(nil))
}

func TestRedactDBURL(t *testing.T) {
	assert.Equal(t, "ws://root:xxxxx@localhost:8000/rpc", redactDBURL("ws://root:secret@localhost:8000/rpc"))
	assert.Equal(t, "invalid-url", redactDBURL("://bad"))
}
