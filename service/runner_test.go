package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerReportsErrorsToOnFailure(t *testing.T) {
	runner := NewRunner(newTestLogger())

	var mu sync.Mutex
	var failures []error

	onFailure := func(err error) {
		mu.Lock()
		failures = append(failures, err)
		mu.Unlock()
	}

	runner.Dispatch("test", uuid.New(), func(ctx context.Context) error {
		return fmt.Errorf("boom")
	}, onFailure)
	runner.Dispatch("test", uuid.New(), func(ctx context.Context) error {
		return nil
	}, onFailure)
	runner.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, failures, 1)
	assert.EqualError(t, failures[0], "boom")
}

func TestRunnerRecoversPanics(t *testing.T) {
	runner := NewRunner(newTestLogger())

	var mu sync.Mutex
	var failure error

	runner.Dispatch("test", uuid.New(), func(ctx context.Context) error {
		panic("unexpected state")
	}, func(err error) {
		mu.Lock()
		failure = err
		mu.Unlock()
	})
	runner.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Error(t, failure)
	assert.Contains(t, failure.Error(), "unexpected state")
}

func TestRunnerTracksInflightHandles(t *testing.T) {
	runner := NewRunner(newTestLogger())
	recordID := uuid.New()

	started := make(chan struct{})
	release := make(chan struct{})

	runner.Dispatch("quiz", recordID, func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}, func(err error) {})

	<-started
	handles := runner.Inflight()
	require.Len(t, handles, 1)
	assert.Equal(t, "quiz", handles[0].Kind)
	assert.Equal(t, recordID, handles[0].RecordID)

	close(release)
	runner.Wait()
	assert.Empty(t, runner.Inflight())
}
