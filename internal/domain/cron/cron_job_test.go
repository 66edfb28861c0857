package cron

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/VAIOT/lottery-backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

type flakyJob struct {
	runs atomic.Int32
}

func (j *flakyJob) Do(context.Context) {
	if j.runs.Add(1) == 1 {
		panic("boom")
	}
}

func (j *flakyJob) RunNow() bool { return true }

func (j *flakyJob) Next() time.Time { return time.Now().Add(time.Millisecond) }

func TestCronJobManager_RearmsAfterPanic(t *testing.T) {
	ctx := testutil.MockContext()
	manager := NewCronJobManager()
	job := &flakyJob{}

	go manager.Start(ctx, job)

	require.Eventually(t, func() bool {
		return job.runs.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	manager.Cancel(ctx)
}
