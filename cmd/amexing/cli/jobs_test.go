package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amexing/amexing-ops/jobs"
)

type fakeQueue struct {
	payloads []jobs.SendEmailPayload
	err      error
}

func (f *fakeQueue) EnqueueSendEmail(_ context.Context, p jobs.SendEmailPayload) error {
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, p)
	return nil
}

type fakeInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (f fakeInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return f.info, f.err }

func newCLI(q Enqueuer, i jobs.QueueInspector) (*JobsCLI, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewJobsCLI(q, i, &out, &errOut), &out, &errOut
}

func TestJobsStats(t *testing.T) {
	c, out, _ := newCLI(nil, fakeInspector{info: &asynq.QueueInfo{Pending: 4, Retry: 1}})
	require.Equal(t, 0, c.Run(context.Background(), []string{"stats"}))
	assert.Contains(t, out.String(), "pending=4")
	assert.Contains(t, out.String(), "retry=1")

	c, _, errOut := newCLI(nil, fakeInspector{err: errors.New("dial tcp")})
	assert.Equal(t, 1, c.Run(context.Background(), []string{"stats"}))
	assert.Contains(t, errOut.String(), "dial tcp")
}

func TestJobsTestEmail(t *testing.T) {
	q := &fakeQueue{}
	c, out, _ := newCLI(q, nil)
	require.Equal(t, 0, c.Run(context.Background(), []string{"test-email", "--to", "a@amexing.mx, b@amexing.mx"}))
	require.Len(t, q.payloads, 1)
	assert.Equal(t, []string{"a@amexing.mx", "b@amexing.mx"}, q.payloads[0].To)
	assert.Contains(t, out.String(), jobs.TaskTypeSendEmail)
}

func TestJobsUsageErrors(t *testing.T) {
	c, _, errOut := newCLI(&fakeQueue{}, nil)
	assert.Equal(t, 2, c.Run(context.Background(), nil))
	assert.Equal(t, 2, c.Run(context.Background(), []string{"test-email"}))
	assert.Equal(t, 2, c.Run(context.Background(), []string{"purge"}))
	assert.Contains(t, errOut.String(), `unknown command "purge"`)
}
