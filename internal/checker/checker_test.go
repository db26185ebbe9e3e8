package checker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/newthinker/stagestate/internal/core"
	"github.com/newthinker/stagestate/internal/metrics"
)

type fakeClient struct {
	statuses map[string]string
	failing  map[string]error
	keys     []string
	calls    []string
}

func (f *fakeClient) Name() string { return "fake" }

func (f *fakeClient) GetXattr(ctx context.Context, surl, key string) (string, error) {
	f.calls = append(f.calls, surl)
	f.keys = append(f.keys, key)
	if err, ok := f.failing[surl]; ok {
		return "", err
	}
	if s, ok := f.statuses[surl]; ok {
		return s, nil
	}
	return "ONLINE", nil
}

type sleepRecorder struct {
	pauses []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.pauses = append(s.pauses, d)
	return ctx.Err()
}

func surls(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("srm://srm.grid.sara.nl:8443/pnfs/data/f%04d", i)
	}
	return out
}

func newChecker(t *testing.T, client *fakeClient, opts Options) (*Checker, *sleepRecorder, *bytes.Buffer) {
	t.Helper()
	rec := &sleepRecorder{}
	var out bytes.Buffer
	opts.Sleep = rec.sleep
	opts.Out = &out
	c, err := New(client, opts, zap.NewNop())
	require.NoError(t, err)
	return c, rec, &out
}

func TestNew_NilClient(t *testing.T) {
	_, err := New(nil, DefaultOptions(), zap.NewNop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrBackendUnavailable))
}

func TestNew_AppliesDefaults(t *testing.T) {
	c, err := New(&fakeClient{}, Options{BatchDelay: -time.Second}, nil)
	require.NoError(t, err)
	assert.Equal(t, 100, c.opts.BatchSize)
	assert.Equal(t, time.Duration(0), c.opts.BatchDelay)
	assert.NotNil(t, c.opts.Out)
	assert.NotNil(t, c.opts.Sleep)
}

func TestCheckAll_LookupAndPauseCounts(t *testing.T) {
	tests := []struct {
		k      int
		pauses int
	}{
		{0, 0},
		{1, 1},
		{99, 1},
		{100, 1},
		{101, 2},
		{250, 3},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("k=%d", tt.k), func(t *testing.T) {
			client := &fakeClient{}
			c, rec, _ := newChecker(t, client, Options{BatchSize: 100, BatchDelay: time.Second})

			results, err := c.CheckAll(context.Background(), surls(tt.k))
			require.NoError(t, err)

			assert.Len(t, results, tt.k)
			assert.Len(t, client.calls, tt.k, "one lookup per file")
			assert.Len(t, rec.pauses, tt.pauses, "one pause per batch")
			for _, p := range rec.pauses {
				assert.Equal(t, time.Second, p)
			}
		})
	}
}

func TestCheckAll_PreservesOrderAndUsesStatusKey(t *testing.T) {
	in := []string{"srm://h/pnfs/c", "srm://h/pnfs/a", "srm://h/pnfs/c"}
	client := &fakeClient{statuses: map[string]string{
		"srm://h/pnfs/a": "NEARLINE",
		"srm://h/pnfs/c": "ONLINE_AND_NEARLINE",
	}}
	c, _, _ := newChecker(t, client, Options{BatchSize: 2})

	results, err := c.CheckAll(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, in[i], r.SURL)
	}
	assert.Equal(t, core.StatusOnlineAndNearline, results[0].Status)
	assert.Equal(t, core.StatusNearline, results[1].Status)
	assert.Equal(t, in, client.calls)
	for _, k := range client.keys {
		assert.Equal(t, "user.status", k)
	}
}

func TestCheck_ClassifiesUnknownAsOpaque(t *testing.T) {
	client := &fakeClient{statuses: map[string]string{"srm://h/pnfs/x": "UNAVAILABLE"}}
	c, _, out := newChecker(t, client, Options{Verbose: true})

	r, err := c.Check(context.Background(), "srm://h/pnfs/x")
	require.NoError(t, err)
	assert.Equal(t, core.StatusUnknown, r.Status)
	assert.Equal(t, "UNAVAILABLE", r.Raw)
	assert.Equal(t, "srm://h/pnfs/x UNAVAILABLE\n", out.String())
}

func TestCheck_ColoredOutput(t *testing.T) {
	client := &fakeClient{statuses: map[string]string{
		"srm://h/pnfs/disk": "ONLINE",
		"srm://h/pnfs/both": "ONLINE_AND_NEARLINE",
		"srm://h/pnfs/tape": "NEARLINE",
	}}
	c, _, out := newChecker(t, client, Options{Verbose: true, Color: true})

	for _, s := range []string{"srm://h/pnfs/disk", "srm://h/pnfs/both", "srm://h/pnfs/tape"} {
		_, err := c.Check(context.Background(), s)
		require.NoError(t, err)
	}

	want := "srm://h/pnfs/disk \033[32mONLINE\033[0m\n" +
		"srm://h/pnfs/both \033[32mONLINE_AND_NEARLINE\033[0m\n" +
		"srm://h/pnfs/tape \033[31mNEARLINE\033[0m\n"
	assert.Equal(t, want, out.String())
}

func TestCheck_QuietPrintsNothing(t *testing.T) {
	c, _, out := newChecker(t, &fakeClient{}, Options{Verbose: false, Color: true})

	_, err := c.CheckAll(context.Background(), surls(3))
	require.NoError(t, err)
	assert.Empty(t, out.String())
}

func TestCheckAll_FailFast(t *testing.T) {
	in := surls(5)
	client := &fakeClient{failing: map[string]error{in[2]: errors.New("permission denied")}}
	c, rec, _ := newChecker(t, client, Options{BatchSize: 100, FailFast: true})

	results, err := c.CheckAll(context.Background(), in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrAttributeLookup))
	assert.Contains(t, err.Error(), "permission denied")
	assert.Len(t, results, 2)
	assert.Len(t, client.calls, 3, "no lookups after the failure")
	assert.Empty(t, rec.pauses)
}

func TestCheckAll_RecordsFailuresAndContinues(t *testing.T) {
	in := surls(4)
	client := &fakeClient{failing: map[string]error{in[1]: errors.New("file not found")}}
	c, _, out := newChecker(t, client, Options{BatchSize: 100, Verbose: true})

	results, err := c.CheckAll(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, core.StatusError, results[1].Status)
	assert.True(t, errors.Is(results[1].Err, core.ErrAttributeLookup))
	assert.Equal(t, core.StatusOnline, results[2].Status)
	assert.Contains(t, out.String(), in[1]+" ERROR")
}

func TestCheckAll_ContextCancelledDuringPause(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := &fakeClient{}

	c, err := New(client, Options{
		BatchSize: 2,
		Out:       &bytes.Buffer{},
		Sleep: func(ctx context.Context, d time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}, zap.NewNop())
	require.NoError(t, err)

	results, err := c.CheckAll(ctx, surls(5))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, results, 2)
	assert.Len(t, client.calls, 2)
}

func TestCheckAll_RecordsMetrics(t *testing.T) {
	reg := metrics.NewRegistry()
	client := &fakeClient{statuses: map[string]string{"srm://h/pnfs/f0000": "NEARLINE"}}
	c, _, _ := newChecker(t, client, Options{BatchSize: 2, Metrics: reg})

	_, err := c.CheckAll(context.Background(), surls(3))
	require.NoError(t, err)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	var batches, lookups float64
	for _, mf := range mfs {
		switch mf.GetName() {
		case "stagestate_batches_total":
			batches = mf.GetMetric()[0].GetCounter().GetValue()
		case "stagestate_lookups_total":
			for _, m := range mf.GetMetric() {
				lookups += m.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, 2.0, batches)
	assert.Equal(t, 3.0, lookups)
}

func TestSleep(t *testing.T) {
	require.NoError(t, sleep(context.Background(), 0))
	require.NoError(t, sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleep(ctx, time.Hour), context.Canceled)
}
