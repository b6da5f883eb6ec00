package notify

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/offboard/model"
	"github.com/viant/offboard/service/messaging/memory"
	"github.com/viant/offboard/tracing"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

type sent struct {
	recipient string
	template  string
	data      map[string]string
}

type recordingNotifier struct {
	mux   sync.Mutex
	sent  []sent
	fails int
	calls int
}

func (n *recordingNotifier) Send(_ context.Context, recipient string, template string, data map[string]string) error {
	n.mux.Lock()
	defer n.mux.Unlock()
	n.calls++
	if n.calls <= n.fails {
		return errors.New("smtp unavailable")
	}
	n.sent = append(n.sent, sent{recipient: recipient, template: template, data: data})
	return nil
}

func (n *recordingNotifier) snapshot() ([]sent, int) {
	n.mux.Lock()
	defer n.mux.Unlock()
	return append([]sent(nil), n.sent...), n.calls
}

func newService(t *testing.T, notifier Notifier, maxRetries int) *Service {
	planner, _ := newPlanner(t)
	config := memory.DefaultConfig()
	config.MaxRetries = maxRetries
	config.RetryDelay = 5 * time.Millisecond
	directory := StaticDirectory{"alice": "alice@example.com", "hr": "hr@example.com"}
	srv := New(planner, directory, notifier, WithWorkers(1), WithQueueConfig(config))
	srv.Start(context.Background())
	t.Cleanup(srv.Stop)
	return srv
}

func TestService_Dispatch(t *testing.T) {
	notifier := &recordingNotifier{}
	srv := newService(t, notifier, 3)
	require.NoError(t, srv.Dispatch(context.Background(), model.EffectNotifyLeader, testSubmission(model.StatusSubmitted)))
	require.NoError(t, srv.Dispatch(context.Background(), model.EffectNone, testSubmission(model.StatusSubmitted)))

	assert.Eventually(t, func() bool {
		messages, _ := notifier.snapshot()
		return len(messages) == 1
	}, time.Second, 5*time.Millisecond)
	messages, _ := notifier.snapshot()
	assert.Equal(t, "alice@example.com", messages[0].recipient)
	assert.Equal(t, TemplateLeaderApprovalRequest, messages[0].template)
	assert.NotEmpty(t, messages[0].data[KeyApproveURL])
}

func TestService_Retry(t *testing.T) {
	notifier := &recordingNotifier{fails: 2}
	srv := newService(t, notifier, 3)
	require.NoError(t, srv.Dispatch(context.Background(), model.EffectNotifyHR, testSubmission(model.StatusLeaderRejected)))
	assert.Eventually(t, func() bool {
		messages, calls := notifier.snapshot()
		return len(messages) == 1 && calls == 3
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, srv.Failed())
}

func TestService_DeadLetter(t *testing.T) {
	notifier := &recordingNotifier{fails: 100}
	srv := newService(t, notifier, 1)
	require.NoError(t, srv.Dispatch(context.Background(), model.EffectNotifyHR, testSubmission(model.StatusLeaderRejected)))
	assert.Eventually(t, func() bool { return len(srv.Failed()) == 1 }, time.Second, 5*time.Millisecond)
	_, calls := notifier.snapshot()
	assert.Equal(t, 2, calls)
	assert.Equal(t, TemplateHRStatusUpdate, srv.Failed()[0].Payload.Template)
}

func TestService_UnknownRecipientIsDropped(t *testing.T) {
	notifier := &recordingNotifier{}
	srv := newService(t, notifier, 3)
	require.NoError(t, srv.Dispatch(context.Background(), model.EffectNotifyIT, testSubmission(model.StatusExitDone)))
	require.NoError(t, srv.Dispatch(context.Background(), model.EffectNotifyLeader, testSubmission(model.StatusSubmitted)))
	assert.Eventually(t, func() bool {
		messages, _ := notifier.snapshot()
		return len(messages) == 1 && srv.Pending() == 0
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, srv.Failed())
}

func TestService_PlanFailure(t *testing.T) {
	srv := newService(t, &recordingNotifier{}, 0)
	submission := testSubmission(model.StatusSubmitted)
	submission.TeamLeader = ""
	assert.ErrorIs(t, srv.Dispatch(context.Background(), model.EffectNotifyLeader, submission), ErrUnknownRecipient)
}

func TestLoadDirectory(t *testing.T) {
	ctx := context.Background()
	URL := "mem://localhost/offboard/directory.yaml"
	fs := afs.New()
	require.NoError(t, fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader([]byte("hr: hr@example.com\nit: it@example.com\n"))))
	directory, err := LoadDirectory(ctx, URL)
	require.NoError(t, err)
	address, err := directory.Resolve(ctx, "it")
	require.NoError(t, err)
	assert.Equal(t, "it@example.com", address)

	_, err = LoadDirectory(ctx, "mem://localhost/offboard/missing.yaml")
	assert.Error(t, err)
}

type blockingNotifier struct {
	release   chan struct{}
	mux       sync.Mutex
	delivered int
}

func (n *blockingNotifier) Send(ctx context.Context, _ string, _ string, _ map[string]string) error {
	select {
	case <-n.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	n.mux.Lock()
	defer n.mux.Unlock()
	n.delivered++
	return nil
}

func (n *blockingNotifier) count() int {
	n.mux.Lock()
	defer n.mux.Unlock()
	return n.delivered
}

func TestService_DispatchDoesNotWaitForSlowNotifier(t *testing.T) {
	planner, _ := newPlanner(t)
	config := memory.DefaultConfig()
	config.QueueBuffer = 2
	notifier := &blockingNotifier{release: make(chan struct{})}
	srv := New(planner, StaticDirectory{"alice": "alice@example.com"}, notifier, WithWorkers(1), WithQueueConfig(config))
	srv.Start(context.Background())
	t.Cleanup(srv.Stop)

	for i := 0; i < 6; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		started := time.Now()
		err := srv.Dispatch(ctx, model.EffectNotifyLeader, testSubmission(model.StatusSubmitted))
		elapsed := time.Since(started)
		cancel()
		require.NoError(t, err, i)
		assert.Less(t, elapsed, 100*time.Millisecond, i)
	}

	close(notifier.release)
	assert.Eventually(t, func() bool { return notifier.count() == 6 }, 2*time.Second, 5*time.Millisecond)
	assert.Empty(t, srv.Failed())
}

func TestService_DispatchIgnoresCallerCancellation(t *testing.T) {
	notifier := &recordingNotifier{}
	srv := newService(t, notifier, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, srv.Dispatch(ctx, model.EffectNotifyLeader, testSubmission(model.StatusSubmitted)))
	assert.Eventually(t, func() bool {
		messages, _ := notifier.snapshot()
		return len(messages) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestService_DeliverSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	require.NoError(t, tracing.InitWithExporter("offboard", "test", exporter))
	notifier := &recordingNotifier{}
	srv := newService(t, notifier, 3)
	require.NoError(t, srv.Dispatch(context.Background(), model.EffectNotifyLeader, testSubmission(model.StatusSubmitted)))

	var deliver []tracetest.SpanStub
	require.Eventually(t, func() bool {
		deliver = deliver[:0]
		for _, span := range exporter.GetSpans() {
			if span.Name == "notify.deliver" {
				deliver = append(deliver, span)
			}
		}
		return len(deliver) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, trace.SpanKindConsumer, deliver[0].SpanKind)
}
