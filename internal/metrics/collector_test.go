package metrics

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var collectorNamespaceSeq uint64

// promauto registers globally, so each test gets a fresh namespace.
func nextTestNamespace() string {
	seq := atomic.AddUint64(&collectorNamespaceSeq, 1)
	return fmt.Sprintf("a2aflow_test_%d", seq)
}

func TestNewCollector(t *testing.T) {
	c := NewCollector(nextTestNamespace(), zap.NewNop())

	require.NotNil(t, c)
	assert.NotNil(t, c.rpcRequestsTotal)
	assert.NotNil(t, c.rpcRequestDuration)
	assert.NotNil(t, c.tasksActive)
	assert.NotNil(t, c.tasksTotal)
	assert.NotNil(t, c.streamEventsTotal)
}

func TestCollector_RecordRPC(t *testing.T) {
	c := NewCollector(nextTestNamespace(), zap.NewNop())

	c.RecordRPC("message/send", "ok", 25*time.Millisecond)
	c.RecordRPC("message/send", "ok", 30*time.Millisecond)
	c.RecordRPC("tasks/get", "error", time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.rpcRequestsTotal.WithLabelValues("message/send", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.rpcRequestsTotal.WithLabelValues("tasks/get", "error")))
}

func TestCollector_TaskLifecycle(t *testing.T) {
	c := NewCollector(nextTestNamespace(), zap.NewNop())

	c.TaskStarted()
	c.TaskStarted()
	assert.Equal(t, float64(2), testutil.ToFloat64(c.tasksActive))

	c.TaskFinished("completed")
	c.TaskFinished("failed")
	assert.Equal(t, float64(0), testutil.ToFloat64(c.tasksActive))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.tasksTotal.WithLabelValues("completed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.tasksTotal.WithLabelValues("failed")))
}

func TestCollector_RecordStreamEvent(t *testing.T) {
	c := NewCollector(nextTestNamespace(), zap.NewNop())

	c.RecordStreamEvent("status-update")
	c.RecordStreamEvent("artifact-update")
	c.RecordStreamEvent("artifact-update")

	assert.Equal(t, float64(2), testutil.ToFloat64(c.streamEventsTotal.WithLabelValues("artifact-update")))
}
