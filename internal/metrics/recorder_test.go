package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajramos/evtui/internal/heartbeat"
	"github.com/ajramos/evtui/internal/nav"
	"github.com/ajramos/evtui/internal/tasks"
)

func TestRecorder_Navigation(t *testing.T) {
	r := NewRecorder(nil)
	r.NavigationObserved(nav.PageChat, nav.OutcomeCompleted, 20*time.Millisecond)
	r.NavigationObserved(nav.PageChat, nav.OutcomeDropped, 0)
	r.NavigationObserved(nav.PageChat, nav.OutcomeDropped, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.navigations.WithLabelValues("chat", "completed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.navigations.WithLabelValues("chat", "dropped")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.navDuration))
}

func TestRecorder_Polls(t *testing.T) {
	r := NewRecorder(nil)
	r.PollObserved("upload", tasks.StatusRunning, nil)
	r.PollObserved("upload", tasks.StatusCompleted, nil)
	r.PollObserved("upload", "", errors.New("timeout"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.polls.WithLabelValues("upload", "running")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.polls.WithLabelValues("upload", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.pollErrors.WithLabelValues("upload")))
}

func TestRecorder_HeartbeatSkipsIdleTicks(t *testing.T) {
	r := NewRecorder(nil)
	r.ReconcileObserved("profiles-grid", heartbeat.ActionNone, nil)
	r.ReconcileObserved("profiles-grid", heartbeat.ActionAbsent, nil)
	r.ReconcileObserved("profiles-grid", heartbeat.ActionRendered, nil)
	r.ReconcileObserved("profiles-grid", heartbeat.ActionNone, errors.New("boom"))

	assert.Equal(t, 1, testutil.CollectAndCount(r.reconciles))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.reconciles.WithLabelValues("profiles-grid", "rendered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.reconcileError.WithLabelValues("profiles-grid")))
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder(nil)
	r.NavigationObserved(nav.PageUpload, nav.OutcomeCompleted, time.Millisecond)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `evtui_navigations_total{outcome="completed",page="upload"} 1`)
}
