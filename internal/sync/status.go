package sync

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RemoteHealth is a point-in-time view of remote availability
type RemoteHealth struct {
	Available    bool          `json:"available"`
	LastCheck    time.Time     `json:"lastCheck"`
	LastSuccess  *time.Time    `json:"lastSuccess,omitempty"`
	LastFailure  *time.Time    `json:"lastFailure,omitempty"`
	LastError    string        `json:"lastError,omitempty"`
	SuccessCount int           `json:"successCount"`
	FailureCount int           `json:"failureCount"` // consecutive, reset on success
	AvgLatency   time.Duration `json:"avgLatencyNs"`
	Transitions  []Transition  `json:"transitions,omitempty"`
}

// Transition records the remote going online or offline
type Transition struct {
	Online    bool      `json:"online"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusReport is returned by SyncEngine.Status
type StatusReport struct {
	RemoteConfigured   bool         `json:"remoteConfigured"`
	Remote             RemoteHealth `json:"remote"`
	LocalSchemaVersion int          `json:"localSchemaVersion"`
	CacheEntries       int          `json:"cacheEntries"`
	PendingWrites      int          `json:"pendingWrites"`
	Origin             string       `json:"origin"`
}

// RemoteStatus tracks remote health from the outcome of every remote call,
// plus an optional background ping
type RemoteStatus struct {
	mu sync.RWMutex

	remote Remote
	log    *zap.Logger

	health       RemoteHealth
	latencySum   time.Duration
	latencyCount int

	healthCheckInterval time.Duration
	healthCheckRunning  bool
	stopHealthCheck     chan struct{}

	// onHealthy runs in the health check goroutine after each successful ping
	onHealthy func(ctx context.Context)
}

// NewRemoteStatus creates a tracker. interval <= 0 disables the background health check.
func NewRemoteStatus(remote Remote, interval time.Duration, log *zap.Logger) *RemoteStatus {
	return &RemoteStatus{
		remote:              remote,
		log:                 log,
		healthCheckInterval: interval,
	}
}

// Start begins health checking
func (rs *RemoteStatus) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.healthCheckRunning || rs.remote == nil || rs.healthCheckInterval <= 0 {
		return
	}

	rs.healthCheckRunning = true
	rs.stopHealthCheck = make(chan struct{})
	go rs.healthCheckLoop(rs.stopHealthCheck)
}

// Stop stops health checking
func (rs *RemoteStatus) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.healthCheckRunning {
		return
	}

	rs.healthCheckRunning = false
	close(rs.stopHealthCheck)
}

// Check pings the remote once
func (rs *RemoteStatus) Check(ctx context.Context) error {
	if rs.remote == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	start := time.Now()
	err := rs.remote.Ping(ctx)
	rs.Record(err, time.Since(start))
	return err
}

// Record folds the outcome of one remote call into the health state
func (rs *RemoteStatus) Record(err error, latency time.Duration) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	now := time.Now()
	wasAvailable := rs.health.Available
	rs.health.LastCheck = now

	if err != nil {
		rs.health.Available = false
		rs.health.FailureCount++
		rs.health.LastFailure = &now
		rs.health.LastError = err.Error()
		if wasAvailable || (rs.health.SuccessCount == 0 && rs.health.FailureCount == 1) {
			rs.logTransition(false, err.Error(), now)
		}
		return
	}

	rs.health.Available = true
	rs.health.SuccessCount++
	rs.health.FailureCount = 0
	rs.health.LastSuccess = &now
	rs.health.LastError = ""

	rs.latencySum += latency
	rs.latencyCount++
	rs.health.AvgLatency = rs.latencySum / time.Duration(rs.latencyCount)

	if !wasAvailable {
		rs.logTransition(true, "remote_call_succeeded", now)
	}
}

// IsOnline reports whether the last remote call succeeded
func (rs *RemoteStatus) IsOnline() bool {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.health.Available
}

// Snapshot returns a copy of the current health
func (rs *RemoteStatus) Snapshot() RemoteHealth {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	h := rs.health
	h.Transitions = append([]Transition(nil), rs.health.Transitions...)
	return h
}

// logTransition appends to the bounded transition history. Caller holds mu.
func (rs *RemoteStatus) logTransition(online bool, reason string, at time.Time) {
	rs.health.Transitions = append(rs.health.Transitions, Transition{Online: online, Reason: reason, Timestamp: at})

	// Keep only last 100 transitions
	if len(rs.health.Transitions) > 100 {
		rs.health.Transitions = rs.health.Transitions[len(rs.health.Transitions)-100:]
	}

	if online {
		rs.log.Info("🟢 Remote is reachable")
	} else {
		rs.log.Warn("🔴 Remote is unreachable, serving from local mirror", zap.String("reason", reason))
	}
}

func (rs *RemoteStatus) healthCheckLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(rs.healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := rs.Check(context.Background()); err == nil && rs.onHealthy != nil {
				rs.onHealthy(context.Background())
			}
		case <-stop:
			return
		}
	}
}
