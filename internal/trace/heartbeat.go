package trace

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Heartbeat periodically emits liveness events. Heartbeats without span ends
// mean a build is stuck; heartbeats alone in a watch session mean it is idle.
type Heartbeat struct {
	tracer   Tracer
	interval time.Duration
	probe    atomic.Pointer[func() string]
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

// StartHeartbeat starts emitting at interval. It returns nil when the tracer
// is disabled or the interval is not positive; a nil Heartbeat is safe to use.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{
		tracer:   tracer,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go h.run()
	return h
}

// SetProbe installs a function whose result is attached to every following
// heartbeat as the "status" extra.
func (h *Heartbeat) SetProbe(probe func() string) {
	if h == nil {
		return
	}
	h.probe.Store(&probe)
}

func (h *Heartbeat) run() {
	defer close(h.done)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for beat := uint64(1); ; beat++ {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
		}
		ev := &Event{
			Time:   time.Now(),
			Seq:    NextSeq(),
			Kind:   KindHeartbeat,
			Scope:  ScopeDriver,
			GID:    getGoroutineID(),
			Name:   "heartbeat",
			Detail: fmt.Sprintf("#%d", beat),
		}
		if p := h.probe.Load(); p != nil && *p != nil {
			ev.Extra = map[string]string{"status": (*p)()}
		}
		h.tracer.Emit(ev)
	}
}

// Stop ends the heartbeat goroutine and waits for it. Safe to call twice.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		close(h.stop)
		<-h.done
	})
}
