/*
scheduler.go - Automated escalation scheduler

PURPOSE:
  Periodically checks for shifts whose scheduled escalation timestamps have
  passed and widens their visibility tier automatically. The engine itself
  only stores the timestamps; this scheduler is the component that acts on
  them.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - A shift escalates to the widest tier whose timestamp has passed and
    that exists on the pharmacy's tier path
  - Escalation to a tier not on the path is skipped, not an error
  - Already-escalated shifts are no-ops (tier selection is idempotent)

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 minute)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewEscalationScheduler(handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - shifts/escalation.go: Tier path computation and selection
  - handlers.go: EscalateShift endpoint (manual escalation)
*/
package api

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/locumbase/shift-engine/shifts"
)

// EscalationScheduler widens shift visibility when scheduled times pass.
type EscalationScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewEscalationScheduler creates a new scheduler.
func NewEscalationScheduler(handler *Handler) *EscalationScheduler {
	return &EscalationScheduler{
		Handler:       handler,
		CheckInterval: 1 * time.Minute,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (es *EscalationScheduler) Start() {
	es.mu.Lock()
	defer es.mu.Unlock()

	if !es.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	es.ticker = time.NewTicker(es.CheckInterval)
	es.wg.Add(1)

	go es.run()

	log.Printf("[Scheduler] Started with check interval: %v", es.CheckInterval)
}

// Stop stops the scheduler.
func (es *EscalationScheduler) Stop() {
	es.mu.Lock()
	defer es.mu.Unlock()

	if es.ticker != nil {
		es.ticker.Stop()
		close(es.stop)
		es.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (es *EscalationScheduler) run() {
	defer es.wg.Done()

	// Run immediately on start
	es.checkAndEscalate()

	for {
		select {
		case <-es.ticker.C:
			es.checkAndEscalate()
		case <-es.stop:
			return
		}
	}
}

func (es *EscalationScheduler) checkAndEscalate() {
	ctx := context.Background()
	now := time.Now()

	list, err := es.Handler.Store.ListShifts(ctx, "")
	if err != nil {
		log.Printf("[Scheduler] Failed to list shifts: %v", err)
		return
	}

	for _, sh := range list {
		target, ok := dueTier(sh, now)
		if !ok {
			continue
		}

		tc := es.Handler.tierContext(sh)
		if !widens(sh, tc, target) {
			continue
		}
		if _, err := es.Handler.Shifts.Escalate(ctx, sh.ID, target, tc); err != nil {
			// A scheduled tier absent from this pharmacy's path is
			// skipped; the next timestamp may still apply.
			if errors.Is(err, shifts.ErrTierNotInPath) {
				continue
			}
			log.Printf("[Scheduler] Failed to escalate shift %s to %s: %v", sh.ID, target, err)
			continue
		}
	}
}

// widens reports whether target sits past the shift's current position on
// the path. The scheduler only ever moves visibility outward.
func widens(sh *shifts.Shift, tc shifts.TierContext, target shifts.Tier) bool {
	for i, t := range shifts.TierPath(tc) {
		if t == target {
			return i > sh.EscalationLevel
		}
	}
	return false
}

// dueTier returns the widest scheduled tier whose timestamp has passed.
func dueTier(sh *shifts.Shift, now time.Time) (shifts.Tier, bool) {
	if sh.EscalatePlatformAt != nil && !now.Before(*sh.EscalatePlatformAt) {
		return shifts.TierPlatform, true
	}
	if sh.EscalateOrgChainAt != nil && !now.Before(*sh.EscalateOrgChainAt) {
		return shifts.TierOrgChain, true
	}
	if sh.EscalateOwnerChainAt != nil && !now.Before(*sh.EscalateOwnerChainAt) {
		return shifts.TierOwnerChain, true
	}
	return "", false
}
