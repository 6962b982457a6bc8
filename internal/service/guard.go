// internal/service/guard.go
package service

import "sync"

// runGuard keeps the set of campaign ids currently owned by this process.
// At most one orchestration run per campaign per process; release must happen
// on every exit path.
type runGuard struct {
	mu      sync.Mutex
	running map[int]bool
}

func newRunGuard() *runGuard {
	return &runGuard{running: make(map[int]bool)}
}

// acquire returns false if the campaign is already running.
func (g *runGuard) acquire(campaignID int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running[campaignID] {
		return false
	}
	g.running[campaignID] = true
	return true
}

func (g *runGuard) release(campaignID int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, campaignID)
}
