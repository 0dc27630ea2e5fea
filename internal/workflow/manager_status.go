package workflow

import (
	"slices"
	"time"

	"scrubarr/internal/triage"
)

// StatusSummary represents lightweight workflow diagnostics.
type StatusSummary struct {
	Running   bool
	Instances []string
	Ticks     int
	LastTick  time.Time
	Results   []triage.Result
}

// Status returns the latest workflow information.
func (m *Manager) Status() StatusSummary {
	names := make([]string, 0, len(m.cycles))
	for _, cycle := range m.cycles {
		names = append(names, cycle.Name())
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return StatusSummary{
		Running:   m.running,
		Instances: names,
		Ticks:     m.ticks,
		LastTick:  m.last,
		Results:   slices.Clone(m.results),
	}
}
