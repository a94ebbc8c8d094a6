// Package sequence plays the scripted opening and ending: text, camera
// and audio steps on a timeline.
package sequence

import (
	"github.com/KirkDiggler/rpg-action/internal/entities"
)

// Manager advances one sequence. A nil sequence is already done.
type Manager struct {
	seq     *entities.Sequence
	elapsed float64
	next    int
	done    bool
}

// New creates a manager at the start of seq
func New(seq *entities.Sequence) *Manager {
	return &Manager{seq: seq, done: seq == nil}
}

// Advance moves the clock and returns the steps that came due, each once
// and in timeline order
func (m *Manager) Advance(dt float64) []entities.SequenceStep {
	if m.done {
		return nil
	}
	m.elapsed += dt

	var due []entities.SequenceStep
	for m.next < len(m.seq.Steps) && m.seq.Steps[m.next].At <= m.elapsed {
		due = append(due, m.seq.Steps[m.next])
		m.next++
	}

	if m.elapsed >= m.seq.Duration && m.next >= len(m.seq.Steps) {
		m.done = true
	}
	return due
}

// Skip ends the sequence; remaining steps are never emitted
func (m *Manager) Skip() {
	m.done = true
}

// Done reports completion
func (m *Manager) Done() bool {
	return m.done
}

// Elapsed is the time spent in the sequence
func (m *Manager) Elapsed() float64 {
	return m.elapsed
}

// BGM is the sequence's music, if any
func (m *Manager) BGM() string {
	if m.seq == nil {
		return ""
	}
	return m.seq.BGM
}
