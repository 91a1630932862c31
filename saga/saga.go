package saga

import "log"

type step struct {
	name string
	undo func() error
}

// Saga records compensation steps for a write that spans multiple systems.
// Each completed side effect registers an undo; if a later step fails the
// caller runs Compensate to unwind everything done so far, newest first.
// Compensation failures are logged and do not stop the rollback.
type Saga struct {
	steps []step
}

func New() *Saga {
	return &Saga{}
}

// Add registers an undo for a side effect that just succeeded.
func (s *Saga) Add(name string, undo func() error) {
	s.steps = append(s.steps, step{name: name, undo: undo})
}

// Compensate runs the registered undos in reverse order.
func (s *Saga) Compensate() {
	for i := len(s.steps) - 1; i >= 0; i-- {
		st := s.steps[i]
		if err := st.undo(); err != nil {
			log.Printf("Compensation step %q failed: %v", st.name, err)
		}
	}
	s.steps = nil
}
