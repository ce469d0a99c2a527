package typeset

import "sync"

// guard holds observation paused for one render cycle. release restores
// observation at most once no matter how many exit paths call it.
type guard struct {
	s    *Scheduler
	once sync.Once
	err  error
}

// suspend must be called with s.mu held and s.state == Observing.
func (s *Scheduler) suspend() *guard {
	s.observer.Disconnect()
	s.state = Rendering
	return &guard{s: s}
}

func (g *guard) release() error {
	g.once.Do(func() {
		s := g.s
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.state == Closed {
			return
		}
		if err := s.observer.Observe(s.root, s.cfg, s.HandleBatch); err != nil {
			s.state = Idle
			g.err = err
			return
		}
		s.resumes++
		s.state = Observing
	})
	return g.err
}
