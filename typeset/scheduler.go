package typeset

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

type OnErrorFunc func(s *Scheduler, err error)

// Cycle describes one settled render.
type Cycle struct {
	Seq      uint64
	Nodes    []Node
	Err      error
	Duration time.Duration
}

type OnRenderFunc func(c Cycle)

type Option func(*Scheduler)

// WithOnError sets the diagnostic channel for unknown mutations, render
// failures and resume failures. The default logs them.
func WithOnError(fn OnErrorFunc) Option {
	return func(s *Scheduler) {
		s.onError = fn
	}
}

func WithOnRender(fn OnRenderFunc) Option {
	return func(s *Scheduler) {
		s.onRender = fn
	}
}

func WithObserveConfig(cfg ObserveConfig) Option {
	return func(s *Scheduler) {
		s.cfg = cfg
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

// WithContext sets the context handed to every render.
func WithContext(ctx context.Context) Option {
	return func(s *Scheduler) {
		s.ctx = ctx
	}
}

// Scheduler coalesces change batches into renders, with at most one render in
// flight and observation disconnected for its whole duration, so the
// renderer's own tree mutations are never seen.
type Scheduler struct {
	mu       sync.Mutex
	observer Observer
	renderer Renderer
	cfg      ObserveConfig
	root     Node
	state    State
	ctx      context.Context
	onError  OnErrorFunc
	onRender OnRenderFunc
	metrics  *Metrics

	// rendering covers a cycle up to its reconnect, inflight also covers
	// the callbacks that follow.
	rendering sync.WaitGroup
	inflight  sync.WaitGroup
	cycles    uint64
	resumes   uint64
}

func New(observer Observer, renderer Renderer, opts ...Option) *Scheduler {
	s := &Scheduler{
		observer: observer,
		renderer: renderer,
		cfg:      DefaultObserveConfig,
		ctx:      context.Background(),
		onError: func(s *Scheduler, err error) {
			log.Printf("typeset: %v", err)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins observing root with the configured ObserveConfig.
func (s *Scheduler) Start(root Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case Closed:
		return ErrClosed
	case Idle:
	default:
		return ErrAlreadyStarted
	}
	if err := s.observer.Observe(root, s.cfg, s.HandleBatch); err != nil {
		return fmt.Errorf("observe: %w", err)
	}
	s.root = root
	s.state = Observing
	return nil
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Cycles returns how many renders have been started.
func (s *Scheduler) Cycles() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycles
}

// Resumes returns how many times observation was restored after a render.
func (s *Scheduler) Resumes() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resumes
}

// HandleBatch processes one change batch synchronously. It is the callback
// registered with the Observer.
func (s *Scheduler) HandleBatch(batch []Mutation) {
	errs := s.handleBatch(batch)
	for _, err := range errs {
		s.report(err)
	}
}

func (s *Scheduler) handleBatch(batch []Mutation) []error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case Observing:
	case Rendering:
		return []error{fmt.Errorf("%w: %d mutations dropped", ErrBatchWhileRendering, len(batch))}
	case Closed:
		return []error{fmt.Errorf("%w: %d mutations dropped", ErrClosed, len(batch))}
	default:
		return []error{fmt.Errorf("%w: %d mutations dropped", ErrNotStarted, len(batch))}
	}

	res := coalesce(batch, s.renderer.Invalidate)
	s.metrics.observeBatch(res)
	if len(res.nodes) == 0 {
		return res.errs
	}

	s.cycles++
	g := s.suspend()
	s.rendering.Add(1)
	s.inflight.Add(1)
	go s.render(g, s.cycles, res.nodes)
	return res.errs
}

func (s *Scheduler) render(g *guard, seq uint64, nodes []Node) {
	defer s.inflight.Done()

	start := time.Now()
	var err error
	defer func() {
		c := Cycle{Seq: seq, Nodes: nodes, Err: err, Duration: time.Since(start)}
		rerr := g.release()
		s.rendering.Done()
		if rerr != nil {
			s.report(fmt.Errorf("resume observation after cycle %d: %w", seq, rerr))
		}
		s.metrics.observeRender(c)
		if err != nil {
			s.report(&RenderError{Cycle: seq, Nodes: len(nodes), Err: err})
		}
		if s.onRender != nil {
			s.onRender(c)
		}
	}()

	err = s.invokeRender(nodes)
}

func (s *Scheduler) invokeRender(nodes []Node) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	return s.renderer.Render(s.ctx, nodes)
}

func (s *Scheduler) report(err error) {
	if s.onError != nil {
		s.onError(s, err)
	}
}

// Wait blocks until no render is in flight and its callbacks have returned.
// It must not be called from an OnErrorFunc or OnRenderFunc.
func (s *Scheduler) Wait() {
	s.inflight.Wait()
}

// Close stops observing, waits for an in-flight render to settle and keeps
// observation from being restored. It does not wait for that render's
// callbacks, so it may be called from them. It is safe to call more than once.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	prev := s.state
	s.state = Closed
	if prev == Observing {
		s.observer.Disconnect()
	}
	s.mu.Unlock()

	s.rendering.Wait()
	return nil
}
