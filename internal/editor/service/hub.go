package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"floorplan-editor/internal/editor/session"
)

// ============================================================
// Session Hub
// ============================================================

// ErrClosed возвращается после остановки хаба.
var ErrClosed = errors.New("hub closed")

// loadTimeout ограничивает первичное чтение раскладки из хранилища.
const loadTimeout = 5 * time.Second

// Factory создаёт сессию для раскладки. Load вызывает хаб.
type Factory func(layoutID string) *session.Session

// Hub держит по одной сессии на раскладку. Каждой сессией владеет
// единственная горутина-раннер, которая разбирает очередь запросов.
type Hub struct {
	mu        sync.Mutex
	runners   map[string]*runner
	revisions map[string]uint64
	factory   Factory
	idle      time.Duration
	closed    bool
	wg        sync.WaitGroup
}

// Option настраивает Hub.
type Option func(*Hub)

// WithIdleTimeout выгружает сессию, к которой не обращались d.
// Грязная сессия остаётся в памяти до успешной записи.
func WithIdleTimeout(d time.Duration) Option {
	return func(h *Hub) { h.idle = d }
}

type request struct {
	ctx  context.Context
	fn   func(ctx context.Context, r *runner)
	done chan struct{}
}

type runner struct {
	layoutID string
	session  *session.Session
	reqs     chan request
	quit     chan struct{}
	revision uint64
}

func NewHub(factory Factory, opts ...Option) *Hub {
	h := &Hub{
		runners:   make(map[string]*runner),
		revisions: make(map[string]uint64),
		factory:   factory,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Do отправляет интент в раннер раскладки и ждёт результат.
func (h *Hub) Do(ctx context.Context, layoutID string, in session.Intent) (session.Result, error) {
	out := make(chan session.Result, 1)
	err := h.run(ctx, layoutID, func(ctx context.Context, r *runner) {
		out <- r.session.Dispatch(ctx, in)
	})
	if err != nil {
		return session.Result{}, err
	}
	return <-out, nil
}

// Read выполняет fn в горутине-владельце сессии.
// fn не должна сохранять ссылку на сессию. Значения, собранные fn,
// можно читать только при nil ошибке.
func (h *Hub) Read(ctx context.Context, layoutID string, fn func(s *session.Session)) error {
	return h.run(ctx, layoutID, func(_ context.Context, r *runner) { fn(r.session) })
}

// Revision возвращает число наблюдённых изменений раскладки.
// Счётчик переживает выгрузку сессии по простою.
func (h *Hub) Revision(ctx context.Context, layoutID string) (uint64, error) {
	out := make(chan uint64, 1)
	err := h.run(ctx, layoutID, func(_ context.Context, r *runner) { out <- r.revision })
	if err != nil {
		return 0, err
	}
	return <-out, nil
}

func (h *Hub) run(ctx context.Context, layoutID string, fn func(context.Context, *runner)) error {
	for {
		r, err := h.runner(layoutID)
		if err != nil {
			return err
		}

		req := request{ctx: ctx, fn: fn, done: make(chan struct{})}

		select {
		case r.reqs <- req:
		case <-r.quit:
			// раннер выгружен, следующий круг поднимет новый
			continue
		case <-ctx.Done():
			return ctx.Err()
		}

		select {
		case <-req.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Layouts возвращает id открытых раскладок.
func (h *Hub) Layouts() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	ids := make([]string, 0, len(h.runners))
	for id := range h.runners {
		ids = append(ids, id)
	}
	return ids
}

// Flush записывает грязные сессии (автосохранение).
func (h *Hub) Flush(ctx context.Context) {
	for _, id := range h.Layouts() {
		res, err := h.Do(ctx, id, session.Save{OnlyDirty: true})
		if err != nil {
			log.Printf("[HUB] flush %s: %v", id, err)
			continue
		}
		if res.Dirty {
			log.Printf("[HUB] flush %s: still dirty", id)
		}
	}
}

// RunAutosave вызывает Flush с периодом interval до отмены ctx.
func (h *Hub) RunAutosave(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Flush(ctx)
		}
	}
}

// Close сохраняет грязные сессии и останавливает раннеры.
func (h *Hub) Close(ctx context.Context) {
	h.Flush(ctx)

	h.mu.Lock()
	h.closed = true
	for id, r := range h.runners {
		close(r.quit)
		delete(h.runners, id)
	}
	h.mu.Unlock()

	h.wg.Wait()
}

// ============================================================
// Runners
// ============================================================

func (h *Hub) runner(layoutID string) (*runner, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrClosed
	}
	if r, ok := h.runners[layoutID]; ok {
		return r, nil
	}

	r := &runner{
		layoutID: layoutID,
		session:  h.factory(layoutID),
		reqs:     make(chan request),
		quit:     make(chan struct{}),
		revision: h.revisions[layoutID],
	}
	h.runners[layoutID] = r
	r.session.OnChange(func(session.Result) { r.revision++ })

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.loop(r)
	}()
	return r, nil
}

func (h *Hub) loop(r *runner) {
	s := r.session
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	if err := s.Load(ctx); err != nil {
		log.Printf("[HUB] %s: load failed, starting empty: %v", s.Key(), err)
	}
	cancel()

	var timer *time.Timer
	var idle <-chan time.Time
	if h.idle > 0 {
		timer = time.NewTimer(h.idle)
		defer timer.Stop()
		idle = timer.C
	}

	for {
		select {
		case <-r.quit:
			return
		case req := <-r.reqs:
			// Запись в хранилище не прерывается отменой HTTP запроса.
			req.fn(context.WithoutCancel(req.ctx), r)
			close(req.done)
			if timer != nil {
				timer.Reset(h.idle)
			}
		case <-idle:
			if h.evict(r) {
				return
			}
			timer.Reset(h.idle)
		}
	}
}

// evict дописывает сессию и снимает раннер с хаба.
// Раннер с незаписанными изменениями остаётся.
func (h *Hub) evict(r *runner) bool {
	s := r.session
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	s.Dispatch(ctx, session.Save{OnlyDirty: true})
	cancel()
	if s.Dirty() {
		log.Printf("[HUB] %s: idle but dirty, keeping in memory", s.Key())
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.runners[r.layoutID] != r {
		return false
	}
	delete(h.runners, r.layoutID)
	h.revisions[r.layoutID] = r.revision
	close(r.quit)
	log.Printf("[HUB] %s: idle, released", s.Key())
	return true
}
