package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"gem-profit/internal/chatfeed"
	"gem-profit/internal/notify"
	"gem-profit/internal/pricing"
	"gem-profit/internal/tracker"
)

// ErrBusy is returned by Inject when the inbound queue is full.
var ErrBusy = errors.New("engine: inbound queue full")

type Fetcher interface {
	Fetch(ctx context.Context) (pricing.Snapshot, error)
}

// Sink receives every published Status. Publish must not block for long.
type Sink interface {
	Publish(Status)
}

type Status struct {
	Overlay       tracker.Overlay `json:"overlay"`
	Quotes        []pricing.Quote `json:"quotes"`
	LastRefresh   time.Time       `json:"lastRefresh"`
	FeedConnected bool            `json:"feedConnected"`
}

type Options struct {
	TickInterval time.Duration
	// RefreshInterval of zero disables periodic refresh; the initial one still happens.
	RefreshInterval time.Duration
	Now             func() time.Time
}

// Engine serializes every input to a Tracker on a single goroutine.
type Engine struct {
	tr      *tracker.Tracker
	fetcher Fetcher
	feed    chatfeed.Feed
	sink    Sink
	opts    Options
	log     *slog.Logger

	refreshCh chan struct{}
	injectCh  chan notify.Message

	feedConnected atomic.Bool
	lastRefresh   time.Time
}

func New(tr *tracker.Tracker, fetcher Fetcher, feed chatfeed.Feed, sink Sink, opts Options, logger *slog.Logger) *Engine {
	if opts.TickInterval <= 0 {
		opts.TickInterval = 250 * time.Millisecond
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		tr:        tr,
		fetcher:   fetcher,
		feed:      feed,
		sink:      sink,
		opts:      opts,
		log:       logger,
		refreshCh: make(chan struct{}, 1),
		injectCh:  make(chan notify.Message, 64),
	}
}

// Refresh asks for a price refresh. Requests made while one is queued coalesce.
func (e *Engine) Refresh() {
	select {
	case e.refreshCh <- struct{}{}:
	default:
	}
}

// Inject queues msg as if it arrived from the chat feed.
func (e *Engine) Inject(msg notify.Message) error {
	select {
	case e.injectCh <- msg:
		return nil
	default:
		return ErrBusy
	}
}

// SetSink replaces the sink. Call it before Run.
func (e *Engine) SetSink(s Sink) { e.sink = s }

// SetFeedConnected is the feed status callback.
func (e *Engine) SetFeedConnected(c bool) {
	e.feedConnected.Store(c)
}

func (e *Engine) FeedConnected() bool { return e.feedConnected.Load() }

// Run blocks until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	tick := time.NewTicker(e.opts.TickInterval)
	defer tick.Stop()

	var refreshC <-chan time.Time
	if e.opts.RefreshInterval > 0 {
		rt := time.NewTicker(e.opts.RefreshInterval)
		defer rt.Stop()
		refreshC = rt.C
	}

	var msgC <-chan notify.Message
	var errC <-chan error
	if e.feed != nil {
		msgC = e.feed.Messages()
		errC = e.feed.Errors()
	}

	e.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
			e.tick()
		case <-refreshC:
			e.refresh(ctx)
		case <-e.refreshCh:
			e.refresh(ctx)
		case msg, ok := <-msgC:
			if !ok {
				msgC = nil
				continue
			}
			e.notification(msg)
		case msg := <-e.injectCh:
			e.notification(msg)
		case err, ok := <-errC:
			if !ok {
				errC = nil
				continue
			}
			e.log.Warn("chat feed error", slog.String("err", err.Error()))
		}
	}
}

func (e *Engine) tick() {
	e.publish(e.tr.OnTick(e.opts.Now()))
}

func (e *Engine) refresh(ctx context.Context) {
	snap, err := e.fetcher.Fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			e.log.Warn("price refresh failed, keeping previous prices", slog.String("err", err.Error()))
		}
		return
	}
	e.tr.OnSnapshot(snap)
	e.lastRefresh = e.opts.Now()
	e.log.Info("prices refreshed", slog.Int("gems", len(e.tr.Quotes())))
	e.publish(e.tr.OnTick(e.lastRefresh))
}

func (e *Engine) notification(msg notify.Message) {
	if e.tr.OnNotification(msg, e.opts.Now()) {
		e.log.Debug("drop notification applied", slog.String("text", notify.StripFormatting(msg.Text)))
	}
}

func (e *Engine) publish(ov tracker.Overlay) {
	if e.sink == nil {
		return
	}
	e.sink.Publish(Status{
		Overlay:       ov,
		Quotes:        e.tr.Quotes(),
		LastRefresh:   e.lastRefresh,
		FeedConnected: e.FeedConnected(),
	})
}
