package chatfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"gem-profit/internal/notify"
)

type Feed interface {
	Run(ctx context.Context, onStatus func(connected bool))
	Messages() <-chan notify.Message
	Errors() <-chan error
	Connected() bool
	Close()
}

// WSFeed reads chat notifications from a local chat-bridge websocket.
// Frames are either JSON {"text": ..., "hover": ...} or plain text.
// It reconnects with exponential backoff until the context is cancelled.
type WSFeed struct {
	url string
	log *slog.Logger

	mu        sync.RWMutex
	connected bool
	wsConn    *websocket.Conn

	msgCh chan notify.Message
	errCh chan error

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewWSFeed(url string, logger *slog.Logger) *WSFeed {
	return &WSFeed{
		url:   url,
		log:   logger,
		msgCh: make(chan notify.Message, 256),
		errCh: make(chan error, 16),
		done:  make(chan struct{}),
	}
}

func (f *WSFeed) Connected() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.connected
}

func (f *WSFeed) setConnected(v bool) {
	f.mu.Lock()
	f.connected = v
	f.mu.Unlock()
}

func (f *WSFeed) Messages() <-chan notify.Message { return f.msgCh }
func (f *WSFeed) Errors() <-chan error            { return f.errCh }

// Close stops Run and closes the output channels once Run has returned.
func (f *WSFeed) Close() {
	f.mu.RLock()
	cancel, ws := f.cancel, f.wsConn
	f.mu.RUnlock()
	if cancel == nil {
		close(f.errCh)
		close(f.msgCh)
		return
	}
	cancel()
	if ws != nil {
		_ = ws.Close()
	}
	<-f.done
	close(f.errCh)
	close(f.msgCh)
}

func (f *WSFeed) Run(ctx context.Context, onStatus func(connected bool)) {
	f.mu.Lock()
	if f.cancel != nil {
		f.mu.Unlock()
		return
	}
	f.ctx, f.cancel = context.WithCancel(ctx)
	f.mu.Unlock()
	defer close(f.done)
	defer f.setConnected(false)

	backoff := time.Second
	for {
		select {
		case <-f.ctx.Done():
			return
		default:
		}

		ws, _, err := websocket.DefaultDialer.DialContext(f.ctx, f.url, nil)
		if err != nil {
			f.setConnected(false)
			onStatus(false)
			f.emitErr(fmt.Errorf("chat feed dial: %w", err))
			if !f.sleep(backoff) {
				return
			}
			backoff = min(backoff*2, 30*time.Second)
			continue
		}
		f.mu.Lock()
		f.wsConn = ws
		f.mu.Unlock()
		f.setConnected(true)
		onStatus(true)
		backoff = time.Second
		f.log.Info("chat feed connected", slog.String("url", f.url))

		if err := f.readLoop(ws); err != nil {
			f.setConnected(false)
			onStatus(false)
			f.emitErr(err)
		}
	}
}

func (f *WSFeed) sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-f.ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (f *WSFeed) readLoop(ws *websocket.Conn) error {
	defer func() {
		_ = ws.Close()
		f.mu.Lock()
		f.wsConn = nil
		f.mu.Unlock()
	}()

	ws.SetReadLimit(1 << 20)
	_ = ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	ws.SetPongHandler(func(string) error {
		_ = ws.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	pingDone := make(chan struct{})
	defer close(pingDone)
	go func() {
		ticker := time.NewTicker(25 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-pingDone:
				return
			case <-ticker.C:
				_ = ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second))
			}
		}
	}()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if f.ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("chat feed read: %w", err)
		}
		_ = ws.SetReadDeadline(time.Now().Add(60 * time.Second))

		msg, ok := decodeFrame(data)
		if !ok {
			continue
		}
		select {
		case f.msgCh <- msg:
		case <-f.ctx.Done():
			return nil
		}
	}
}

// decodeFrame accepts a JSON object with a text field, or falls back to the raw frame as text.
func decodeFrame(data []byte) (notify.Message, bool) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return notify.Message{}, false
	}
	if strings.HasPrefix(trimmed, "{") {
		var msg notify.Message
		if err := json.Unmarshal(data, &msg); err == nil && msg.Text != "" {
			return msg, true
		}
		return notify.Message{}, false
	}
	return notify.Message{Text: trimmed}, true
}

func (f *WSFeed) emitErr(err error) {
	select {
	case f.errCh <- err:
	default:
		// drop if buffer full
	}
}

// ---------- Test/mock feed ----------
type MockFeed struct {
	messages  chan notify.Message
	errors    chan error
	connected bool
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewMockFeed() *MockFeed {
	return &MockFeed{
		messages:  make(chan notify.Message, 16),
		errors:    make(chan error, 16),
		connected: true,
	}
}

func (m *MockFeed) Run(ctx context.Context, onStatus func(connected bool)) {
	m.ctx, m.cancel = context.WithCancel(ctx)
	go func() {
		onStatus(m.connected)
		<-m.ctx.Done()
	}()
}

func (m *MockFeed) Messages() <-chan notify.Message { return m.messages }
func (m *MockFeed) Errors() <-chan error            { return m.errors }
func (m *MockFeed) Connected() bool                 { return m.connected }

func (m *MockFeed) Close() {
	if m.cancel != nil {
		m.cancel()
	}
	close(m.messages)
	close(m.errors)
}

// Helpers for tests
func (m *MockFeed) Send(msg notify.Message) { m.messages <- msg }
func (m *MockFeed) SendError(e error)       { m.errors <- e }
func (m *MockFeed) SetConnected(c bool)     { m.connected = c }
