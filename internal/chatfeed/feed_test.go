package chatfeed

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"gem-profit/internal/notify"
)

func TestMockFeed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mock := NewMockFeed()

	statusCh := make(chan bool, 1)
	go mock.Run(ctx, func(c bool) { statusCh <- c })

	select {
	case c := <-statusCh:
		if !c {
			t.Fatal("expected connected status")
		}
	case <-time.After(time.Second):
		t.Fatal("no status")
	}

	mock.Send(notify.Message{Text: "PRISTINE! You found ❈ Flawed Ruby Gemstone x2!"})

	select {
	case got := <-mock.Messages():
		if !strings.HasPrefix(got.Text, "PRISTINE!") {
			t.Fatalf("bad message %q", got.Text)
		}
	case <-time.After(time.Second):
		t.Fatal("no message")
	}

	mock.Close()
}

func TestDecodeFrame(t *testing.T) {
	cases := []struct {
		in    string
		ok    bool
		text  string
		hover string
	}{
		{`{"text":"[Sacks] +3 items. (Last 5s.)","hover":"a\nb"}`, true, "[Sacks] +3 items. (Last 5s.)", "a\nb"},
		{"  plain chat line  ", true, "plain chat line", ""},
		{"   ", false, "", ""},
		{`{"hover":"only hover"}`, false, "", ""},
		{`{"text":`, false, "", ""},
	}
	for _, c := range cases {
		msg, ok := decodeFrame([]byte(c.in))
		if ok != c.ok {
			t.Fatalf("%q: ok got %v want %v", c.in, ok, c.ok)
		}
		if msg.Text != c.text || msg.Hover != c.hover {
			t.Fatalf("%q: got %+v", c.in, msg)
		}
	}
}

func TestWSFeedReceivesFrames(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		_ = c.WriteMessage(websocket.TextMessage, []byte(`{"text":"hello","hover":"world"}`))
		_ = c.WriteMessage(websocket.TextMessage, []byte("second"))
		// hold the connection open until the client goes away
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	feed := NewWSFeed(url, slog.New(slog.NewTextHandler(io.Discard, nil)))

	statusCh := make(chan bool, 4)
	go feed.Run(context.Background(), func(c bool) {
		select {
		case statusCh <- c:
		default:
		}
	})

	select {
	case c := <-statusCh:
		if !c {
			t.Fatal("expected connected")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no status")
	}

	want := []notify.Message{{Text: "hello", Hover: "world"}, {Text: "second"}}
	for _, w := range want {
		select {
		case got := <-feed.Messages():
			if got != w {
				t.Fatalf("got %+v want %+v", got, w)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("no message")
		}
	}
	if !feed.Connected() {
		t.Fatal("feed should report connected")
	}

	feed.Close()
	if feed.Connected() {
		t.Fatal("feed should be disconnected after close")
	}
}
