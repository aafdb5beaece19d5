package server

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"propmatch/internal/middleware"
	"propmatch/internal/models"
	"propmatch/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const streamWriteTimeout = 10 * time.Second

// threadHub fans thread activity out to the open streams watching that thread.
// A nudge only triggers an early re-fetch; it carries no message data.
type threadHub struct {
	mu       sync.Mutex
	watchers map[models.Thread]map[chan struct{}]struct{}
}

func newThreadHub() *threadHub {
	return &threadHub{watchers: make(map[models.Thread]map[chan struct{}]struct{})}
}

// watch registers a nudge channel for thread. The returned func unregisters it.
func (h *threadHub) watch(thread models.Thread) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	if h.watchers[thread] == nil {
		h.watchers[thread] = make(map[chan struct{}]struct{})
	}
	h.watchers[thread][ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.watchers[thread], ch)
		if len(h.watchers[thread]) == 0 {
			delete(h.watchers, thread)
		}
	}
}

// nudge wakes every watcher of thread. Watchers that already have a pending
// nudge are skipped.
func (h *threadHub) nudge(thread models.Thread) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.watchers[thread] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (h *threadHub) watching(thread models.Thread) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers[thread])
}

// requireUpgrade rejects plain HTTP requests on websocket routes.
func requireUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// threadSnapshot is one frame on a thread stream: the whole thread, oldest first.
type threadSnapshot struct {
	Type     string                 `json:"type"`
	Thread   models.Thread          `json:"thread"`
	Messages []models.ThreadMessage `json:"messages"`
}

type streamError struct {
	Type  string `json:"type"`
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ThreadStream handles GET /api/ws/threads/:scope/:id. It pushes a full snapshot
// when the stream opens, on every poll interval and whenever a message lands in
// the thread. The client never sends anything; any read error ends the stream.
func (s *Server) ThreadStream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		observability.ActiveWebSockets.Inc()
		defer observability.ActiveWebSockets.Dec()
		defer func() { _ = conn.Close() }()

		sess, ok := conn.Locals("session").(models.Session)
		if !ok {
			_ = conn.WriteJSON(streamError{Type: "error", Error: "unauthorized", Code: models.CodeUnauthorized})
			return
		}

		scope, err := models.ParseThreadScope(conn.Params("scope"))
		if err != nil {
			writeStreamError(conn, err)
			return
		}
		id, err := strconv.ParseUint(conn.Params("id"), 10, 64)
		if err != nil || id == 0 {
			writeStreamError(conn, models.NewValidationError("Invalid ID"))
			return
		}
		thread := models.Thread{Scope: scope, ID: uint(id)}

		parent := s.shutdownCtx
		if parent == nil {
			parent = context.Background()
		}
		ctx, cancel := context.WithCancel(context.WithValue(parent, middleware.UserIDKey, sess.UserID))
		defer cancel()

		// The read loop only detects the client going away. It must finish before
		// the handler returns because the connection is pooled afterwards.
		readDone := make(chan struct{})
		go func() {
			defer close(readDone)
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
		defer func() {
			_ = conn.Close()
			<-readDone
		}()

		nudges, unwatch := s.threads.watch(thread)
		defer unwatch()

		err = s.poller.Run(ctx, sess, thread, nudges, func(msgs []models.ThreadMessage) error {
			if msgs == nil {
				msgs = []models.ThreadMessage{}
			}
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			return conn.WriteJSON(threadSnapshot{Type: "snapshot", Thread: thread, Messages: msgs})
		})
		if err != nil && ctx.Err() == nil {
			if models.StatusFor(err) < fiber.StatusInternalServerError {
				writeStreamError(conn, err)
				return
			}
			middleware.Logger.WarnContext(ctx, "thread stream ended", "thread", thread.String(), "error", err)
		}
	})
}

func writeStreamError(conn *websocket.Conn, err error) {
	msg := streamError{Type: "error", Error: err.Error()}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		msg.Error = appErr.Message
		msg.Code = appErr.Code
	}
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	_ = conn.WriteJSON(msg)
}
