package server

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/renatoruis/oh-institutional/pkg/middleware"
)

// ReadLoop continuously reads messages from the WebSocket connection and
// queues them for the event loop. It blocks until the connection is closed
// or an error occurs, then closes the session.
func (s *Session) ReadLoop() {
	defer s.Close()

	s.conn.SetReadLimit(s.config.MaxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		s.touch()
		return s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Warn("read error", "error", err)
				middleware.RecordWebSocketError("read")
			}
			return
		}

		_ = s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		s.touch()
		s.received.Add(1)

		var msg Inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Warn("malformed message", "error", err)
			middleware.RecordWebSocketError("decode")
			continue
		}

		if err := s.Queue(msg); err != nil {
			s.logger.Warn("dropping message", "type", msg.Type, "error", err)
			middleware.RecordWebSocketError("queue_full")
		}
	}
}

// WriteLoop sends heartbeat pings until the session is closed.
func (s *Session) WriteLoop() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.sendPing(); err != nil {
				s.Close()
				return
			}

		case <-s.done:
			return
		}
	}
}

// EventLoop applies queued client messages in order. It owns the
// navigation controller and stops the engine when the session ends.
func (s *Session) EventLoop() {
	defer s.teardown()

	for {
		select {
		case msg := <-s.events:
			if err := s.handle(msg); err != nil {
				s.logger.Warn("message refused", "type", msg.Type, "error", err)
			}

		case <-s.done:
			return
		}
	}
}
