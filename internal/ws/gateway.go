package ws

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/campusmarket/chat-service/internal/api/metrics"
	"github.com/campusmarket/chat-service/internal/core/domain"
	"github.com/campusmarket/chat-service/internal/core/ports"
	"github.com/campusmarket/chat-service/internal/infrastructure/queue"
)

// Gateway drives WebSocket connections through the session lifecycle:
// token-gated admission, join handling, and message dispatch. One Serve
// call per connection; it returns when the peer disconnects.
type Gateway struct {
	verifier ports.TokenVerifier
	users    ports.UserDirectory
	registry ports.RoomRegistry
	dispatch *queue.Dispatcher
	log      zerolog.Logger

	sendBuffer     int
	maxMessageSize int64

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewGateway(
	verifier ports.TokenVerifier,
	users ports.UserDirectory,
	registry ports.RoomRegistry,
	dispatch *queue.Dispatcher,
	sendBuffer int,
	maxMessageSize int64,
	log zerolog.Logger,
) *Gateway {
	return &Gateway{
		verifier:       verifier,
		users:          users,
		registry:       registry,
		dispatch:       dispatch,
		log:            log,
		sendBuffer:     sendBuffer,
		maxMessageSize: maxMessageSize,
		sessions:       make(map[string]*Session),
	}
}

// Serve owns raw from admission to disconnect. The credential comes from
// the upgrade request; admission failure sends connect_error and closes
// without ever registering the session anywhere.
func (g *Gateway) Serve(ctx context.Context, raw *websocket.Conn, credential string) {
	conn := NewConn(raw, g.sendBuffer, g.log)
	conn.setupRead(g.maxMessageSize)
	go conn.WritePump()

	sess := NewSession(conn, g.registry, g.log)
	defer sess.Close()

	if err := g.admit(ctx, sess, credential); err != nil {
		g.log.Info().Err(err).Str("session", sess.ID()).Msg("connection refused")
		metrics.ConnectionsTotal.WithLabelValues("rejected").Inc()
		sess.Reject(err)
		return
	}

	metrics.ConnectionsTotal.WithLabelValues("admitted").Inc()
	metrics.ConnectionsActive.Inc()
	defer metrics.ConnectionsActive.Dec()

	g.track(sess)
	defer g.untrack(sess)

	g.log.Info().
		Str("session", sess.ID()).
		Str("subject", sess.Identity().Subject).
		Msg("connection admitted")

	g.readLoop(ctx, conn, sess)
}

// admit verifies the credential and resolves it against the user
// directory before the session may do anything else.
func (g *Gateway) admit(ctx context.Context, sess *Session, credential string) error {
	identity, err := g.verifier.Verify(credential)
	if err != nil {
		return err
	}
	if _, err := g.users.FindByEmail(ctx, identity.Subject); err != nil {
		return domain.ErrUserNotFound
	}
	return sess.Authenticate(identity)
}

func (g *Gateway) readLoop(ctx context.Context, conn *Conn, sess *Session) {
	for {
		frame, err := conn.readFrame()
		if err != nil {
			if err == errFrameMalformed {
				g.log.Warn().Str("session", sess.ID()).Msg("malformed frame ignored")
				continue
			}
			if !isExpectedCloseError(err) {
				g.log.Warn().Err(err).Str("session", sess.ID()).Msg("read failed")
			}
			return
		}

		switch frame.Type {
		case frameJoin:
			if err := sess.Join(frame.Room); err != nil {
				g.log.Warn().Err(err).Str("session", sess.ID()).Str("room", frame.Room).Msg("join rejected")
			}
		case frameMessage:
			g.dispatch.Enqueue(queue.InboundSend{
				Responder: sess,
				Msg: ports.IncomingMessage{
					Credential:  frame.Token,
					Body:        frame.Message,
					ListingID:   frame.ListingID,
					ClientMsgID: frame.ClientMsgID,
				},
			})
		default:
			g.log.Warn().Str("session", sess.ID()).Str("type", frame.Type).Msg("unknown frame type ignored")
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func (g *Gateway) track(sess *Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions[sess.ID()] = sess
}

func (g *Gateway) untrack(sess *Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.sessions, sess.ID())
}

// Sessions reports the number of live tracked sessions.
func (g *Gateway) Sessions() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sessions)
}

// CloseAll terminates every live session. Used during graceful shutdown.
func (g *Gateway) CloseAll() {
	g.mu.Lock()
	sessions := make([]*Session, 0, len(g.sessions))
	for _, s := range g.sessions {
		sessions = append(sessions, s)
	}
	g.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	g.log.Info().Int("sessions", len(sessions)).Msg("closed all live sessions")
}
