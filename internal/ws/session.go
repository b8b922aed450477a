// Package ws carries the WebSocket boundary of the chat layer: the
// per-connection session state machine, the gorilla transport pumps, and
// the gateway that drives a connection from admission to disconnect.
package ws

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusmarket/chat-service/internal/core/domain"
	"github.com/campusmarket/chat-service/internal/core/ports"
)

// State is the session lifecycle position.
type State int

const (
	StateConnecting State = iota
	StateAuthenticated
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Transport is the wire below a session. The gorilla Conn implements it;
// tests substitute an in-memory fake.
type Transport interface {
	WriteEvent(env Envelope) error
	Close() error
}

// Session is one live client connection: authentication state, the
// resolved identity, and the set of joined rooms. It implements
// ports.Subscriber so the room registry can deliver events to it.
//
// Lifecycle: Connecting → Authenticated → Closed. Closed is terminal and
// deregisters the session from every joined room exactly once, even when
// the transport was already severed.
type Session struct {
	id        string
	transport Transport
	registry  ports.RoomRegistry
	log       zerolog.Logger

	mu       sync.Mutex
	state    State
	identity ports.Identity
	joined   map[string]struct{}
	closing  sync.Once
}

func NewSession(transport Transport, registry ports.RoomRegistry, log zerolog.Logger) *Session {
	return &Session{
		id:        newSessionID(),
		transport: transport,
		registry:  registry,
		log:       log,
		state:     StateConnecting,
		joined:    make(map[string]struct{}),
	}
}

// ID implements ports.Subscriber.
func (s *Session) ID() string { return s.id }

// State reports the current lifecycle position.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Identity returns the identity recorded at admission. Zero until the
// session reaches Authenticated; immutable afterwards.
func (s *Session) Identity() ports.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Authenticated reports whether the session has been admitted and is still
// open.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateAuthenticated
}

// Authenticate transitions Connecting → Authenticated, records the
// identity, and confirms admission to the client.
func (s *Session) Authenticate(identity ports.Identity) error {
	s.mu.Lock()
	if s.state != StateConnecting {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("authenticate: session %s is %s, not connecting", s.id, state)
	}
	s.state = StateAuthenticated
	s.identity = identity
	s.mu.Unlock()

	if err := s.transport.WriteEvent(Envelope{
		Event: EventConnectSuccess,
		Data:  infoPayload{Message: "connected successfully"},
	}); err != nil {
		s.log.Warn().Err(err).Str("session", s.id).Msg("failed to confirm admission")
	}
	return nil
}

// Reject refuses admission: the client gets a connect_error with the
// failure reason and the session closes immediately.
func (s *Session) Reject(reason error) {
	if err := s.transport.WriteEvent(Envelope{
		Event: EventConnectError,
		Data:  errorPayload{Error: reason.Error()},
	}); err != nil {
		s.log.Debug().Err(err).Str("session", s.id).Msg("failed to send rejection")
	}
	s.Close()
}

// Join subscribes the session to a room. Only authenticated sessions may
// join; re-joining a room already in the joined set is a no-op.
func (s *Session) Join(room string) error {
	if room == "" {
		return domain.ErrInvalidPayload
	}

	s.mu.Lock()
	if s.state != StateAuthenticated {
		state := s.state
		s.mu.Unlock()
		s.log.Warn().Str("session", s.id).Stringer("state", state).Str("room", room).Msg("join refused")
		return domain.ErrUnauthenticated
	}
	if _, ok := s.joined[room]; ok {
		s.mu.Unlock()
		return nil
	}
	s.joined[room] = struct{}{}
	s.mu.Unlock()

	s.registry.Join(room, s)
	s.log.Debug().Str("session", s.id).Str("room", room).Msg("joined room")
	return nil
}

// Deliver implements ports.Subscriber. A delivery into a closed session
// returns an error so the registry prunes it.
func (s *Session) Deliver(event domain.ChatEvent) error {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	if state == StateClosed {
		return fmt.Errorf("deliver: session %s is closed", s.id)
	}
	return s.transport.WriteEvent(Envelope{Event: EventNewMessage, Data: event})
}

// NackMessage tells the sender its message was dropped. Best effort; the
// connection stays open.
func (s *Session) NackMessage(reason string) {
	if err := s.transport.WriteEvent(Envelope{
		Event: EventMessageError,
		Data:  errorPayload{Error: reason},
	}); err != nil {
		s.log.Debug().Err(err).Str("session", s.id).Msg("failed to nack message")
	}
}

// Close moves the session to Closed, leaves every joined room, and shuts
// the transport. Safe to call from any state and from multiple goroutines;
// deregistration runs exactly once.
func (s *Session) Close() {
	s.closing.Do(func() {
		s.mu.Lock()
		s.state = StateClosed
		rooms := make([]string, 0, len(s.joined))
		for room := range s.joined {
			rooms = append(rooms, room)
		}
		s.joined = make(map[string]struct{})
		s.mu.Unlock()

		for _, room := range rooms {
			s.registry.Leave(room, s)
		}
		if err := s.transport.Close(); err != nil {
			s.log.Debug().Err(err).Str("session", s.id).Msg("transport close")
		}

		s.log.Debug().Str("session", s.id).Int("rooms_left", len(rooms)).Msg("session closed")
	})
}

// newSessionID returns a random 16-hex-char connection identifier.
func newSessionID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("sess-%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("%x", b)
}
