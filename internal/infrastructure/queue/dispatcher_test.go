package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusmarket/chat-service/internal/core/domain"
	"github.com/campusmarket/chat-service/internal/core/ports"
)

type recordingService struct {
	mu        sync.Mutex
	processed []ports.IncomingMessage
	sendErr   error
	done      chan struct{}
}

func (s *recordingService) Send(_ context.Context, msg ports.IncomingMessage) (*domain.Message, error) {
	s.mu.Lock()
	s.processed = append(s.processed, msg)
	s.mu.Unlock()
	if s.done != nil {
		s.done <- struct{}{}
	}
	if s.sendErr != nil {
		return nil, s.sendErr
	}
	return &domain.Message{Body: msg.Body, ListingID: msg.ListingID}, nil
}

func (s *recordingService) messages() []ports.IncomingMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ports.IncomingMessage, len(s.processed))
	copy(out, s.processed)
	return out
}

type fakeResponder struct {
	mu            sync.Mutex
	authenticated bool
	nacks         []string
}

func (r *fakeResponder) Authenticated() bool {
	return r.authenticated
}

func (r *fakeResponder) NackMessage(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nacks = append(r.nacks, reason)
}

func (r *fakeResponder) nacked() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.nacks))
	copy(out, r.nacks)
	return out
}

func waitFor(t *testing.T, done <-chan struct{}, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for message %d of %d", i+1, n)
		}
	}
}

func TestDispatcher_PreservesPerRoomOrder(t *testing.T) {
	service := &recordingService{done: make(chan struct{}, 64)}
	d := NewDispatcher(4, service, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	responder := &fakeResponder{authenticated: true}
	const n = 20
	for i := 0; i < n; i++ {
		d.Enqueue(InboundSend{
			Responder: responder,
			Msg: ports.IncomingMessage{
				Credential: "tok",
				Body:       fmt.Sprintf("m%d", i),
				ListingID:  42,
			},
		})
	}

	waitFor(t, service.done, n)

	got := service.messages()
	for i := 0; i < n; i++ {
		want := fmt.Sprintf("m%d", i)
		if got[i].Body != want {
			t.Fatalf("message %d processed out of order: got %q, want %q", i, got[i].Body, want)
		}
	}
}

func TestDispatcher_SameRoomSameWorker(t *testing.T) {
	d := NewDispatcher(8, &recordingService{}, zerolog.Nop())

	first := d.shardIndex(domain.RoomID(42))
	for i := 0; i < 10; i++ {
		if d.shardIndex(domain.RoomID(42)) != first {
			t.Fatalf("shard index for one room must be stable")
		}
	}
}

func TestDispatcher_UnauthenticatedSendIsDropped(t *testing.T) {
	service := &recordingService{done: make(chan struct{}, 1)}
	d := NewDispatcher(1, service, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	responder := &fakeResponder{authenticated: false}
	d.Enqueue(InboundSend{
		Responder: responder,
		Msg:       ports.IncomingMessage{Credential: "tok", Body: "hi", ListingID: 42},
	})

	// The nack is the observable outcome; the service must never be called.
	deadline := time.Now().Add(2 * time.Second)
	for len(responder.nacked()) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for nack")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if len(service.messages()) != 0 {
		t.Fatalf("unauthenticated send must not reach the chat service")
	}
}

func TestDispatcher_SendFailureNacksSender(t *testing.T) {
	service := &recordingService{
		done:    make(chan struct{}, 1),
		sendErr: errors.New("message store unavailable"),
	}
	d := NewDispatcher(1, service, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	responder := &fakeResponder{authenticated: true}
	d.Enqueue(InboundSend{
		Responder: responder,
		Msg:       ports.IncomingMessage{Credential: "tok", Body: "hi", ListingID: 42},
	})

	waitFor(t, service.done, 1)

	deadline := time.Now().Add(2 * time.Second)
	for len(responder.nacked()) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for nack")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := responder.nacked()[0]; got != "message store unavailable" {
		t.Fatalf("unexpected nack reason: %q", got)
	}
}

func TestDispatcher_DrainStopsWorkers(t *testing.T) {
	d := NewDispatcher(2, &recordingService{}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		d.Drain()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("workers did not stop after cancellation")
	}
}
