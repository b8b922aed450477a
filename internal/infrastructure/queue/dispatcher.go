package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/campusmarket/chat-service/internal/api/metrics"
	"github.com/campusmarket/chat-service/internal/core/domain"
	"github.com/campusmarket/chat-service/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Responder is the sender's side of an inbound message: the dispatcher
// uses it to gate on authentication state and to report a dropped message.
type Responder interface {
	Authenticated() bool
	NackMessage(reason string)
}

// InboundSend pairs a message with the session that sent it.
type InboundSend struct {
	Responder Responder
	Msg       ports.IncomingMessage
}

// Dispatcher routes inbound sends to a fixed set of workers using
// consistent hashing on the room, so all messages for one listing are
// processed by the same worker in arrival order. That single-worker
// funnel, combined with the registry's per-room FIFO broadcast, gives
// every subscriber of a room the same event order.
type Dispatcher struct {
	workers []chan InboundSend
	service ports.ChatService
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.ChatService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan InboundSend, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan InboundSend, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Drain blocks until all workers have stopped.
func (d *Dispatcher) Drain() {
	d.wg.Wait()
}

// Enqueue hands a send to the worker responsible for its room. Blocks only
// when that worker's buffer is full.
func (d *Dispatcher) Enqueue(send InboundSend) {
	i := d.shardIndex(domain.RoomID(send.Msg.ListingID))
	d.workers[i] <- send
	metrics.QueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(d.workers[i])))
}

// shardIndex maps a room deterministically to a worker index.
func (d *Dispatcher) shardIndex(room string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(room))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan InboundSend) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for {
		select {
		case <-ctx.Done():
			return
		case send, ok := <-ch:
			if !ok {
				return
			}
			metrics.QueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.process(ctx, id, send)
		}
	}
}

// process runs one send through the chat service. Failures drop the
// message and nack the sender; the connection itself stays up.
func (d *Dispatcher) process(ctx context.Context, id int, send InboundSend) {
	if send.Responder != nil && !send.Responder.Authenticated() {
		d.log.Warn().Int("worker_id", id).Msg("send from unauthenticated session dropped")
		send.Responder.NackMessage(domain.ErrUnauthenticated.Error())
		return
	}

	// Send errors are recoverable at the connection level: the message is
	// dropped, the sender gets a nack, the connection stays open.
	if _, err := d.service.Send(ctx, send.Msg); err != nil {
		d.log.Warn().Err(err).
			Int64("listing_id", send.Msg.ListingID).
			Int("worker_id", id).
			Msg("message dropped")
		if send.Responder != nil {
			send.Responder.NackMessage(err.Error())
		}
	}
}
