package mockkafka

import (
	"errors"
	"sync"

	"github.com/hugolhafner/kreader/kafka"
)

var _ kafka.ConsumerFactory = (*Factory)(nil)

// ErrNoClients is returned when a Factory runs out of scripted clients.
var ErrNoClients = errors.New("mock factory has no more clients")

// Factory hands out the given clients in order. When a single client is given it
// is returned on every call.
type Factory struct {
	mu      sync.Mutex
	clients []*Client
	next    int
	created int
	err     error
}

func NewFactory(clients ...*Client) *Factory {
	return &Factory{clients: clients}
}

func (f *Factory) NewConsumer() (kafka.Consumer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	if len(f.clients) == 1 {
		f.created++
		return f.clients[0], nil
	}

	if f.next >= len(f.clients) {
		return nil, ErrNoClients
	}

	c := f.clients[f.next]
	f.next++
	f.created++
	return c, nil
}

// SetError makes every following NewConsumer call fail with err.
func (f *Factory) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.err = err
}

// Created returns how many consumers were handed out.
func (f *Factory) Created() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.created
}
