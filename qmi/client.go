package qmi

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-modem/wwanproto/internal/logger"
	"github.com/go-modem/wwanproto/protoerr"
)

// Transport is the external collaborator owning the underlying
// character-device I/O loop; a Registry only ever calls Send (out of
// scope per 1).
type Transport interface {
	Send(ctx context.Context, frame []byte) error
}

// Client is one allocated (service, client-id) endpoint: QMI, unlike
// MBIM, multiplexes many logical clients per service over the same
// transport, each bootstrapped through the control service (4.6).
type Client struct {
	service  Service
	id       uint8
	registry *Registry
	nextTx   atomic.Uint32
}

// Service returns the client's bound service.
func (c *Client) Service() Service { return c.service }

// ID returns the client's allocated client id.
func (c *Client) ID() uint8 { return c.id }

// nextTransactionID returns the next transaction id for this client.
func (c *Client) nextTransactionID() uint32 {
	for {
		prev := c.nextTx.Load()
		next := NextTransactionID(c.service, prev)
		if c.nextTx.CompareAndSwap(prev, next) {
			return next
		}
	}
}

// SendCommand issues a request on this client and waits for its reply.
// Non-control clients must already carry a non-zero client id (4.5); the
// control client (id 0) is used only for AllocateClientId/ReleaseClientId.
func (c *Client) SendCommand(ctx context.Context, messageID uint16, tlvs []TLV, timeout time.Duration) (*Message, error) {
	if !c.service.IsControl() && c.id == 0 {
		return nil, protoerr.New(protoerr.InvalidArgs, "cannot send on service %s with client id 0", c.service)
	}
	txID := c.nextTransactionID()
	req := NewRequest(c.service, c.id, txID, messageID, tlvs)
	return c.registry.send(ctx, c, req, txID, timeout)
}

// Registry maps (service, client-id) to Client, bootstrapping new clients
// through the control service's AllocateClientId/ReleaseClientId exchange
// (4.6). Inbound messages whose (service, client-id) is unknown are the
// caller's responsibility to log and drop; Registry only tracks what it
// allocated.
type Registry struct {
	mu        sync.Mutex
	clients   map[Service]map[uint8]*Client
	transport Transport
	tm        *TransactionManager
	ctl       *Client
	metrics   *Metrics
}

// NewRegistry returns a Registry bound to transport, using tm for
// request/reply matching. A permanent control-service client (id 0) is
// created eagerly.
func NewRegistry(transport Transport, tm *TransactionManager, metrics *Metrics) *Registry {
	r := &Registry{
		clients:   make(map[Service]map[uint8]*Client),
		transport: transport,
		tm:        tm,
		metrics:   metrics,
	}
	r.ctl = &Client{service: ServiceCTL, id: 0, registry: r}
	r.clients[ServiceCTL] = map[uint8]*Client{0: r.ctl}
	return r
}

// Allocate bootstraps a new client for service via the control service's
// AllocateClientId exchange, registers it, and returns it. Allocation
// failure is surfaced as Failed with the protocol status preserved (4.6).
func (r *Registry) Allocate(ctx context.Context, service Service, timeout time.Duration) (*Client, error) {
	if service.IsControl() {
		return r.ctl, nil
	}

	txID := r.ctl.nextTransactionID()
	req := NewAllocateClientID(txID, service)

	reply, err := r.send(ctx, r.ctl, req, txID, timeout)
	if err != nil {
		logger.Warn("Allocate client id failed", logger.Dialect("qmi"), logger.Service(service.String()), logger.Err(err))
		return nil, protoerr.New(protoerr.Failed, "allocate client id for %s: %v", service, err)
	}
	if protoErr, ok := reply.Result(); ok && protoErr != nil {
		logger.Warn("Allocate client id rejected", logger.Dialect("qmi"), logger.Service(service.String()), logger.Err(protoErr))
		return nil, protoerr.New(protoerr.Failed, "allocate client id for %s: %v", service, protoErr)
	}

	repliedService, clientID, err := ParseAllocateClientIDReply(reply)
	if err != nil {
		return nil, err
	}
	if err := CheckAllocationEchoesService(service, repliedService); err != nil {
		return nil, err
	}

	client := &Client{service: service, id: clientID, registry: r}

	r.mu.Lock()
	if r.clients[service] == nil {
		r.clients[service] = make(map[uint8]*Client)
	}
	r.clients[service][clientID] = client
	r.mu.Unlock()

	r.metrics.recordAllocated(service)
	logger.Debug("Allocated client id", logger.Dialect("qmi"), logger.Service(service.String()), logger.ClientID(uint32(clientID)))
	return client, nil
}

// Release tears down a previously allocated client via ReleaseClientId
// and forgets it regardless of whether the release itself succeeds (4.6).
func (r *Registry) Release(ctx context.Context, c *Client, timeout time.Duration) error {
	defer r.forget(c)

	if c.service.IsControl() {
		return nil
	}

	txID := r.ctl.nextTransactionID()
	req := NewReleaseClientID(txID, c.service, c.id)
	reply, err := r.send(ctx, r.ctl, req, txID, timeout)
	if err != nil {
		return err
	}
	if protoErr, ok := reply.Result(); ok && protoErr != nil {
		return protoErr
	}
	return nil
}

func (r *Registry) forget(c *Client) {
	r.mu.Lock()
	if m, ok := r.clients[c.service]; ok {
		delete(m, c.id)
	}
	r.mu.Unlock()
	r.metrics.recordReleased(c.service)
}

// Lookup finds the Client registered for (service, clientID), or false if
// none is registered: callers should log and drop inbound messages for
// unknown endpoints rather than treat this as an error (4.6).
func (r *Registry) Lookup(service Service, clientID uint8) (*Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.clients[service]
	if !ok {
		return nil, false
	}
	c, ok := m[clientID]
	return c, ok
}

// Deliver routes an inbound message to the transaction manager (for
// responses) or returns it unrouted (for indications, which have no
// request and must be fanned out to subscribers by the caller) (4.5).
func (r *Registry) Deliver(m *Message) (routed bool) {
	if m.Kind == KindIndication {
		return false
	}
	key := TransactionKey{Service: m.Service, ClientID: m.ClientID, TxID: m.Transaction}
	routed = r.tm.Resolve(key, m)
	if !routed {
		logger.Debug("Dropped unroutable message", logger.Dialect("qmi"), logger.Service(m.Service.String()), logger.ClientID(uint32(m.ClientID)), logger.TransactionID(m.Transaction))
	}
	return routed
}

// Shutdown releases every outstanding client with a bounded per-client
// timeout; ids are forgotten even if their release fails (4.6).
func (r *Registry) Shutdown(ctx context.Context, perClientTimeout time.Duration) {
	r.mu.Lock()
	var all []*Client
	for svc, m := range r.clients {
		if svc.IsControl() {
			continue
		}
		for _, c := range m {
			all = append(all, c)
		}
	}
	r.mu.Unlock()

	for _, c := range all {
		_ = r.Release(ctx, c, perClientTimeout)
	}
}

func (r *Registry) send(ctx context.Context, c *Client, req *Message, txID uint32, timeout time.Duration) (*Message, error) {
	key := TransactionKey{Service: req.Service, ClientID: req.ClientID, TxID: txID}

	reply, err := r.tm.Insert(key, timeout)
	if err != nil {
		return nil, err
	}

	frame, err := req.Encode()
	if err != nil {
		r.tm.Cancel(key)
		return nil, err
	}

	if err := r.transport.Send(ctx, frame); err != nil {
		r.tm.Cancel(key)
		return nil, err
	}

	select {
	case <-ctx.Done():
		r.tm.Cancel(key)
		return nil, protoerr.New(protoerr.Aborted, "%v", ctx.Err())
	case msg, ok := <-reply:
		if !ok {
			logger.Warn("Transaction timed out", logger.Dialect("qmi"), logger.Service(req.Service.String()), logger.TransactionID(txID))
			return nil, protoerr.New(protoerr.Timeout, "transaction %d timed out or was cancelled", txID)
		}
		return msg, nil
	}
}
