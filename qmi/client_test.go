package qmi

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport records sent frames and lets a test script replies back
// through a Registry by parsing the sent frame and handing a canned
// response to onSend.
type fakeTransport struct {
	mu     sync.Mutex
	sent   [][]byte
	onSend func(frame []byte)
}

func (f *fakeTransport) Send(ctx context.Context, frame []byte) error {
	f.mu.Lock()
	f.sent = append(f.sent, frame)
	onSend := f.onSend
	f.mu.Unlock()
	if onSend != nil {
		onSend(frame)
	}
	return nil
}

func TestRegistryAllocateRelease(t *testing.T) {
	tm := NewTransactionManager(nil)
	transport := &fakeTransport{}
	registry := NewRegistry(transport, tm, nil)

	transport.onSend = func(frame []byte) {
		req, err := Parse(frame)
		require.NoError(t, err)

		switch req.MessageID {
		case MessageCTLAllocateClientID:
			reply := NewResponse(ServiceCTL, 0, req.Transaction, MessageCTLAllocateClientID, []TLV{
				EncodeResult(ResultSuccess, 0),
				{Type: 0x01, Value: []byte{uint8(ServiceDMS), 7}},
			})
			key := TransactionKey{Service: ServiceCTL, ClientID: 0, TxID: req.Transaction}
			tm.Resolve(key, reply)
		case MessageCTLReleaseClientID:
			reply := NewResponse(ServiceCTL, 0, req.Transaction, MessageCTLReleaseClientID, []TLV{
				EncodeResult(ResultSuccess, 0),
				{Type: 0x01, Value: []byte{uint8(ServiceDMS), 7}},
			})
			key := TransactionKey{Service: ServiceCTL, ClientID: 0, TxID: req.Transaction}
			tm.Resolve(key, reply)
		}
	}

	ctx := context.Background()
	client, err := registry.Allocate(ctx, ServiceDMS, time.Second)
	require.NoError(t, err)
	assert.Equal(t, ServiceDMS, client.Service())
	assert.Equal(t, uint8(7), client.ID())

	got, ok := registry.Lookup(ServiceDMS, 7)
	require.True(t, ok)
	assert.Same(t, client, got)

	require.NoError(t, registry.Release(ctx, client, time.Second))
	_, ok = registry.Lookup(ServiceDMS, 7)
	assert.False(t, ok)
}

func TestRegistryAllocateRejectsMismatchedService(t *testing.T) {
	tm := NewTransactionManager(nil)
	transport := &fakeTransport{}
	registry := NewRegistry(transport, tm, nil)

	transport.onSend = func(frame []byte) {
		req, err := Parse(frame)
		require.NoError(t, err)
		reply := NewResponse(ServiceCTL, 0, req.Transaction, MessageCTLAllocateClientID, []TLV{
			EncodeResult(ResultSuccess, 0),
			{Type: 0x01, Value: []byte{uint8(ServiceWDS), 3}},
		})
		key := TransactionKey{Service: ServiceCTL, ClientID: 0, TxID: req.Transaction}
		tm.Resolve(key, reply)
	}

	_, err := registry.Allocate(context.Background(), ServiceDMS, time.Second)
	require.Error(t, err)
}

func TestClientSendCommandRejectsZeroClientIDOnNonControlService(t *testing.T) {
	tm := NewTransactionManager(nil)
	transport := &fakeTransport{}
	registry := NewRegistry(transport, tm, nil)

	unbound := &Client{service: ServiceDMS, id: 0, registry: registry}
	_, err := unbound.SendCommand(context.Background(), 0x0020, nil, time.Second)
	require.Error(t, err)
}

func TestClientSendCommandRoundTrip(t *testing.T) {
	tm := NewTransactionManager(nil)
	transport := &fakeTransport{}
	registry := NewRegistry(transport, tm, nil)

	client := &Client{service: ServiceDMS, id: 7, registry: registry}
	transport.onSend = func(frame []byte) {
		req, err := Parse(frame)
		require.NoError(t, err)
		reply := NewResponse(ServiceDMS, 7, req.Transaction, req.MessageID, []TLV{EncodeResult(ResultSuccess, 0)})
		key := TransactionKey{Service: ServiceDMS, ClientID: 7, TxID: req.Transaction}
		tm.Resolve(key, reply)
	}

	reply, err := client.SendCommand(context.Background(), 0x0020, nil, time.Second)
	require.NoError(t, err)
	protoErr, ok := reply.Result()
	require.True(t, ok)
	assert.NoError(t, protoErr)
}
