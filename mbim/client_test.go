package mbim

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func TestClientOpenCloseCommand(t *testing.T) {
	tm := NewTransactionManager(nil)
	transport := &fakeTransport{}
	client := NewClient(transport, tm)

	transport.onSend = func(frame []byte) {
		req, err := Parse(frame)
		require.NoError(t, err)

		switch req.Header.Type {
		case TypeOpen:
			reply := &Message{Header: Header{Type: TypeOpenDone, Transaction: req.Header.Transaction}, StatusCode: StatusSuccess}
			tm.Resolve(TransactionKey{Service: UUID{}, ClientID: 0, TxID: req.Header.Transaction}, reply)
		case TypeClose:
			reply := &Message{Header: Header{Type: TypeCloseDone, Transaction: req.Header.Transaction}, StatusCode: StatusSuccess}
			tm.Resolve(TransactionKey{Service: UUID{}, ClientID: 0, TxID: req.Header.Transaction}, reply)
		case TypeCommand:
			reply := NewCommandDone(req.Header.Transaction, req.ServiceUUID, req.CID, StatusSuccess, []byte{1, 2, 3})
			tm.Resolve(TransactionKey{Service: req.ServiceUUID, ClientID: 0, TxID: req.Header.Transaction}, reply)
		}
	}

	ctx := context.Background()
	require.NoError(t, client.Open(ctx, 4096, time.Second))

	reply, err := client.SendCommand(ctx, UUIDBasicConnect, CIDBasicConnectRadioState, CommandTypeQuery, nil, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, reply.InformationBuffer)

	require.NoError(t, client.Close(ctx, time.Second))
}

func TestClientSendCommandRejectsWhenNotOpen(t *testing.T) {
	tm := NewTransactionManager(nil)
	transport := &fakeTransport{}
	client := NewClient(transport, tm)

	_, err := client.SendCommand(context.Background(), UUIDBasicConnect, CIDBasicConnectRadioState, CommandTypeQuery, nil, time.Second)
	require.Error(t, err)
}

func TestClientOpenSurfacesStatusError(t *testing.T) {
	tm := NewTransactionManager(nil)
	transport := &fakeTransport{}
	client := NewClient(transport, tm)

	transport.onSend = func(frame []byte) {
		req, err := Parse(frame)
		require.NoError(t, err)
		reply := &Message{Header: Header{Type: TypeOpenDone, Transaction: req.Header.Transaction}, StatusCode: StatusFailure}
		tm.Resolve(TransactionKey{Service: UUID{}, ClientID: 0, TxID: req.Header.Transaction}, reply)
	}

	err := client.Open(context.Background(), 4096, time.Second)
	require.Error(t, err)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, uint32(StatusFailure), statusErr.Code)
}

func TestClientSendCancelledByContext(t *testing.T) {
	tm := NewTransactionManager(nil)
	transport := &fakeTransport{}
	client := NewClient(transport, tm)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.Open(ctx, 4096, time.Second)
	require.Error(t, err)
}
