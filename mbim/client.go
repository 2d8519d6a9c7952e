package mbim

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-modem/wwanproto/internal/logger"
	"github.com/go-modem/wwanproto/protoerr"
)

// Transport is the external collaborator that owns the underlying
// character-device I/O loop (out of scope per 1). A Client only ever
// calls Send; reassembly of inbound bytes into Messages happens upstream
// of the Client, in the caller's read loop.
type Transport interface {
	Send(ctx context.Context, frame []byte) error
}

// Client is the single logical MBIM client of one device: MBIM has no
// wire-level client-id multiplexing (unlike QMI), so a Client just owns
// the Open/Close lifecycle, the per-client transaction counter, and a
// reference to the transport and TransactionManager.
type Client struct {
	transport Transport
	tm        *TransactionManager
	nextTx    atomic.Uint32
	opened    atomic.Bool
}

// NewClient returns a Client bound to transport, using tm for outbound
// request/reply matching.
func NewClient(transport Transport, tm *TransactionManager) *Client {
	return &Client{transport: transport, tm: tm}
}

// nextTransactionID returns the next transaction id for this client,
// wrapping from 0xffff back to 1.
func (c *Client) nextTransactionID() uint32 {
	for {
		prev := c.nextTx.Load()
		next := NextTransactionID(prev)
		if c.nextTx.CompareAndSwap(prev, next) {
			return next
		}
	}
}

// Open sends an Open request with the given max control transfer and
// waits for OpenDone.
func (c *Client) Open(ctx context.Context, maxControlTransfer uint32, timeout time.Duration) error {
	txID := c.nextTransactionID()
	req := NewOpen(txID, maxControlTransfer)

	reply, err := c.send(ctx, req, txID, timeout)
	if err != nil {
		logger.Warn("Open failed", logger.Dialect("mbim"), logger.TransactionID(txID), logger.Err(err))
		return err
	}
	if reply.StatusCode != StatusSuccess {
		logger.Warn("Open rejected", logger.Dialect("mbim"), logger.TransactionID(txID), logger.Status(int(reply.StatusCode)))
		return &StatusError{Code: reply.StatusCode}
	}
	c.opened.Store(true)
	logger.Debug("Open succeeded", logger.Dialect("mbim"), logger.TransactionID(txID))
	return nil
}

// Close sends a Close request and waits for CloseDone.
func (c *Client) Close(ctx context.Context, timeout time.Duration) error {
	txID := c.nextTransactionID()
	req := NewClose(txID)

	reply, err := c.send(ctx, req, txID, timeout)
	if err != nil {
		logger.Warn("Close failed", logger.Dialect("mbim"), logger.TransactionID(txID), logger.Err(err))
		return err
	}
	c.opened.Store(false)
	if reply.StatusCode != StatusSuccess {
		logger.Warn("Close rejected", logger.Dialect("mbim"), logger.TransactionID(txID), logger.Status(int(reply.StatusCode)))
		return &StatusError{Code: reply.StatusCode}
	}
	logger.Debug("Close succeeded", logger.Dialect("mbim"), logger.TransactionID(txID))
	return nil
}

// SendCommand issues a Command and waits for its matching CommandDone.
func (c *Client) SendCommand(ctx context.Context, serviceUUID UUID, cid uint32, cmdType CommandType, infoBuffer []byte, timeout time.Duration) (*Message, error) {
	if !c.opened.Load() {
		return nil, protoerr.New(protoerr.WrongState, "client is not open")
	}
	txID := c.nextTransactionID()
	req := NewCommand(txID, serviceUUID, cid, cmdType, infoBuffer)
	return c.send(ctx, req, txID, timeout)
}

func (c *Client) send(ctx context.Context, req *Message, txID uint32, timeout time.Duration) (*Message, error) {
	key := TransactionKey{Service: req.ServiceUUID, ClientID: 0, TxID: txID}

	reply, err := c.tm.Insert(key, timeout)
	if err != nil {
		return nil, err
	}

	frame, err := req.Encode()
	if err != nil {
		c.tm.Cancel(key)
		return nil, err
	}

	if err := c.transport.Send(ctx, frame); err != nil {
		c.tm.Cancel(key)
		return nil, err
	}

	select {
	case <-ctx.Done():
		c.tm.Cancel(key)
		return nil, protoerr.New(protoerr.Aborted, "%v", ctx.Err())
	case msg, ok := <-reply:
		if !ok {
			logger.Warn("Transaction timed out", logger.Dialect("mbim"), logger.TransactionID(txID))
			return nil, protoerr.New(protoerr.Timeout, "transaction %d timed out or was cancelled", txID)
		}
		return msg, nil
	}
}
