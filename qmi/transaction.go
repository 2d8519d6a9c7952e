package qmi

import (
	"sync"
	"time"

	"github.com/go-modem/wwanproto/protoerr"
)

// TransactionKey identifies one in-flight request: (service, client id,
// transaction id) must all match for an inbound reply to resolve it.
type TransactionKey struct {
	Service  Service
	ClientID uint8
	TxID     uint32
}

type transactionState int

const (
	stateInserted transactionState = iota
	stateReplied
	stateTimedOut
	stateCancelled
)

type pendingEntry struct {
	key     TransactionKey
	state   transactionState
	reply   chan *Message
	timer   *time.Timer
	created time.Time
}

// TransactionManager is a keyed table of in-flight QMI requests, mirroring
// mbim.TransactionManager's mutex+map+timer design and its
// (service, client id, transaction id) key; here the service is a QMI
// service number rather than an MBIM service UUID, and the client id is
// the allocated QMI client id rather than MBIM's constant 0.
type TransactionManager struct {
	mu      sync.Mutex
	pending map[TransactionKey]*pendingEntry
	metrics *Metrics
}

// NewTransactionManager returns an empty TransactionManager.
func NewTransactionManager(metrics *Metrics) *TransactionManager {
	return &TransactionManager{
		pending: make(map[TransactionKey]*pendingEntry),
		metrics: metrics,
	}
}

// Insert registers a new pending entry for key, armed with timeout.
func (tm *TransactionManager) Insert(key TransactionKey, timeout time.Duration) (<-chan *Message, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if _, exists := tm.pending[key]; exists {
		return nil, protoerr.New(protoerr.WrongState, "transaction %+v already pending", key)
	}

	entry := &pendingEntry{
		key:     key,
		state:   stateInserted,
		reply:   make(chan *Message, 1),
		created: time.Now(),
	}
	entry.timer = time.AfterFunc(timeout, func() { tm.timeoutEntry(key) })
	tm.pending[key] = entry

	if tm.metrics != nil {
		tm.metrics.TransactionsInserted.Inc()
		tm.metrics.TransactionsPending.Inc()
	}
	return entry.reply, nil
}

// Resolve delivers an inbound reply to the pending entry matching key, if
// any, returning false if none is pending (4.5 "deliver").
func (tm *TransactionManager) Resolve(key TransactionKey, reply *Message) bool {
	tm.mu.Lock()
	entry, ok := tm.pending[key]
	if !ok {
		tm.mu.Unlock()
		return false
	}
	delete(tm.pending, key)
	tm.mu.Unlock()

	entry.timer.Stop()
	entry.state = stateReplied
	entry.reply <- reply
	close(entry.reply)

	if tm.metrics != nil {
		tm.metrics.TransactionsReplied.Inc()
		tm.metrics.TransactionsPending.Dec()
	}
	return true
}

// Cancel removes the pending entry for key, if any, completing it with
// Aborted by closing its reply channel without a value.
func (tm *TransactionManager) Cancel(key TransactionKey) bool {
	tm.mu.Lock()
	entry, ok := tm.pending[key]
	if !ok {
		tm.mu.Unlock()
		return false
	}
	delete(tm.pending, key)
	tm.mu.Unlock()

	entry.timer.Stop()
	entry.state = stateCancelled
	close(entry.reply)

	if tm.metrics != nil {
		tm.metrics.TransactionsPending.Dec()
	}
	return true
}

func (tm *TransactionManager) timeoutEntry(key TransactionKey) {
	tm.mu.Lock()
	entry, ok := tm.pending[key]
	if !ok {
		tm.mu.Unlock()
		return
	}
	delete(tm.pending, key)
	tm.mu.Unlock()

	entry.state = stateTimedOut
	close(entry.reply)

	if tm.metrics != nil {
		tm.metrics.TransactionsTimedOut.Inc()
		tm.metrics.TransactionsPending.Dec()
	}
}

// Pending reports the number of currently in-flight transactions.
func (tm *TransactionManager) Pending() int {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return len(tm.pending)
}

// NextTransactionID computes the next transaction id following prev for
// service, wrapping to 1 at the service's ceiling: 0xff for the control
// service (8-bit), 0xffff for every other service (16-bit), 0 reserved
// (4.5).
func NextTransactionID(service Service, prev uint32) uint32 {
	ceiling := uint32(0xffff)
	if service.IsControl() {
		ceiling = 0xff
	}
	if prev >= ceiling {
		return 1
	}
	return prev + 1
}
