package mbim

import (
	"sync"
	"time"

	"github.com/go-modem/wwanproto/protoerr"
)

// TransactionKey identifies one in-flight request: service, client id and
// transaction id must all match for an inbound reply to resolve it.
type TransactionKey struct {
	Service  UUID
	ClientID uint32
	TxID     uint32
}

// transactionState tracks a pending entry's lifecycle: Inserted ->
// Replied|TimedOut|Cancelled -> Removed.
type transactionState int

const (
	stateInserted transactionState = iota
	stateReplied
	stateTimedOut
	stateCancelled
)

// pendingEntry is one row of the transaction table.
type pendingEntry struct {
	key     TransactionKey
	state   transactionState
	reply   chan *Message
	timer   *time.Timer
	created time.Time
}

// TransactionManager is a keyed table of in-flight requests, matching
// inbound CommandDone/OpenDone/CloseDone frames to the request that
// caused them by (service, client, transaction id). At most one pending
// entry exists per key at a time.
type TransactionManager struct {
	mu      sync.Mutex
	pending map[TransactionKey]*pendingEntry
	metrics *Metrics
}

// NewTransactionManager returns an empty TransactionManager. metrics may
// be nil to disable instrumentation.
func NewTransactionManager(metrics *Metrics) *TransactionManager {
	return &TransactionManager{
		pending: make(map[TransactionKey]*pendingEntry),
		metrics: metrics,
	}
}

// Insert registers a new pending entry for key, armed with the given
// timeout. It returns a channel that receives exactly one reply, and an
// error if key is already pending.
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
// any. It returns false if no entry is pending (the caller should log
// and drop the message rather than treat it as an error, per 4.5).
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

// Cancel removes the pending entry for key, if any, and reports Aborted
// on its reply channel by closing it without a value.
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

// NextTransactionID computes the next 16-bit transaction id following
// prev, wrapping from the maximum value back to 1 (0 is reserved for "no
// transaction").
func NextTransactionID(prev uint32) uint32 {
	const maxTxID = 0xffff
	if prev >= maxTxID {
		return 1
	}
	return prev + 1
}
