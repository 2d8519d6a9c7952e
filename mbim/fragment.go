package mbim

import (
	"log/slog"

	"github.com/go-modem/wwanproto/internal/logger"
	"github.com/go-modem/wwanproto/protoerr"
	"github.com/go-modem/wwanproto/wire"
)

// Split divides the encoded bytes of a fragmentable message (Command,
// CommandDone, Indication) into wire fragments sized to fit within
// maxTransfer. If the message already fits, it is returned unchanged as
// the sole element.
func Split(m *Message, maxTransfer uint32) ([][]byte, error) {
	if !m.Header.Type.Fragmentable() {
		return nil, protoerr.New(protoerr.InvalidArgs, "message type %s is not fragmentable", m.Header.Type)
	}

	full, err := m.Encode()
	if err != nil {
		return nil, err
	}
	if uint32(len(full)) <= maxTransfer {
		return [][]byte{full}, nil
	}

	headerLen := HeaderLen + FragmentHeaderLen
	payloadPer := int(maxTransfer) - headerLen
	if payloadPer <= 0 {
		return nil, protoerr.New(protoerr.InvalidArgs, "max_transfer %d too small for fragment headers", maxTransfer)
	}

	payload := full[headerLen:]
	total := (len(payload) + payloadPer - 1) / payloadPer

	fragments := make([][]byte, 0, total)
	for i := 0; i < total; i++ {
		start := i * payloadPer
		end := start + payloadPer
		if end > len(payload) {
			end = len(payload)
		}
		slice := payload[start:end]

		hdr := Header{
			Type:        m.Header.Type,
			Transaction: m.Header.Transaction,
			Length:      uint32(headerLen + len(slice)),
		}
		frag := hdr.encode(make([]byte, 0, hdr.Length))
		frag = FragmentHeader{Total: uint32(total), Current: uint32(i)}.encode(frag)
		frag = append(frag, slice...)
		fragments = append(fragments, frag)
	}
	return fragments, nil
}

// Reassembler collects inbound fragments sharing a (type, transaction)
// pair into a single logical buffer, enforcing strict in-order
// reassembly: current of the first fragment must be 0, and each
// subsequent fragment's current must equal the previous one plus one,
// with total constant across the sequence.
type Reassembler struct {
	typ         MessageType
	transaction uint32
	total       uint32
	next        uint32
	payload     []byte
	done        bool
}

// AddFragment feeds one raw wire fragment to r. It returns the completed
// frame (header + fragment header stripped, logical payload reassembled
// with a synthetic single-fragment header) once the last fragment of the
// sequence has arrived, or nil while reassembly is still in progress.
// metrics may be nil to disable instrumentation.
func AddFragment(r *Reassembler, raw []byte, metrics *Metrics) (*Reassembler, []byte, error) {
	hdr, err := decodeHeader(raw)
	if err != nil {
		metrics.recordFragmentError("malformed_header")
		logger.Warn("Dropped fragment", logger.Dialect("mbim"), slog.String("reason", "malformed_header"), logger.Err(err))
		return r, nil, protoerr.New(protoerr.InvalidMessage, "%v", err)
	}
	if !hdr.Type.Fragmentable() {
		metrics.recordFragmentError("not_fragmentable")
		logger.Warn("Dropped fragment", logger.Dialect("mbim"), slog.String("reason", "not_fragmentable"), logger.MessageType(hdr.Type.String()))
		return r, nil, protoerr.New(protoerr.InvalidArgs, "message type %s is not fragmentable", hdr.Type)
	}

	frag, err := decodeFragmentHeader(raw, HeaderLen)
	if err != nil {
		metrics.recordFragmentError("malformed_fragment_header")
		logger.Warn("Dropped fragment", logger.Dialect("mbim"), slog.String("reason", "malformed_fragment_header"), logger.Err(err))
		return r, nil, protoerr.New(protoerr.InvalidMessage, "%v", err)
	}

	if r == nil {
		if frag.Current != 0 {
			metrics.recordFragmentError("out_of_sequence")
			logger.Warn("Dropped fragment", logger.Dialect("mbim"), slog.String("reason", "out_of_sequence"), logger.FragmentCurrent(frag.Current))
			return nil, nil, protoerr.New(protoerr.InvalidMessage, "first fragment has current=%d, want 0", frag.Current)
		}
		r = &Reassembler{typ: hdr.Type, transaction: hdr.Transaction, total: frag.Total}
	} else {
		if hdr.Type != r.typ || hdr.Transaction != r.transaction {
			metrics.recordFragmentError("mismatched_message")
			logger.Warn("Dropped fragment", logger.Dialect("mbim"), slog.String("reason", "mismatched_message"), logger.TransactionID(hdr.Transaction))
			return r, nil, protoerr.New(protoerr.InvalidMessage, "fragment belongs to a different message")
		}
		if frag.Total != r.total {
			metrics.recordFragmentError("total_changed")
			logger.Warn("Dropped fragment", logger.Dialect("mbim"), slog.String("reason", "total_changed"), logger.FragmentTotal(frag.Total))
			return r, nil, protoerr.New(protoerr.InvalidMessage, "fragment total changed mid-sequence: %d != %d", frag.Total, r.total)
		}
		if frag.Current != r.next {
			metrics.recordFragmentError("out_of_sequence")
			logger.Warn("Dropped fragment", logger.Dialect("mbim"), slog.String("reason", "out_of_sequence"), logger.FragmentCurrent(frag.Current))
			return r, nil, protoerr.New(protoerr.InvalidMessage, "fragment out of sequence: got current=%d, want %d", frag.Current, r.next)
		}
	}

	payload := raw[HeaderLen+FragmentHeaderLen:]
	r.payload = append(r.payload, payload...)
	r.next = frag.Current + 1

	if r.next < r.total {
		return r, nil, nil
	}

	r.done = true
	out := wire.WriteU32LE(nil, 1)
	out = wire.WriteU32LE(out, 0)
	out = append(out, r.payload...)

	hdrOut := Header{Type: r.typ, Transaction: r.transaction, Length: uint32(HeaderLen + len(out))}
	final := hdrOut.encode(make([]byte, 0, hdrOut.Length))
	final = append(final, out...)

	if metrics != nil {
		metrics.FragmentsReassembled.Inc()
	}
	return r, final, nil
}

// Done reports whether r has received its final fragment.
func (r *Reassembler) Done() bool {
	return r != nil && r.done
}
