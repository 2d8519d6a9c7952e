package mbim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildLargeCommand(t *testing.T, infoLen int) *Message {
	t.Helper()
	data := make([]byte, infoLen)
	for i := range data {
		data[i] = byte(i)
	}
	return NewCommand(1, UUIDBasicConnect, CIDBasicConnectConnect, CommandTypeSet, data)
}

func TestSplitReturnsUnchangedWhenWithinLimit(t *testing.T) {
	m := buildLargeCommand(t, 16)
	parts, err := Split(m, 4096)
	require.NoError(t, err)
	require.Len(t, parts, 1)

	full, err := m.Encode()
	require.NoError(t, err)
	assert.Equal(t, full, parts[0])
}

func TestSplitRejectsNonFragmentableType(t *testing.T) {
	m := NewOpen(1, 4096)
	_, err := Split(m, 16)
	require.Error(t, err)
}

// Every split: concatenating fragments' payloads equals the original
// payload, each fragment shares the same transaction id, current values
// form exactly 0..total (8, quantified invariants).
func TestSplitAndReassembleRoundTrip(t *testing.T) {
	m := buildLargeCommand(t, 300)
	maxTransfer := uint32(64)

	fragments, err := Split(m, maxTransfer)
	require.NoError(t, err)
	require.Greater(t, len(fragments), 1)

	var r *Reassembler
	var final []byte
	for i, frag := range fragments {
		hdr, err := decodeHeader(frag)
		require.NoError(t, err)
		assert.Equal(t, m.Header.Transaction, hdr.Transaction)

		fragHdr, err := decodeFragmentHeader(frag, HeaderLen)
		require.NoError(t, err)
		assert.Equal(t, uint32(i), fragHdr.Current)
		assert.Equal(t, uint32(len(fragments)), fragHdr.Total)

		var out []byte
		r, out, err = AddFragment(r, frag, nil)
		require.NoError(t, err)
		if i < len(fragments)-1 {
			assert.Nil(t, out)
			assert.False(t, r.Done())
		} else {
			require.NotNil(t, out)
			final = out
		}
	}

	got, err := Parse(final)
	require.NoError(t, err)
	assert.Equal(t, m.InformationBuffer, got.InformationBuffer)
	assert.Equal(t, uint32(1), got.Fragment.Total)
	assert.Equal(t, uint32(0), got.Fragment.Current)
}

func TestAddFragmentRejectsOutOfSequenceFirstFragment(t *testing.T) {
	m := buildLargeCommand(t, 300)
	fragments, err := Split(m, 64)
	require.NoError(t, err)
	require.Greater(t, len(fragments), 1)

	_, _, err = AddFragment(nil, fragments[1], nil)
	require.Error(t, err)
}

func TestAddFragmentRejectsSkippedSequence(t *testing.T) {
	m := buildLargeCommand(t, 300)
	fragments, err := Split(m, 64)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(fragments), 3)

	r, _, err := AddFragment(nil, fragments[0], nil)
	require.NoError(t, err)

	_, _, err = AddFragment(r, fragments[2], nil)
	require.Error(t, err)
}

func TestAddFragmentRejectsMismatchedMessage(t *testing.T) {
	m1 := buildLargeCommand(t, 300)
	fragments1, err := Split(m1, 64)
	require.NoError(t, err)

	m2 := NewCommandDone(1, UUIDBasicConnect, CIDBasicConnectConnect, StatusSuccess, make([]byte, 300))
	fragments2, err := Split(m2, 64)
	require.NoError(t, err)

	r, _, err := AddFragment(nil, fragments1[0], nil)
	require.NoError(t, err)

	_, _, err = AddFragment(r, fragments2[1], nil)
	require.Error(t, err)
}

func TestReassemblerMetricsRecordCompletion(t *testing.T) {
	reg := prometheusTestRegistry(t)
	metrics := NewMetrics(reg)

	m := buildLargeCommand(t, 300)
	fragments, err := Split(m, 64)
	require.NoError(t, err)

	var r *Reassembler
	for _, frag := range fragments {
		r, _, err = AddFragment(r, frag, metrics)
		require.NoError(t, err)
	}
	assert.True(t, r.Done())

	families, err := reg.Gather()
	require.NoError(t, err)
	var reassembled float64
	for _, f := range families {
		if f.GetName() == "mbim_fragments_reassembled_total" {
			reassembled = f.GetMetric()[0].GetCounter().GetValue()
		}
	}
	assert.Equal(t, 1.0, reassembled)
}
