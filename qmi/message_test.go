package qmi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageEncodeParseRoundTrip(t *testing.T) {
	t.Run("ControlService", func(t *testing.T) {
		m := NewRequest(ServiceCTL, 0, 1, MessageCTLAllocateClientID, []TLV{
			{Type: 0x01, Value: []byte{0x02}},
		})
		buf, err := m.Encode()
		require.NoError(t, err)

		got, err := Parse(buf)
		require.NoError(t, err)
		assert.Equal(t, m.Service, got.Service)
		assert.Equal(t, m.ClientID, got.ClientID)
		assert.Equal(t, m.Transaction, got.Transaction)
		assert.Equal(t, m.MessageID, got.MessageID)
		assert.Equal(t, m.TLVs, got.TLVs)
	})

	t.Run("NonControlService", func(t *testing.T) {
		m := NewRequest(ServiceDMS, 7, 42, 0x0020, []TLV{
			{Type: 0x10, Value: []byte{1, 2, 3, 4}},
		})
		buf, err := m.Encode()
		require.NoError(t, err)

		got, err := Parse(buf)
		require.NoError(t, err)
		assert.Equal(t, m.Service, got.Service)
		assert.Equal(t, m.ClientID, got.ClientID)
		assert.Equal(t, m.Transaction, got.Transaction)
		assert.Equal(t, m.MessageID, got.MessageID)
		assert.Equal(t, m.TLVs, got.TLVs)
	})

	t.Run("ResponseKindRoundTrips", func(t *testing.T) {
		m := NewResponse(ServiceDMS, 7, 42, 0x0020, []TLV{EncodeResult(ResultSuccess, 0)})
		buf, err := m.Encode()
		require.NoError(t, err)

		got, err := Parse(buf)
		require.NoError(t, err)
		assert.Equal(t, KindResponse, got.Kind)
	})

	t.Run("IndicationKindRoundTrips", func(t *testing.T) {
		m := NewIndication(ServiceNAS, 3, 0x0030, nil)
		buf, err := m.Encode()
		require.NoError(t, err)

		got, err := Parse(buf)
		require.NoError(t, err)
		assert.Equal(t, KindIndication, got.Kind)
	})
}

func TestParseRejectsBadMarker(t *testing.T) {
	m := NewRequest(ServiceCTL, 0, 1, MessageCTLAllocateClientID, nil)
	buf, err := m.Encode()
	require.NoError(t, err)

	buf[0] = 0xff
	_, err = Parse(buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marker")
}

func TestParseRejectsLengthMismatch(t *testing.T) {
	m := NewRequest(ServiceCTL, 0, 1, MessageCTLAllocateClientID, nil)
	buf, err := m.Encode()
	require.NoError(t, err)

	truncated := buf[:len(buf)-1]
	_, err = Parse(truncated)
	require.Error(t, err)
}

// Worked example 8.3: CTL AllocateClientId request for DMS, then a reply
// whose allocation-info TLV parses to (service=DMS, cid=7).
func TestAllocateClientIDWorkedExample(t *testing.T) {
	req := NewAllocateClientID(1, ServiceDMS)
	assert.Equal(t, ServiceCTL, req.Service)
	assert.Equal(t, uint8(0), req.ClientID)
	assert.Equal(t, uint32(1), req.Transaction)
	assert.Equal(t, MessageCTLAllocateClientID, req.MessageID)
	require.Len(t, req.TLVs, 1)
	assert.Equal(t, uint8(0x01), req.TLVs[0].Type)
	assert.Equal(t, []byte{0x02}, req.TLVs[0].Value)

	reply := NewResponse(ServiceCTL, 0, 1, MessageCTLAllocateClientID, []TLV{
		{Type: 0x01, Value: []byte{0x02, 0x07}},
	})
	service, cid, err := ParseAllocateClientIDReply(reply)
	require.NoError(t, err)
	assert.Equal(t, ServiceDMS, service)
	assert.Equal(t, uint8(7), cid)
	require.NoError(t, CheckAllocationEchoesService(ServiceDMS, service))
}

// Worked example 8.4: a result TLV with status=1, error=14 must surface
// as a protocol error with numeric code 14.
func TestResultTLVFailureWorkedExample(t *testing.T) {
	m := NewResponse(ServiceWDS, 1, 5, 0x0020, []TLV{EncodeResult(ResultFailure, 14)})
	err, ok := m.Result()
	require.True(t, ok)
	require.Error(t, err)

	var protoErr ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, ProtocolError(14), protoErr)
	assert.Equal(t, ErrCallFailed, protoErr)
}

func TestResultSuccessYieldsNilError(t *testing.T) {
	m := NewResponse(ServiceWDS, 1, 5, 0x0020, []TLV{EncodeResult(ResultSuccess, 0)})
	err, ok := m.Result()
	require.True(t, ok)
	assert.NoError(t, err)
}

func TestResultAbsentWhenNoResultTLV(t *testing.T) {
	m := NewResponse(ServiceWDS, 1, 5, 0x0020, nil)
	_, ok := m.Result()
	assert.False(t, ok)
}

func TestDumpNeverFails(t *testing.T) {
	m := NewResponse(ServiceDMS, 7, 5, 0x0020, []TLV{
		EncodeResult(ResultFailure, uint16(ErrCallFailed)),
		{Type: 0x10, Value: []byte{1, 2, 3}},
	})
	out := m.Dump()
	assert.Contains(t, out, "Service:")
	assert.Contains(t, out, "TLV 0x02")
}
