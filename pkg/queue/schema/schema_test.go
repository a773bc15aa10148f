package schema_test

import (
	"testing"

	"github.com/chris-alexander-pop/persiqueue/pkg/datastructures/set"
	"github.com/chris-alexander-pop/persiqueue/pkg/queue/schema"
	"github.com/stretchr/testify/require"
)

func TestMsgIDRoundTrip(t *testing.T) {
	id := schema.NewMsgID(1700000000)
	ts, uid, err := schema.DecodeMsgID(id)
	require.NoError(t, err)
	require.Equal(t, uint64(1700000000), ts)
	require.Len(t, uid, 36)
}

func TestMsgIDOrderingByTimestamp(t *testing.T) {
	earlier := schema.NewMsgID(1000)
	later := schema.NewMsgID(2000)
	require.Less(t, string(earlier), string(later))
}

func TestMsgIDSameTimestampOrderedByUUID(t *testing.T) {
	a := schema.EncodeMsgID(1000, "00000000-0000-0000-0000-000000000001")
	b := schema.EncodeMsgID(1000, "00000000-0000-0000-0000-000000000002")
	require.Less(t, string(a), string(b))
}

func TestDecodeMsgIDRejectsMalformed(t *testing.T) {
	_, _, err := schema.DecodeMsgID([]byte("too-short"))
	require.Error(t, err)
}

func TestEncodeDecodeUint64(t *testing.T) {
	got, err := schema.DecodeUint64(schema.EncodeUint64(65536))
	require.NoError(t, err)
	require.Equal(t, uint64(65536), got)
}

func TestEncodeDecodeInt(t *testing.T) {
	got, err := schema.DecodeInt(schema.EncodeInt(3))
	require.NoError(t, err)
	require.Equal(t, 3, got)
}

func TestSubscriberIDsRoundTrip(t *testing.T) {
	ids := set.New[string]("sub2", "sub1", "sub3")
	encoded := schema.EncodeSubscriberIDs(ids)
	require.Equal(t, "sub1 sub2 sub3", string(encoded))

	decoded := schema.DecodeSubscriberIDs(encoded)
	require.True(t, decoded.Contains("sub1"))
	require.True(t, decoded.Contains("sub2"))
	require.True(t, decoded.Contains("sub3"))
	require.Equal(t, 3, decoded.Len())
}

func TestDecodeEmptySubscriberIDs(t *testing.T) {
	decoded := schema.DecodeSubscriberIDs([]byte(""))
	require.Equal(t, 0, decoded.Len())
}
