package schema

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// timestampDigits zero-pads the Unix-epoch-seconds prefix of a msg_id so
// that lexicographic and numeric ordering coincide for the full uint64
// range (math.MaxUint64 is 20 decimal digits).
const timestampDigits = 20

// uuidLen is the length of uuid.NewString()'s canonical hyphenated form.
const uuidLen = 36

// NewMsgID builds a msg_id from a creation timestamp (Unix seconds) and a
// fresh random UUID. The timestamp orders messages temporally; the UUID
// breaks ties between messages committed within the same second.
func NewMsgID(timestampSecs uint64) []byte {
	return EncodeMsgID(timestampSecs, uuid.NewString())
}

// EncodeMsgID builds a msg_id from an explicit timestamp and UUID string.
// NewMsgID calls it with a fresh random UUID.
func EncodeMsgID(timestampSecs uint64, id string) []byte {
	return []byte(fmt.Sprintf("%0*d%s", timestampDigits, timestampSecs, id))
}

// DecodeMsgID splits a msg_id back into its timestamp and UUID parts.
func DecodeMsgID(msgID []byte) (timestampSecs uint64, id string, err error) {
	if len(msgID) != timestampDigits+uuidLen {
		return 0, "", fmt.Errorf("malformed msg_id %q: unexpected length %d", msgID, len(msgID))
	}
	ts, err := strconv.ParseUint(string(msgID[:timestampDigits]), 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("malformed msg_id %q: %w", msgID, err)
	}
	return ts, string(msgID[timestampDigits:]), nil
}
