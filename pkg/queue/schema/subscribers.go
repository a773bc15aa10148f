package schema

import (
	"strings"

	"github.com/chris-alexander-pop/persiqueue/pkg/datastructures/set"
)

// EncodeSubscriberIDs renders a subscriber-id set as the space-separated
// token list stored at queue_db[subscriber_ids], in sorted order for a
// deterministic on-disk representation.
func EncodeSubscriberIDs(ids *set.Set[string]) []byte {
	return []byte(strings.Join(set.SortedList(ids), " "))
}

// DecodeSubscriberIDs parses the space-separated token list back into a
// set. An empty or whitespace-only value decodes to an empty set.
func DecodeSubscriberIDs(b []byte) *set.Set[string] {
	s := set.New[string]()
	for _, tok := range strings.Fields(string(b)) {
		s.Add(tok)
	}
	return s
}
