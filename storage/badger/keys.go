package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/halcyard/visimil/core"
)

// Key prefixes for different data types
const (
	imageRecordPrefix     = "imgrec"
	imageRecordTimePrefix = "imgrect"
)

// makeImageRecordKey generates a key for an image record by ID.
func makeImageRecordKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", imageRecordPrefix, id))
}

// makeImageTimeKey generates a composite key for the timestamp index.
// Format: prefix:timestamp:id
func makeImageTimeKey(timestamp time.Time, id core.ID) []byte {
	prefix := imageRecordTimePrefix + ":"
	prefixBytes := []byte(prefix)
	totalSize := len(prefixBytes) + 16 // 8 bytes for timestamp + 8 bytes for ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}
