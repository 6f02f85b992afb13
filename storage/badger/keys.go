package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/catalogit/core"
)

// Key prefixes for different data types
const (
	productRecordPrefix  = "prod"
	productCategoryIndex = "prodcat"
	productIDSeq         = "prodseq"

	// categorySeparator terminates the category value inside a category
	// index key. Core validation rejects categories containing NUL, so the
	// separator position is unambiguous, and because NUL sorts before every
	// other byte the members of "go" always precede those of "golang".
	categorySeparator = 0x00
)

// makeProductKey generates a key for a product record by ID.
func makeProductKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", productRecordPrefix, id))
}

// makeCategoryIndexKey generates a composite key for the category index.
// Format: prefix:category<sep><id>
// The id is written in BigEndian order so members of a category iterate in
// ascending id order.
func makeCategoryIndexKey(category string, id core.ID) []byte {
	prefix := makeCategoryIndexPrefix(category)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeCategoryIndexPrefix generates the partial key covering all members of
// a category. Format: prefix:category<sep>
func makeCategoryIndexPrefix(category string) []byte {
	prefix := productCategoryIndex + ":"
	buf := make([]byte, len(prefix)+len(category)+1)
	offset := copy(buf, prefix)
	offset += copy(buf[offset:], category)
	buf[offset] = categorySeparator
	return buf
}

// makeCategoryIndexSeekAfter generates the smallest key sorting after every
// member of a category. Used to skip a whole category entry in one seek when
// enumerating distinct categories.
func makeCategoryIndexSeekAfter(category string) []byte {
	buf := makeCategoryIndexPrefix(category)
	buf[len(buf)-1] = categorySeparator + 1
	return buf
}

// parseCategoryIndexKey extracts the category and id from a category index
// key. Returns false if the key is not a well-formed category index key.
func parseCategoryIndexKey(key []byte) (string, core.ID, bool) {
	prefix := productCategoryIndex + ":"
	// prefix + at least the separator + 8 id bytes
	if len(key) < len(prefix)+9 || string(key[:len(prefix)]) != prefix {
		return "", 0, false
	}
	sep := len(key) - 9
	if key[sep] != categorySeparator {
		return "", 0, false
	}
	category := string(key[len(prefix):sep])
	id := core.ID(binary.BigEndian.Uint64(key[sep+1:]))
	return category, id, true
}
