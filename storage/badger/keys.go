package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/feria/core"
)

// Key prefixes for different data types
const (
	itemRecordPrefix   = "itmrec"
	itemIDSeq          = "itmrecseq"
	provincePrefix     = "georecp"
	provinceNamePrefix = "geonamp"
	localityPrefix     = "georecl"
	localityNamePrefix = "geonaml"
	localityProvPrefix = "geoprov"
	sellerRecordPrefix = "selrec"
	sellerContactPrefix = "selcon"
)

// makeItemKey generates a key for an item by ID.
// IDs are encoded BigEndian so key iteration follows ID order.
func makeItemKey(id core.ID) []byte {
	prefix := itemRecordPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeProvinceKey generates a key for a province by ID.
func makeProvinceKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", provincePrefix, id))
}

// makeProvinceNameKey generates a lookup key for a province by name.
func makeProvinceNameKey(name string) []byte {
	return []byte(provinceNamePrefix + ":" + name)
}

// makeLocalityKey generates a key for a locality by ID.
func makeLocalityKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", localityPrefix, id))
}

// makeLocalityNameKey generates a lookup key for a locality by name.
func makeLocalityNameKey(name string) []byte {
	return []byte(localityNamePrefix + ":" + name)
}

// makeLocalityProvinceKey generates a composite key for the
// province -> locality index. Format: prefix:provinceID:localityID
func makeLocalityProvinceKey(provinceId, localityId core.ID) []byte {
	prefix := localityProvPrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(provinceId))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(localityId))
	return buf
}

// makePartialLocalityProvinceKey generates a partial key for scanning one
// province's localities.
func makePartialLocalityProvinceKey(provinceId core.ID) []byte {
	prefix := localityProvPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(provinceId))
	return buf
}

// makeSellerKey generates a key for a seller by ID.
func makeSellerKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", sellerRecordPrefix, id))
}

// makeSellerContactKey generates a lookup key for a seller by contact handle.
func makeSellerContactKey(contact string) []byte {
	return []byte(sellerContactPrefix + ":" + contact)
}
