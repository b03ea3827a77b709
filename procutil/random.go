package procutil

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// GenerateRandomBytes returns howmany random bytes, drawn from a run of
// random (version 4) UUIDs rather than reading crypto/rand directly. The
// UUID version and variant bits are kept, so bytes 6 and 8 of every
// 16-byte block are only partly random.
func GenerateRandomBytes(howmany int) []byte {
	out := make([]byte, 0, howmany)
	for len(out) < howmany {
		u := uuid.New()
		out = append(out, u[:]...)
	}
	return out[:howmany]
}

// HexEncodeBytes hex-encodes bytes.
func HexEncodeBytes(bytes []byte) string {
	return hex.EncodeToString(bytes)
}

// GenHexRandom returns the hex encoding of nrBytes random bytes.
func GenHexRandom(nrBytes int) string {
	return HexEncodeBytes(GenerateRandomBytes(nrBytes))
}
