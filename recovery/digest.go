package recovery

import (
	"encoding/binary"
	"math"

	"github.com/decred/dcrd/crypto/blake256"

	"github.com/xsrecover/xsrecover"
)

// DigestSize is the size of a Digest.
const DigestSize = blake256.Size

// Digest identifies the parameters and samples a result was recovered from.
type Digest [DigestSize]byte

// Fingerprint hashes everything that decides the result of recovering samples
// under p. Labels do not take part.
func Fingerprint(p xsrecover.Params, samples []xsrecover.Sample) Digest {
	b := make([]byte, 0, 5*8+len(samples)*9)
	b = binary.BigEndian.AppendUint64(b, uint64(p.Window))
	b = binary.BigEndian.AppendUint64(b, uint64(p.BlockSize))
	b = binary.BigEndian.AppendUint64(b, uint64(p.SearchBound))
	b = binary.BigEndian.AppendUint64(b, math.Float64bits(p.ClampFloor))
	b = binary.BigEndian.AppendUint64(b, math.Float64bits(p.ClampCeiling))

	for _, s := range samples {
		if !s.Known {
			b = append(b, 0)
			continue
		}
		b = append(b, 1)
		b = binary.BigEndian.AppendUint64(b, math.Float64bits(s.Value))
	}

	return blake256.Sum256(b)
}
