package util

import (
	"encoding/binary"
	"hash/fnv"
)

// GenerateID returns a 64-bit FNV-1a hash of the given payload string.
func GenerateID(payload string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(payload))
	return h.Sum64()
}

// GeneratePage fills buf with a deterministic pattern derived from seed and
// pageNum. The same inputs always produce the same bytes, so benchmarks and
// tests can verify page contents without keeping a copy around.
func GeneratePage(buf []byte, seed uint64, pageNum uint64) {
	var word [8]byte
	state := seed ^ pageNum*0x9E3779B97F4A7C15
	for i := 0; i < len(buf); i += 8 {
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		binary.BigEndian.PutUint64(word[:], state)
		copy(buf[i:], word[:])
	}
}
