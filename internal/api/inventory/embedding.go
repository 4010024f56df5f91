package inventory

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/BHUWON12/ztraveler/app/rdb"
)

// Embed turns text into a fixed-length query vector. It is a
// deterministic stand-in for a real embedding model: the same text
// always yields the same vector, which is all the KNN contract needs.
func Embed(text string) []float32 {
	if text == "" {
		text = "empty"
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	vec := make([]float32, rdb.EmbeddingDim)
	for i := range vec {
		vec[i] = rng.Float32()
	}
	return vec
}

// VectorBlob encodes a vector as the little-endian FLOAT32 byte string
// RediSearch expects for KNN query parameters.
func VectorBlob(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}
