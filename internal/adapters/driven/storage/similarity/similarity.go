// Package similarity holds the vector math shared by the index backends.
package similarity

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
)

// CosineDistance returns 1 - cosine similarity of a and b.
// Vectors of different length or zero norm are maximally distant from everything.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// Rank orders hits closest first and keeps at most k.
// Hits must be supplied in insertion order; equal distances keep that order.
func Rank(hits []domain.Hit, k int) []domain.Hit {
	if k <= 0 || len(hits) == 0 {
		return nil
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// Encode converts a vector to a little-endian byte slice for storage.
func Encode(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Decode converts a byte slice produced by Encode back to a vector.
func Decode(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
