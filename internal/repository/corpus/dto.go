package corpus

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/kailas-cloud/pageqa/internal/domain"
)

const (
	fieldText   = "text"
	fieldVector = "__vector"

	metaFieldDim = "dim"
)

// recordToHash converts a domain Record into a flat map[string]string for HSET.
func recordToHash(rec domain.Record) map[string]string {
	return map[string]string{
		fieldText:   rec.Text,
		fieldVector: vectorToBytes(rec.Vector),
	}
}

func metaToHash(dim int) map[string]string {
	return map[string]string{
		metaFieldDim: strconv.Itoa(dim),
	}
}

func dimFromMeta(meta map[string]string) (int, error) {
	dim, err := strconv.Atoi(meta[metaFieldDim])
	if err != nil || dim <= 0 {
		return 0, fmt.Errorf("corrupt collection meta: bad dimension %q", meta[metaFieldDim])
	}
	return dim, nil
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
