package cache

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
)

// VectorCache stores embedding vectors in a Store as little-endian float64s
type VectorCache struct {
	store Store
}

// NewVectorCache wraps store
func NewVectorCache(store Store) *VectorCache {
	return &VectorCache{store: store}
}

// Get returns the cached vector for key
func (c *VectorCache) Get(ctx context.Context, key string) ([]float64, bool, error) {
	data, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	vec, err := DecodeVector(data)
	if err != nil {
		return nil, false, err
	}
	return vec, true, nil
}

// Set caches vec under key
func (c *VectorCache) Set(ctx context.Context, key string, vec []float64) error {
	return c.store.Set(ctx, key, EncodeVector(vec))
}

// EncodeVector packs vec into 8 bytes per component
func EncodeVector(vec []float64) []byte {
	buf := make([]byte, 8*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

// DecodeVector reverses EncodeVector
func DecodeVector(data []byte) ([]float64, error) {
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("vector payload of %d bytes is not a multiple of 8", len(data))
	}
	vec := make([]float64, len(data)/8)
	for i := range vec {
		vec[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return vec, nil
}
