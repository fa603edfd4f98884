package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MaxVectorDim bounds the dimensionality accepted when decoding a vector
const MaxVectorDim = 1 << 16

// Vector is a fixed-dimensionality, L2-normalized term vector.
// A zero vector means the text had no usable tokens.
type Vector []float32

// sparseVector is the stored form: hashed TF vectors are mostly zeros,
// so only non-zero buckets are written.
type sparseVector struct {
	Dim int       `json:"dim"`
	Idx []int     `json:"idx"`
	Val []float32 `json:"val"`
}

// IsZero reports whether every component is zero
func (v Vector) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the vector in sparse form
func (v Vector) MarshalJSON() ([]byte, error) {
	sv := sparseVector{Dim: len(v), Idx: []int{}, Val: []float32{}}
	for i, x := range v {
		if x != 0 {
			sv.Idx = append(sv.Idx, i)
			sv.Val = append(sv.Val, x)
		}
	}
	return json.Marshal(sv)
}

// UnmarshalJSON accepts the sparse form or a dense array
func (v *Vector) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*v = nil
		return nil
	}

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var dense []float32
		if err := json.Unmarshal(trimmed, &dense); err != nil {
			return fmt.Errorf("failed to decode dense vector: %w", err)
		}
		if len(dense) > MaxVectorDim {
			return fmt.Errorf("dense vector has %d dimensions, max %d", len(dense), MaxVectorDim)
		}
		*v = dense
		return nil
	}

	var sv sparseVector
	if err := json.Unmarshal(trimmed, &sv); err != nil {
		return fmt.Errorf("failed to decode sparse vector: %w", err)
	}
	if len(sv.Idx) != len(sv.Val) {
		return fmt.Errorf("sparse vector has %d indices but %d values", len(sv.Idx), len(sv.Val))
	}

	if sv.Dim < 0 || sv.Dim > MaxVectorDim {
		return fmt.Errorf("sparse vector dimension %d out of range [0,%d]", sv.Dim, MaxVectorDim)
	}

	out := make(Vector, sv.Dim)
	for i, idx := range sv.Idx {
		if idx < 0 || idx >= sv.Dim {
			return fmt.Errorf("sparse vector index %d out of range [0,%d)", idx, sv.Dim)
		}
		out[idx] = sv.Val[i]
	}
	*v = out
	return nil
}
