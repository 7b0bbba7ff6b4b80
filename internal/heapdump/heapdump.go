// Package heapdump writes the array heap left behind by a run as canonical
// CBOR, so two runs of the same program produce identical bytes.
package heapdump

import (
	"fmt"
	"io"
	"os"

	"teenyjvm/pkg/interpreter"

	"github.com/fxamacker/cbor/v2"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("heapdump: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Snapshot is every array on the heap in handle order.
type Snapshot struct {
	Arrays []Array `cbor:"arrays"`
}

// Array is one heap array without its length prefix.
type Array struct {
	Handle   int32   `cbor:"handle"`
	Length   int32   `cbor:"length"`
	Elements []int32 `cbor:"elements"`
}

// Take copies the contents of h.
func Take(h *interpreter.Heap) *Snapshot {
	s := &Snapshot{Arrays: make([]Array, 0, h.Len())}
	h.Each(func(handle int32, elements []int32) {
		s.Arrays = append(s.Arrays, Array{
			Handle:   handle,
			Length:   int32(len(elements)),
			Elements: append([]int32{}, elements...),
		})
	})
	return s
}

// Marshal serializes a Snapshot to CBOR bytes.
func Marshal(s *Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// Unmarshal deserializes a Snapshot from CBOR bytes.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("heapdump: unmarshal snapshot: %w", err)
	}
	return &s, nil
}

// Write encodes a snapshot of h to w.
func Write(w io.Writer, h *interpreter.Heap) error {
	data, err := Marshal(Take(h))
	if err != nil {
		return fmt.Errorf("heapdump: marshal snapshot: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// Read decodes a snapshot written by Write.
func Read(r io.Reader) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

// WriteFile writes a snapshot of h to path, replacing any existing file.
func WriteFile(path string, h *interpreter.Heap) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, h); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
