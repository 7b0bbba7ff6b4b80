package interpreter

import "fmt"

// Heap stores integer arrays addressed by handle. A handle is the index of
// the array in allocation order. Arrays are never freed: there is no
// collector, so every allocation lives until the process exits.
//
// Each stored array is prefixed with its length: element 0 holds the
// declared length and elements 1..length hold the payload.
type Heap struct {
	arrays [][]int32
}

// NewHeap creates an empty heap.
func NewHeap() *Heap {
	return &Heap{}
}

// Allocate creates a zeroed array of the given length and returns its handle.
func (h *Heap) Allocate(length int32) (int32, error) {
	if length < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativeArraySize, length)
	}

	arr := make([]int32, int(length)+1)
	arr[0] = length
	h.arrays = append(h.arrays, arr)

	return int32(len(h.arrays) - 1), nil
}

// Array returns the length-prefixed storage behind a handle.
func (h *Heap) Array(handle int32) ([]int32, error) {
	if handle < 0 || int(handle) >= len(h.arrays) {
		return nil, fmt.Errorf("%w: %d (%d allocated)", ErrInvalidHandle, handle, len(h.arrays))
	}
	return h.arrays[handle], nil
}

// Length returns the declared length of an array.
func (h *Heap) Length(handle int32) (int32, error) {
	arr, err := h.Array(handle)
	if err != nil {
		return 0, err
	}
	return arr[0], nil
}

// Load reads element index of an array.
func (h *Heap) Load(handle, index int32) (int32, error) {
	arr, err := h.element(handle, index)
	if err != nil {
		return 0, err
	}
	return arr[index+1], nil
}

// Store writes element index of an array.
func (h *Heap) Store(handle, index, value int32) error {
	arr, err := h.element(handle, index)
	if err != nil {
		return err
	}
	arr[index+1] = value
	return nil
}

func (h *Heap) element(handle, index int32) ([]int32, error) {
	arr, err := h.Array(handle)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= arr[0] {
		return nil, fmt.Errorf("%w: index %d, length %d", ErrArrayIndexOutOfBounds, index, arr[0])
	}
	return arr, nil
}

// Len returns the number of arrays allocated so far.
func (h *Heap) Len() int {
	return len(h.arrays)
}

// Each calls fn for every array in handle order with its payload elements.
func (h *Heap) Each(fn func(handle int32, elements []int32)) {
	for i, arr := range h.arrays {
		fn(int32(i), arr[1:])
	}
}
