package domain

import "fmt"

// Device labels where a tensor's data lives. Placement is an attribute that
// propagates through computations; moving between devices is a relabeling
// copy, never a mutation of the source.
type Device string

// DeviceCPU is the default device for freshly allocated tensors.
const DeviceCPU Device = "cpu"

// Tensor is a dense, row-major float64 array. The two trailing axes are
// treated as a matrix; any leading axes are batch axes. Engines treat their
// input tensors as read-only and return freshly allocated results.
type Tensor struct {
	shape  []int
	data   []float64
	device Device
}

// New allocates a zero-filled tensor with the given shape on the CPU device.
// It panics if the shape is empty or contains a non-positive dimension;
// shapes are fixed by the caller's code, not by runtime input.
func New(shape ...int) *Tensor {
	size := checkShape(shape)
	return &Tensor{
		shape:  append([]int(nil), shape...),
		data:   make([]float64, size),
		device: DeviceCPU,
	}
}

// FromSlice builds a tensor that copies data into the given shape. Unlike
// New it reports invalid shapes as errors, since the shape may come from
// untrusted input.
func FromSlice(data []float64, shape ...int) (*Tensor, error) {
	if len(shape) == 0 {
		return nil, fmt.Errorf("tensor shape must have at least one dimension")
	}
	size := 1
	for _, d := range shape {
		if d <= 0 {
			return nil, fmt.Errorf("invalid tensor dimension %d", d)
		}
		size *= d
	}
	if len(data) != size {
		return nil, fmt.Errorf("tensor data has %d values, shape %v needs %d", len(data), shape, size)
	}
	t := New(shape...)
	copy(t.data, data)
	return t, nil
}

// Eye returns the n-by-n identity matrix.
func Eye(n int) *Tensor {
	t := New(n, n)
	for i := 0; i < n; i++ {
		t.data[i*n+i] = 1
	}
	return t
}

func checkShape(shape []int) int {
	if len(shape) == 0 {
		panic("domain: tensor shape must have at least one dimension")
	}
	size := 1
	for _, d := range shape {
		if d <= 0 {
			panic(fmt.Sprintf("domain: invalid tensor dimension %d", d))
		}
		size *= d
	}
	return size
}

// Shape returns a copy of the tensor's shape.
func (t *Tensor) Shape() []int {
	return append([]int(nil), t.shape...)
}

// Rank returns the number of axes.
func (t *Tensor) Rank() int { return len(t.shape) }

// Size returns the total number of elements.
func (t *Tensor) Size() int { return len(t.data) }

// Data returns the underlying storage. Callers must not modify it unless
// they own the tensor.
func (t *Tensor) Data() []float64 { return t.data }

// Device returns the device label.
func (t *Tensor) Device() Device { return t.device }

// To returns a copy of the tensor relabeled onto the given device. The
// receiver is untouched.
func (t *Tensor) To(d Device) *Tensor {
	c := t.Clone()
	c.device = d
	return c
}

// Clone returns a deep copy on the same device.
func (t *Tensor) Clone() *Tensor {
	c := &Tensor{
		shape:  append([]int(nil), t.shape...),
		data:   append([]float64(nil), t.data...),
		device: t.device,
	}
	return c
}

// MatShape returns the trailing matrix dimensions (M, N). The tensor must
// have rank >= 2.
func (t *Tensor) MatShape() (m, n int) {
	if len(t.shape) < 2 {
		panic(fmt.Sprintf("domain: rank %d tensor has no matrix axes", len(t.shape)))
	}
	return t.shape[len(t.shape)-2], t.shape[len(t.shape)-1]
}

// NumMats returns the number of trailing matrices, i.e. the product of the
// batch axes. The tensor must have rank >= 2.
func (t *Tensor) NumMats() int {
	m, n := t.MatShape()
	return len(t.data) / (m * n)
}

// Mat returns the storage of the i-th trailing matrix.
func (t *Tensor) Mat(i int) []float64 {
	m, n := t.MatShape()
	return t.data[i*m*n : (i+1)*m*n]
}

// LastDim returns the size of the last axis.
func (t *Tensor) LastDim() int { return t.shape[len(t.shape)-1] }

// NumVecs returns the number of trailing vectors along the last axis.
func (t *Tensor) NumVecs() int { return len(t.data) / t.LastDim() }

// Vec returns the storage of the i-th trailing vector.
func (t *Tensor) Vec(i int) []float64 {
	n := t.LastDim()
	return t.data[i*n : (i+1)*n]
}

// At returns the element at the given multi-axis index.
func (t *Tensor) At(idx ...int) float64 {
	return t.data[t.offset(idx)]
}

// Set assigns the element at the given multi-axis index.
func (t *Tensor) Set(v float64, idx ...int) {
	t.data[t.offset(idx)] = v
}

func (t *Tensor) offset(idx []int) int {
	if len(idx) != len(t.shape) {
		panic(fmt.Sprintf("domain: index rank %d does not match tensor rank %d", len(idx), len(t.shape)))
	}
	off := 0
	for i, ix := range idx {
		if ix < 0 || ix >= t.shape[i] {
			panic(fmt.Sprintf("domain: index %d out of range for axis %d of size %d", ix, i, t.shape[i]))
		}
		off = off*t.shape[i] + ix
	}
	return off
}

// SameShape reports whether the two tensors have identical shapes.
func (t *Tensor) SameShape(o *Tensor) bool {
	if len(t.shape) != len(o.shape) {
		return false
	}
	for i := range t.shape {
		if t.shape[i] != o.shape[i] {
			return false
		}
	}
	return true
}

// Scale returns t multiplied elementwise by s.
func (t *Tensor) Scale(s float64) *Tensor {
	c := t.Clone()
	for i := range c.data {
		c.data[i] *= s
	}
	return c
}

// Neg returns the elementwise negation of t.
func (t *Tensor) Neg() *Tensor {
	return t.Scale(-1)
}

// Sub returns t - o. Shapes must match.
func (t *Tensor) Sub(o *Tensor) (*Tensor, error) {
	if !t.SameShape(o) {
		return nil, fmt.Errorf("shape mismatch: %v vs %v", t.shape, o.shape)
	}
	c := t.Clone()
	for i := range c.data {
		c.data[i] -= o.data[i]
	}
	return c, nil
}

// Add sums the given tensors elementwise. Shapes must match and at least
// one tensor must be supplied; the result inherits the first one's device.
func Add(ts ...*Tensor) (*Tensor, error) {
	if len(ts) == 0 {
		return nil, fmt.Errorf("nothing to add")
	}
	c := ts[0].Clone()
	for _, o := range ts[1:] {
		if !c.SameShape(o) {
			return nil, fmt.Errorf("shape mismatch: %v vs %v", c.shape, o.shape)
		}
		for i := range c.data {
			c.data[i] += o.data[i]
		}
	}
	return c, nil
}
