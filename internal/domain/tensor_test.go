package domain

import (
	"math"
	"testing"
)

func TestFromSliceValidatesShape(t *testing.T) {
	if _, err := FromSlice([]float64{1, 2, 3}, 2, 2); err == nil {
		t.Fatal("expected error for data/shape mismatch")
	}
	if _, err := FromSlice([]float64{1}, 0); err == nil {
		t.Fatal("expected error for zero dimension")
	}
	if _, err := FromSlice(nil); err == nil {
		t.Fatal("expected error for empty shape")
	}

	tensor, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tensor.At(1, 2); got != 6 {
		t.Errorf("At(1,2) = %v, want 6", got)
	}
}

func TestIndexing(t *testing.T) {
	tensor := New(2, 3, 4)
	tensor.Set(7.5, 1, 2, 3)
	if got := tensor.At(1, 2, 3); got != 7.5 {
		t.Errorf("At(1,2,3) = %v, want 7.5", got)
	}
	if got := tensor.Data()[1*12+2*4+3]; got != 7.5 {
		t.Errorf("row-major offset holds %v, want 7.5", got)
	}

	if m, n := tensor.MatShape(); m != 3 || n != 4 {
		t.Errorf("MatShape() = (%d, %d), want (3, 4)", m, n)
	}
	if got := tensor.NumMats(); got != 2 {
		t.Errorf("NumMats() = %d, want 2", got)
	}
	if got := len(tensor.Mat(1)); got != 12 {
		t.Errorf("len(Mat(1)) = %d, want 12", got)
	}
	if got := tensor.NumVecs(); got != 6 {
		t.Errorf("NumVecs() = %d, want 6", got)
	}
}

func TestEye(t *testing.T) {
	eye := Eye(3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if got := eye.At(i, j); got != want {
				t.Errorf("Eye(3)[%d][%d] = %v, want %v", i, j, got, want)
			}
		}
	}
}

func TestElementwiseOps(t *testing.T) {
	a, _ := FromSlice([]float64{1, 2, 3, 4}, 2, 2)
	b, _ := FromSlice([]float64{4, 3, 2, 1}, 2, 2)

	sum, err := Add(a, b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	for _, v := range sum.Data() {
		if v != 5 {
			t.Fatalf("Add result = %v, want all 5", sum.Data())
		}
	}

	diff, err := a.Sub(b)
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	if got := diff.At(0, 0); got != -3 {
		t.Errorf("Sub[0][0] = %v, want -3", got)
	}

	if got := a.Scale(2).At(1, 1); got != 8 {
		t.Errorf("Scale(2)[1][1] = %v, want 8", got)
	}
	if got := a.Neg().At(0, 1); got != -2 {
		t.Errorf("Neg[0][1] = %v, want -2", got)
	}

	// Inputs stay untouched.
	if got := a.At(0, 0); got != 1 {
		t.Errorf("input mutated: a[0][0] = %v, want 1", got)
	}

	c := New(3, 3)
	if _, err := Add(a, c); err == nil {
		t.Error("expected shape mismatch error from Add")
	}
	if _, err := a.Sub(c); err == nil {
		t.Error("expected shape mismatch error from Sub")
	}
}

func TestDeviceMove(t *testing.T) {
	tensor, _ := FromSlice([]float64{1, 2}, 2)
	if tensor.Device() != DeviceCPU {
		t.Fatalf("new tensor on %q, want %q", tensor.Device(), DeviceCPU)
	}

	moved := tensor.To(Device("cuda:0"))
	if moved.Device() != Device("cuda:0") {
		t.Errorf("moved tensor on %q, want cuda:0", moved.Device())
	}
	if tensor.Device() != DeviceCPU {
		t.Error("To mutated the source tensor's device")
	}
	if math.Abs(moved.At(1)-2) > 0 {
		t.Error("To changed tensor data")
	}
}

func TestTensorListMove(t *testing.T) {
	a := New(2, 2)
	b := New(3, 3)
	list := NewTensorList(a, b)
	if list.Device != DeviceCPU {
		t.Fatalf("new list on %q, want %q", list.Device, DeviceCPU)
	}

	moved := list.To(Device("cuda:1"))
	if moved.Device != Device("cuda:1") {
		t.Errorf("moved list on %q, want cuda:1", moved.Device)
	}
	for i, item := range moved.Items {
		if item.Device() != Device("cuda:1") {
			t.Errorf("item %d on %q, want cuda:1", i, item.Device())
		}
	}
	if list.Items[0].Device() != DeviceCPU {
		t.Error("To mutated the source list's items")
	}
}
