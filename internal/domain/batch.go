package domain

// Modality identifies which encoder produced an embedding batch.
type Modality string

const (
	ModalityImage    Modality = "image"
	ModalityText     Modality = "text"
	ModalitySemantic Modality = "semantic"
)

// EmbeddingBatch is a named batch of embeddings produced by a frozen
// encoder, one row per item, stored for later target computation.
type EmbeddingBatch struct {
	ID       string
	Dataset  string
	Modality Modality
	Tensor   *Tensor
}

// TargetPair holds the soft distillation targets computed for an
// image/text batch pair.
type TargetPair struct {
	ID    string
	Image *Tensor
	Text  *Tensor
}

// TensorList pairs a sequence of tensors with an explicit device field.
// Consumers read the device from the value instead of relying on shared
// mutable state.
type TensorList struct {
	Items  []*Tensor
	Device Device
}

// NewTensorList collects tensors into a CPU-resident list.
func NewTensorList(items ...*Tensor) TensorList {
	return TensorList{Items: items, Device: DeviceCPU}
}

// To returns a copy of the list with every element moved to d.
func (l TensorList) To(d Device) TensorList {
	moved := TensorList{Items: make([]*Tensor, len(l.Items)), Device: d}
	for i, t := range l.Items {
		moved.Items[i] = t.To(d)
	}
	return moved
}
