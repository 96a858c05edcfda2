package loss

import (
	"errors"
	"math"
	"strings"
	"testing"

	"distill/internal/domain"
	"distill/internal/similarity"
)

func TestParseReduction(t *testing.T) {
	cases := map[string]Reduction{
		"mean":    ReductionMean,
		"average": ReductionMean,
		"avg":     ReductionMean,
		"sum":     ReductionSum,
		"add":     ReductionSum,
		"none":    ReductionNone,
	}
	for keyword, want := range cases {
		got, err := ParseReduction(keyword)
		if err != nil {
			t.Errorf("ParseReduction(%q): %v", keyword, err)
			continue
		}
		if got != want {
			t.Errorf("ParseReduction(%q) = %v, want %v", keyword, got, want)
		}
	}
}

func TestParseReductionUnknown(t *testing.T) {
	_, err := ParseReduction("invalid")
	if err == nil {
		t.Fatal("expected error for unknown reduction")
	}

	var argErr *domain.ArgumentError
	if !errors.As(err, &argErr) {
		t.Fatalf("error is %T, want *domain.ArgumentError", err)
	}
	for _, keyword := range []string{"mean", "average", "avg", "sum", "add", "none"} {
		if !strings.Contains(err.Error(), keyword) {
			t.Errorf("error message %q does not list %q", err.Error(), keyword)
		}
	}
}

// 1x1 matrices with errors 0, 1 and 4 against the reference.
func testMatrices(t *testing.T) similarity.SemanticMatrices {
	t.Helper()
	ii, _ := domain.FromSlice([]float64{0}, 1, 1)
	it, _ := domain.FromSlice([]float64{1}, 1, 1)
	ttClip, _ := domain.FromSlice([]float64{2}, 1, 1)
	ttSem, _ := domain.FromSlice([]float64{0}, 1, 1)
	return similarity.SemanticMatrices{II: ii, IT: it, TTClip: ttClip, TTSemantic: ttSem}
}

func TestMSESimilaritiesNone(t *testing.T) {
	out, err := ComputeMSESimilarities(testMatrices(t), ReductionNone, Options{})
	if err != nil {
		t.Fatalf("ComputeMSESimilarities: %v", err)
	}

	if out.Size() != 3 {
		t.Fatalf("unreduced output has %d elements, want 3", out.Size())
	}
	want := []float64{0, 1, 4}
	for i, v := range out.Data() {
		if v != want[i] {
			t.Errorf("error vector[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestMSESimilaritiesMean(t *testing.T) {
	out, err := ComputeMSESimilarities(testMatrices(t), ReductionMean, Options{})
	if err != nil {
		t.Fatalf("ComputeMSESimilarities: %v", err)
	}
	if got, want := out.Data()[0], (0.0+1.0+4.0)/3; got != want {
		t.Errorf("mean reduction = %v, want %v", got, want)
	}
}

func TestMSESimilaritiesSum(t *testing.T) {
	out, err := ComputeMSESimilarities(testMatrices(t), ReductionSum, Options{})
	if err != nil {
		t.Fatalf("ComputeMSESimilarities: %v", err)
	}
	if got := out.Data()[0]; got != 5 {
		t.Errorf("sum reduction = %v, want 5", got)
	}
}

func TestMSESimilaritiesLegacySum(t *testing.T) {
	out, err := ComputeMSESimilarities(testMatrices(t), ReductionSum, Options{LegacySum: true})
	if err != nil {
		t.Fatalf("ComputeMSESimilarities: %v", err)
	}
	if got, want := out.Data()[0], (0.0+1.0+4.0)/3; got != want {
		t.Errorf("legacy sum reduction = %v, want the mean %v", got, want)
	}
}

func TestMSESimilaritiesShapeMismatch(t *testing.T) {
	m := testMatrices(t)
	m.TTSemantic = domain.New(2, 2)
	if _, err := ComputeMSESimilarities(m, ReductionMean, Options{}); err == nil {
		t.Fatal("expected shape mismatch error")
	}
}

func TestComputeMSEIdenticalStructure(t *testing.T) {
	// Identical orthogonal embeddings on both sides: every similarity
	// matrix is the identity and the alignment error vanishes.
	clipImg, _ := domain.FromSlice([]float64{1, 0, 0, 1}, 2, 2)
	clipTxt, _ := domain.FromSlice([]float64{1, 0, 0, 1}, 2, 2)
	semTxt, _ := domain.FromSlice([]float64{2, 0, 0, 5}, 2, 2)

	got, err := ComputeMSE(clipImg, clipTxt, semTxt, domain.DeviceCPU)
	if err != nil {
		t.Fatalf("ComputeMSE: %v", err)
	}
	if math.Abs(got) > 1e-12 {
		t.Errorf("ComputeMSE = %v, want 0", got)
	}
}

func TestComputeMSEMovesSemanticMatrix(t *testing.T) {
	clipImg, _ := domain.FromSlice([]float64{1, 0, 0, 1}, 2, 2)
	clipTxt, _ := domain.FromSlice([]float64{1, 0, 0, 1}, 2, 2)
	semTxt, _ := domain.FromSlice([]float64{0, 1, 1, 0}, 2, 2)
	semTxt = semTxt.To(domain.Device("cuda:0"))

	got, err := ComputeMSE(clipImg, clipTxt, semTxt, domain.DeviceCPU)
	if err != nil {
		t.Fatalf("ComputeMSE: %v", err)
	}

	// Semantic rows are swapped basis vectors; TTSemantic is still the
	// identity, so the alignment error is 0 despite the device hop.
	if math.Abs(got) > 1e-12 {
		t.Errorf("ComputeMSE = %v, want 0", got)
	}
}
