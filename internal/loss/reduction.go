package loss

import "distill/internal/domain"

// Reduction selects how the three alignment errors are aggregated. It is a
// closed enumeration; keyword parsing happens once in ParseReduction rather
// than at every reduce site.
type Reduction int

const (
	// ReductionMean averages the error terms.
	ReductionMean Reduction = iota
	// ReductionSum adds the error terms.
	ReductionSum
	// ReductionNone returns the unreduced error vector.
	ReductionNone
)

// Keywords accepted by ParseReduction.
var reductionKeywords = []string{"mean", "average", "avg", "sum", "add", "none"}

// ParseReduction maps a reduction keyword to its Reduction. Unknown
// keywords yield an ArgumentError listing the accepted set.
func ParseReduction(s string) (Reduction, error) {
	switch s {
	case "mean", "average", "avg":
		return ReductionMean, nil
	case "sum", "add":
		return ReductionSum, nil
	case "none":
		return ReductionNone, nil
	}
	return 0, &domain.ArgumentError{
		Name:    "reduction",
		Value:   s,
		Allowed: reductionKeywords,
	}
}

func (r Reduction) String() string {
	switch r {
	case ReductionMean:
		return "mean"
	case ReductionSum:
		return "sum"
	case ReductionNone:
		return "none"
	}
	return "unknown"
}
