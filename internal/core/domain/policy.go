package domain

// Requirement is one entry of the requirement set: a document kind and how
// many of it an intake must receive.
type Requirement struct {
	Kind     DocKind
	Quantity int
}

// RequirementsFor maps a complexity tier to its required document kinds.
// Kinds with a zero quantity are omitted entirely so that "no receipts
// required" never produces a spurious checklist entry. Total over the tier
// enumeration.
func RequirementsFor(c Complexity) []Requirement {
	base := []Requirement{
		{Kind: KindTaxForm, Quantity: 1},
		{Kind: KindIdentification, Quantity: 1},
	}
	if n := expectedReceipts(c); n > 0 {
		base = append(base, Requirement{Kind: KindReceipt, Quantity: n})
	}
	return base
}

func expectedReceipts(c Complexity) int {
	switch c {
	case ComplexityMedium:
		return 2
	case ComplexityHigh:
		return 5
	default:
		return 0
	}
}
