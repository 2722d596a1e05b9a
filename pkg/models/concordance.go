package models

// VariantSummary holds the per-run variant counts of one call set.
type VariantSummary struct {
	Name  string `json:"run_type"`
	Total int    `json:"total_variants"`

	// SVTypeCounts counts variants by INFO/SVTYPE (DEL, DUP, INS, INV,
	// BND, CNV, CPX, CTX for GATK-SV call sets).
	SVTypeCounts map[string]int `json:"svtype_counts"`

	// AlgorithmCounts counts variants by the first entry of
	// INFO/ALGORITHMS, the caller that discovered the variant.
	AlgorithmCounts map[string]int `json:"algorithm_counts"`
}

// ConcordanceResult measures how well a comparison call set agrees with
// the reference call set, joined on locus.
type ConcordanceResult struct {
	Name string `json:"run_type"`

	// Matched is the number of comparison variants whose locus is also
	// present in the reference call set.
	Matched int `json:"matched_variants"`

	RefVariants   int `json:"ref_variants"`
	InputVariants int `json:"input_variants"`

	// Recall is Matched over the reference variant count, Precision is
	// Matched over the comparison variant count.
	Recall    float64 `json:"recall"`
	Precision float64 `json:"precision"`
}
