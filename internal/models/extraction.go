package models

// ExtractionResult is the outcome of reading an ingredient label image.
// Ingredients is a comma-separated list verbatim from the label; it is
// empty whenever Success is false.
type ExtractionResult struct {
	Success     bool   `json:"success"`
	Ingredients string `json:"ingredients"`
	Confidence  int    `json:"confidence"`
	Notes       string `json:"notes"`
}

// Normalize clamps confidence and enforces the empty-on-failure invariant.
func (r *ExtractionResult) Normalize() {
	if r.Confidence < 0 {
		r.Confidence = 0
	} else if r.Confidence > 100 {
		r.Confidence = 100
	}
	if !r.Success {
		r.Ingredients = ""
	}
}
