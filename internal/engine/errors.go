package engine

import "fmt"

// ModelBuildError signals a section with zero feasible variables. The model
// is unsatisfiable by construction, which points at a data problem rather
// than a scheduling conflict.
type ModelBuildError struct {
	SectionKey string
	Kind       string
}

func (e *ModelBuildError) Error() string {
	return fmt.Sprintf("section %v has no feasible %v variables", e.SectionKey, e.Kind)
}

// RegistrationError signals a constraint unit that referenced a variable key
// absent from the current model, or attempted registration after the solve
// started. The offending unit is rejected; the run continues.
type RegistrationError struct {
	Unit   string
	Reason string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("constraint unit %v rejected: %v", e.Unit, e.Reason)
}

// ExtractionError signals a post-solve invariant violation. It indicates an
// engine defect and is never silently corrected.
type ExtractionError struct {
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed: %v", e.Reason)
}
