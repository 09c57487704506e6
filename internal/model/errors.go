package model

// ValidationError indicates a malformed intent (empty product name,
// inverted price range, out-of-range rating). It is raised synchronously
// before any browser session is created.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid intent: " + e.Reason
}

// InvalidInputError indicates bad input to a pure helper, such as an
// empty URL handed to the normalizer.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}
