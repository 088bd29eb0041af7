package entities

// CountRequest is the argument of every count export.
// Val is a pointer so that a missing argument can be told apart from the
// empty string, which is a valid input.
type CountRequest struct {
	Val *string `json:"val" validate:"required" jsonschema:"required,description=String to scan for adjacent doubles"`
}

// CountResponse is the result of every count export.
type CountResponse struct {
	Total uint64 `json:"total" jsonschema:"description=Number of adjacent equal elements,minimum=0"`
}
