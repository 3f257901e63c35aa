package entity

// ExistenceResult is the answer to one existence check.
// Status is the HTTP status that goes with it: 200 when found, 400 when not.
type ExistenceResult struct {
	Exists bool
	Status int
}
