package model

// Task is the domain model for a todo entry.
// ID is assigned by the store; Value never changes after creation and
// Done only ever flips from false to true.
type Task struct {
	ID    int64  `json:"id"`
	Done  bool   `json:"done"`
	Value string `json:"value"`
}
