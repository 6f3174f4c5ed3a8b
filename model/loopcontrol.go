package model

// LoopControl is the singleton document coordinating loop invocations across
// process restarts. The flag is advisory: every path that starts, stops or
// errors out of the loop must leave it false.
type LoopControl struct {
	IsLoopRunning bool   `firestore:"isLoopRunning"`
	UpdatedAt     string `firestore:"updatedAt,omitempty"`
}
