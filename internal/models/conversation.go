package models

// Conversation is the per-user dialogue state: the current stage plus every
// field collected so far. Handlers mutate a local copy and commit it in one
// piece, so a failed backend call never leaves a half-updated conversation.
type Conversation struct {
	Stage Stage

	// Registration accumulates the fields of the registration flow.
	Registration Registration

	// TargetID is the account an administrator is activating, kept verbatim
	// as typed.
	TargetID string

	// Resolved lookup ids.
	EducationType int
	Faculty       int
	Profile       int

	// Options is the current name->id table the user is selecting from.
	Options Options
}

// Active reports whether a conversation is in progress.
func (c Conversation) Active() bool {
	return c.Stage != StageNone
}
