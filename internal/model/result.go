package model

// Status classifies the outcome of applying one state.
type Status string

const (
	// StatusSuccess marks a state that is satisfied, either because the
	// action ran or because no execution was needed.
	StatusSuccess Status = "success"
	// StatusFailed marks a usage error or a failed external command.
	StatusFailed Status = "failed"
	// StatusWouldChange indicates dry-run predicted an execution without
	// performing it.
	StatusWouldChange Status = "would_change"
)

// StateResult captures the outcome of applying a single state to a node.
// Changes maps a change category (for example "ticket" or "cert") to a
// description of what was written. A would_change result never carries
// changes; a success with empty changes means the state was already
// satisfied and Message explains why.
type StateResult struct {
	Subject string
	Status  Status
	Changes map[string]string
	Message string
}

// Unchanged reports a state that was already satisfied.
func Unchanged(subject, message string) *StateResult {
	return &StateResult{
		Subject: subject,
		Status:  StatusSuccess,
		Changes: map[string]string{},
		Message: message,
	}
}

// WouldChange reports the action dry-run would have executed.
func WouldChange(subject, message string) *StateResult {
	return &StateResult{
		Subject: subject,
		Status:  StatusWouldChange,
		Changes: map[string]string{},
		Message: message,
	}
}

// Changed reports a successfully executed action together with what changed.
func Changed(subject, message string, changes map[string]string) *StateResult {
	if changes == nil {
		changes = map[string]string{}
	}
	return &StateResult{
		Subject: subject,
		Status:  StatusSuccess,
		Changes: changes,
		Message: message,
	}
}

// Failed reports a usage error or a failed external command.
func Failed(subject, message string) *StateResult {
	return &StateResult{
		Subject: subject,
		Status:  StatusFailed,
		Changes: map[string]string{},
		Message: message,
	}
}
