package domain

import "time"

// Submission status constants.
const (
	StatusPending        = "pending"
	StatusCompleted      = "completed"
	StatusAwaitingClient = "awaiting_client"
	StatusClientReviewed = "client_reviewed"
)

// Submission is the root aggregate: one franchise-tax intake form.
type Submission struct {
	ID           string        `json:"id"`
	CompanyName  string        `json:"companyName"`
	Shares       Shares        `json:"shares"`
	TotalAssets  TotalAssets   `json:"totalAssets"`
	Address      Address       `json:"address"`
	Officers     []Officer     `json:"officers"`
	Directors    []Director    `json:"directors"`
	Submitter    string        `json:"submitter"`
	Status       string        `json:"status"`
	Verification *Verification `json:"verification,omitempty"`
	SubmittedAt  time.Time     `json:"submittedAt"`
	LastModified time.Time     `json:"lastModified"`
}

// ValidStatuses returns all valid submission statuses.
func ValidStatuses() []string {
	return []string{
		StatusPending,
		StatusCompleted,
		StatusAwaitingClient,
		StatusClientReviewed,
	}
}

// IsValidStatus checks if a status string is valid.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// AllowedTransitions defines which status transitions are valid. Every
// status can be toggled to completed by staff and reset to pending;
// awaiting_client may be re-entered from any state, which mints a fresh
// token and silently invalidates the previous link.
func AllowedTransitions() map[string][]string {
	return map[string][]string{
		StatusPending:        {StatusCompleted, StatusAwaitingClient},
		StatusAwaitingClient: {StatusClientReviewed, StatusCompleted, StatusPending, StatusAwaitingClient},
		StatusClientReviewed: {StatusCompleted, StatusPending, StatusAwaitingClient},
		StatusCompleted:      {StatusPending, StatusAwaitingClient},
	}
}

// CanTransitionTo checks if the submission can move to the target status.
func (s *Submission) CanTransitionTo(target string) bool {
	allowed, ok := AllowedTransitions()[s.Status]
	if !ok {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// ToggleStatus implements the staff toggle: completed flips to pending,
// everything else flips to completed.
func (s *Submission) ToggleStatus() string {
	if s.Status == StatusCompleted {
		s.Status = StatusPending
	} else {
		s.Status = StatusCompleted
	}
	return s.Status
}

// StatusLabel returns the human-readable label shown to staff.
func StatusLabel(status string) string {
	switch status {
	case StatusPending:
		return "Pending"
	case StatusCompleted:
		return "Completed"
	case StatusAwaitingClient:
		return "Awaiting Client"
	case StatusClientReviewed:
		return "Client Reviewed"
	default:
		return status
	}
}

// SubmitterCandidates returns the names a submitter may be chosen from:
// all officer names followed by all director names, original order kept.
func (s *Submission) SubmitterCandidates() []string {
	names := make([]string, 0, len(s.Officers)+len(s.Directors))
	for _, o := range s.Officers {
		names = append(names, o.Name)
	}
	for _, d := range s.Directors {
		names = append(names, d.Name)
	}
	return names
}

// ResolveSubmitter reports whether name matches an officer or director.
// When the same name appears in both lists the officer wins; within a
// list the first match in original order wins.
func (s *Submission) ResolveSubmitter(name string) (role string, index int, ok bool) {
	for i, o := range s.Officers {
		if o.Name == name {
			return "officer", i, true
		}
	}
	for i, d := range s.Directors {
		if d.Name == name {
			return "director", i, true
		}
	}
	return "", 0, false
}
