package event

import "time"

// ContactSubmitted is published after a contact submission (and any
// newsletter opt-in) has been persisted.
type ContactSubmitted struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Subject       string    `json:"subject"`
	SignUpForNews bool      `json:"signUpForNews"`
	CreatedAt     time.Time `json:"createdAt"`
}
