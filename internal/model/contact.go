package model

import (
	"strings"
	"time"
)

// ContactSubmission is a message submitted through the site's contact form.
// Submissions are append-only: created once and never mutated.
type ContactSubmission struct {
	ID            string    `json:"id"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Email         string    `json:"email"`
	Subject       string    `json:"subject"`
	Message       string    `json:"message"`
	SignUpForNews bool      `json:"signUpForNews"`
	CreatedAt     time.Time `json:"createdAt"`
}

// MissingFields returns the JSON names of required fields that are empty or
// whitespace-only, in form order.
func (c *ContactSubmission) MissingFields() []string {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"firstName", c.FirstName},
		{"lastName", c.LastName},
		{"email", c.Email},
		{"subject", c.Subject},
		{"message", c.Message},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// ListOptions carries pagination parameters for admin listings.
type ListOptions struct {
	Limit  int
	Offset int
}

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Normalize clamps Limit into [1, MaxListLimit] and Offset to >= 0.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}
	if o.Limit > MaxListLimit {
		o.Limit = MaxListLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}
