package model

import (
	"strings"
	"time"
)

// NewsletterSubscriber is a newsletter opt-in keyed by email.
type NewsletterSubscriber struct {
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	SubscribedAt time.Time `json:"subscribedAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NormalizeEmail returns the canonical form used as the subscriber key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
