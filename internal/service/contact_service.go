package service

import (
	"context"
	"errors"

	"github.com/3dmm/site/internal/model"
)

// MaxMessageLength is the longest accepted contact message, in characters.
const MaxMessageLength = 5000

var (
	// ErrInvalidSubmission is returned when a required field is missing or blank.
	ErrInvalidSubmission = errors.New("invalid submission")
	// ErrMessageTooLong is returned when the message exceeds MaxMessageLength.
	ErrMessageTooLong = errors.New("message too long")
)

// ContactService defines the business logic for contact form submissions.
type ContactService interface {
	// Submit validates and stores msg, then records the newsletter opt-in when
	// msg.SignUpForNews is set. msg.ID and msg.CreatedAt are populated.
	Submit(ctx context.Context, msg *model.ContactSubmission) error

	// List returns contact submissions, newest first.
	List(ctx context.Context, opts model.ListOptions) ([]*model.ContactSubmission, error)

	// ListSubscribers returns newsletter subscribers, most recently updated first.
	ListSubscribers(ctx context.Context, opts model.ListOptions) ([]*model.NewsletterSubscriber, error)
}
