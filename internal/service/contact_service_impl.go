package service

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/3dmm/site/internal/event"
	"github.com/3dmm/site/internal/metrics"
	"github.com/3dmm/site/internal/model"
	"github.com/3dmm/site/internal/repository"
)

// contactServiceImpl is the production implementation of ContactService.
type contactServiceImpl struct {
	contacts   repository.ContactRepository
	newsletter repository.NewsletterRepository
	events     *event.Bus[event.ContactSubmitted]
	now        func() time.Time
}

// NewContactService creates a ContactService backed by the given repositories.
// events may be nil.
func NewContactService(
	contacts repository.ContactRepository,
	newsletter repository.NewsletterRepository,
	events *event.Bus[event.ContactSubmitted],
) ContactService {
	return &contactServiceImpl{
		contacts:   contacts,
		newsletter: newsletter,
		events:     events,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Submit stores the submission and upserts the subscriber when opted in.
// The contact row is kept even if the upsert fails.
func (s *contactServiceImpl) Submit(ctx context.Context, msg *model.ContactSubmission) error {
	if missing := msg.MissingFields(); len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", ErrInvalidSubmission, missing)
	}
	if utf8.RuneCountInString(msg.Message) > MaxMessageLength {
		return ErrMessageTooLong
	}

	now := s.now()
	msg.CreatedAt = now
	if err := s.contacts.Insert(ctx, msg); err != nil {
		return fmt.Errorf("save contact: %w", err)
	}

	if msg.SignUpForNews {
		sub := &model.NewsletterSubscriber{
			Email:        model.NormalizeEmail(msg.Email),
			FirstName:    msg.FirstName,
			LastName:     msg.LastName,
			SubscribedAt: now,
			UpdatedAt:    now,
		}
		created, err := s.newsletter.Upsert(ctx, sub)
		if err != nil {
			return fmt.Errorf("upsert subscriber: %w", err)
		}
		metrics.IncNewsletter(created)
	}

	s.events.Publish(ctx, event.ContactSubmitted{
		ID:            msg.ID,
		Email:         msg.Email,
		Subject:       msg.Subject,
		SignUpForNews: msg.SignUpForNews,
		CreatedAt:     msg.CreatedAt,
	})
	return nil
}

func (s *contactServiceImpl) List(ctx context.Context, opts model.ListOptions) ([]*model.ContactSubmission, error) {
	return s.contacts.List(ctx, opts.Normalize())
}

func (s *contactServiceImpl) ListSubscribers(ctx context.Context, opts model.ListOptions) ([]*model.NewsletterSubscriber, error) {
	return s.newsletter.List(ctx, opts.Normalize())
}
