package repository

import (
	"context"

	"github.com/3dmm/site/internal/model"
)

// Collection names shared by every backend.
const (
	ContactsCollection   = "contacts"
	NewsletterCollection = "newsletter"
)

// DB は DB 接続の生存確認を行うインターフェース
type DB interface {
	Ping(ctx context.Context) error
}

// ContactRepository persists contact submissions. Submissions are append-only.
type ContactRepository interface {
	// Insert stores msg and populates msg.ID.
	Insert(ctx context.Context, msg *model.ContactSubmission) error
	// List returns submissions newest first.
	List(ctx context.Context, opts model.ListOptions) ([]*model.ContactSubmission, error)
}

// NewsletterRepository persists newsletter subscribers keyed by email.
type NewsletterRepository interface {
	// Upsert inserts sub or updates the names and UpdatedAt of the existing
	// record with the same email. SubscribedAt is only written on insert; on
	// update sub.SubscribedAt is replaced with the stored value.
	Upsert(ctx context.Context, sub *model.NewsletterSubscriber) (created bool, err error)
	// List returns subscribers most recently updated first.
	List(ctx context.Context, opts model.ListOptions) ([]*model.NewsletterSubscriber, error)
}

// Store is an opened document store handle. It is created once in main and
// passed to the services that need it.
type Store interface {
	DB
	Contacts() ContactRepository
	Newsletter() NewsletterRepository
	Backend() string
	Close(ctx context.Context) error
}
