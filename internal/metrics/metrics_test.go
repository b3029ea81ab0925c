package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/3dmm/site/internal/event"
)

func TestIncNewsletter_Outcomes(t *testing.T) {
	created := testutil.ToFloat64(NewsletterUpserts.WithLabelValues("created"))
	updated := testutil.ToFloat64(NewsletterUpserts.WithLabelValues("updated"))

	IncNewsletter(true)
	IncNewsletter(false)
	IncNewsletter(false)

	if got := testutil.ToFloat64(NewsletterUpserts.WithLabelValues("created")) - created; got != 1 {
		t.Errorf("expected 1 created increment, got %v", got)
	}
	if got := testutil.ToFloat64(NewsletterUpserts.WithLabelValues("updated")) - updated; got != 2 {
		t.Errorf("expected 2 updated increments, got %v", got)
	}
}

func TestIncContact(t *testing.T) {
	before := testutil.ToFloat64(ContactSubmissions.WithLabelValues("accepted"))
	IncContact("accepted")
	if got := testutil.ToFloat64(ContactSubmissions.WithLabelValues("accepted")) - before; got != 1 {
		t.Errorf("expected 1 increment, got %v", got)
	}
}

func TestContactSubmitted_CountsAccepted(t *testing.T) {
	bus := event.NewBus[event.ContactSubmitted]("test")
	bus.Subscribe(ContactSubmitted)

	before := testutil.ToFloat64(ContactSubmissions.WithLabelValues("accepted"))
	bus.Publish(context.Background(), event.ContactSubmitted{ID: "c1"})
	if got := testutil.ToFloat64(ContactSubmissions.WithLabelValues("accepted")) - before; got != 1 {
		t.Errorf("expected 1 increment, got %v", got)
	}
}
