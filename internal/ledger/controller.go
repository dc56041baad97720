package ledger

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/cauiki/casa-ink-financeiro/internal/config"
	"github.com/cauiki/casa-ink-financeiro/internal/currency"
	"github.com/cauiki/casa-ink-financeiro/internal/model"
)

// ErrValidation means a required field is missing or outside the catalogs.
// Submission is declined without any store side effect.
var ErrValidation = errors.New("missing or invalid required field")

// ErrSubmitInFlight means a submit is already outstanding on this controller.
// The second attempt is dropped, never queued.
var ErrSubmitInFlight = errors.New("submit already in flight")

// Writer is the slice of the store the controller needs.
type Writer interface {
	Append(ctx context.Context, t *model.Transaction) (string, error)
	Remove(ctx context.Context, id string) error
}

// Confirmer answers whether the user affirmed a deletion.
type Confirmer interface {
	ConfirmDelete(ctx context.Context, id string) bool
}

// ConfirmFunc adapts a func to Confirmer.
type ConfirmFunc func(ctx context.Context, id string) bool

func (f ConfirmFunc) ConfirmDelete(ctx context.Context, id string) bool { return f(ctx, id) }

// Draft is the in-progress form state for one entry. Value carries the
// display-formatted amount as typed, not a parsed number.
type Draft struct {
	ClientName    string `json:"clientName"`
	Artist        string `json:"artist"`
	Service       string `json:"service"`
	PaymentMethod string `json:"paymentMethod"`
	Value         string `json:"value"`
	Obs           string `json:"obs"`
}

// Controller validates and submits drafts and performs confirmed deletions
// for one authenticated session.
type Controller struct {
	store  Writer
	studio config.StudioConfig
	userID string
	log    *zap.SugaredLogger

	submitting atomic.Bool
}

// NewController builds a controller acting as userID.
func NewController(store Writer, studio config.StudioConfig, userID string, log *zap.SugaredLogger) *Controller {
	return &Controller{store: store, studio: studio, userID: userID, log: log}
}

// Submit validates the draft and appends it to the ledger. On success only
// clientName, value and obs are cleared; artist, service and payment method
// stay selected to speed repeated entry. On store failure the whole draft is
// left intact for resubmission. At most one submit is in flight at a time.
func (c *Controller) Submit(ctx context.Context, d *Draft) error {
	if !c.submitting.CompareAndSwap(false, true) {
		return ErrSubmitInFlight
	}
	defer c.submitting.Store(false)

	service := d.Service
	if service == "" {
		service = c.studio.DefaultService
	}
	payment := d.PaymentMethod
	if payment == "" {
		payment = c.studio.DefaultPayment
	}

	if d.ClientName == "" || d.Artist == "" || d.Value == "" {
		return ErrValidation
	}
	if !c.studio.HasArtist(d.Artist) || !c.studio.HasService(service) || !c.studio.HasPaymentMethod(payment) {
		return ErrValidation
	}
	value, err := currency.ToNumeric(d.Value)
	if err != nil || value.IsZero() {
		return ErrValidation
	}

	id, err := c.store.Append(ctx, &model.Transaction{
		ClientName:    d.ClientName,
		Artist:        d.Artist,
		Service:       service,
		PaymentMethod: payment,
		Value:         value,
		Obs:           d.Obs,
		UserID:        c.userID,
	})
	if err != nil {
		c.log.Errorf("submit for user %s: %v", c.userID, err)
		return err
	}

	d.ClientName = ""
	d.Value = ""
	d.Obs = ""
	c.log.Infow("transaction recorded", "id", id, "artist", d.Artist, "user", c.userID)
	return nil
}

// RequestDelete asks confirm and, if affirmed, removes id exactly once.
// A withheld confirmation declines silently; the local view is never
// touched here, it converges through the subscription.
func (c *Controller) RequestDelete(ctx context.Context, id string, confirm Confirmer) error {
	if confirm == nil || !confirm.ConfirmDelete(ctx, id) {
		return nil
	}
	if err := c.store.Remove(ctx, id); err != nil {
		c.log.Errorf("delete %s for user %s: %v", id, c.userID, err)
		return err
	}
	c.log.Infow("transaction deleted", "id", id, "user", c.userID)
	return nil
}
