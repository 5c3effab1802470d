package notification

import (
	"context"
	"encoding/json"

	"github.com/example/ec-shop/internal/domain/cart"
	"github.com/example/ec-shop/internal/domain/user"
	"github.com/example/ec-shop/internal/email"
	"github.com/rs/zerolog"
)

// Handler processes checkout events and sends confirmation emails
type Handler struct {
	emailService *email.Service
	users        user.Store
	logger       zerolog.Logger
}

// NewHandler creates a new notification handler
func NewHandler(emailSvc *email.Service, users user.Store, logger zerolog.Logger) *Handler {
	return &Handler{
		emailService: emailSvc,
		users:        users,
		logger:       logger,
	}
}

// HandleEvent processes an event from Kafka
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event cart.CartCheckedOut
	if err := json.Unmarshal(value, &event); err != nil {
		h.logger.Error().Err(err).Msg("failed to unmarshal event")
		return err
	}

	if event.EventType != cart.EventCartCheckedOut {
		return nil
	}

	return h.handleCartCheckedOut(ctx, event)
}

func (h *Handler) handleCartCheckedOut(ctx context.Context, event cart.CartCheckedOut) error {
	h.logger.Info().
		Int64("cart_id", event.CartID).
		Str("customer", event.Customer).
		Msg("processing checkout event")

	u, err := h.users.GetUserByUsername(ctx, event.Customer)
	if err != nil {
		// Nothing to retry if the customer record is gone.
		h.logger.Error().Err(err).Str("customer", event.Customer).Msg("customer lookup failed")
		return nil
	}

	if err := h.emailService.SendOrderConfirmation(u.Email, event.CartID, event.Total, event.Items); err != nil {
		h.logger.Error().Err(err).Str("email", u.Email).Msg("failed to send confirmation email")
		return err
	}

	h.logger.Info().
		Str("email", u.Email).
		Int64("cart_id", event.CartID).
		Msg("order confirmation email sent")
	return nil
}
