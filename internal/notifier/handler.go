// Package notifier turns notification events into outbound email. It is the
// handler side of the notification stream: one method per event type, each
// rendering the message text and delivering it through the Mailer.
package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/gameswap/exchange/internal/logger"
	"github.com/gameswap/exchange/internal/mailer"
	"github.com/gameswap/exchange/internal/notify"
)

// EmailHandler implements notify.Handler over a Mailer.
type EmailHandler struct {
	mailer mailer.Mailer
}

// NewEmailHandler creates a handler delivering through the given mailer.
func NewEmailHandler(m mailer.Mailer) *EmailHandler {
	return &EmailHandler{mailer: m}
}

// HandleCredentialChanged mails the account about its password change. The
// prior secret is used for SMTP login since the stored one just changed and
// the mail provider may not have observed the rotation yet.
func (h *EmailHandler) HandleCredentialChanged(ctx context.Context, p notify.CredentialChangedPayloadV1) error {
	body := fmt.Sprintf(
		"Hello, %s!\n"+
			"Your password has been successfully reset!\n"+
			"If this was not you then contact support immediately!\n"+
			"Sincerely, Notification Service",
		p.AccountName)

	err := h.mailer.Deliver(ctx, p.AccountIdentity, p.PriorSecret, "Password Update", body)
	if err != nil {
		return fmt.Errorf("failed to deliver credential change notice: %w", err)
	}
	return nil
}

// HandleOfferCreated mails both parties: a confirmation to the sender and the
// offer details (including the trade ID needed to resolve it) to the receiver.
func (h *EmailHandler) HandleOfferCreated(ctx context.Context, p notify.OfferPayloadV1) error {
	senderBody := fmt.Sprintf(
		"Hello, %s!\n"+
			"We have received your trade offer of '%s' for '%s' to %s | %s!\n"+
			"The trade ID of your offer is '%s'.\n"+
			"Sincerely, Notification Service",
		p.Sender.Name, p.OfferedItem, p.RequestedItem, p.Receiver.Name, p.Receiver.Identity, p.TradeID)

	receiverBody := fmt.Sprintf(
		"Hello, %s!\n"+
			"You have received a trade offer from '%s/%s'!\n"+
			"They have offered '%s' for '%s'!\n"+
			"Use this trade ID: '%s' to accept or reject the offer.\n"+
			"Sincerely, Notification Service",
		p.Receiver.Name, p.Sender.Name, p.Sender.Identity, p.OfferedItem, p.RequestedItem, p.TradeID)

	return h.deliverToBoth(ctx, p,
		"Trade offer processed", senderBody,
		"Trade offer received", receiverBody)
}

// HandleOfferAccepted mails both parties that the swap went through.
func (h *EmailHandler) HandleOfferAccepted(ctx context.Context, p notify.OfferPayloadV1) error {
	senderBody := fmt.Sprintf(
		"Hello, %s!\n"+
			"Your trade offer of '%s' for '%s' to '%s/%s' was accepted!\n"+
			"Sincerely, Notification Service",
		p.Sender.Name, p.OfferedItem, p.RequestedItem, p.Receiver.Name, p.Receiver.Identity)

	receiverBody := fmt.Sprintf(
		"Hello, %s!\n"+
			"You accepted the trade offer of '%s' for '%s' from '%s/%s'!\n"+
			"Sincerely, Notification Service",
		p.Receiver.Name, p.OfferedItem, p.RequestedItem, p.Sender.Name, p.Sender.Identity)

	return h.deliverToBoth(ctx, p,
		"Trade offer accepted", senderBody,
		"Trade offer accepted", receiverBody)
}

// HandleOfferRejected mails both parties that the offer was declined.
func (h *EmailHandler) HandleOfferRejected(ctx context.Context, p notify.OfferPayloadV1) error {
	senderBody := fmt.Sprintf(
		"Hello, %s!\n"+
			"Your trade offer of '%s' for '%s' to '%s/%s' was rejected.\n"+
			"Sincerely, Notification Service",
		p.Sender.Name, p.OfferedItem, p.RequestedItem, p.Receiver.Name, p.Receiver.Identity)

	receiverBody := fmt.Sprintf(
		"Hello, %s!\n"+
			"You rejected the trade offer of '%s' for '%s' from '%s/%s'.\n"+
			"Sincerely, Notification Service",
		p.Receiver.Name, p.OfferedItem, p.RequestedItem, p.Sender.Name, p.Sender.Identity)

	return h.deliverToBoth(ctx, p,
		"Trade offer rejected", senderBody,
		"Trade offer rejected", receiverBody)
}

// deliverToBoth sends the sender's and receiver's messages, attempting both
// even when the first fails so one unreachable mailbox does not starve the
// other party of their notice.
func (h *EmailHandler) deliverToBoth(ctx context.Context, p notify.OfferPayloadV1, senderSubject, senderBody, receiverSubject, receiverBody string) error {
	log := logger.FromContext(ctx)

	senderErr := h.mailer.Deliver(ctx, p.Sender.Identity, p.Sender.Secret, senderSubject, senderBody)
	if senderErr != nil {
		log.Error("Failed to deliver to sender", "trade_id", p.TradeID, "identity", p.Sender.Identity, "error", senderErr)
	}

	receiverErr := h.mailer.Deliver(ctx, p.Receiver.Identity, p.Receiver.Secret, receiverSubject, receiverBody)
	if receiverErr != nil {
		log.Error("Failed to deliver to receiver", "trade_id", p.TradeID, "identity", p.Receiver.Identity, "error", receiverErr)
	}

	if senderErr != nil || receiverErr != nil {
		return fmt.Errorf("failed to deliver trade notice: %w", errors.Join(senderErr, receiverErr))
	}
	return nil
}
