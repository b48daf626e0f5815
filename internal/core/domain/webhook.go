package domain

import (
	"time"

	"github.com/google/uuid"
)

// Gateway event names the reconciler understands. Anything else is
// acknowledged and marked processed without touching the ledger.
const (
	WebhookEventChargeSuccess = "charge.success"
	WebhookEventChargeFailed  = "charge.failed"
	WebhookEventChargePending = "charge.pending"
)

// WebhookLog records one (event, reference) delivery from the payment
// gateway. The pair is unique in storage, which is what makes repeated
// deliveries of the same event idempotent. Processed is terminal.
type WebhookLog struct {
	ID            uuid.UUID  `json:"id"`
	Event         string     `json:"event"`
	Reference     string     `json:"reference"`
	Payload       []byte     `json:"-"`
	Processed     bool       `json:"processed"`
	TransactionID *uuid.UUID `json:"transaction_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
