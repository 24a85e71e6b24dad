package domain

import "time"

// DropEvent is an observed item appearing on the ground
type DropEvent struct {
	ItemName string
	Quantity int
}

// NotificationPayload is the JSON body posted to the webhook
type NotificationPayload struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// Payload converts the event to its webhook body
func (e DropEvent) Payload() NotificationPayload {
	return NotificationPayload{Item: e.ItemName, Quantity: e.Quantity}
}

// DeliveryStatus is the webhook outcome of a recorded drop
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
	DeliverySkipped   DeliveryStatus = "skipped" // no webhook configured
)

// DropRecord is a matched drop kept in the local history
type DropRecord struct {
	ID         string
	ItemName   string
	Quantity   int
	MatchedAt  time.Time
	Status     DeliveryStatus
	StatusCode int
	Error      string
}
