package enums

import "strings"

// DeliveryStatus is the fulfillment state of a customer order.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryReady     DeliveryStatus = "ready"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryCancelled DeliveryStatus = "cancelled"
)

func (d DeliveryStatus) String() string {
	return string(d)
}

// Open reports whether the order still has to be delivered.
func (d DeliveryStatus) Open() bool {
	return d == DeliveryPending || d == DeliveryReady
}

// ParseDeliveryStatus maps the English and Spanish labels the POS writes. ok
// is false for unrecognized values so callers can treat the aggregate as
// unknown instead of skipping the row.
func ParseDeliveryStatus(value string) (DeliveryStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "pending", "pendiente", "nuevo", "new":
		return DeliveryPending, true
	case "ready", "listo", "lista", "preparado":
		return DeliveryReady, true
	case "delivered", "entregado", "entregada":
		return DeliveryDelivered, true
	case "cancelled", "canceled", "cancelado", "cancelada", "anulado":
		return DeliveryCancelled, true
	default:
		return "", false
	}
}
