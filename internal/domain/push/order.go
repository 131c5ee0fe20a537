package push

import "fmt"

// Order describes a newly created order that should reach the devices.
type Order struct {
	// ID is the order document id.
	ID string
	// Status is the order status; "Pendente" when empty.
	Status string
	// CustomerName is shown in the body when known.
	CustomerName string
	// Code is the human-facing order number.
	Code string
}

const (
	newOrderTitle       = "Novo pedido recebido"
	newOrderGenericBody = "Um novo pedido foi recebido."
	newOrderStatus      = "Pendente"
	newOrderSource      = "new-order"
	newOrderURL         = "/"
)

// NewOrderMessage builds the push message sent when an order is created.
func NewOrderMessage(order Order) *Message {
	body := newOrderGenericBody
	if order.CustomerName != "" {
		body = "Pedido de " + order.CustomerName
	}

	if order.Code != "" {
		body = fmt.Sprintf("%s (#%s)", body, order.Code)
	}

	status := order.Status
	if status == "" {
		status = newOrderStatus
	}

	return &Message{
		Notification: &Notification{
			Title: String(newOrderTitle),
			Body:  String(body),
		},
		Data: map[string]string{
			"order_id": order.ID,
			"status":   status,
			DataKeyURL: newOrderURL,
			"source":   newOrderSource,
		},
	}
}
