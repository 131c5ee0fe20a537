// Package order implements alarm-push: it composes the "new order" push
// message and delivers it to the agent's HTTP ingress, the way the order
// backend does when an order is created.
package order
