// Package agent runs the long-lived order-alarm process: the HTTP push
// ingress, the gRPC control service and the alarm controller behind them.
package agent
