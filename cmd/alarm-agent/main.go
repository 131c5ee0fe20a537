package main

import "github.com/oshokin/order-alarm/cmd/alarm-agent/cmd"

func main() {
	cmd.Execute()
}
