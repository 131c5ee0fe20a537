package main

import "github.com/oshokin/order-alarm/cmd/alarm-start/cmd"

func main() {
	cmd.Execute()
}
