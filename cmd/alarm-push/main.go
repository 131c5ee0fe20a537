package main

import "github.com/oshokin/order-alarm/cmd/alarm-push/cmd"

func main() {
	cmd.Execute()
}
