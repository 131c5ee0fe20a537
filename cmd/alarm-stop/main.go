package main

import "github.com/oshokin/order-alarm/cmd/alarm-stop/cmd"

func main() {
	cmd.Execute()
}
