package main

import "github.com/oshokin/order-alarm/cmd/alarm-pause/cmd"

func main() {
	cmd.Execute()
}
