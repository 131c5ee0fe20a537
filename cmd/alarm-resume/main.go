package main

import "github.com/oshokin/order-alarm/cmd/alarm-resume/cmd"

func main() {
	cmd.Execute()
}
