package main

import (
	"github.com/alloy-network/alloy-agent/cmd"
)

func main() {
	cmd.Execute()
}
