package main

import "github.com/mselser95/eve-trade-arb/cmd"

func main() {
	cmd.Execute()
}
