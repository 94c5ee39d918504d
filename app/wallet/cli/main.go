package main

import "github.com/ardanlabs/simwallet/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
