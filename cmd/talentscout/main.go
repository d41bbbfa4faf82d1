package main

import "github.com/ent0n29/talentscout/internal/cli"

func main() {
	cli.Execute()
}
