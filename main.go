package main

import "github.com/agentic-research/loadout/cmd"

func main() {
	cmd.Execute()
}
