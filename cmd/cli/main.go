package main

import "github.com/fekuna/omnipos-assistant-service/cmd/cli/commands"

func main() {
	commands.Execute()
}
