package main

import "github.com/fekuna/omnipos-marketplace-service/cmd/catalogctl/commands"

func main() {
	commands.Execute()
}
