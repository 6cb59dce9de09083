package main

import "github.com/marcus/gentasks/cmd/gentasks/commands"

func main() {
	commands.Execute()
}
