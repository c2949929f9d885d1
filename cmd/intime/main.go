package main

import "github.com/ber2minsin/intime/cmd/intime/commands"

func main() {
	commands.Execute()
}
