package main

import "github.com/sv/kdbwire/cmd/kdbwire/cmd"

func main() {
	cmd.Execute()
}
