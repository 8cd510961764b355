package main

import "github.com/nfrund/dungeonwave/cmd/dungeonwave/cmd"

func main() {
	cmd.Execute()
}
