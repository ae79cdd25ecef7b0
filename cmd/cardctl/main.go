package main

import "github.com/mcoot/aicardgame-go/internal/cli"

func main() {
	cli.Execute()
}
