package main

import "github.com/aussiebroadwan/idkit/internal/cli"

func main() {
	cli.Execute()
}
