package main

import "github.com/mydehq/plextitler/internal/cli"

func main() {
	cli.Execute()
}
