package main

import "github.com/mcoot/buzzrelay/internal/cli"

func main() {
	cli.Execute()
}
