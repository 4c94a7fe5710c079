package main

import "github.com/dmarquez/idlempire/internal/cli"

func main() {
	cli.Execute()
}
