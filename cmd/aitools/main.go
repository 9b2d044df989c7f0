package main

import "github.com/aitools/aitools/internal/cli"

func main() {
	cli.Execute()
}
