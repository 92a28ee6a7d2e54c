package main

import "github.com/ringcheck/ringcheck/internal/cli"

func main() {
	cli.Execute()
}
