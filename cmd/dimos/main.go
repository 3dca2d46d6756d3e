package main

import "dimos/internal/cli"

func main() {
	cli.Execute()
}
