package main

import "perfreview/internal/cli"

func main() {
	cli.Execute()
}
