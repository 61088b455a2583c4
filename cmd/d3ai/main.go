package main

import "github.com/giygas/d3ai-api/cli"

func main() {
	cli.Main()
}
