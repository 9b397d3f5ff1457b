package main

import "github.com/iwatobipen/entry-cli/internal/cli"

func main() {
	cli.Execute()
}
