package main

import "locsync/internal/cli"

func main() {
	cli.Execute()
}
