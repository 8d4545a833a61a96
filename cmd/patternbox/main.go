package main

import "github.com/mvp-joe/patternbox/internal/cli"

func main() {
	cli.Execute()
}
