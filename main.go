package main

import "github.com/glimmer-tools/glimmer/cmd"

func main() {
	cmd.Execute()
}
