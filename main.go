package main

import "github.com/deepraj21/bhashabandhu-hackathon/cmd"

func main() {
	cmd.Execute()
}
