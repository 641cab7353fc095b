package main

import "github.com/schemacache/schemacache/cmd"

func main() {
	cmd.Execute()
}
