package main

import "github.com/example/tablebook/cmd"

func main() {
	cmd.Execute()
}
