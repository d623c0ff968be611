package main

import "github.com/soulink/soulink/cmd"

func main() {
	cmd.Execute()
}
