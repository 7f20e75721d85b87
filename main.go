package main

import "twmods/cmd"

func main() {
	cmd.Execute()
}
