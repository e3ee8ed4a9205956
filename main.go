package main

import "ixp-tracker/cmd"

func main() {
	cmd.Execute()
}
