package main

import "groovy/cmd"

func main() {
	cmd.Execute()
}
