package main

import "chartcore/cmd"

func main() {
	cmd.Execute()
}
