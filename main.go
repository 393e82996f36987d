package main

import "github.com/Alijeyrad/formsbot/cmd"

func main() {
	cmd.Execute()
}
