package main

import "github.com/josephlewis42/mshell/cmd"

func main() {
	cmd.Execute()
}
