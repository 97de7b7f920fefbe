package main

import (
	"diskmark/cmd"
)

func main() {
	cmd.Execute()
}
