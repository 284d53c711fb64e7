package main

import (
	"os"

	"char-count/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
