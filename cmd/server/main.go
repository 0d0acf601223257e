package main

import (
	"finlink/cmd/server/cmd"
)

func main() {
	cmd.Execute()
}
