package main

import (
	"balloting-backend/cmd/balloting/cmd"
)

func main() {
	cmd.Execute()
}
