package main

import (
	"aivan/cmd/cmd"
	"aivan/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	cmd.Execute()
}
