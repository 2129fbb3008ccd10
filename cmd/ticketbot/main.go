package main

import (
	"ticketbot/cmd"
	"ticketbot/pkg/logger"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logger.Fatal("%v", err)
	}
}
