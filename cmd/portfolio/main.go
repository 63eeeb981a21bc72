package main

import (
	"portfolio/cmd/handlers"
	"portfolio/internal/logger"
)

func main() {
	logger.Init()
	handlers.Execute()
}
