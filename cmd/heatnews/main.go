package main

import (
	"heatnews/cmd/heatnews/cmd"
	"heatnews/internal/logger"
)

func main() {
	logger.Init()
	cmd.Execute()
}
