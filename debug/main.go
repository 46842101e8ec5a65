package main

import (
	"os"

	"github.com/pirouette/content/internal/server"
)

func main() {
	httpPort := os.Getenv("HTTP_PORT")
	if httpPort == "" {
		httpPort = "4001"
	}

	err := server.Start(httpPort)
	if err != nil {
		return
	}
}
