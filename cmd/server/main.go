package main

import (
	"log"

	"ppemonitor/internal/app"
)

func main() {
	application, err := app.NewApp()
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
