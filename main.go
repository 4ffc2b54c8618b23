package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/matdash/matdash/cmd"
)

func main() {
	// Optional .env for backend URLs and credentials in development.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
