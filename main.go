package main

import (
	"log"
	"os"

	"github.com/example/crm-backend/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}
