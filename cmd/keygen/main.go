package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/arnavshah/crew-scheduler-api/pkg/auth"
	"github.com/arnavshah/crew-scheduler-api/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: keygen <userID>")
		os.Exit(1)
	}

	userID := os.Args[1]
	if strings.Contains(userID, ".") {
		fmt.Println("Error: userID must not contain '.'")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.APIMasterSecret == "" {
		fmt.Println("Error: API_MASTER_SECRET not found in .env")
		os.Exit(1)
	}

	apiKey := auth.NewService(cfg).GenerateHMACKey(userID)
	fmt.Printf("Generated Key for %s:\n%s\n", userID, apiKey)
}
