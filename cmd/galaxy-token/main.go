// Command galaxy-token mints a bearer token for the admin endpoints.
package main

import (
	"flag"
	"fmt"
	"os"

	"galaxy-server/internal/auth"
	"galaxy-server/internal/shared/config"
)

func main() {
	subject := flag.String("subject", "admin", "token subject")
	role := flag.String("role", auth.RoleAdmin, "role claim")
	flag.Parse()

	// Only the JWT settings matter here
	if err := config.InitForCLI(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize configuration: %v\n", err)
		os.Exit(1)
	}
	cfg := config.GlobalConfig.Auth

	token, err := auth.GenerateJWT(cfg.JWTSecret, *subject, *role, cfg.TokenExpiration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "galaxy-token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
