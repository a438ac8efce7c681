package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/franciscosanchezn/gin-recipe-api/internal/middleware"
	"github.com/joho/godotenv"
)

func main() {
	// Parse command line flags
	role := flag.String("role", middleware.RoleAdmin, "Token role (admin or editor)")
	subject := flag.String("sub", "dev-user", "Token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	if *role != middleware.RoleAdmin && *role != middleware.RoleEditor {
		log.Fatalf("Unsupported role %q (admin or editor)", *role)
	}

	// Same secret the API reads, from .env or the environment
	_ = godotenv.Load()
	secret := os.Getenv("AUTH_SECRET")
	if secret == "" {
		log.Fatal("AUTH_SECRET is not set; the API accepts no tokens without it")
	}

	token, err := middleware.IssueToken([]byte(secret), *subject, *role, *ttl)
	if err != nil {
		log.Fatal("Failed to sign token:", err)
	}

	fmt.Printf("Development token for role '%s' (expires in %s):\n", *role, *ttl)
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Use it with:")
	fmt.Printf("  curl -H \"Authorization: Bearer %s\" -X POST http://localhost:8080/api/recipes/generate -d '{\"ingredients\":[\"tomato\"]}'\n", token)
}
