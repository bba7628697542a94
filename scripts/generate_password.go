package main

import (
	"flag"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/your-org/shopfront/internal/config"
	"github.com/your-org/shopfront/internal/pkg/auth"
)

// Prints a password hash accepted by the users table, for seeding or
// resetting an account by hand.
func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatal("Usage: go run scripts/generate_password.go [-cost N] <password>")
	}
	password := flag.Arg(0)

	manager := auth.NewPasswordManager(&config.Config{
		Security: config.SecurityConfig{BcryptCost: *cost},
	})
	if err := manager.ValidatePassword(password); err != nil {
		log.Fatalf("Invalid password: %v", err)
	}

	hash, err := manager.HashPassword(password)
	if err != nil {
		log.Fatal("Error generating hash:", err)
	}

	if err := manager.VerifyPassword(password, hash); err != nil {
		log.Fatal("Hash verification failed:", err)
	}

	fmt.Println(hash)
}
