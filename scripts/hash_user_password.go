package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// Quick utility to generate a bcrypt hash for a user password
// Usage: go run scripts/hash_user_password.go <password> [email]
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run scripts/hash_user_password.go <password> [email]")
		os.Exit(1)
	}

	password := os.Args[1]
	email := "user@example.com"
	if len(os.Args) > 2 {
		email = os.Args[2]
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Printf("Error generating hash: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Bcrypt Hash: %s\n", string(hashedPassword))
	fmt.Printf("\nTo update in MongoDB, run:\n")
	fmt.Printf("db.users.updateOne(\n")
	fmt.Printf("  {\"email\": \"%s\"},\n", email)
	fmt.Printf("  {$set: {\"passwordHash\": \"%s\"}}\n", string(hashedPassword))
	fmt.Printf(")\n")
}
