package main

import (
	"errors"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/promptvault/promptvault/internal/config"
	"github.com/promptvault/promptvault/internal/models"
	"github.com/promptvault/promptvault/internal/utils"
)

// Creates the first admin account, or promotes an existing user:
//
//	go run scripts/create_admin.go admin@example.com [password]
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run scripts/create_admin.go <email> [password]")
		os.Exit(1)
	}
	email := os.Args[1]

	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	db, err := models.InitDB(&cfg.Database)
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		os.Exit(1)
	}

	var user models.User
	err = db.Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		if user.Role == "admin" {
			fmt.Printf("%s is already an admin\n", email)
			return
		}
		if err := db.Model(&user).Update("role", "admin").Error; err != nil {
			fmt.Printf("Failed to promote user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Promoted %s to admin\n", email)
	case errors.Is(err, gorm.ErrRecordNotFound):
		if len(os.Args) < 3 {
			fmt.Println("User not found; pass a password to create the account")
			os.Exit(1)
		}
		hash, err := utils.HashPassword(os.Args[2])
		if err != nil {
			fmt.Printf("Failed to hash password: %v\n", err)
			os.Exit(1)
		}
		user = models.User{
			Email:        email,
			PasswordHash: hash,
			Name:         "Administrator",
			Role:         "admin",
		}
		if err := db.Create(&user).Error; err != nil {
			fmt.Printf("Failed to create user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created admin account %s\n", email)
	default:
		fmt.Printf("Failed to look up user: %v\n", err)
		os.Exit(1)
	}
}
