// Command createadmin bootstraps an admin account so the portal has at
// least one privileged login. It connects, migrates, inserts, and exits.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/aaronnicolas/CSSECDV-Machine-Project/db"
	"github.com/aaronnicolas/CSSECDV-Machine-Project/internal/auth/domain"
	repo "github.com/aaronnicolas/CSSECDV-Machine-Project/internal/auth/repository/postgres"
	"github.com/aaronnicolas/CSSECDV-Machine-Project/internal/auth/service"
	"github.com/google/uuid"
)

func main() {
	dbURL := mustGetEnv("DB_URL")
	username := getEnv("ADMIN_USERNAME", "admin")
	email := getEnv("ADMIN_EMAIL", "admin@localhost")
	password := mustGetEnv("ADMIN_PASSWORD")
	answer1 := getEnv("ADMIN_SECURITY_ANSWER_1", "changeme")
	answer2 := getEnv("ADMIN_SECURITY_ANSWER_2", "changeme")

	ctx := context.Background()

	if err := db.Migrate(ctx, dbURL); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	pool, err := db.NewPostgresPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer pool.Close()

	accounts := repo.NewAccountRepository(pool)

	existing, err := accounts.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		log.Fatalf("lookup failed: %v", err)
	}
	if existing != nil {
		log.Fatalf("account %q already exists", username)
	}

	now := time.Now()
	acc := &domain.Account{
		ID:                uuid.NewString(),
		Username:          username,
		Email:             email,
		Role:              domain.RoleAdmin,
		PasswordChangedAt: now,
		CreatedAt:         now,
		SecurityQuestion1: domain.SecurityQuestions[0],
		SecurityQuestion2: domain.SecurityQuestions[1],
	}

	if acc.PasswordSalt, err = service.NewSalt(); err != nil {
		log.Fatalf("salt generation failed: %v", err)
	}
	if acc.PasswordHash, err = service.HashSecret(password, acc.PasswordSalt); err != nil {
		log.Fatalf("password hashing failed: %v", err)
	}
	if acc.SecurityAnswerSalt1, err = service.NewSalt(); err != nil {
		log.Fatalf("salt generation failed: %v", err)
	}
	if acc.SecurityAnswerHash1, err = service.HashSecret(service.NormalizeAnswer(answer1), acc.SecurityAnswerSalt1); err != nil {
		log.Fatalf("answer hashing failed: %v", err)
	}
	if acc.SecurityAnswerSalt2, err = service.NewSalt(); err != nil {
		log.Fatalf("salt generation failed: %v", err)
	}
	if acc.SecurityAnswerHash2, err = service.HashSecret(service.NormalizeAnswer(answer2), acc.SecurityAnswerSalt2); err != nil {
		log.Fatalf("answer hashing failed: %v", err)
	}

	if err := accounts.Create(ctx, acc); err != nil {
		log.Fatalf("failed to create admin account: %v", err)
	}

	log.Printf("Admin user %q created successfully.", username)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func mustGetEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return value
}
