// Command token mints an access token for a user, for local testing.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"crimewatch/config"
	"crimewatch/internal/auth"
	"crimewatch/internal/database"
	"crimewatch/internal/logger"
	"crimewatch/internal/repository"
)

func main() {
	email := flag.String("email", "", "user email (required)")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.Log)
	if *email == "" {
		flag.Usage()
		os.Exit(2)
	}
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Error("database", "err", err)
		os.Exit(1)
	}
	u, err := repository.NewUserRepository(db).GetByEmail(context.Background(), *email)
	if err != nil {
		log.Error("lookup user", "email", *email, "err", err)
		os.Exit(1)
	}
	tok, err := auth.GenerateAccessToken(&cfg.JWT, u.ID, u.Email, u.Role)
	if err != nil {
		log.Error("sign token", "err", err)
		os.Exit(1)
	}
	log.Info("token issued", "user_id", u.ID, "admin", u.IsAdmin(), "expires_in", cfg.JWT.AccessExpiry)
	fmt.Println(tok)
}
