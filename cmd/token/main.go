package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/shelenderrkumar/healthcare-translation/internal/auth"
)

// Prints a bearer token signed with API_JWT_SECRET
func main() {
	godotenv.Load()

	subject := flag.String("sub", "", "token subject, e.g. a clinician or kiosk id")
	role := flag.String("role", auth.RoleClinician, "clinician or kiosk")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	authenticator, err := auth.NewAuthenticator(os.Getenv("API_JWT_SECRET"), *ttl)
	if err != nil {
		logger.Fatal("Invalid API_JWT_SECRET", zap.Error(err))
	}

	token, err := authenticator.GenerateToken(*subject, *role)
	if err != nil {
		logger.Fatal("Failed to generate token", zap.Error(err))
	}

	fmt.Println(token)
}
