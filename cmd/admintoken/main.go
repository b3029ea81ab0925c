// Command admintoken prints a bearer token for the admin listing routes.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/3dmm/site/internal/logging"
	"github.com/3dmm/site/pkg/auth"
)

func main() {
	subject := flag.String("sub", "admin", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	// Only the secret is needed, so DATABASE_URL is not required here.
	_ = godotenv.Load()
	var cfg struct {
		Secret string `env:"ADMIN_JWT_SECRET,required"`
	}
	if err := env.Parse(&cfg); err != nil {
		logging.Fatal("failed to load config", "error", err)
	}

	token, err := auth.MintAdminToken(*subject, []byte(cfg.Secret), *ttl)
	if err != nil {
		logging.Fatal("mint token failed", "error", err)
	}
	fmt.Fprintln(os.Stdout, token)
}
