package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	mw "github.com/formrelay/relay/internal/api/middleware"
)

var (
	secret string
	ttl    time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "token",
	Short:         "Prints an admin bearer token for /test and /logs",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if secret == "" {
			secret = os.Getenv("ADMIN_JWT_SECRET")
		}
		if secret == "" {
			return errors.New("no secret: pass --secret or set ADMIN_JWT_SECRET")
		}
		token, err := mw.NewAdminToken([]byte(secret), ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&secret, "secret", "", "HMAC secret (defaults to ADMIN_JWT_SECRET)")
	rootCmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		os.Exit(1)
	}
}
