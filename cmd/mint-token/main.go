// Command mint-token prints a signed access token for local testing against
// the api. It reads the same PARTNERZ_JWT_* settings as the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/partnerz-backend/pkg/auth"
	"github.com/angelmondragon/partnerz-backend/pkg/config"
	"github.com/angelmondragon/partnerz-backend/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "mint-token", Format: logger.FormatConsole, Output: os.Stderr})
	_ = godotenv.Load()

	member := flag.String("member", "", "member id to act as (token subject)")
	name := flag.String("name", "", "display name claim")
	flag.Parse()

	ctx := logg.WithMemberID(context.Background(), *member)

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}
	if cfg.App.IsProd() {
		logg.Warn(ctx, "refusing to mint tokens in production")
		os.Exit(1)
	}

	token, err := auth.MintAccessToken(cfg.JWT, time.Now(), auth.AccessTokenPayload{
		MemberID:    *member,
		DisplayName: *name,
	})
	if err != nil {
		logg.Error(ctx, "failed to mint token", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
