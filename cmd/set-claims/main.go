package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/rs/zerolog/log"

	"courtmate/backend/internal/config"
	"courtmate/backend/internal/firebase"
)

// set-claims grants or revokes the admin claim read by GET /v1/me.
func main() {
	uid := flag.String("uid", "", "target firebase uid")
	revoke := flag.Bool("revoke", false, "remove the admin claim instead of setting it")
	flag.Parse()
	if *uid == "" {
		log.Fatal().Msg("uid is required: -uid=xxxxx")
	}

	ctx := context.Background()
	cfg := config.Load()

	app, err := firebase.NewApp(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("firebase.NewApp")
	}
	authClient, err := firebase.NewAuthClient(ctx, app)
	if err != nil {
		log.Fatal().Err(err).Msg("app.Auth")
	}

	user, err := authClient.GetUser(ctx, *uid)
	if err != nil {
		log.Fatal().Err(err).Msg("GetUser")
	}

	claims := adminClaims(user.CustomClaims, !*revoke)
	if err := authClient.SetCustomUserClaims(ctx, *uid, claims); err != nil {
		log.Fatal().Err(err).Msg("SetCustomUserClaims")
	}

	if *revoke {
		fmt.Println("ok: admin claims removed for", *uid)
		return
	}
	fmt.Println("ok: admin claims set for", *uid)
}

// adminClaims returns a copy of existing with the admin claims set or
// removed. Unrelated custom claims are kept.
func adminClaims(existing map[string]interface{}, grant bool) map[string]interface{} {
	out := make(map[string]interface{}, len(existing)+2)
	for k, v := range existing {
		out[k] = v
	}
	if grant {
		out["admin"] = true
		out["role"] = "admin"
		return out
	}
	delete(out, "admin")
	delete(out, "role")
	return out
}
