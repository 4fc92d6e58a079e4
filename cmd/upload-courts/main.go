package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"courtmate/backend/internal/config"
	"courtmate/backend/internal/domain/courts"
	"courtmate/backend/internal/firebase"
)

// upload-courts replaces the spreadsheet contents with a local JSON court list.
func main() {
	cfg := config.Load()

	file := flag.String("file", cfg.CourtsSeedFile, "court list json")
	spreadsheetID := flag.String("spreadsheet", cfg.SheetsSpreadsheetID, "target spreadsheet id")
	rng := flag.String("range", cfg.SheetsRange, "target range")
	flag.Parse()
	if *spreadsheetID == "" {
		log.Fatal().Msg("spreadsheet id is required: -spreadsheet=xxxxx or SHEETS_SPREADSHEET_ID")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("read court list")
	}
	var list []courts.TennisCourt
	if err := json.Unmarshal(data, &list); err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("parse court list")
	}
	for i := range list {
		list[i].Trim()
	}

	ctx := context.Background()
	svc, err := firebase.NewSheetsService(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("sheets client")
	}
	src := courts.NewSheetsSource(svc, *spreadsheetID, *rng)

	if err := src.Write(ctx, list); err != nil {
		log.Fatal().Err(err).Msg("upload failed")
	}
	fmt.Printf("ok: %d courts uploaded to %s\n", len(list), src.URL())
}
