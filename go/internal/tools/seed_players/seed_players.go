package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/auction/go/internal/dbconfig"
	"github.com/mcdev12/auction/go/internal/importer"
	"github.com/mcdev12/auction/go/internal/sqlutil"
)

func main() {
	path := flag.String("csv", "players.csv", "player list: name[,legio][,score] per line")
	flag.Parse()

	ctx := context.Background()

	// 1) Read the player list
	players, err := (&importer.CSVSource{Path: *path}).Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read players: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect to DB
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect error: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, importer.Schema); err != nil {
		fmt.Fprintf(os.Stderr, "create schema: %v\n", err)
		os.Exit(1)
	}

	// 3) Seed players in list order; ids preserve it for PostgresSource
	total, inserted, skipped, errs := len(players), 0, 0, 0
	for _, p := range players {
		var score *int
		var profile *importer.PlayerProfile
		if p.RecentScore > 0 {
			score = &p.RecentScore
			profile = &importer.PlayerProfile{WN8: score}
		}
		profileParam, err := importer.ProfileParam(profile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "encode profile %s: %v\n", p.Name, err)
			errs++
			continue
		}
		tag, err := pool.Exec(ctx, `
            INSERT INTO auction_players (name, restricted, recent_score, profile)
            VALUES ($1, $2, $3, $4)
            ON CONFLICT (name) DO NOTHING
        `, p.Name, p.Restricted, sqlutil.ToSqlInt32(score), profileParam)
		if err != nil {
			fmt.Fprintf(os.Stderr, "insert %s: %v\n", p.Name, err)
			errs++
			continue
		}
		if tag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}
	fmt.Printf(
		"Players seed: total=%d inserted=%d skipped=%d errors=%d\n",
		total, inserted, skipped, errs,
	)
	if errs > 0 {
		os.Exit(1)
	}
}
