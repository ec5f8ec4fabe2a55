package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/mcdev12/guessword/go/internal/dbconfig"
	"github.com/mcdev12/guessword/go/internal/sqlutil"
	"github.com/mcdev12/guessword/go/internal/words"
)

const createWordsSQL = `
    CREATE TABLE IF NOT EXISTS words (
      word       TEXT PRIMARY KEY,
      created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )
`

func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	path := "word_list.txt"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	// 1) Load and normalize the word list
	bank, err := words.LoadFile(path, words.MinLength)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load words: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig
	pool, err := dbconfig.NewConfigFromEnv().NewPool(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Create the table and upsert in one transaction
	var (
		total    = bank.Len()
		inserted int
		skipped  int
	)

	err = sqlutil.Run(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, createWordsSQL); err != nil {
			return fmt.Errorf("create words table: %w", err)
		}
		for _, w := range bank.Words() {
			cmdTag, err := tx.Exec(ctx, `INSERT INTO words (word) VALUES ($1) ON CONFLICT (word) DO NOTHING`, w)
			if err != nil {
				return fmt.Errorf("insert word %s: %w", w, err)
			}
			if cmdTag.RowsAffected() == 1 {
				inserted++
			} else {
				skipped++
			}
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed words: %v\n", err)
		os.Exit(1)
	}

	// 4) Print summary
	fmt.Printf(
		"Words seed complete: %d total, %d inserted, %d skipped\n",
		total, inserted, skipped,
	)
}
