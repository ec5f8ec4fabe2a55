package words

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// Querier is the slice of pgxpool.Pool the database loader needs
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const selectWordsSQL = `SELECT word FROM words`

// Normalize trims and upper-cases raw entries and keeps those at least minLength
// runes long. A minLength below 1 falls back to MinLength.
func Normalize(raw []string, minLength int) []string {
	if minLength < 1 {
		minLength = MinLength
	}
	return lo.FilterMap(raw, func(entry string, _ int) (string, bool) {
		w := strings.ToUpper(strings.TrimSpace(entry))
		return w, utf8.RuneCountInString(w) >= minLength
	})
}

// Load reads a newline-delimited word source into a bank
func Load(r io.Reader, minLength int) (*Bank, error) {
	var raw []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		raw = append(raw, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan words: %w", err)
	}

	bank := NewBank(Normalize(raw, minLength))
	if bank.Len() == 0 {
		return nil, ErrNoWords
	}
	return bank, nil
}

// LoadFile loads the word list at path
func LoadFile(path string, minLength int) (*Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ConfigurationError{Source: path, Err: err}
	}
	defer f.Close()

	bank, err := Load(f, minLength)
	if err != nil {
		return nil, &ConfigurationError{Source: path, Err: err}
	}

	log.Info().
		Str("source", path).
		Int("words", bank.Len()).
		Msg("word list loaded")
	return bank, nil
}

// LoadFromDatabase loads every row of the words table
func LoadFromDatabase(ctx context.Context, q Querier, minLength int) (*Bank, error) {
	const source = "postgres:words"

	rows, err := q.Query(ctx, selectWordsSQL)
	if err != nil {
		return nil, &ConfigurationError{Source: source, Err: fmt.Errorf("query words: %w", err)}
	}
	defer rows.Close()

	var raw []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, &ConfigurationError{Source: source, Err: fmt.Errorf("scan word: %w", err)}
		}
		raw = append(raw, w)
	}
	if err := rows.Err(); err != nil {
		return nil, &ConfigurationError{Source: source, Err: fmt.Errorf("read words: %w", err)}
	}

	bank := NewBank(Normalize(raw, minLength))
	if bank.Len() == 0 {
		return nil, &ConfigurationError{Source: source, Err: ErrNoWords}
	}

	log.Info().
		Str("source", source).
		Int("words", bank.Len()).
		Msg("word list loaded")
	return bank, nil
}
