package sqlutil

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	tx.rolledBack = true
	return nil
}

type fakeDB struct {
	tx  *fakeTx
	err error
}

func (db *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	if db.err != nil {
		return nil, db.err
	}
	return db.tx, nil
}

func TestRunCommits(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{}}
	if err := Run(context.Background(), db, func(tx pgx.Tx) error { return nil }); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !db.tx.committed || db.tx.rolledBack {
		t.Errorf("committed = %v, rolledBack = %v", db.tx.committed, db.tx.rolledBack)
	}
}

func TestRunRollsBack(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{}}
	boom := errors.New("boom")
	err := Run(context.Background(), db, func(tx pgx.Tx) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want boom", err)
	}
	if db.tx.committed || !db.tx.rolledBack {
		t.Errorf("committed = %v, rolledBack = %v", db.tx.committed, db.tx.rolledBack)
	}
}

func TestRunBeginError(t *testing.T) {
	db := &fakeDB{err: errors.New("no connection")}
	called := false
	err := Run(context.Background(), db, func(tx pgx.Tx) error {
		called = true
		return nil
	})
	if err == nil || called {
		t.Errorf("err = %v, called = %v", err, called)
	}
}
