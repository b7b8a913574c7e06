// Package dbtest provides test doubles for the db package.
package dbtest

import "context"

// Transactor is an in-memory db.Transactor. Snapshot is called when a
// transaction begins and must return a function that restores the captured
// state; it runs when fn fails so fakes behave like a rolled back
// transaction.
type Transactor struct {
	Snapshot func() (restore func())

	Commits   int
	Rollbacks int
	active    bool
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if t.active {
		return fn(ctx)
	}

	restore := func() {}
	if t.Snapshot != nil {
		restore = t.Snapshot()
	}

	t.active = true
	err := fn(ctx)
	t.active = false

	if err != nil {
		restore()
		t.Rollbacks++
		return err
	}
	t.Commits++
	return nil
}
