package store

import "context"

// Stores groups the stores that share one connection or transaction.
type Stores struct {
	Cards     CardStore
	Decks     DeckStore
	Folders   FolderStore
	Languages LanguageStore
}

// Transactor hands out stores, either bound to the plain connection or to a
// transaction that commits only when the callback succeeds.
type Transactor interface {
	// Stores returns stores that run each call in its own implicit transaction.
	Stores() Stores

	// InTx runs fn with stores bound to a single transaction. The transaction
	// is committed when fn returns nil and rolled back otherwise, including on panic.
	// fn must not call InTx again.
	InTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}
