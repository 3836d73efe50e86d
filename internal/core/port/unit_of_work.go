package port

import "context"

// TxRepositories groups the repositories participating in a transaction.
type TxRepositories struct {
	Users   UserRepository
	History PasswordHistoryRepository
}

// UnitOfWork executes fn inside a single atomic scope. Every repository
// call made through the supplied TxRepositories either commits as a
// whole or leaves no observable effect. Implementations must serialize
// concurrent units of work touching the same user row.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(repos TxRepositories) error) error
}
