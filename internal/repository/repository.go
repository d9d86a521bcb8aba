package repository

import (
	"github.com/twinside/backend/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	Account AccountRepository
	Token   TokenRepository
	Finance FinanceRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		Account: NewAccountRepository(db),
		Token:   NewTokenRepository(db),
		Finance: NewFinanceRepository(db),
	}
}
