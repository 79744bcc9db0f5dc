// Package memory is a mutex-guarded in-process implementation of every
// repository port. It backs STORAGE_DRIVER=memory and the service tests.
package memory

import (
	"sync"

	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/mbg_dapur_ledger/internal/core/ports/repositories"
)

// Store holds all ledger state. A single mutex serializes reads and writes, so
// every multi-row write is atomic.
type Store struct {
	mu sync.Mutex

	accounts     map[string]domain.Account
	accountCodes map[string]string // code -> account id

	entries   map[string]domain.JournalEntry
	sequences map[string]int64 // period key -> last value

	users     map[string]domain.User
	usernames map[string]string // username -> user id
}

var (
	_ portsrepo.AccountRepositoryFacade = (*Store)(nil)
	_ portsrepo.JournalRepositoryFacade = (*Store)(nil)
	_ portsrepo.ReportingRepository     = (*Store)(nil)
	_ portsrepo.UserRepositoryFacade    = (*Store)(nil)
)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		accounts:     make(map[string]domain.Account),
		accountCodes: make(map[string]string),
		entries:      make(map[string]domain.JournalEntry),
		sequences:    make(map[string]int64),
		users:        make(map[string]domain.User),
		usernames:    make(map[string]string),
	}
}

// NewRepositoryProvider wires s into every repository slot.
func NewRepositoryProvider(s *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:   s,
		JournalRepo:   s,
		ReportingRepo: s,
		UserRepo:      s,
	}
}
