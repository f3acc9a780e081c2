package walletstore

import (
	"sync"

	"token_trader/internal/domain/entity"
)

// MemoryStore is an in-memory port.WalletStorage, used in tests and when no
// persistence path is configured.
type MemoryStore struct {
	mu      sync.Mutex
	wallets map[string]entity.Wallet
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{wallets: make(map[string]entity.Wallet)}
}

func (s *MemoryStore) Put(w entity.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[w.WalletID] = w
	return nil
}

func (s *MemoryStore) Get(walletID string) (entity.Wallet, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[walletID]
	return w, ok, nil
}

func (s *MemoryStore) Delete(walletID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.wallets, walletID)
	return nil
}

func (s *MemoryStore) ListByOwner(ownerID string) ([]entity.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Wallet
	for _, w := range s.wallets {
		if w.OwnerID == ownerID {
			out = append(out, w)
		}
	}
	return out, nil
}
