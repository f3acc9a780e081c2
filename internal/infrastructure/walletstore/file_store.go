package walletstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"token_trader/internal/app/port"
	"token_trader/internal/domain/entity"
)

// storedWallet is the on-disk representation. The private key field here is
// always the encrypted form; plaintext never touches this file.
type storedWallet struct {
	WalletID            string `json:"walletId"`
	OwnerID             string `json:"ownerId"`
	Address             string `json:"address"`
	Name                string `json:"name,omitempty"`
	EncryptedPrivateKey string `json:"encryptedPrivateKey"`
}

// FileStore implements port.WalletStorage over a single JSON file. Writes
// rewrite the whole file; the wallet set is small enough that this is fine.
type FileStore struct {
	path    string
	mu      sync.Mutex
	wallets map[string]storedWallet
	logger  port.Logger
}

// NewFileStore loads (or initializes) the wallet file at path.
func NewFileStore(path string, logger port.Logger) (*FileStore, error) {
	s := &FileStore{
		path:    path,
		wallets: make(map[string]storedWallet),
		logger:  logger,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("Wallet file does not exist yet, starting empty", "path", path)
			return s, nil
		}
		return nil, fmt.Errorf("failed to read wallet file %s: %w", path, err)
	}

	var rows []storedWallet
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wallet file %s: %w", path, err)
	}
	for _, w := range rows {
		s.wallets[w.WalletID] = w
	}
	logger.Info("Wallets loaded successfully from file", "count", len(rows), "path", path)
	return s, nil
}

func (s *FileStore) Put(w entity.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[w.WalletID] = storedWallet{
		WalletID:            w.WalletID,
		OwnerID:             w.OwnerID,
		Address:             w.Address,
		Name:                w.Name,
		EncryptedPrivateKey: w.EncryptedPrivateKey,
	}
	return s.persistLocked()
}

func (s *FileStore) Get(walletID string) (entity.Wallet, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[walletID]
	if !ok {
		return entity.Wallet{}, false, nil
	}
	return toEntity(w), true, nil
}

func (s *FileStore) Delete(walletID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.wallets[walletID]; !ok {
		return nil
	}
	delete(s.wallets, walletID)
	return s.persistLocked()
}

func (s *FileStore) ListByOwner(ownerID string) ([]entity.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Wallet
	for _, w := range s.wallets {
		if w.OwnerID == ownerID {
			out = append(out, toEntity(w))
		}
	}
	return out, nil
}

func (s *FileStore) persistLocked() error {
	rows := make([]storedWallet, 0, len(s.wallets))
	for _, w := range s.wallets {
		rows = append(rows, w)
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal wallets: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create wallet directory %s: %w", dir, err)
		}
	}
	// 0600: the file holds encrypted key material.
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write wallet file %s: %w", s.path, err)
	}
	return nil
}

func toEntity(w storedWallet) entity.Wallet {
	return entity.Wallet{
		WalletID:            w.WalletID,
		OwnerID:             w.OwnerID,
		Address:             w.Address,
		Name:                w.Name,
		EncryptedPrivateKey: w.EncryptedPrivateKey,
	}
}
