package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"token_trader/internal/app/port"
	"token_trader/internal/domain/entity"

	"github.com/ethereum/go-ethereum/crypto"
)

// WalletServiceImpl implements port.WalletService. Private keys are encrypted
// at rest with AES-256-GCM under a key derived from the configured secret;
// each encryption uses a fresh random nonce stored alongside the ciphertext.
type WalletServiceImpl struct {
	storage port.WalletStorage
	aead    cipher.AEAD
	logger  port.Logger
}

// NewWalletService creates a WalletService over the given storage. The secret
// is hashed to a 32-byte AES key; an empty secret is refused.
func NewWalletService(storage port.WalletStorage, secret string, logger port.Logger) (port.WalletService, error) {
	if secret == "" {
		return nil, fmt.Errorf("wallet store secret must not be empty")
	}
	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to initialize wallet cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GCM mode: %w", err)
	}
	return &WalletServiceImpl{storage: storage, aead: aead, logger: logger}, nil
}

// Generate creates a fresh key pair and stores it encrypted.
func (s *WalletServiceImpl) Generate(ownerID, name string) (entity.WalletHandle, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return entity.WalletHandle{}, fmt.Errorf("failed to generate key: %w", err)
	}
	return s.store(ownerID, name, key)
}

// Import validates the supplied key material before acceptance; invalid hex
// or a value outside the curve order fails with InvalidKey and stores nothing.
func (s *WalletServiceImpl) Import(ownerID, name, rawPrivateKey string) (entity.WalletHandle, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(rawPrivateKey), "0x")
	key, err := crypto.HexToECDSA(trimmed)
	if err != nil {
		return entity.WalletHandle{}, entity.NewTradeError(entity.ErrInvalidKey, "supplied private key cannot construct a signer", err)
	}
	return s.store(ownerID, name, key)
}

func (s *WalletServiceImpl) store(ownerID, name string, key *ecdsa.PrivateKey) (entity.WalletHandle, error) {
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	encrypted, err := s.encrypt(crypto.FromECDSA(key))
	if err != nil {
		return entity.WalletHandle{}, fmt.Errorf("failed to encrypt private key: %w", err)
	}

	walletID, err := randomID()
	if err != nil {
		return entity.WalletHandle{}, err
	}

	w := entity.Wallet{
		WalletID:            walletID,
		OwnerID:             ownerID,
		Address:             address,
		Name:                name,
		EncryptedPrivateKey: encrypted,
	}
	if err := s.storage.Put(w); err != nil {
		return entity.WalletHandle{}, fmt.Errorf("failed to persist wallet: %w", err)
	}
	s.logger.Info("Wallet stored", "owner", ownerID, "wallet_id", walletID, "address", address)
	return w.Handle(), nil
}

// List returns the owner's wallet handles (no key material).
func (s *WalletServiceImpl) List(ownerID string) ([]entity.WalletHandle, error) {
	wallets, err := s.storage.ListByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	handles := make([]entity.WalletHandle, 0, len(wallets))
	for _, w := range wallets {
		handles = append(handles, w.Handle())
	}
	return handles, nil
}

// Get returns the stored wallet record after an ownership check.
func (s *WalletServiceImpl) Get(ownerID, walletID string) (entity.Wallet, error) {
	w, ok, err := s.storage.Get(walletID)
	if err != nil {
		return entity.Wallet{}, err
	}
	if !ok || w.OwnerID != ownerID {
		return entity.Wallet{}, entity.NewTradeError(entity.ErrWalletNotFound, "no such wallet for owner", nil)
	}
	return w, nil
}

// Reveal decrypts the private key transiently for signer construction only.
// The caller must not retain the key beyond the signing scope.
func (s *WalletServiceImpl) Reveal(walletID string) (*ecdsa.PrivateKey, error) {
	w, ok, err := s.storage.Get(walletID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, entity.NewTradeError(entity.ErrWalletNotFound, "no such wallet", nil)
	}
	plaintext, err := s.decrypt(w.EncryptedPrivateKey)
	if err != nil {
		return nil, entity.NewTradeError(entity.ErrInvalidKey, "stored key material cannot be decrypted", err)
	}
	key, err := crypto.ToECDSA(plaintext)
	if err != nil {
		return nil, entity.NewTradeError(entity.ErrInvalidKey, "stored key material is not a valid key", err)
	}
	return key, nil
}

// Delete removes the wallet after an ownership check.
func (s *WalletServiceImpl) Delete(ownerID, walletID string) error {
	w, ok, err := s.storage.Get(walletID)
	if err != nil {
		return err
	}
	if !ok || w.OwnerID != ownerID {
		return entity.NewTradeError(entity.ErrWalletNotFound, "no such wallet for owner", nil)
	}
	return s.storage.Delete(walletID)
}

// encrypt seals plaintext with a fresh nonce; output is hex(nonce||ciphertext).
func (s *WalletServiceImpl) encrypt(plaintext []byte) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, plaintext, nil)
	return hex.EncodeToString(sealed), nil
}

func (s *WalletServiceImpl) decrypt(encoded string) ([]byte, error) {
	sealed, err := hex.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("malformed ciphertext encoding: %w", err)
	}
	ns := s.aead.NonceSize()
	if len(sealed) < ns {
		return nil, fmt.Errorf("ciphertext shorter than nonce")
	}
	return s.aead.Open(nil, sealed[:ns], sealed[ns:], nil)
}

func randomID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate wallet id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
