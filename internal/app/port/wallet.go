package port

import (
	"crypto/ecdsa"

	"token_trader/internal/domain/entity"
)

// WalletStorage is the persistence primitive behind the wallet store:
// append/lookup keyed by wallet id, list keyed by owner. Implementations must
// be safe for concurrent use.
type WalletStorage interface {
	Put(wallet entity.Wallet) error
	Get(walletID string) (entity.Wallet, bool, error)
	Delete(walletID string) error
	ListByOwner(ownerID string) ([]entity.Wallet, error)
}

// WalletService is the key-custody surface. Reveal decrypts transiently for
// signer construction only; the plaintext key is never stored or logged.
type WalletService interface {
	Generate(ownerID, name string) (entity.WalletHandle, error)
	Import(ownerID, name, rawPrivateKey string) (entity.WalletHandle, error)
	List(ownerID string) ([]entity.WalletHandle, error)
	Get(ownerID, walletID string) (entity.Wallet, error)
	Reveal(walletID string) (*ecdsa.PrivateKey, error)
	Delete(ownerID, walletID string) error
}
