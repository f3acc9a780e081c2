package entity

// Wallet is a stored signing identity. The private key is kept encrypted at
// rest; the plaintext exists only transiently while a signer is constructed.
type Wallet struct {
	WalletID            string `json:"walletId"`
	OwnerID             string `json:"ownerId"`
	Address             string `json:"address"`
	Name                string `json:"name,omitempty"`
	EncryptedPrivateKey string `json:"-"`
}

// WalletHandle is the externally visible projection of a Wallet. It never
// carries key material in any form.
type WalletHandle struct {
	WalletID string `json:"walletId"`
	Address  string `json:"address"`
	Name     string `json:"name,omitempty"`
}

// Handle strips the wallet down to its public projection.
func (w Wallet) Handle() WalletHandle {
	return WalletHandle{WalletID: w.WalletID, Address: w.Address, Name: w.Name}
}
