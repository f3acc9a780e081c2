package entity

import "math/big"

// TransferRequest describes a native or token send.
// Asset is a symbol or address; the native symbol selects a plain value
// transfer, anything else goes through the ERC-20 transfer call.
type TransferRequest struct {
	OwnerID  string `json:"ownerId"`
	WalletID string `json:"walletId"`
	Asset    string `json:"asset"`
	To       string `json:"to"`
	Amount   string `json:"amount"`
	Network  string `json:"network"`
}

// TransferReceipt is the normalized result of a submitted transfer.
type TransferReceipt struct {
	TxHash      string     `json:"txHash"`
	Status      SwapStatus `json:"status"`
	Asset       string     `json:"asset"`
	To          string     `json:"to"`
	Amount      *big.Int   `json:"-"`
	AmountStr   string     `json:"amount"`
	GasUsed     uint64     `json:"gasUsed"`
	ExplorerURL string     `json:"explorerUrl,omitempty"`
}
