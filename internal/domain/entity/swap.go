package entity

import "math/big"

// Slippage bounds in basis points: 0.1% to 50%.
const (
	MinSlippageBps = 10
	MaxSlippageBps = 5000
)

// SwapShape identifies which router call a swap maps to.
type SwapShape int

const (
	SwapNativeToToken SwapShape = iota
	SwapTokenToNative
	SwapTokenToToken
)

func (s SwapShape) String() string {
	switch s {
	case SwapNativeToToken:
		return "native_to_token"
	case SwapTokenToNative:
		return "token_to_native"
	case SwapTokenToToken:
		return "token_to_token"
	}
	return "unknown"
}

// SwapRequest is the caller-constructed input to the swap pipeline.
// FromToken and ToToken are symbols or addresses; resolution happens inside
// the pipeline. Amount is a human decimal string in the source asset's units.
type SwapRequest struct {
	OwnerID     string `json:"ownerId"`
	WalletID    string `json:"walletId"`
	FromToken   string `json:"fromToken"`
	ToToken     string `json:"toToken"`
	Amount      string `json:"amount"`
	SlippageBps int64  `json:"slippageBps"`
	Network     string `json:"network"`
}

// SwapStatus is the terminal status of a submitted swap.
type SwapStatus string

const (
	SwapStatusSuccess SwapStatus = "SUCCESS"
	SwapStatusFailed  SwapStatus = "FAILED"
)

// SwapReceipt is the normalized pipeline output, produced exactly once per
// successful submission and immutable after creation.
type SwapReceipt struct {
	TxHash         string     `json:"txHash"`
	Status         SwapStatus `json:"status"`
	Shape          SwapShape  `json:"-"`
	FromToken      string     `json:"fromToken"`
	ToToken        string     `json:"toToken"`
	AmountIn       *big.Int   `json:"-"`
	AmountInStr    string     `json:"amountIn"`
	AmountOut      *big.Int   `json:"-"`
	AmountOutStr   string     `json:"amountOut"`
	PriceImpactPct float64    `json:"priceImpactPct"`
	GasUsed        uint64     `json:"gasUsed"`
	GasPrice       string     `json:"gasPrice"`
	ExplorerURL    string     `json:"explorerUrl,omitempty"`
}

// SwapStage is a state of the executor's per-swap state machine.
type SwapStage string

const (
	StageInit         SwapStage = "INIT"
	StageAmountValid  SwapStage = "AMOUNT_VALIDATED"
	StageBalanceCheck SwapStage = "BALANCE_CHECKED"
	StageApproved     SwapStage = "APPROVED"
	StageQuoted       SwapStage = "QUOTED"
	StageGasEstimated SwapStage = "GAS_ESTIMATED"
	StageSubmitted    SwapStage = "SUBMITTED"
	StageConfirmed    SwapStage = "CONFIRMED"
	StageFailed       SwapStage = "FAILED"
)

// SwapEvent is a stage-transition notification emitted by the executor.
// Callers consume these lazily from a channel; the executor never blocks on
// a slow consumer.
type SwapEvent struct {
	Stage  SwapStage `json:"stage"`
	Detail string    `json:"detail,omitempty"`
	TxHash string    `json:"txHash,omitempty"`
}

// Quote is the output of the quote engine for a direct pair.
type Quote struct {
	Path           []string `json:"path"`
	AmountIn       *big.Int `json:"-"`
	AmountOut      *big.Int `json:"-"`
	AmountInStr    string   `json:"amountIn"`
	AmountOutStr   string   `json:"amountOut"`
	Rate           string   `json:"rate"` // output units per input unit, decimal-normalized
	PriceImpactPct float64  `json:"priceImpactPct"`
	ImpactWarning  bool     `json:"impactWarning"`
}
