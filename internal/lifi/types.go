package lifi

// QuoteRequest asks the aggregator for a single route between two assets.
type QuoteRequest struct {
	FromChain   int64
	ToChain     int64
	FromToken   string
	ToToken     string
	FromAmount  string // raw integer units of the source asset
	FromAddress string
	ToAddress   string
	Slippage    float64
}

// Quote is one executable route returned by /quote. The struct doubles as the
// opaque route handle handed back when executing.
type Quote struct {
	ID                 string      `json:"id"`
	Tool               string      `json:"tool"`
	Action             Action      `json:"action"`
	Estimate           Estimate    `json:"estimate"`
	TransactionRequest *TxRequest  `json:"transactionRequest,omitempty"`
	IncludedSteps      []QuoteStep `json:"includedSteps,omitempty"`
}

// QuoteStep is a nested hop inside a composite route.
type QuoteStep struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Tool string `json:"tool"`
}

// Action echoes the pair the quote covers.
type Action struct {
	FromChainID int64   `json:"fromChainId"`
	ToChainID   int64   `json:"toChainId"`
	FromToken   Token   `json:"fromToken"`
	ToToken     Token   `json:"toToken"`
	FromAmount  string  `json:"fromAmount"`
	Slippage    float64 `json:"slippage"`
}

// Token identifies an asset within a quote.
type Token struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
	ChainID  int64  `json:"chainId"`
	PriceUSD string `json:"priceUSD"`
}

// Estimate carries the aggregator's output and timing projections.
type Estimate struct {
	FromAmount        string    `json:"fromAmount"`
	ToAmount          string    `json:"toAmount"`
	ToAmountMin       string    `json:"toAmountMin"`
	ApprovalAddress   string    `json:"approvalAddress"`
	ExecutionDuration float64   `json:"executionDuration"`
	FeeCosts          []FeeCost `json:"feeCosts"`
	GasCosts          []GasCost `json:"gasCosts"`
}

// FeeCost is a single fee line item in USD terms.
type FeeCost struct {
	Name      string `json:"name"`
	AmountUSD string `json:"amountUsd"`
}

// GasCost estimates source-chain gas in USD terms.
type GasCost struct {
	Type      string `json:"type"`
	AmountUSD string `json:"amountUsd"`
}

// TxRequest is the ready-to-sign transaction for an EVM leg. Solana legs carry
// the serialized transaction in Data instead.
type TxRequest struct {
	To       string `json:"to"`
	Data     string `json:"data"`
	Value    string `json:"value"`
	GasPrice string `json:"gasPrice"`
	GasLimit string `json:"gasLimit"`
	ChainID  int64  `json:"chainId"`
}

// Transfer status values reported by /status.
const (
	StatusNotFound = "NOT_FOUND"
	StatusInvalid  = "INVALID"
	StatusPending  = "PENDING"
	StatusDone     = "DONE"
	StatusFailed   = "FAILED"
)

// Status is the cross-chain transfer state for a submitted leg.
type Status struct {
	Status           string      `json:"status"`
	Substatus        string      `json:"substatus"`
	SubstatusMessage string      `json:"substatusMessage"`
	Sending          *StatusSide `json:"sending,omitempty"`
	Receiving        *StatusSide `json:"receiving,omitempty"`
}

// StatusSide describes one end of an in-flight transfer.
type StatusSide struct {
	TxHash  string `json:"txHash"`
	Amount  string `json:"amount"`
	ChainID int64  `json:"chainId"`
}
