package domain

// TradeVerification is the outcome of checking a client trade claim against
// the chain. Amounts are chain-observed; the client's number is never copied here.
type TradeVerification struct {
	Valid               bool
	Signature           string
	Actor               string
	Mint                string
	Direction           TradeDirection
	ResolvedSolAmount   float64 // SOL moved by the trade, network fee excluded
	ResolvedTokenAmount float64 // absolute token delta of the actor, UI units
	Slot                int64
	BlockTime           int64
	Reason              string // failure reason, empty when valid
}

// CreationVerification is the outcome of checking a token creation transaction.
type CreationVerification struct {
	Valid     bool
	Signature string
	Creator   string
	Mint      string
	Decimals  int
	Slot      int64
	BlockTime int64
	Reason    string
}
