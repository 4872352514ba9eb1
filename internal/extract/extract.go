package extract

import (
	"github.com/shopspring/decimal"
)

// Direction is the money flow as seen from the owner's account.
type Direction string

const (
	Debit  Direction = "debit"
	Credit Direction = "credit"
)

// Network is the payment rail a transaction travelled on.
type Network string

const (
	NetworkUPI        Network = "UPI"
	NetworkCard       Network = "CARD"
	NetworkIMPS       Network = "IMPS"
	NetworkNEFT       Network = "NEFT"
	NetworkRTGS       Network = "RTGS"
	NetworkNetbanking Network = "NETBANKING"
	NetworkCash       Network = "CASH"
	NetworkWallet     Network = "WALLET"
	NetworkCheque     Network = "CHEQUE"
	NetworkUnknown    Network = "UNKNOWN"
)

// ParseNetwork maps free-form payment method names to a Network.
func ParseNetwork(s string) Network {
	switch normalizeKey(s) {
	case "upi":
		return NetworkUPI
	case "card", "credit card", "debit card", "credit_card", "debit_card":
		return NetworkCard
	case "imps":
		return NetworkIMPS
	case "neft":
		return NetworkNEFT
	case "rtgs":
		return NetworkRTGS
	case "netbanking", "net banking", "net_banking":
		return NetworkNetbanking
	case "cash":
		return NetworkCash
	case "wallet":
		return NetworkWallet
	case "cheque", "check":
		return NetworkCheque
	}

	return NetworkUnknown
}

// Method records which engine produced a candidate.
type Method string

const (
	MethodRegex  Method = "regex"
	MethodAI     Method = "ai"
	MethodManual Method = "manual"
)

// Candidate is the normalized, not yet classified result of parsing one raw signal.
// A zero Amount means no amount was found.
type Candidate struct {
	Amount        decimal.Decimal
	Counterparty  string
	Handle        string // full name@provider when the counterparty came from a payment handle
	Network       Network
	ReferenceID   string
	MaskedAccount string
	Balance       *decimal.Decimal
	Direction     Direction
	Method        Method
}

// AmountPlaces is the precision amounts are stored with.
const AmountPlaces = 2

// RoundAmount rounds d to AmountPlaces.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(AmountPlaces)
}

// HasAmount reports whether the amount is still positive once rounded for storage.
func (c Candidate) HasAmount() bool {
	return RoundAmount(c.Amount).IsPositive()
}
