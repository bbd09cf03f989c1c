package proto

import (
	"encoding/json"
	"fmt"
)

// Payload is a structured financial data block attached to an assistant
// message. The client core passes it through to the rendering layer
// unmodified, except that transaction items are normalized by the gateway
// before they reach a message log.
type Payload interface {
	isPayload()
}

type PayloadType string

const (
	PayloadTypeBalance       PayloadType = "balance_card"
	PayloadTypeExchangeRates PayloadType = "exchange_rates_card"
	PayloadTypeInterestRates PayloadType = "interest_rates_card"
	PayloadTypeFees          PayloadType = "fees_card"
	PayloadTypeATMBranch     PayloadType = "atm_branch_card"
	PayloadTypeCardInfo      PayloadType = "card_info_card"
	PayloadTypeTransactions  PayloadType = "transactions_card"
	PayloadTypeUserProfile   PayloadType = "user_profile_card"
)

type BalanceCard struct {
	AccountID   int64   `json:"account_id"`
	AccountType string  `json:"account_type"`
	Balance     float64 `json:"balance"`
	Formatted   string  `json:"balance_formatted"`
	Currency    string  `json:"currency"`
	Status      string  `json:"status"`
}

func (BalanceCard) isPayload() {}

type ExchangeRate struct {
	Code string  `json:"code"`
	Buy  float64 `json:"buy"`
	Sell float64 `json:"sell"`
}

type ExchangeRatesCard struct {
	Base  string         `json:"base"`
	AsOf  int64          `json:"as_of"`
	Rates []ExchangeRate `json:"rates"`
}

func (ExchangeRatesCard) isPayload() {}

type InterestRate struct {
	TermMonths int     `json:"term_months"`
	Rate       float64 `json:"rate"`
}

type InterestRatesCard struct {
	Product string         `json:"product"`
	Rates   []InterestRate `json:"rates"`
}

func (InterestRatesCard) isPayload() {}

type FeeTier struct {
	Threshold float64 `json:"threshold"`
	Fee       float64 `json:"fee"`
}

// FeePricing follows the shapes the fee schedule uses: flat amounts,
// percentage rates with optional min/max, or tiered brackets.
type FeePricing struct {
	Type     string    `json:"type"`
	Amount   float64   `json:"amount,omitempty"`
	Rate     float64   `json:"rate,omitempty"`
	Min      float64   `json:"min,omitempty"`
	Max      float64   `json:"max,omitempty"`
	Currency string    `json:"currency,omitempty"`
	Tiers    []FeeTier `json:"tiers,omitempty"`
}

type FeeItem struct {
	Name    string     `json:"name"`
	Pricing FeePricing `json:"pricing"`
}

type FeesCard struct {
	Items []FeeItem `json:"items"`
}

func (FeesCard) isPayload() {}

type Location struct {
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	City       string  `json:"city"`
	Kind       string  `json:"kind"` // atm | branch
	DistanceKM float64 `json:"distance_km,omitempty"`
}

type ATMBranchCard struct {
	Locations []Location `json:"locations"`
}

func (ATMBranchCard) isPayload() {}

type CardInfoCard struct {
	CardID        int64   `json:"card_id"`
	Limit         float64 `json:"limit"`
	Debt          float64 `json:"borc"`
	StatementDate string  `json:"kesim_tarihi"`
	DueDate       string  `json:"son_odeme_tarihi"`
}

func (CardInfoCard) isPayload() {}

// TransactionItem is a single statement entry. On the wire equivalent items
// drift between two spellings: some carry Datetime instead of Date, and some
// omit their own account id or currency. The gateway collapses every item to
// the canonical form (Date set, Datetime empty, AccountID and Currency
// resolved) before the payload reaches a message log.
type TransactionItem struct {
	ID           string  `json:"id"`
	Date         string  `json:"date,omitempty"`
	Datetime     string  `json:"datetime,omitempty"`
	Amount       float64 `json:"amount"`
	Formatted    string  `json:"amount_formatted,omitempty"`
	Currency     string  `json:"currency,omitempty"`
	Type         string  `json:"type"`
	Description  string  `json:"description"`
	BalanceAfter float64 `json:"balance_after"`
	AccountID    string  `json:"account_id,omitempty"`
}

type TransactionsCard struct {
	AccountID string            `json:"account_id"`
	Currency  string            `json:"currency,omitempty"`
	Items     []TransactionItem `json:"items"`
}

func (TransactionsCard) isPayload() {}

type UserProfileCard struct {
	CustomerNo string `json:"customer_no"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

func (UserProfileCard) isPayload() {}

type payloadWrapper struct {
	Type PayloadType     `json:"type"`
	Data json.RawMessage `json:"data"`
}

// MarshalPayload encodes a payload into the single-string wire form embedded
// in message records and chat responses.
func MarshalPayload(p Payload) (string, error) {
	var typ PayloadType
	switch p.(type) {
	case BalanceCard:
		typ = PayloadTypeBalance
	case ExchangeRatesCard:
		typ = PayloadTypeExchangeRates
	case InterestRatesCard:
		typ = PayloadTypeInterestRates
	case FeesCard:
		typ = PayloadTypeFees
	case ATMBranchCard:
		typ = PayloadTypeATMBranch
	case CardInfoCard:
		typ = PayloadTypeCardInfo
	case TransactionsCard:
		typ = PayloadTypeTransactions
	case UserProfileCard:
		typ = PayloadTypeUserProfile
	default:
		return "", fmt.Errorf("unknown payload type: %T", p)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(payloadWrapper{Type: typ, Data: data})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UnmarshalPayload decodes the embedded payload string back into its typed
// variant. Callers decide what a failure means; the gateway treats any error
// as "no payload".
func UnmarshalPayload(raw string) (Payload, error) {
	var wrapper payloadWrapper
	if err := json.Unmarshal([]byte(raw), &wrapper); err != nil {
		return nil, err
	}

	decode := func(p Payload) (Payload, error) {
		if err := json.Unmarshal(wrapper.Data, p); err != nil {
			return nil, err
		}
		return p, nil
	}

	switch wrapper.Type {
	case PayloadTypeBalance:
		p, err := decode(&BalanceCard{})
		if err != nil {
			return nil, err
		}
		return *p.(*BalanceCard), nil
	case PayloadTypeExchangeRates:
		p, err := decode(&ExchangeRatesCard{})
		if err != nil {
			return nil, err
		}
		return *p.(*ExchangeRatesCard), nil
	case PayloadTypeInterestRates:
		p, err := decode(&InterestRatesCard{})
		if err != nil {
			return nil, err
		}
		return *p.(*InterestRatesCard), nil
	case PayloadTypeFees:
		p, err := decode(&FeesCard{})
		if err != nil {
			return nil, err
		}
		return *p.(*FeesCard), nil
	case PayloadTypeATMBranch:
		p, err := decode(&ATMBranchCard{})
		if err != nil {
			return nil, err
		}
		return *p.(*ATMBranchCard), nil
	case PayloadTypeCardInfo:
		p, err := decode(&CardInfoCard{})
		if err != nil {
			return nil, err
		}
		return *p.(*CardInfoCard), nil
	case PayloadTypeTransactions:
		p, err := decode(&TransactionsCard{})
		if err != nil {
			return nil, err
		}
		return *p.(*TransactionsCard), nil
	case PayloadTypeUserProfile:
		p, err := decode(&UserProfileCard{})
		if err != nil {
			return nil, err
		}
		return *p.(*UserProfileCard), nil
	default:
		return nil, fmt.Errorf("unknown payload type: %q", wrapper.Type)
	}
}
