package proto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPayloadRoundTrip(t *testing.T) {
	t.Parallel()

	payloads := []Payload{
		BalanceCard{AccountID: 1, AccountType: "checking", Balance: 12450.75, Currency: "TRY", Status: "active"},
		ExchangeRatesCard{Base: "TRY", AsOf: 99, Rates: []ExchangeRate{{Code: "USD", Buy: 32.1, Sell: 32.35}}},
		FeesCard{Items: []FeeItem{{Name: "EFT", Pricing: FeePricing{Type: "percent", Rate: 0.001, Min: 5, Max: 250, Currency: "TRY"}}}},
		CardInfoCard{CardID: 4821, Limit: 25000, Debt: 7340.5, StatementDate: "2024-01-25", DueDate: "2024-02-05"},
		TransactionsCard{AccountID: "1", Items: []TransactionItem{{ID: "t1", Date: "2024-01-01", Amount: -250}}},
	}

	for _, p := range payloads {
		raw, err := MarshalPayload(p)
		require.NoError(t, err)

		got, err := UnmarshalPayload(raw)
		require.NoError(t, err)
		require.Equal(t, p, got)
	}
}

func TestUnmarshalPayload_Errors(t *testing.T) {
	t.Parallel()

	_, err := UnmarshalPayload("not json")
	require.Error(t, err)

	_, err = UnmarshalPayload(`{"type":"mystery_card","data":{}}`)
	require.ErrorContains(t, err, "unknown payload type")

	_, err = UnmarshalPayload(`{"type":"balance_card","data":[1,2,3]}`)
	require.Error(t, err)
}

func TestUnmarshalPayload_TransactionDrift(t *testing.T) {
	t.Parallel()

	// Items arrive in both spellings; decoding keeps them as-is, collapsing is
	// the gateway's job.
	raw := `{"type":"transactions_card","data":{"account_id":"1","currency":"TRY","items":[` +
		`{"id":"t1","datetime":"2024-01-01T10:00:00","amount":-250,"type":"transfer","description":"Kira","balance_after":100},` +
		`{"id":"t2","date":"2024-01-02","amount":1500,"currency":"TRY","account_id":"2","type":"deposit","description":"Maaş","balance_after":1600}` +
		`]}}`

	p, err := UnmarshalPayload(raw)
	require.NoError(t, err)

	card, ok := p.(TransactionsCard)
	require.True(t, ok)
	require.Len(t, card.Items, 2)
	require.Equal(t, "2024-01-01T10:00:00", card.Items[0].Datetime)
	require.Empty(t, card.Items[0].Date)
	require.Equal(t, "2024-01-02", card.Items[1].Date)
	require.Equal(t, "2", card.Items[1].AccountID)
}

func TestSenderMarshalText(t *testing.T) {
	t.Parallel()

	b, err := SenderUser.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "user", string(b))

	var s Sender
	require.NoError(t, s.UnmarshalText([]byte("assistant")))
	require.Equal(t, SenderAssistant, s)
}
