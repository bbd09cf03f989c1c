package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/interchat/interchat/internal/proto"
)

// synthesizeReply picks a canned assistant reply and structured payload based
// on keywords in the user's message, mirroring what the real assistant
// attaches to its answers.
func synthesizeReply(text string) (reply, payload string) {
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "bakiye"):
		return "Güncel hesap bakiyeniz aşağıdadır.", mustMarshal(proto.BalanceCard{
			AccountID:   1,
			AccountType: "checking",
			Balance:     12450.75,
			Formatted:   "12.450,75",
			Currency:    "TRY",
			Status:      "active",
		})
	case strings.Contains(lower, "hareket"), strings.Contains(lower, "işlem"):
		// Deliberately inconsistent item shapes, matching the drift the real
		// store exhibits: one item spells its date "datetime" and omits its
		// account id and currency, the other carries everything itself.
		return "Son hesap hareketleriniz aşağıdadır.", `{"type":"transactions_card","data":{` +
			`"account_id":"1","currency":"TRY","items":[` +
			`{"id":"t1","datetime":"2024-01-01T10:00:00","amount":-250.00,"type":"transfer","description":"Kira ödemesi","balance_after":12200.75},` +
			`{"id":"t2","date":"2024-01-02","amount":1500.00,"currency":"TRY","account_id":"2","type":"deposit","description":"Maaş","balance_after":13700.75}` +
			`]}}`
	case strings.Contains(lower, "döviz"), strings.Contains(lower, "kur"):
		return "Güncel döviz kurları aşağıdadır.", mustMarshal(proto.ExchangeRatesCard{
			Base: "TRY",
			AsOf: time.Now().UnixMilli(),
			Rates: []proto.ExchangeRate{
				{Code: "USD", Buy: 32.10, Sell: 32.35},
				{Code: "EUR", Buy: 34.85, Sell: 35.12},
			},
		})
	case strings.Contains(lower, "faiz"):
		return "Güncel mevduat faiz oranları aşağıdadır.", mustMarshal(proto.InterestRatesCard{
			Product: "vadeli mevduat",
			Rates: []proto.InterestRate{
				{TermMonths: 3, Rate: 0.42},
				{TermMonths: 6, Rate: 0.45},
				{TermMonths: 12, Rate: 0.47},
			},
		})
	case strings.Contains(lower, "ücret"), strings.Contains(lower, "masraf"):
		return "Hizmet ücretleri aşağıdadır.", mustMarshal(proto.FeesCard{
			Items: []proto.FeeItem{
				{Name: "EFT", Pricing: proto.FeePricing{Type: "flat", Amount: 6.09, Currency: "TRY"}},
				{Name: "Havale", Pricing: proto.FeePricing{Type: "percent", Rate: 0.001, Min: 5, Max: 250, Currency: "TRY"}},
			},
		})
	case strings.Contains(lower, "atm"), strings.Contains(lower, "şube"):
		return "Size en yakın ATM ve şubeler aşağıdadır.", mustMarshal(proto.ATMBranchCard{
			Locations: []proto.Location{
				{Name: "Levent Şubesi", Address: "Büyükdere Cad. 123", City: "İstanbul", Kind: "branch", DistanceKM: 0.8},
				{Name: "Metro ATM", Address: "Levent Metro İstasyonu", City: "İstanbul", Kind: "atm", DistanceKM: 0.3},
			},
		})
	case strings.Contains(lower, "kart"):
		return "Kredi kartı bilgileriniz aşağıdadır.", mustMarshal(proto.CardInfoCard{
			CardID:        4821,
			Limit:         25000,
			Debt:          7340.50,
			StatementDate: "2024-01-25",
			DueDate:       "2024-02-05",
		})
	case strings.Contains(lower, "profil"):
		return "Profil bilgileriniz aşağıdadır.", mustMarshal(proto.UserProfileCard{
			CustomerNo: "17953063",
			Name:       "Demo Müşteri",
			Email:      "demo@example.com",
		})
	default:
		return fmt.Sprintf("Merhaba! Size nasıl yardımcı olabilirim? Mesajınız: '%s'", text), ""
	}
}

func mustMarshal(p proto.Payload) string {
	s, err := proto.MarshalPayload(p)
	if err != nil {
		panic(err)
	}
	return s
}
