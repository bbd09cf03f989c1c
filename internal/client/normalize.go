package client

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/interchat/interchat/internal/proto"
)

// decodePayload turns the double-encoded payload string from a message
// envelope into its typed variant. A decode failure is swallowed and treated
// as "no payload"; the plain text of the message still gets through.
func (c *Client) decodePayload(raw string) proto.Payload {
	if raw == "" {
		return nil
	}
	p, err := proto.UnmarshalPayload(raw)
	if err != nil {
		slog.Warn("discarding undecodable payload", "error", err)
		return nil
	}
	if tx, ok := p.(proto.TransactionsCard); ok {
		return c.normalizeTransactions(tx)
	}
	return p
}

// normalizeTransactions collapses the per-item field drift in transaction
// lists to one canonical shape: a single date field, an account id inherited
// from the envelope when the item has none, and a currency defaulting to the
// envelope's and then to the home currency.
func (c *Client) normalizeTransactions(card proto.TransactionsCard) proto.TransactionsCard {
	envCurrency := card.Currency
	if envCurrency == "" {
		envCurrency = c.homeCurrency
	}
	card.Currency = envCurrency

	for i := range card.Items {
		item := &card.Items[i]
		if item.Date == "" && item.Datetime != "" {
			item.Date = datePart(item.Datetime)
		}
		item.Datetime = ""
		if item.AccountID == "" {
			item.AccountID = card.AccountID
		}
		if item.Currency == "" {
			item.Currency = envCurrency
		}
		if item.Formatted == "" {
			item.Formatted = FormatAmount(item.Amount, item.Currency)
		}
	}
	return card
}

// datePart strips the time component from an ISO-ish datetime string, keeping
// "2024-01-01" out of "2024-01-01T10:00:00" or "2024-01-01 10:00:00".
func datePart(datetime string) string {
	if i := strings.IndexAny(datetime, "T "); i >= 0 {
		return datetime[:i]
	}
	return datetime
}

// FormatAmount renders an amount the way the banking UI does: TRY amounts get
// Turkish digit grouping ("1.234,56 TRY"), other currencies a plain two
// decimal form.
func FormatAmount(amount float64, currency string) string {
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	if currency != "TRY" {
		return s + " " + currency
	}

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(fracPart)
	b.WriteString(" TRY")
	return b.String()
}
