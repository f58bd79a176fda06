package record

import (
	"fmt"
	"strings"
)

// Kind is the transaction kind encoded in the third tuple position.
type Kind string

const (
	KindSend        Kind = "send"
	KindReceive     Kind = "receive"
	KindBuyGiftCard Kind = "buyGiftCard"
	KindBillPay     Kind = "billPay"
	KindBillPayed   Kind = "billPayed"
	KindOwnBusiness Kind = "ownBusiness"
)

// Separator joins transaction parts and compound key values.
const Separator = "_"

// Transaction is a decoded transaction tuple.
//
// Party holds the counterparty id for send/receive, the business id for
// billPay, billPayed and ownBusiness, and the declared owner for Business
// rows. Amount is the literal amount text and may be empty.
type Transaction struct {
	Location  string
	Timestamp string
	Kind      Kind
	Party     string
	Amount    string
}

// ParseTransaction decodes an underscore-delimited transaction tuple.
//
// buyGiftCard carries no party, so its fourth part is the amount. Every
// other kind reads the fourth part as the party and the optional fifth as
// the amount.
func ParseTransaction(s string) (Transaction, error) {
	parts := strings.Split(s, Separator)
	if len(parts) < 3 {
		return Transaction{}, fmt.Errorf("transaction %q: want at least 3 parts, got %d", s, len(parts))
	}
	if len(parts) > 5 {
		return Transaction{}, fmt.Errorf("transaction %q: want at most 5 parts, got %d", s, len(parts))
	}

	t := Transaction{
		Location:  parts[0],
		Timestamp: parts[1],
		Kind:      Kind(parts[2]),
	}
	if t.Kind == "" {
		return Transaction{}, fmt.Errorf("transaction %q: empty kind", s)
	}

	rest := parts[3:]
	if t.Kind == KindBuyGiftCard {
		if len(rest) > 1 {
			return Transaction{}, fmt.Errorf("transaction %q: buyGiftCard takes no party", s)
		}
		if len(rest) == 1 {
			t.Amount = rest[0]
		}
		return t, nil
	}
	if len(rest) > 0 {
		t.Party = rest[0]
	}
	if len(rest) > 1 {
		t.Amount = rest[1]
	}
	return t, nil
}
