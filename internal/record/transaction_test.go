package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransaction(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Transaction
	}{
		{
			name: "send",
			in:   "NA_01/02/03-4:5_send_42_10.50",
			want: Transaction{Location: "NA", Timestamp: "01/02/03-4:5", Kind: KindSend, Party: "42", Amount: "10.50"},
		},
		{
			name: "gift card has amount only",
			in:   "NA_01/02/03-4:5_buyGiftCard_99.00",
			want: Transaction{Location: "NA", Timestamp: "01/02/03-4:5", Kind: KindBuyGiftCard, Amount: "99.00"},
		},
		{
			name: "own business has no amount",
			in:   "NA_01/02/03-4:5_ownBusiness_777",
			want: Transaction{Location: "NA", Timestamp: "01/02/03-4:5", Kind: KindOwnBusiness, Party: "777"},
		},
		{
			name: "bare kind",
			in:   "12.5-40.1_01/02/03-4:5_receive",
			want: Transaction{Location: "12.5-40.1", Timestamp: "01/02/03-4:5", Kind: KindReceive},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTransaction(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTransaction_Errors(t *testing.T) {
	for _, in := range []string{
		"",
		"NA_ts",
		"NA_ts__1",
		"NA_ts_send_1_2_3",
		"NA_ts_buyGiftCard_1_2",
	} {
		_, err := ParseTransaction(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestParseType(t *testing.T) {
	got, err := ParseType("Counter-Party")
	require.NoError(t, err)
	assert.Equal(t, TypeCounterParty, got)

	_, err = ParseType("customer")
	assert.Error(t, err)
}
