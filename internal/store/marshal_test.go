package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalProfile_EmptyProfileEncodesArrays(t *testing.T) {
	data, err := marshalProfile(Profile{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"fields":[],"rows":[]}`, data)
}

func TestMarshalProfile_OmitsNullCells(t *testing.T) {
	data, err := marshalProfile(Profile{
		Fields: []string{"A", "B"},
		Rows:   []Row{{"A": "1"}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"fields":["A","B"],"rows":[{"A":"1"}]}`, data)
}

func TestUnmarshalProfile_Empty(t *testing.T) {
	p, err := unmarshalProfile("")
	require.NoError(t, err)
	assert.True(t, p.Empty())
}

func TestUnmarshalProfile_Invalid(t *testing.T) {
	_, err := unmarshalProfile("{not json")
	assert.Error(t, err)
}

func TestNullString(t *testing.T) {
	assert.Nil(t, nullString(""))
	assert.Equal(t, "g1", nullString("g1"))
}
