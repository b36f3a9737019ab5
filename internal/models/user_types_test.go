package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartDataJSONRoundTrip(t *testing.T) {
	cart := CartData{
		"64f0c2a1b3d4e5f678901234": {"KG": 2, "CTN": 1},
		"64f0c2a1b3d4e5f678905678": {"BTL": 3},
	}

	raw, err := json.Marshal(cart)
	require.NoError(t, err)

	var decoded CartData
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, cart, decoded)
}

func TestCartDataClone(t *testing.T) {
	cart := CartData{"item1": {"KG": 2}}

	clone := cart.Clone()
	clone["item1"]["KG"] = 99
	clone["item2"] = map[string]int{"BTL": 1}

	assert.Equal(t, 2, cart["item1"]["KG"])
	assert.NotContains(t, cart, "item2")
}

func TestCartDataIsEmpty(t *testing.T) {
	assert.True(t, CartData{}.IsEmpty())
	assert.True(t, CartData(nil).IsEmpty())
	// A product entry with no sizes left still counts as empty.
	assert.True(t, CartData{"item1": {}}.IsEmpty())
	assert.False(t, CartData{"item1": {"KG": 1}}.IsEmpty())
}
