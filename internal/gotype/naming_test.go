package gotype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExported(t *testing.T) {
	cases := map[string]string{
		"fee_bps":     "FeeBps",
		"Coin":        "Coin",
		"SUI":         "SUI",
		"dummy_field": "DummyField",
		"new":         "New",
		"pos0":        "Pos0",
		"__x":         "X",
		"_":           "X_",
	}
	for in, want := range cases {
		assert.Equal(t, want, Exported(in), in)
	}
}

func TestPackageName(t *testing.T) {
	assert.Equal(t, "coin", PackageName("coin"))
	assert.Equal(t, "tx_context", PackageName("tx_context"))
	assert.Equal(t, "type_", PackageName("type"))
	assert.Equal(t, "select_", PackageName("select"))
	assert.Equal(t, "main_", PackageName("main"))
	assert.Equal(t, "main_", PackageName("Main"))
	assert.Equal(t, "main", Escape("main"))
	assert.Equal(t, "range_", Escape("range"))
	assert.Equal(t, "amount", Escape("amount"))
}
