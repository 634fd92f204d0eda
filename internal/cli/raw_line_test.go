package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCompensationLine(t *testing.T) {
	line, err := ParseCompensationLine(" 100000002:SKU-A:-3:2\n")
	require.NoError(t, err)
	assert.Equal(t, "100000002", line.IncrementID)
	assert.Equal(t, "SKU-A", line.Sku)
	assert.Equal(t, "-3", line.Quantity.String())
	assert.Equal(t, 2, line.StockID)
	assert.Equal(t, "100000002:SKU-A:-3:2", line.String())
}

func TestParseCompensationLine_SkuWithColons(t *testing.T) {
	line, err := ParseCompensationLine("7:shirt:red:XL:1.5:1")
	require.NoError(t, err)
	assert.Equal(t, "shirt:red:XL", line.Sku)
	assert.Equal(t, "1.5", line.Quantity.String())
}

func TestParseCompensationLine_Malformed(t *testing.T) {
	for _, s := range []string{
		"",
		"100000002",
		"100000002:SKU-A:2",
		":SKU-A:2:1",
		"100000002::2:1",
		"100000002:SKU-A:two:1",
		"100000002:SKU-A:2:zero",
		"100000002:SKU-A:2:0",
	} {
		_, err := ParseCompensationLine(s)
		assert.Error(t, err, s)
	}
}
