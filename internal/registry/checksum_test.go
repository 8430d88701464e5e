package registry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksumAddress_NormalizesLowercase(t *testing.T) {
	got, err := ChecksumAddress("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48")
	require.NoError(t, err)
	assert.Equal(t, "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", got)
}

func TestChecksumAddress_NormalizesUppercase(t *testing.T) {
	got, err := ChecksumAddress("0xDAC17F958D2EE523A2206206994597C13D831EC7")
	require.NoError(t, err)
	assert.Equal(t, "0xdAC17F958D2ee523a2206206994597C13D831ec7", got)
}

func TestChecksumAddress_AcceptsValidMixedCase(t *testing.T) {
	for _, addr := range []string{
		"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		"0x6B175474E89094C44Da98b954EedeAC495271d0F",
		"0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		"0x52908400098527886E0F7030069857D2E4169EE7",
	} {
		got, err := ChecksumAddress(addr)
		require.NoError(t, err, addr)
		assert.Equal(t, addr, got)
	}
}

func TestChecksumAddress_RejectsBadMixedCase(t *testing.T) {
	// One flipped-case character in an otherwise valid address.
	_, err := ChecksumAddress("0xa0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	assert.Error(t, err)
}

func TestChecksumAddress_RejectsMalformed(t *testing.T) {
	for _, addr := range []string{
		"",
		"0x",
		"0x1234",
		"0xZZb86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		"0x" + strings.Repeat("a", 41),
	} {
		_, err := ChecksumAddress(addr)
		assert.Error(t, err, "input %q", addr)
	}
}

func TestChecksumAddress_StripsWhitespaceAndPrefix(t *testing.T) {
	got, err := ChecksumAddress("  a0b86991c6218b36c1d19d4a2e9eb0ce3606eb48 ")
	require.NoError(t, err)
	assert.Equal(t, "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", got)
}
