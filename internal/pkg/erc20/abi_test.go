package erc20

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lidofinance/blockview/internal/connectors/logger"
	"github.com/lidofinance/blockview/internal/connectors/metrics"
	"github.com/lidofinance/blockview/internal/pkg/hexcodec"
)

func newTestDecoder(strict bool) (*Decoder, *metrics.Store) {
	metricsStore := metrics.New(prometheus.NewRegistry(), "test", "blockview", "local")
	return NewDecoder(strict, logger.Discard(), metricsStore), metricsStore
}

func TestSelectors(t *testing.T) {
	tests := []struct {
		signature string
		selector  string
	}{
		{signature: "name()", selector: SelectorName},
		{signature: "symbol()", selector: SelectorSymbol},
		{signature: "decimals()", selector: SelectorDecimals},
		{signature: "totalSupply()", selector: SelectorTotalSupply},
		{signature: "balanceOf(address)", selector: SelectorBalanceOf},
	}
	for _, tt := range tests {
		t.Run(tt.signature, func(t *testing.T) {
			want := "0x" + hex.EncodeToString(crypto.Keccak256([]byte(tt.signature))[:4])
			if tt.selector != want {
				t.Errorf("selector for %s = %s, want %s", tt.signature, tt.selector, want)
			}
		})
	}
}

func TestEncodeCall(t *testing.T) {
	const wallet = "0xdAC17F958D2ee523a2206206994597C13D831ec7"

	got := EncodeCall(SelectorBalanceOf, wallet)

	assert.Equal(t, SelectorBalanceOf+strings.Repeat("0", 24)+wallet[2:], got)
	assert.Len(t, got, len(SelectorBalanceOf)+64)
	assert.Equal(t, SelectorName, EncodeCall(SelectorName))
}

func TestDecoder_Lenient(t *testing.T) {
	d, metricsStore := newTestDecoder(false)

	tests := []struct {
		name string
		got  func() (any, error)
		want any
	}{
		{name: "string", got: func() (any, error) { return d.String(abiString("USDT")) }, want: "USDT"},
		{name: "string empty result", got: func() (any, error) { return d.String("0x") }, want: ""},
		{name: "string malformed", got: func() (any, error) { return d.String("0x" + strings.Repeat("0", 10)) }, want: ""},
		{name: "uint8", got: func() (any, error) { return d.Uint8(word("6")) }, want: 6},
		{name: "uint8 empty", got: func() (any, error) { return d.Uint8("") }, want: 0},
		{name: "uint8 overflow", got: func() (any, error) { return d.Uint8(word("100")) }, want: 0},
		{name: "uint256", got: func() (any, error) { return d.Uint256(word("de0b6b3a7640000")) }, want: "1000000000000000000"},
		{name: "uint256 empty", got: func() (any, error) { return d.Uint256("0x") }, want: "0"},
		{name: "uint256 malformed", got: func() (any, error) { return d.Uint256("0xqq") }, want: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.got()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, float64(1), testutil.ToFloat64(metricsStore.DecodeErrors.With(prometheus.Labels{metrics.Kind: kindString})))
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsStore.DecodeErrors.With(prometheus.Labels{metrics.Kind: kindUint8})))
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsStore.DecodeErrors.With(prometheus.Labels{metrics.Kind: kindUint256})))
}

func TestDecoder_Strict(t *testing.T) {
	d, _ := newTestDecoder(true)

	_, err := d.String("0x" + strings.Repeat("0", 10))
	assert.True(t, errors.Is(err, ErrDecode), "got %v", err)

	_, err = d.Uint8(word("100"))
	assert.True(t, errors.Is(err, ErrDecode), "got %v", err)

	_, err = d.Uint256("0xqq")
	assert.True(t, errors.Is(err, ErrDecode), "got %v", err)

	s, err := d.String("0x")
	require.NoError(t, err)
	assert.Empty(t, s)

	n, err := d.Uint256("")
	require.NoError(t, err)
	assert.Equal(t, "0", n)
}

func word(digits string) string {
	return hexcodec.Prefix + strings.Repeat("0", 64-len(digits)) + digits
}

func abiString(s string) string {
	payload := []byte(s)
	for len(payload) == 0 || len(payload)%hexcodec.WordSize != 0 {
		payload = append(payload, 0)
	}
	return word("20") + word(hexcodec.FromNumber(int64(len(s)))[2:])[2:] + hex.EncodeToString(payload)
}
