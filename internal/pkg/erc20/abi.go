package erc20

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lidofinance/blockview/internal/connectors/metrics"
	"github.com/lidofinance/blockview/internal/pkg/hexcodec"
)

// Function selectors, the first four bytes of keccak256 of the signature.
const (
	SelectorName        = "0x06fdde03"
	SelectorSymbol      = "0x95d89b41"
	SelectorDecimals    = "0x313ce567"
	SelectorTotalSupply = "0x18160ddd"
	SelectorBalanceOf   = "0x70a08231"
)

const wordHexLen = 2 * hexcodec.WordSize

var ErrDecode = errors.New("abi decode error")

const (
	kindString  = `string`
	kindUint8   = `uint8`
	kindUint256 = `uint256`
)

// EncodeCall builds eth_call data: the selector followed by every param
// left-padded with zeros to one 32-byte word.
func EncodeCall(selector string, params ...string) string {
	var b strings.Builder
	b.WriteString(selector)

	for _, p := range params {
		digits := hexcodec.Strip(p)
		if len(digits) < wordHexLen {
			b.WriteString(strings.Repeat("0", wordHexLen-len(digits)))
		}
		b.WriteString(digits)
	}

	return b.String()
}

// Decoder decodes return data of the ERC-20 view methods.
//
// "0x" and "" always decode to the zero value: that is what a revert or an
// address without code returns. Other malformed data is an error in strict
// mode; otherwise it is logged, counted and mapped to the zero value.
type Decoder struct {
	strict  bool
	log     *slog.Logger
	metrics *metrics.Store
}

func NewDecoder(strict bool, log *slog.Logger, metricsStore *metrics.Store) *Decoder {
	return &Decoder{
		strict:  strict,
		log:     log,
		metrics: metricsStore,
	}
}

func (d *Decoder) String(data string) (string, error) {
	if isEmpty(data) {
		return "", nil
	}

	s, err := hexcodec.DecodeABIString(data)
	if err != nil {
		return "", d.fail(kindString, data, err)
	}

	return s, nil
}

func (d *Decoder) Uint8(data string) (int, error) {
	if isEmpty(data) {
		return 0, nil
	}

	n, err := hexcodec.ParseNumber(data)
	if err != nil {
		return 0, d.fail(kindUint8, data, err)
	}
	if n > 0xff {
		return 0, d.fail(kindUint8, data, fmt.Errorf("value %d overflows uint8", n))
	}

	return int(n), nil
}

// Uint256 returns the value as a decimal string.
func (d *Decoder) Uint256(data string) (string, error) {
	if isEmpty(data) {
		return "0", nil
	}

	n, err := hexcodec.ParseBig(data)
	if err != nil {
		return "0", d.fail(kindUint256, data, err)
	}

	return n.String(), nil
}

func (d *Decoder) fail(kind, data string, err error) error {
	if d.strict {
		return fmt.Errorf("%w: %s from %q: %w", ErrDecode, kind, data, err)
	}

	d.metrics.DecodeErrors.With(prometheus.Labels{metrics.Kind: kind}).Inc()
	d.log.Warn("Could not decode abi value",
		slog.String("kind", kind),
		slog.String("data", data),
		slog.String("error", err.Error()),
	)

	return nil
}

func isEmpty(data string) bool {
	return hexcodec.Strip(strings.TrimSpace(data)) == ""
}
