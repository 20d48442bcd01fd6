package hexcodec

import (
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EtherDecimals = 18
	GweiDecimals  = 9

	DefaultAddressChars = 4
	DefaultHashChars    = 6
)

func FormatEther(wei string) string {
	return formatUnits(wei, EtherDecimals)
}

func FormatGwei(wei string) string {
	return formatUnits(wei, GweiDecimals)
}

// FormatUnits renders a decimal-string integer amount scaled by 10^decimals,
// as used for token balances.
func FormatUnits(amount string, decimals int) string {
	n, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return "0"
	}
	return decimal.NewFromBigInt(n, int32(-decimals)).String()
}

func formatUnits(hexValue string, decimals int32) string {
	n, err := ParseBig(hexValue)
	if err != nil {
		return "0"
	}
	return decimal.NewFromBigInt(n, -decimals).String()
}

func FormatGas(gas string) string {
	n, err := ParseBig(gas)
	if err != nil {
		return "0"
	}
	return groupThousands(n.String())
}

func FormatBlockNumber(number string) string {
	if number == "" {
		return ""
	}
	return groupThousands(ToBigInteger(number))
}

// FormatTimestamp renders unix seconds as RFC3339 in UTC.
func FormatTimestamp(timestamp string) string {
	if timestamp == "" {
		return ""
	}
	return time.Unix(ToNumber(timestamp), 0).UTC().Format(time.RFC3339)
}

func ShortenAddress(address string, chars int) string {
	return shorten(address, chars)
}

func ShortenHash(hash string, chars int) string {
	return shorten(hash, chars)
}

func shorten(value string, chars int) string {
	if value == "" {
		return ""
	}
	if chars < 0 || len(value) <= 2*chars+len(Prefix)+3 {
		return value
	}
	return value[:chars+len(Prefix)] + "..." + value[len(value)-chars:]
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}

	return b.String()
}
