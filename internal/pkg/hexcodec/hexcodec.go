// Package hexcodec converts Ethereum JSON-RPC hex quantities and ABI blobs into
// native values.
//
// The To* functions are fail-soft: malformed input yields the zero value
// instead of an error. The Parse*/Decode* functions report what went wrong and
// are used where callers need a strict decode.
package hexcodec

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

const (
	Prefix = "0x"
	// WordSize is the size of one ABI slot in bytes.
	WordSize = 32
)

var (
	ErrEmpty     = errors.New("empty hex value")
	ErrMalformed = errors.New("malformed hex value")
	ErrShortData = errors.New("abi data is too short")
)

// Strip removes an optional 0x/0X prefix.
func Strip(value string) string {
	if len(value) >= 2 && value[0] == '0' && (value[1] == 'x' || value[1] == 'X') {
		return value[2:]
	}
	return value
}

func FromNumber(n int64) string {
	if n < 0 {
		return Prefix + "0"
	}
	return fmt.Sprintf("0x%x", n)
}

func ParseNumber(value string) (int64, error) {
	digits := Strip(strings.TrimSpace(value))
	if digits == "" {
		return 0, ErrEmpty
	}

	n, err := strconv.ParseUint(digits, 16, 63)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrMalformed, value, err)
	}

	return int64(n), nil
}

func ParseBig(value string) (*big.Int, error) {
	digits := Strip(strings.TrimSpace(value))
	if digits == "" {
		return nil, ErrEmpty
	}

	if digits[0] == '-' || digits[0] == '+' {
		return nil, fmt.Errorf("%w: %q", ErrMalformed, value)
	}

	n, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMalformed, value)
	}

	return n, nil
}

// DecodeABIString decodes the return blob of a function returning a single
// dynamic string: offset word, length word, then length payload bytes.
// Null bytes inside the payload are dropped.
func DecodeABIString(value string) (string, error) {
	digits := Strip(strings.TrimSpace(value))
	if digits == "" {
		return "", ErrEmpty
	}

	data, err := hex.DecodeString(digits)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if len(data) < 2*WordSize {
		return "", fmt.Errorf("%w: got %d bytes", ErrShortData, len(data))
	}

	length := new(big.Int).SetBytes(data[WordSize : 2*WordSize])
	payload := data[2*WordSize:]
	if !length.IsInt64() || length.Int64() > int64(len(payload)) {
		return "", fmt.Errorf("%w: declared length %s, payload %d bytes", ErrShortData, length, len(payload))
	}

	out := make([]byte, 0, length.Int64())
	for _, b := range payload[:length.Int64()] {
		if b != 0 {
			out = append(out, b)
		}
	}

	return string(out), nil
}

// ToNumber returns 0 for empty or malformed input.
func ToNumber(value string) int64 {
	n, _ := ParseNumber(value)
	return n
}

// ToBigInteger returns the exact decimal representation, "0" on bad input.
func ToBigInteger(value string) string {
	n, err := ParseBig(value)
	if err != nil {
		return "0"
	}
	return n.String()
}

// ToUTF8 returns "" on any decode failure or zero length.
func ToUTF8(value string) string {
	s, _ := DecodeABIString(value)
	return s
}
