package search

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lidofinance/blockview/internal/pkg/hexcodec"
)

type Kind string

const (
	KindBlock       Kind = "block"
	KindAddress     Kind = "address"
	KindTransaction Kind = "transaction"
	KindUnknown     Kind = "unknown"
)

var (
	blockRe       = regexp.MustCompile(`^\d+$`)
	addressRe     = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	transactionRe = regexp.MustCompile(`^0x[a-fA-F0-9]{64}$`)
)

// Result is where a query leads. For blocks Target is the hex block number.
type Result struct {
	Kind   Kind   `json:"kind"`
	Target string `json:"target,omitempty"`
}

func Classify(query string) Result {
	q := strings.TrimSpace(query)

	switch {
	case q == "":
		return Result{Kind: KindUnknown}
	case blockRe.MatchString(q):
		number, err := strconv.ParseInt(q, 10, 64)
		if err != nil {
			return Result{Kind: KindUnknown}
		}
		return Result{Kind: KindBlock, Target: hexcodec.FromNumber(number)}
	case addressRe.MatchString(q):
		return Result{Kind: KindAddress, Target: q}
	case transactionRe.MatchString(q):
		return Result{Kind: KindTransaction, Target: q}
	}

	return Result{Kind: KindUnknown}
}
