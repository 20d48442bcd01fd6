package erc20

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/lidofinance/blockview/internal/pkg/chain"
	"github.com/lidofinance/blockview/internal/pkg/chain/entity"
	"github.com/lidofinance/blockview/internal/pkg/hexcodec"
	"github.com/lidofinance/blockview/internal/utils/pointers"
)

type Caller interface {
	EthCall(ctx context.Context, msg entity.CallMsg, tag string) (string, error)
}

const balancesConcurrency = 4

type Reader struct {
	caller  Caller
	decoder *Decoder
	log     *slog.Logger
}

func NewReader(caller Caller, decoder *Decoder, log *slog.Logger) *Reader {
	return &Reader{
		caller:  caller,
		decoder: decoder,
		log:     log,
	}
}

// callTokenMethod returns "0x" when the call fails, the same as a revert.
func (r *Reader) callTokenMethod(ctx context.Context, token, selector string, params ...string) string {
	result, err := r.caller.EthCall(ctx, entity.CallMsg{
		To:   token,
		Data: EncodeCall(selector, params...),
	}, chain.LatestTag)
	if err != nil {
		r.log.Error("Error calling token method",
			slog.String("token", token),
			slog.String("selector", selector),
			slog.String("error", err.Error()),
		)
		return hexcodec.Prefix
	}

	return result
}

// TokenInfo reads name, symbol, decimals and totalSupply in parallel. It
// returns nil when name or symbol is empty: the address is not treated as an
// ERC-20 token then.
func (r *Reader) TokenInfo(ctx context.Context, address string) (*Token, error) {
	var nameResult, symbolResult, decimalsResult, totalSupplyResult string

	var g errgroup.Group
	g.Go(func() error {
		nameResult = r.callTokenMethod(ctx, address, SelectorName)
		return nil
	})
	g.Go(func() error {
		symbolResult = r.callTokenMethod(ctx, address, SelectorSymbol)
		return nil
	})
	g.Go(func() error {
		decimalsResult = r.callTokenMethod(ctx, address, SelectorDecimals)
		return nil
	})
	g.Go(func() error {
		totalSupplyResult = r.callTokenMethod(ctx, address, SelectorTotalSupply)
		return nil
	})
	_ = g.Wait()

	name, err := r.decoder.String(nameResult)
	if err != nil {
		return nil, err
	}
	symbol, err := r.decoder.String(symbolResult)
	if err != nil {
		return nil, err
	}
	decimals, err := r.decoder.Uint8(decimalsResult)
	if err != nil {
		return nil, err
	}
	totalSupply, err := r.decoder.Uint256(totalSupplyResult)
	if err != nil {
		return nil, err
	}

	if name == "" || symbol == "" {
		r.log.Debug("Not a valid ERC20 token", slog.String("token", address))
		return nil, nil
	}

	return &Token{
		Address:     address,
		Name:        name,
		Symbol:      symbol,
		Decimals:    decimals,
		TotalSupply: totalSupply,
	}, nil
}

// TokenBalance returns the balanceOf(wallet) as a decimal string, "0" on any failure.
func (r *Reader) TokenBalance(ctx context.Context, token, wallet string) string {
	result := r.callTokenMethod(ctx, token, SelectorBalanceOf, wallet)

	balance, err := r.decoder.Uint256(result)
	if err != nil {
		r.log.Error("Error getting token balance",
			slog.String("token", token),
			slog.String("error", err.Error()),
		)
		return "0"
	}

	return balance
}

func (r *Reader) CommonTokens() []Token {
	return CommonTokens()
}

// TokensWithBalances returns the common tokens with the wallet balance filled in.
func (r *Reader) TokensWithBalances(ctx context.Context, wallet string) []Token {
	tokens := CommonTokens()

	var g errgroup.Group
	g.SetLimit(balancesConcurrency)
	for i := range tokens {
		g.Go(func() error {
			tokens[i].Balance = pointers.Ptr(r.TokenBalance(ctx, tokens[i].Address, wallet))
			return nil
		})
	}
	_ = g.Wait()

	return tokens
}
