package erc20

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

type Token struct {
	Address     string  `json:"address"`
	Name        string  `json:"name"`
	Symbol      string  `json:"symbol"`
	Decimals    int     `json:"decimals"`
	TotalSupply string  `json:"totalSupply"`
	Balance     *string `json:"balance,omitempty"`
}

// Well-known mainnet tokens shown without querying the node.
var commonTokens = []Token{
	seedToken("0xdAC17F958D2ee523a2206206994597C13D831ec7", "Tether USD", "USDT", 6),
	seedToken("0xB8c77482e45F1F44dE1745F52C74426C631bDD52", "BNB", "BNB", 18),
	seedToken("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", "USD Coin", "USDC", 6),
	seedToken("0x6B175474E89094C44Da98b954EedeAC495271d0F", "Dai Stablecoin", "DAI", 18),
	seedToken("0x95aD61b0a150d79219dCF64E1E6Cc01f0B64C4cE", "SHIBA INU", "SHIB", 18),
	seedToken("0x2b591e99afE9f32eAA6214f7B7629768c40Eeb39", "HEX", "HEX", 8),
	seedToken("0x514910771AF9Ca656af840dff83E8264EcF986CA", "ChainLink Token", "LINK", 18),
	seedToken("0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984", "Uniswap", "UNI", 18),
}

func seedToken(address, name, symbol string, decimals int) Token {
	if !common.IsHexAddress(address) {
		panic(fmt.Sprintf("erc20: seed token %s has malformed address %q", symbol, address))
	}

	return Token{
		Address:     common.HexToAddress(address).Hex(),
		Name:        name,
		Symbol:      symbol,
		Decimals:    decimals,
		TotalSupply: "0",
	}
}

// CommonTokens returns a copy of the static token list; TotalSupply is "0".
func CommonTokens() []Token {
	out := make([]Token, len(commonTokens))
	copy(out, commonTokens)
	return out
}
