package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/lidofinance/blockview/internal/pkg/chain"
	"github.com/lidofinance/blockview/internal/pkg/hexcodec"
	"github.com/lidofinance/blockview/internal/pkg/search"
	"github.com/lidofinance/blockview/internal/pkg/wallet"
)

var errNotFound = errors.New("not found")

func (c *cli) blocksCommand() *cobra.Command {
	blocks := &cobra.Command{
		Use:   "blocks",
		Short: "Recent blocks",
	}

	var count int
	latest := &cobra.Command{
		Use:   "latest",
		Short: "List the newest blocks, head first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := c.chain.LatestBlocks(cmd.Context(), count)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NUMBER\tHASH\tTXS\tGAS USED\tMINER\tTIME")
			for i := range list {
				b := list[i]
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
					hexcodec.FormatBlockNumber(b.Number),
					hexcodec.ShortenHash(b.Hash, hexcodec.DefaultHashChars),
					b.Transactions.Len(),
					hexcodec.FormatGas(b.GasUsed),
					hexcodec.ShortenAddress(b.Miner, hexcodec.DefaultAddressChars),
					hexcodec.FormatTimestamp(b.Timestamp),
				)
			}
			return tw.Flush()
		},
	}
	latest.Flags().IntVarP(&count, "count", "n", chain.DefaultLatestBlocksCount, "number of blocks")

	number := &cobra.Command{
		Use:   "number",
		Short: "Print the head block number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			head, err := c.chain.BlockNumber(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), head)
			return err
		},
	}

	blocks.AddCommand(latest, number)
	return blocks
}

func (c *cli) blockCommand() *cobra.Command {
	var fullTx bool

	cmd := &cobra.Command{
		Use:   "block <number|0xhex|latest>",
		Short: "Show one block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag, err := blockTag(args[0])
			if err != nil {
				return err
			}

			block, err := c.chain.BlockByNumber(cmd.Context(), tag, fullTx)
			if err != nil {
				return err
			}
			if block == nil {
				return fmt.Errorf("block %s: %w", args[0], errNotFound)
			}
			return printJSON(cmd, block)
		},
	}
	cmd.Flags().BoolVar(&fullTx, "full", false, "include full transactions")

	return cmd
}

func blockTag(arg string) (string, error) {
	if arg == chain.LatestTag || strings.HasPrefix(arg, hexcodec.Prefix) {
		return arg, nil
	}

	number, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || number < 0 {
		return "", fmt.Errorf("invalid block number %q", arg)
	}
	return hexcodec.FromNumber(number), nil
}

func (c *cli) txCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tx <hash>",
		Short: "Show a transaction and its receipt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if search.Classify(args[0]).Kind != search.KindTransaction {
				return fmt.Errorf("invalid transaction hash %q", args[0])
			}

			details, err := c.chain.TransactionDetails(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if details == nil {
				return fmt.Errorf("transaction %s: %w", args[0], errNotFound)
			}
			return printJSON(cmd, details)
		},
	}
}

func (c *cli) addressCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "address <address>",
		Short: "Show balance, nonce and code size of an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !common.IsHexAddress(args[0]) {
				return fmt.Errorf("invalid address %q", args[0])
			}

			info, err := c.chain.AddressInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "Address\t%s\n", info.Address)
			fmt.Fprintf(tw, "Balance\t%s ETH\n", hexcodec.FormatEther(info.Balance))
			fmt.Fprintf(tw, "Transactions\t%d\n", hexcodec.ToNumber(info.TransactionCount))
			fmt.Fprintf(tw, "Contract\t%t\n", info.IsContract)
			return tw.Flush()
		},
	}
}

func (c *cli) tokenCommand() *cobra.Command {
	token := &cobra.Command{
		Use:   "token",
		Short: "ERC-20 token queries",
	}

	info := &cobra.Command{
		Use:   "info <address>",
		Short: "Read name, symbol, decimals and total supply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := c.tokens.TokenInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if t == nil {
				return fmt.Errorf("token %s: %w", args[0], errNotFound)
			}
			return printJSON(cmd, t)
		},
	}

	balance := &cobra.Command{
		Use:   "balance <token> <wallet>",
		Short: "Read the token balance of a wallet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount := c.tokens.TokenBalance(cmd.Context(), args[0], args[1])

			decimals := 0
			if t, err := c.tokens.TokenInfo(cmd.Context(), args[0]); err == nil && t != nil {
				decimals = t.Decimals
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), hexcodec.FormatUnits(amount, decimals))
			return err
		},
	}

	var wallet string
	list := &cobra.Command{
		Use:   "list",
		Short: "List well known tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if wallet == "" {
				return printJSON(cmd, c.tokens.CommonTokens())
			}
			return printJSON(cmd, c.tokens.TokensWithBalances(cmd.Context(), wallet))
		},
	}
	list.Flags().StringVar(&wallet, "wallet", "", "fill in balances of this wallet")

	token.AddCommand(info, balance, list)
	return token
}

func (c *cli) walletCommand() *cobra.Command {
	walletCmd := &cobra.Command{
		Use:   "wallet",
		Short: "Create or import a wallet offline",
	}

	create := &cobra.Command{
		Use:   "new",
		Short: "Generate a random wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := wallet.CreateRandom()
			if err != nil {
				return err
			}
			return printJSON(cmd, data)
		},
	}

	var privateKey, mnemonic string
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import a wallet from a private key or a mnemonic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				data *wallet.WalletData
				err  error
			)
			switch {
			case privateKey != "":
				data, err = wallet.FromPrivateKey(privateKey)
			case mnemonic != "":
				data, err = wallet.FromMnemonic(mnemonic)
			default:
				return errors.New("either --private-key or --mnemonic is required")
			}
			if err != nil {
				return err
			}
			return printJSON(cmd, data)
		},
	}
	importCmd.Flags().StringVar(&privateKey, "private-key", "", "hex private key")
	importCmd.Flags().StringVar(&mnemonic, "mnemonic", "", "bip39 mnemonic phrase")
	importCmd.MarkFlagsMutuallyExclusive("private-key", "mnemonic")

	walletCmd.AddCommand(create, importCmd)
	return walletCmd
}

func (c *cli) searchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Tell whether the query is a block, an address or a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd, search.Classify(args[0]))
		},
	}
}

func (c *cli) rpcCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rpc <method> [params...]",
		Short: "Send a raw json-rpc request, params are JSON values or plain strings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := make([]any, 0, len(args)-1)
			for _, arg := range args[1:] {
				var v any
				if err := json.Unmarshal([]byte(arg), &v); err != nil {
					v = arg
				}
				params = append(params, v)
			}

			result, err := c.chain.Raw(cmd.Context(), args[0], params...)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
}
