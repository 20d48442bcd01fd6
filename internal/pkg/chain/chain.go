package chain

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/lidofinance/blockview/internal/pkg/chain/entity"
	"github.com/lidofinance/blockview/internal/pkg/hexcodec"
)

const (
	LatestTag = "latest"

	DefaultLatestBlocksCount = 10
)

// Reader is the typed view over the node used by the explorer.
type Reader struct {
	caller      Caller
	concurrency int
}

// NewReader builds a Reader. concurrency bounds the block fan-out of
// LatestBlocks; 1 or less fetches blocks one by one.
func NewReader(caller Caller, concurrency int) *Reader {
	if concurrency < 1 {
		concurrency = 1
	}

	return &Reader{
		caller:      caller,
		concurrency: concurrency,
	}
}

func (r *Reader) BlockNumber(ctx context.Context) (int64, error) {
	hexNumber, err := Call[string](ctx, r.caller, "eth_blockNumber")
	if err != nil {
		return 0, err
	}
	if hexNumber == nil {
		return 0, fmt.Errorf("eth_blockNumber: %w", ErrEmptyResponse)
	}

	number, err := hexcodec.ParseNumber(*hexNumber)
	if err != nil {
		return 0, fmt.Errorf("eth_blockNumber: %w", err)
	}

	return number, nil
}

// BlockByNumber returns nil when the node does not know the block.
func (r *Reader) BlockByNumber(ctx context.Context, tag string, fullTx bool) (*entity.Block, error) {
	return Call[entity.Block](ctx, r.caller, "eth_getBlockByNumber", tag, fullTx)
}

func (r *Reader) BlockByHeight(ctx context.Context, number int64, fullTx bool) (*entity.Block, error) {
	return r.BlockByNumber(ctx, hexcodec.FromNumber(number), fullTx)
}

func (r *Reader) Transaction(ctx context.Context, txHash string) (*entity.Transaction, error) {
	return Call[entity.Transaction](ctx, r.caller, "eth_getTransactionByHash", txHash)
}

// TransactionReceipt returns nil while the transaction is pending.
func (r *Reader) TransactionReceipt(ctx context.Context, txHash string) (*entity.TransactionReceipt, error) {
	return Call[entity.TransactionReceipt](ctx, r.caller, "eth_getTransactionReceipt", txHash)
}

func (r *Reader) Balance(ctx context.Context, address, tag string) (string, error) {
	return r.quantity(ctx, "eth_getBalance", address, tag)
}

func (r *Reader) Code(ctx context.Context, address, tag string) (string, error) {
	return r.quantity(ctx, "eth_getCode", address, tag)
}

func (r *Reader) TransactionCount(ctx context.Context, address, tag string) (string, error) {
	return r.quantity(ctx, "eth_getTransactionCount", address, tag)
}

// EthCall executes a read-only message call against the given block tag.
func (r *Reader) EthCall(ctx context.Context, msg entity.CallMsg, tag string) (string, error) {
	result, err := Call[string](ctx, r.caller, "eth_call", msg, orLatest(tag))
	if err != nil {
		return "", err
	}
	if result == nil {
		return hexcodec.Prefix, nil
	}
	return *result, nil
}

func (r *Reader) quantity(ctx context.Context, method, address, tag string) (string, error) {
	result, err := Call[string](ctx, r.caller, method, address, orLatest(tag))
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", fmt.Errorf("%s: %w", method, ErrEmptyResponse)
	}
	return *result, nil
}

// LatestBlocks returns up to count blocks, newest first, without full
// transactions. It issues one call for the head number and one per block.
func (r *Reader) LatestBlocks(ctx context.Context, count int) ([]entity.Block, error) {
	head, err := r.BlockNumber(ctx)
	if err != nil {
		return nil, err
	}

	numbers := walkBack(head, count)
	fetched := make([]*entity.Block, len(numbers))

	if r.concurrency <= 1 {
		for i, number := range numbers {
			block, blockErr := r.BlockByHeight(ctx, number, false)
			if blockErr != nil {
				return nil, blockErr
			}
			fetched[i] = block
		}
	} else {
		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(r.concurrency)

		for i, number := range numbers {
			g.Go(func() error {
				block, blockErr := r.BlockByHeight(gCtx, number, false)
				if blockErr != nil {
					return blockErr
				}
				fetched[i] = block
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	blocks := make([]entity.Block, 0, len(fetched))
	for _, block := range fetched {
		if block != nil {
			blocks = append(blocks, *block)
		}
	}

	return blocks, nil
}

// walkBack lists count block numbers from head downwards, stopping at genesis.
func walkBack(head int64, count int) []int64 {
	if count <= 0 || head < 0 {
		return []int64{}
	}

	// head+1 blocks exist, from genesis to head.
	n := int64(count)
	if n > head {
		n = head + 1
	}

	numbers := make([]int64, 0, n)
	for i := int64(0); i < n; i++ {
		numbers = append(numbers, head-i)
	}

	return numbers
}

// AddressInfo fetches balance, code and nonce of an address in parallel.
func (r *Reader) AddressInfo(ctx context.Context, address string) (*entity.AddressInfo, error) {
	info := &entity.AddressInfo{Address: address}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		info.Balance, err = r.Balance(gCtx, address, LatestTag)
		return err
	})
	g.Go(func() (err error) {
		info.Code, err = r.Code(gCtx, address, LatestTag)
		return err
	})
	g.Go(func() (err error) {
		info.TransactionCount, err = r.TransactionCount(gCtx, address, LatestTag)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	info.IsContract = entity.IsContractCode(info.Code)
	return info, nil
}

// TransactionDetails fetches a transaction and its receipt in parallel.
// It returns nil when the node does not know the transaction.
func (r *Reader) TransactionDetails(ctx context.Context, txHash string) (*entity.TransactionDetails, error) {
	details := &entity.TransactionDetails{}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		details.Transaction, err = r.Transaction(gCtx, txHash)
		return err
	})
	g.Go(func() (err error) {
		details.Receipt, err = r.TransactionReceipt(gCtx, txHash)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if details.Transaction == nil {
		return nil, nil
	}

	return details, nil
}

func orLatest(tag string) string {
	if tag == "" {
		return LatestTag
	}
	return tag
}

var _ Caller = (*Client)(nil)

// Raw sends an arbitrary method and returns the untyped result.
func (r *Reader) Raw(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	return r.caller.Send(ctx, method, params)
}
