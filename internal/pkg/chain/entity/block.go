package entity

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/lidofinance/blockview/internal/pkg/hexcodec"
)

type Block struct {
	Number           string            `json:"number"`
	Hash             string            `json:"hash"`
	ParentHash       string            `json:"parentHash"`
	Nonce            string            `json:"nonce"`
	Sha3Uncles       string            `json:"sha3Uncles"`
	LogsBloom        string            `json:"logsBloom"`
	TransactionsRoot string            `json:"transactionsRoot"`
	StateRoot        string            `json:"stateRoot"`
	ReceiptsRoot     string            `json:"receiptsRoot"`
	Miner            string            `json:"miner"`
	Difficulty       string            `json:"difficulty"`
	TotalDifficulty  string            `json:"totalDifficulty,omitempty"`
	ExtraData        string            `json:"extraData"`
	Size             string            `json:"size"`
	GasLimit         string            `json:"gasLimit"`
	GasUsed          string            `json:"gasUsed"`
	BaseFeePerGas    string            `json:"baseFeePerGas,omitempty"`
	Timestamp        string            `json:"timestamp"`
	Transactions     BlockTransactions `json:"transactions"`
	Uncles           []string          `json:"uncles"`
}

func (b *Block) GetNumber() int64 {
	return hexcodec.ToNumber(b.Number)
}

func (b *Block) GetTimestamp() int64 {
	return hexcodec.ToNumber(b.Timestamp)
}

// BlockTransactions holds either transaction hashes or full transactions,
// depending on the fullTx flag of eth_getBlockByNumber.
type BlockTransactions struct {
	Hashes []string
	Full   []Transaction
}

func (t *BlockTransactions) Len() int {
	if t.Full != nil {
		return len(t.Full)
	}
	return len(t.Hashes)
}

func (t *BlockTransactions) IsFull() bool {
	return t.Full != nil
}

func (t *BlockTransactions) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return fmt.Errorf("block transactions: %w", err)
	}

	if len(raw) == 0 {
		t.Hashes = []string{}
		return nil
	}

	if bytes.HasPrefix(bytes.TrimSpace(raw[0]), []byte(`"`)) {
		return json.Unmarshal(trimmed, &t.Hashes)
	}

	return json.Unmarshal(trimmed, &t.Full)
}

func (t BlockTransactions) MarshalJSON() ([]byte, error) {
	if t.Full != nil {
		return json.Marshal(t.Full)
	}
	if t.Hashes == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.Hashes)
}
