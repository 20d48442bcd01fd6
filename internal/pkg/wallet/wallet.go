package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
)

var (
	ErrInvalidPrivateKey = errors.New("invalid private key")
	ErrInvalidMnemonic   = errors.New("invalid mnemonic")
)

const entropyBits = 128

// DerivationPath is m/44'/60'/0'/0/0, the first account of the default
// Ethereum wallet.
var DerivationPath = []uint32{
	bip32.FirstHardenedChild + 44,
	bip32.FirstHardenedChild + 60,
	bip32.FirstHardenedChild + 0,
	0,
	0,
}

type WalletData struct {
	Address    string `json:"address"`
	PrivateKey string `json:"privateKey"`
	Mnemonic   string `json:"mnemonic,omitempty"`
}

// CreateRandom generates a fresh 12-word mnemonic and derives its first account.
func CreateRandom() (*WalletData, error) {
	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return nil, fmt.Errorf("could not read entropy: %w", err)
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, fmt.Errorf("could not build mnemonic: %w", err)
	}

	return FromMnemonic(mnemonic)
}

// FromPrivateKey accepts a 32-byte hex key with or without the 0x prefix.
func FromPrivateKey(privateKey string) (*WalletData, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPrivateKey, err)
	}

	return fromKey(key, ""), nil
}

func FromMnemonic(phrase string) (*WalletData, error) {
	mnemonic := strings.Join(strings.Fields(phrase), " ")
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}

	key, err := bip32.NewMasterKey(bip39.NewSeed(mnemonic, ""))
	if err != nil {
		return nil, fmt.Errorf("could not derive master key: %w", err)
	}

	for _, index := range DerivationPath {
		key, err = key.NewChildKey(index)
		if err != nil {
			return nil, fmt.Errorf("could not derive child key %d: %w", index, err)
		}
	}

	privateKey, err := crypto.ToECDSA(key.Key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPrivateKey, err)
	}

	return fromKey(privateKey, mnemonic), nil
}

func fromKey(key *ecdsa.PrivateKey, mnemonic string) *WalletData {
	return &WalletData{
		Address:    crypto.PubkeyToAddress(key.PublicKey).Hex(),
		PrivateKey: hexutil.Encode(crypto.FromECDSA(key)),
		Mnemonic:   mnemonic,
	}
}
