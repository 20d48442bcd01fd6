package explorer

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lidofinance/blockview/internal/pkg/wallet"
)

const maxImportBody = 4 << 10

type importRequest struct {
	PrivateKey string `json:"privateKey"`
	Mnemonic   string `json:"mnemonic"`
}

func (h *handler) CreateWallet(w http.ResponseWriter, _ *http.Request) {
	data, err := wallet.CreateRandom()
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, data)
}

func (h *handler) ImportWallet(w http.ResponseWriter, r *http.Request) {
	var payload importRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxImportBody)).Decode(&payload); err != nil {
		h.writeError(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}

	var (
		data *wallet.WalletData
		err  error
	)
	switch {
	case payload.PrivateKey != "" && payload.Mnemonic != "":
		err = fmt.Errorf("%w: privateKey and mnemonic are mutually exclusive", errBadRequest)
	case payload.PrivateKey != "":
		data, err = wallet.FromPrivateKey(payload.PrivateKey)
	case payload.Mnemonic != "":
		data, err = wallet.FromMnemonic(payload.Mnemonic)
	default:
		err = fmt.Errorf("%w: privateKey or mnemonic is required", errBadRequest)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, data)
}
