package explorer

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

type balanceResponse struct {
	Token   string `json:"token"`
	Wallet  string `json:"wallet"`
	Balance string `json:"balance"`
}

// CommonTokens lists the well known tokens; with ?wallet= balances are filled in.
func (h *handler) CommonTokens(w http.ResponseWriter, r *http.Request) {
	wallet := strings.TrimSpace(r.URL.Query().Get("wallet"))
	if wallet == "" {
		h.writeJSON(w, http.StatusOK, h.tokens.CommonTokens())
		return
	}

	if !common.IsHexAddress(wallet) || !strings.HasPrefix(wallet, "0x") {
		h.writeError(w, fmt.Errorf("%w: invalid address %q", errBadRequest, wallet))
		return
	}

	h.writeJSON(w, http.StatusOK, h.tokens.TokensWithBalances(r.Context(), wallet))
}

func (h *handler) Token(w http.ResponseWriter, r *http.Request) {
	address, err := addressParam(r, "address")
	if err != nil {
		h.writeError(w, err)
		return
	}

	token, err := h.tokens.TokenInfo(r.Context(), address)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if token == nil {
		h.notFound(w, "token")
		return
	}

	h.writeJSON(w, http.StatusOK, token)
}

func (h *handler) TokenBalance(w http.ResponseWriter, r *http.Request) {
	token, err := addressParam(r, "address")
	if err != nil {
		h.writeError(w, err)
		return
	}
	wallet, err := addressParam(r, "wallet")
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, balanceResponse{
		Token:   token,
		Wallet:  wallet,
		Balance: h.tokens.TokenBalance(r.Context(), token, wallet),
	})
}
