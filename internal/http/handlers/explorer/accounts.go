package explorer

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"github.com/lidofinance/blockview/internal/pkg/search"
)

func (h *handler) Transaction(w http.ResponseWriter, r *http.Request) {
	hash := strings.TrimSpace(chi.URLParam(r, "hash"))
	if search.Classify(hash).Kind != search.KindTransaction {
		h.writeError(w, fmt.Errorf("%w: invalid transaction hash %q", errBadRequest, hash))
		return
	}

	details, err := h.chain.TransactionDetails(r.Context(), hash)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if details == nil {
		h.notFound(w, "transaction")
		return
	}

	h.writeJSON(w, http.StatusOK, details)
}

func (h *handler) Address(w http.ResponseWriter, r *http.Request) {
	address, err := addressParam(r, "address")
	if err != nil {
		h.writeError(w, err)
		return
	}

	info, err := h.chain.AddressInfo(r.Context(), address)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, info)
}

func (h *handler) Search(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, search.Classify(r.URL.Query().Get("q")))
}

func addressParam(r *http.Request, name string) (string, error) {
	address := strings.TrimSpace(chi.URLParam(r, name))
	if !common.IsHexAddress(address) || !strings.HasPrefix(address, "0x") {
		return "", fmt.Errorf("%w: invalid address %q", errBadRequest, address)
	}

	return address, nil
}
