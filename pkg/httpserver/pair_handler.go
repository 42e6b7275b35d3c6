package httpserver

import (
	"errors"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/mselser95/auctionflow/internal/auction"
	"github.com/mselser95/auctionflow/internal/registry"
	"github.com/mselser95/auctionflow/internal/router"
	"github.com/mselser95/auctionflow/pkg/cache"
	"github.com/mselser95/auctionflow/pkg/types"
	"go.uber.org/zap"
)

// PairHandler handles HTTP requests for auction pairs.
type PairHandler struct {
	registry   *registry.Registry
	router     *router.Router
	quoteCache cache.Cache
	quoteTTL   time.Duration
	logger     *zap.Logger
}

// NewPairHandler creates a new pair handler.
func NewPairHandler(reg *registry.Registry, rtr *router.Router, quoteCache cache.Cache, quoteTTL time.Duration, logger *zap.Logger) *PairHandler {
	return &PairHandler{
		registry:   reg,
		router:     rtr,
		quoteCache: quoteCache,
		quoteTTL:   quoteTTL,
		logger:     logger,
	}
}

// PairResponse describes one auction pair.
type PairResponse struct {
	ID               string    `json:"id"`
	TokenIn          string    `json:"token_in"`
	TokenOut         string    `json:"token_out"`
	TargetPeriodSecs int64     `json:"target_period_secs"`
	SmoothingFactor  string    `json:"smoothing_factor"`
	LastAuctionAt    time.Time `json:"last_auction_at"`
	LastAuctionPrice string    `json:"last_auction_price"`
}

// QuoteResponse is the current auction quote for a pair.
type QuoteResponse struct {
	PairID       string    `json:"pair_id"`
	Price        string    `json:"price"`
	MaxAmountOut string    `json:"max_amount_out"`
	QuotedAt     time.Time `json:"quoted_at"`
}

// SwapBody is the request body for POST /api/pairs/{pairID}/swap.
type SwapBody struct {
	Sender      string `json:"sender"`
	Receiver    string `json:"receiver"`
	AmountOut   string `json:"amount_out"`
	AmountInMax string `json:"amount_in_max"`
	Deadline    int64  `json:"deadline"` // Unix seconds
	Payload     []byte `json:"payload,omitempty"`
}

// SwapResponse is returned for a committed swap.
type SwapResponse struct {
	PairID   string `json:"pair_id"`
	AmountIn string `json:"amount_in"`
	Receipt  []byte `json:"receipt,omitempty"`
}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func pairResponse(pair *auction.Pair) PairResponse {
	return PairResponse{
		ID:               pair.ID(),
		TokenIn:          pair.TokenIn().Hex(),
		TokenOut:         pair.TokenOut().Hex(),
		TargetPeriodSecs: int64(pair.TargetPeriod() / time.Second),
		SmoothingFactor:  pair.SmoothingFactor().String(),
		LastAuctionAt:    pair.LastAuctionAt(),
		LastAuctionPrice: pair.LastAuctionPrice().String(),
	}
}

// HandleListPairs handles GET /api/pairs requests.
func (h *PairHandler) HandleListPairs(w http.ResponseWriter, r *http.Request) {
	pairs := h.registry.List()

	response := make([]PairResponse, 0, len(pairs))
	for _, pair := range pairs {
		response = append(response, pairResponse(pair))
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleGetPair handles GET /api/pairs/{pairID} requests.
func (h *PairHandler) HandleGetPair(w http.ResponseWriter, r *http.Request) {
	pairID := chi.URLParam(r, "pairID")

	pair, ok := h.registry.Get(pairID)
	if !ok {
		h.writeError(w, "pair not found", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, pairResponse(pair))
}

// HandleQuote handles GET /api/pairs/{pairID}/quote requests. Quotes are
// cached briefly so bursts of pollers do not hammer the asset source.
func (h *PairHandler) HandleQuote(w http.ResponseWriter, r *http.Request) {
	pairID := chi.URLParam(r, "pairID")

	cacheKey := "quote:" + pairID
	if h.quoteCache != nil {
		if cached, found := h.quoteCache.Get(cacheKey); found {
			if quote, ok := cached.(*QuoteResponse); ok {
				h.writeJSON(w, http.StatusOK, quote)
				return
			}
		}
	}

	pair, ok := h.registry.Get(pairID)
	if !ok {
		h.writeError(w, "pair not found", http.StatusNotFound)
		return
	}

	maxOut, err := pair.QueryMaxAmountOut(r.Context())
	if err != nil {
		h.logger.Error("quote-balance-query-failed",
			zap.String("pair-id", pairID),
			zap.Error(err))
		h.writeError(w, "asset source unavailable", http.StatusBadGateway)
		return
	}

	now := time.Now()
	quote := &QuoteResponse{
		PairID:       pairID,
		Price:        pair.QueryPrice(now).String(),
		MaxAmountOut: maxOut.String(),
		QuotedAt:     now,
	}

	if h.quoteCache != nil {
		h.quoteCache.Set(cacheKey, quote, h.quoteTTL)
	}

	h.writeJSON(w, http.StatusOK, quote)
}

// HandleSwap handles POST /api/pairs/{pairID}/swap requests.
func (h *PairHandler) HandleSwap(w http.ResponseWriter, r *http.Request) {
	pairID := chi.URLParam(r, "pairID")

	var body SwapBody
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		h.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if !common.IsHexAddress(body.Sender) {
		h.writeError(w, "invalid sender address", http.StatusBadRequest)
		return
	}
	if !common.IsHexAddress(body.Receiver) {
		h.writeError(w, "invalid receiver address", http.StatusBadRequest)
		return
	}

	amountOut, ok := new(big.Int).SetString(body.AmountOut, 10)
	if !ok || amountOut.Sign() <= 0 {
		h.writeError(w, "invalid amount_out", http.StatusBadRequest)
		return
	}

	amountInMax, ok := new(big.Int).SetString(body.AmountInMax, 10)
	if !ok || amountInMax.Sign() < 0 {
		h.writeError(w, "invalid amount_in_max", http.StatusBadRequest)
		return
	}

	result, err := h.router.Swap(r.Context(), common.HexToAddress(body.Sender), router.SwapParams{
		PairID:      pairID,
		Receiver:    common.HexToAddress(body.Receiver),
		AmountOut:   amountOut,
		AmountInMax: amountInMax,
		Deadline:    time.Unix(body.Deadline, 0),
		Payload:     body.Payload,
	})
	if err != nil {
		h.logger.Warn("swap-request-failed",
			zap.String("pair-id", pairID),
			zap.Error(err))
		h.writeError(w, err.Error(), swapErrorStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, SwapResponse{
		PairID:   pairID,
		AmountIn: result.AmountIn.String(),
		Receipt:  result.Receipt,
	})
}

// swapErrorStatus maps swap failures to HTTP status codes.
func swapErrorStatus(err error) int {
	var priceErr *types.PriceExceedsLimitError
	var balanceErr *types.InsufficientBalanceError
	var collabErr *types.CollaboratorError

	switch {
	case errors.Is(err, types.ErrUnknownPair):
		return http.StatusNotFound
	case errors.Is(err, types.ErrSwapExpired),
		errors.Is(err, types.ErrInvalidReceiver):
		return http.StatusBadRequest
	case errors.As(err, &priceErr),
		errors.As(err, &balanceErr),
		errors.Is(err, types.ErrReentrantSwap):
		return http.StatusConflict
	case errors.As(err, &collabErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes a JSON response.
func (h *PairHandler) writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	err := json.NewEncoder(w).Encode(payload)
	if err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

// writeError writes a JSON error response.
func (h *PairHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	h.writeJSON(w, statusCode, ErrorResponse{Error: message})
}
