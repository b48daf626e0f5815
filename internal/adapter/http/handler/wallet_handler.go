package handler

import (
	"strconv"

	"wallet-service/internal/adapter/http/dto"
	"wallet-service/internal/adapter/http/middleware"
	"wallet-service/internal/core/ports"
	"wallet-service/internal/metrics"
	"wallet-service/pkg/apperror"
	"wallet-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles wallet, deposit, and transfer endpoints.
type WalletHandler struct {
	ledgerSvc ports.LedgerService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledgerSvc ports.LedgerService) *WalletHandler {
	return &WalletHandler{ledgerSvc: ledgerSvc}
}

// GetWallet handles GET /api/v1/wallet. The wallet is created lazily on
// first request.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperror.ErrMissingCredential())
		return
	}

	wallet, err := h.ledgerSvc.GetOrCreateWallet(c.Request.Context(), user)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.WalletResponse{
		WalletNumber: wallet.WalletNumber,
		Balance:      wallet.Balance,
		Currency:     wallet.Currency,
	})
}

// InitiateDeposit handles POST /api/v1/deposits.
func (h *WalletHandler) InitiateDeposit(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperror.ErrMissingCredential())
		return
	}

	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	intent, err := h.ledgerSvc.InitiateDeposit(c.Request.Context(), user, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	metrics.ObserveDepositInitiated()
	response.Created(c, dto.DepositResponse{
		Reference:   intent.Reference,
		RedirectURL: intent.RedirectURL,
		Transaction: dto.ToTransactionResponse(intent.Transaction),
	})
}

// GetDepositStatus handles GET /api/v1/deposits/:reference.
func (h *WalletHandler) GetDepositStatus(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperror.ErrMissingCredential())
		return
	}

	txn, err := h.ledgerSvc.GetDepositStatus(c.Request.Context(), user, c.Param("reference"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToTransactionResponse(txn))
}

// Transfer handles POST /api/v1/transfers.
func (h *WalletHandler) Transfer(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperror.ErrMissingCredential())
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	txn, err := h.ledgerSvc.TransferFunds(c.Request.Context(), user, req.RecipientWalletNumber, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	metrics.ObserveTransfer()
	response.Created(c, dto.ToTransactionResponse(txn))
}

// ListTransactions handles GET /api/v1/transactions.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperror.ErrMissingCredential())
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, total, err := h.ledgerSvc.GetTransactionHistory(c.Request.Context(), user.ID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.TransactionResponse, 0, len(items))
	for i := range items {
		out = append(out, dto.ToTransactionResponse(&items[i]))
	}

	response.OK(c, dto.TransactionListResponse{
		Items:  out,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}
