package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/adawatch/charon/core"
	"github.com/adawatch/charon/ports"
	"github.com/adawatch/charon/service"
)

// AuthHandlers contains HTTP handlers for the auth endpoints
type AuthHandlers struct {
	authService *service.AuthService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

// Challenge handles the challenge request
func (h *AuthHandlers) Challenge(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Address is required"})
		return
	}

	challenge, err := h.authService.CreateChallenge(c.Request.Context(), req.Address)
	if err != nil {
		if errors.Is(err, core.ErrMissingField) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Address is required"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create challenge"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": challenge.Message,
		"nonce":   challenge.Nonce,
	})
}

// Verify handles the signed-challenge verification request
func (h *AuthHandlers) Verify(c *gin.Context) {
	var req struct {
		Address      string `json:"address" binding:"required"`
		Signature    string `json:"signature" binding:"required"`
		Key          string `json:"key" binding:"required"`
		StakeAddress string `json:"stake_address"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Address, signature and key are required"})
		return
	}

	token, err := h.authService.VerifyAndIssueSession(
		c.Request.Context(), req.Address, req.Signature, req.Key, req.StakeAddress)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrMissingField):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Address, signature and key are required"})
		case errors.Is(err, core.ErrNoChallenge),
			errors.Is(err, core.ErrChallengeExpired),
			errors.Is(err, core.ErrInvalidSignature),
			errors.Is(err, core.ErrAddressBinding):
			// uniform body: the failing check is only visible in server logs
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed"})
		default:
			// malformed envelopes and issuance failures are server-side
			// format mismatches, not credential failures
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Signature verification failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// UserHandlers contains HTTP handlers for the protected user-data endpoints
type UserHandlers struct {
	chainData ports.ChainData
}

// NewUserHandlers creates new user-data handlers
func NewUserHandlers(chainData ports.ChainData) *UserHandlers {
	return &UserHandlers{chainData: chainData}
}

// Summary returns the wallet summary for an address
func (h *UserHandlers) Summary(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing wallet address parameter"})
		return
	}

	info, err := h.chainData.AccountInfo(c.Request.Context(), address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch account info"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address":           address,
		"stake_address":     info.StakeAddress,
		"balance":           info.Balance.String(),
		"transaction_count": info.TxCount,
	})
}

// Transactions returns a page of transactions for an address
func (h *UserHandlers) Transactions(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing wallet address parameter"})
		return
	}

	page := intQuery(c, "page", 1)
	count := intQuery(c, "count", 10)

	transactions, err := h.chainData.AddressTransactions(c.Request.Context(), address, page, count)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
		return
	}

	type txResponse struct {
		TxHash      string `json:"tx_hash"`
		Block       string `json:"block"`
		BlockHeight uint64 `json:"block_height"`
		BlockTime   uint64 `json:"block_time"`
		Slot        uint64 `json:"slot"`
		Index       uint32 `json:"index"`
		Fees        string `json:"fees"`
	}

	out := make([]txResponse, 0, len(transactions))
	for _, tx := range transactions {
		out = append(out, txResponse{
			TxHash:      tx.Hash,
			Block:       tx.Block,
			BlockHeight: tx.BlockHeight,
			BlockTime:   tx.BlockTime,
			Slot:        tx.Slot,
			Index:       tx.Index,
			Fees:        tx.Fees.String(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": out,
		"total":        len(out),
		"page":         page,
	})
}

// Me returns the identity bound to the presented session token
func (h *AuthHandlers) Me(c *gin.Context) {
	address, exists := c.Get(ContextWalletAddress)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User not found in context"})
		return
	}

	stakeAddress, _ := c.Get(ContextStakeAddress)
	c.JSON(http.StatusOK, gin.H{
		"address":       address,
		"stake_address": stakeAddress,
	})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
