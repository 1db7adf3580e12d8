package ledger

import (
	"log/slog"
	"net/http"

	v1 "github.com/aevon-lab/eventreg/internal/api/v1"
	httperr "github.com/aevon-lab/eventreg/internal/core/errors"
	"github.com/gin-gonic/gin"
)

// GrantHandler handles POST /v1/users/:user_id/credits.
func (s *Service) GrantHandler(c *gin.Context) {
	var req v1.GrantCreditsRequest
	if !s.bindJSON(c, &req) {
		return
	}

	id, err := s.Grant(c.Request.Context(), c.Param("user_id"), req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}

	// Applied to the balance by the scheduler on its next cycle.
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted", "transaction_id": id})
}

// BalanceHandler handles GET /v1/users/:user_id/balance.
func (s *Service) BalanceHandler(c *gin.Context) {
	bal, err := s.Balance(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bal)
}

// OpenBalanceHandler handles PUT /v1/users/:user_id/balance.
func (s *Service) OpenBalanceHandler(c *gin.Context) {
	bal, err := s.OpenBalance(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bal)
}

// bindJSON decodes a size-limited body. On failure it writes the 400 itself.
func (s *Service) bindJSON(c *gin.Context, dst interface{}) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBodySizeBytes)
	if err := c.ShouldBindJSON(dst); err != nil {
		slog.Warn("[Ledger] Invalid JSON body received", "error", err, "path", c.FullPath())
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Invalid JSON body",
		})
		return false
	}
	return true
}

func writeError(c *gin.Context, err error) {
	status, errType := httperr.HTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("[Ledger] Request failed", "error", err, "path", c.FullPath())
		msg = "Internal server error"
	}
	c.JSON(status, httperr.ErrorResponse{ErrorType: errType, Message: msg})
}
