package controllers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/elquelo/elquelo/config"
	"github.com/elquelo/elquelo/resolver"
	"github.com/elquelo/elquelo/utils"
)

// SweepController exposes the lifecycle sweep to an external periodic
// scheduler. One call runs one complete pass; per-item failures are reported
// in the body but do not fail the request.
type SweepController struct {
	sweeper *resolver.Sweeper
}

// NewSweepController creates a new SweepController instance.
func NewSweepController(sweeper *resolver.Sweeper) *SweepController {
	return &SweepController{sweeper: sweeper}
}

// Run triggers one sweep pass. Gated by the X-Sweep-Secret header when a
// secret is configured.
func (s *SweepController) Run(ctx *gin.Context) {
	secret := config.Get().SweepSecret
	if secret != "" {
		provided := ctx.GetHeader("X-Sweep-Secret")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			utils.Error(ctx, http.StatusUnauthorized, 40120, "invalid sweep secret")
			return
		}
	}

	report, err := s.sweeper.Run(ctx.Request.Context(), time.Now())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "sweep failed: "+err.Error())
		return
	}

	utils.Success(ctx, report)
}
