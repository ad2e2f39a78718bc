package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pulsegraph/pulsegraph/internal/graph"
	"github.com/pulsegraph/pulsegraph/internal/model"
	"github.com/pulsegraph/pulsegraph/internal/refresh"
)

// askRequest is the question-answering payload. Periods default to the
// most recent quarters so a bare question still works.
type askRequest struct {
	Question string `json:"question" binding:"required"`
	Company  string `json:"company"`
	PeriodA  string `json:"period_a"`
	PeriodB  string `json:"period_b"`
	Window   string `json:"window"`
}

type freshnessOut struct {
	WasStale  bool   `json:"was_stale"`
	Reason    string `json:"reason"`
	CheckedAt string `json:"checked_at"`
}

type askResponse struct {
	Company   *model.Company        `json:"company"`
	PeriodA   string                `json:"period_a"`
	PeriodB   string                `json:"period_b"`
	Sentiment *model.SentimentDelta `json:"sentiment"`
	ClaimsA   []model.RankedClaim   `json:"claims_a"`
	ClaimsB   []model.RankedClaim   `json:"claims_b"`
	Freshness freshnessOut          `json:"freshness"`
	Refresh   *model.RunSummary     `json:"refresh,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// guessCompany is a first-pass heuristic over the question text. Callers
// that need anything better pass the company explicitly.
func guessCompany(question string) string {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "nvidia") || strings.Contains(q, "nvda"):
		return "NVIDIA"
	case strings.Contains(q, "tesla") || strings.Contains(q, "tsla"):
		return "Tesla"
	}
	return ""
}

func (s *Server) handleAsk(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.PeriodA == "" {
		req.PeriodA = "Q3-2025"
	}
	if req.PeriodB == "" {
		req.PeriodB = "Q2-2025"
	}
	if req.Window == "" {
		req.Window = s.window
	}
	autoRefresh := c.Query("auto_refresh") == "true"

	companyName := req.Company
	if companyName == "" {
		companyName = guessCompany(req.Question)
	}
	if companyName == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "could not infer company from question; provide `company` in the request",
		})
		return
	}

	ctx := c.Request.Context()
	company, err := s.store.FindCompanyByName(ctx, companyName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if company == nil {
		err := fmt.Errorf("%w: %s", graph.ErrCompanyNotFound, companyName)
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	latestA, err := s.store.LatestFetchByCategory(ctx, company.ID, req.PeriodA)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	latestB, err := s.store.LatestFetchByCategory(ctx, company.ID, req.PeriodB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	result := s.evaluator.Evaluate(append(latestA, latestB...))

	fresh := freshnessOut{
		WasStale:  result.IsStale,
		Reason:    freshnessReason(result),
		CheckedAt: result.EvaluatedAt.Format(time.RFC3339Nano),
	}

	var runSummary *model.RunSummary
	if result.IsStale && autoRefresh {
		runSummary, err = s.orchestrator.Run(ctx, refresh.Request{
			CompanyName:     company.Name,
			Ticker:          company.Ticker,
			Period:          req.PeriodA,
			StaleCategories: result.StaleCategories,
		})
		if err != nil {
			s.log.Warn("auto refresh failed", "company", company.Name, "error", err)
		}
	}

	claimsA, err := s.store.ClaimsWithSources(ctx, company.ID, req.PeriodA, 15)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	claimsB, err := s.store.ClaimsWithSources(ctx, company.ID, req.PeriodB, 15)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	sentiment, err := graph.SentimentDelta(ctx, s.store, company.ID, req.PeriodA, req.PeriodB, req.Window)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, askResponse{
		Company:   company,
		PeriodA:   req.PeriodA,
		PeriodB:   req.PeriodB,
		Sentiment: sentiment,
		ClaimsA:   claimsA,
		ClaimsB:   claimsB,
		Freshness: fresh,
		Refresh:   runSummary,
	})
}

func freshnessReason(result model.FreshnessResult) string {
	if !result.IsStale {
		return "All source data within freshness thresholds."
	}
	names := make([]string, 0, len(result.StaleCategories))
	for _, category := range result.StaleCategories {
		names = append(names, string(category))
	}
	return fmt.Sprintf("Stale source types detected: [%s]", strings.Join(names, ", "))
}

// refreshRequest triggers a manual refresh run.
type refreshRequest struct {
	Company string `json:"company" binding:"required"`
	Ticker  string `json:"ticker"`
	Period  string `json:"period" binding:"required"`
}

func (s *Server) handleRefresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := s.orchestrator.Run(c.Request.Context(), refresh.Request{
		CompanyName: req.Company,
		Ticker:      req.Ticker,
		Period:      req.Period,
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}
