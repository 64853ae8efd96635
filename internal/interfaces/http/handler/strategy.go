package handler

import (
	"net/http"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared/strategy"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// StrategyRegistry defines the interface for listing strategies
type StrategyRegistry interface {
	ListScoringStrategies() []string
	ListValidationStrategies() []string
	GetDefault(strategyType strategy.StrategyType) string
	GetScoringStrategy(name string) (strategy.CompletenessScoringStrategy, error)
	GetValidationStrategy(name string) (strategy.DataPointValidationStrategy, error)
}

// StrategyHandler handles strategy-related API endpoints
type StrategyHandler struct {
	BaseHandler
	registry StrategyRegistry
}

// NewStrategyHandler creates a new StrategyHandler
func NewStrategyHandler(registry StrategyRegistry) *StrategyHandler {
	return &StrategyHandler{
		registry: registry,
	}
}

// StrategyInfo represents information about a single strategy
type StrategyInfo struct {
	Name        string `json:"name" example:"weighted"`
	Type        string `json:"type" example:"scoring"`
	Description string `json:"description" example:"Mandatory data points weigh double in section completeness"`
	IsDefault   bool   `json:"is_default" example:"true"`
}

// StrategiesResponse represents the list of available strategies
type StrategiesResponse struct {
	Scoring    []StrategyInfo `json:"scoring"`
	Validation []StrategyInfo `json:"validation"`
}

// ListStrategies godoc
// @ID           listSystemStrategies
// @Summary      List available strategies
// @Description  Returns all registered strategies grouped by type
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[StrategiesResponse]
// @Failure      500 {object} dto.ErrorResponse
// @Router       /system/strategies [get]
func (h *StrategyHandler) ListStrategies(c *gin.Context) {
	response := StrategiesResponse{
		Scoring:    h.buildScoringStrategies(),
		Validation: h.buildValidationStrategies(),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// buildScoringStrategies builds the list of completeness scoring strategies
func (h *StrategyHandler) buildScoringStrategies() []StrategyInfo {
	names := h.registry.ListScoringStrategies()
	defaultName := h.registry.GetDefault(strategy.StrategyTypeScoring)
	result := make([]StrategyInfo, 0, len(names))

	for _, name := range names {
		info := StrategyInfo{
			Name:      name,
			Type:      string(strategy.StrategyTypeScoring),
			IsDefault: name == defaultName,
		}
		if s, err := h.registry.GetScoringStrategy(name); err == nil {
			info.Description = s.Description()
		}
		result = append(result, info)
	}
	return result
}

// buildValidationStrategies builds the list of data point validation strategies
func (h *StrategyHandler) buildValidationStrategies() []StrategyInfo {
	names := h.registry.ListValidationStrategies()
	defaultName := h.registry.GetDefault(strategy.StrategyTypeValidation)
	result := make([]StrategyInfo, 0, len(names))

	for _, name := range names {
		info := StrategyInfo{
			Name:      name,
			Type:      string(strategy.StrategyTypeValidation),
			IsDefault: name == defaultName,
		}
		if s, err := h.registry.GetValidationStrategy(name); err == nil {
			info.Description = s.Description()
		}
		result = append(result, info)
	}
	return result
}

// GetScoringStrategies godoc
// @ID           getSystemScoringStrategies
// @Summary      List completeness scoring strategies
// @Description  Returns all available completeness scoring strategies (weighted, strict)
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[[]StrategyInfo]
// @Failure      500 {object} dto.ErrorResponse
// @Router       /system/strategies/scoring [get]
func (h *StrategyHandler) GetScoringStrategies(c *gin.Context) {
	strategies := h.buildScoringStrategies()
	c.JSON(http.StatusOK, dto.NewSuccessResponse(strategies))
}

// GetValidationStrategies godoc
// @ID           getSystemValidationStrategies
// @Summary      List data point validation strategies
// @Description  Returns all available data point validation strategies
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[[]StrategyInfo]
// @Failure      500 {object} dto.ErrorResponse
// @Router       /system/strategies/validation [get]
func (h *StrategyHandler) GetValidationStrategies(c *gin.Context) {
	strategies := h.buildValidationStrategies()
	c.JSON(http.StatusOK, dto.NewSuccessResponse(strategies))
}
