package http

import (
	"net/http"
	"strings"

	"golang-stock-tracker/internal/tracker/dto"
	"golang-stock-tracker/internal/tracker/repository"
	"golang-stock-tracker/internal/tracker/service"
	"golang-stock-tracker/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// PortfolioHandler handles portfolio, market price and storage requests.
type PortfolioHandler struct {
	positionService   service.PositionService
	validationService service.ValidationService
	priceRepo         repository.PriceRepository
	logger            *logger.Logger
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(
	positionService service.PositionService,
	validationService service.ValidationService,
	priceRepo repository.PriceRepository,
	logger *logger.Logger,
) *PortfolioHandler {
	return &PortfolioHandler{
		positionService:   positionService,
		validationService: validationService,
		priceRepo:         priceRepo,
		logger:            logger,
	}
}

// RegisterRoutes registers the portfolio, price and storage routes to the Echo group.
func (h *PortfolioHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/portfolio/metrics", h.CalculatePortfolioMetrics)
	g.PUT("/prices/:ticker", h.SetPrice)
	g.GET("/storage/health", h.StorageHealth)
	g.DELETE("/storage", h.ClearAll)
}

// CalculatePortfolioMetrics godoc
// @Summary Aggregate metrics over every position
// @Description Prices in the body override the last stored market prices
// @Tags portfolio
// @Accept  json
// @Produce  json
// @Param   prices  body    dto.PortfolioMetricsRequest  false  "Current prices by ticker"
// @Success 200 {object} dto.PortfolioMetrics
// @Failure 400 {object} dto.ErrorResponse
// @Router /portfolio/metrics [post]
func (h *PortfolioHandler) CalculatePortfolioMetrics(c echo.Context) error {
	var req dto.PortfolioMetricsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	ctx := c.Request().Context()

	positions, err := h.positionService.GetAllPositions(ctx)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	tickers := make([]string, 0, len(positions))
	for _, p := range positions {
		tickers = append(tickers, p.Ticker)
	}

	prices, err := h.priceRepo.GetPrices(ctx, tickers)
	if err != nil {
		h.logger.Warn("Failed to load stored prices, using request prices only", logger.ErrorField(err))
		prices = map[string]decimal.Decimal{}
	}
	for ticker, price := range req.CurrentPrices {
		if result := h.validationService.ValidatePriceInput(price); !result.IsValid {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid price for " + ticker, Errors: result.Errors})
		}
		prices[strings.ToUpper(ticker)] = decimal.NewFromFloat(price)
	}

	metrics, err := h.positionService.CalculatePortfolioMetrics(ctx, prices)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, metrics)
}

// SetPrice godoc
// @Summary Store the latest market price of a ticker
// @Tags prices
// @Accept  json
// @Param   ticker  path    string            true  "Ticker symbol"
// @Param   price   body    dto.PriceRequest  true  "Market price"
// @Success 204 {object} nil
// @Failure 400 {object} dto.ErrorResponse
// @Router /prices/{ticker} [put]
func (h *PortfolioHandler) SetPrice(c echo.Context) error {
	ticker := strings.ToUpper(c.Param("ticker"))
	if !h.validationService.ValidateTickerFormat(ticker) {
		return badRequest(c, "Ticker must be 1-5 uppercase letters only")
	}

	var req dto.PriceRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}
	if result := h.validationService.ValidatePriceInput(req.Value()); !result.IsValid {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Errors: result.Errors})
	}

	if err := h.priceRepo.SetPrice(c.Request().Context(), ticker, decimal.NewFromFloat(*req.Price)); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// StorageHealth godoc
// @Summary Storage availability and usage
// @Tags storage
// @Produce  json
// @Success 200 {object} dto.StorageHealth
// @Failure 503 {object} dto.StorageHealth
// @Router /storage/health [get]
func (h *PortfolioHandler) StorageHealth(c echo.Context) error {
	health := h.positionService.StorageHealth(c.Request().Context())
	if !health.Available {
		return c.JSON(http.StatusServiceUnavailable, health)
	}
	return c.JSON(http.StatusOK, health)
}

// ClearAll godoc
// @Summary Delete every position and trade
// @Tags storage
// @Success 204 {object} nil
// @Failure 503 {object} dto.ErrorResponse
// @Router /storage [delete]
func (h *PortfolioHandler) ClearAll(c echo.Context) error {
	if err := h.positionService.ClearAll(c.Request().Context()); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}
