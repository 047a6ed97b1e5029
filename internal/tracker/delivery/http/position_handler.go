package http

import (
	"net/http"
	"strconv"

	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/internal/tracker/dto"
	"golang-stock-tracker/internal/tracker/service"
	"golang-stock-tracker/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PositionHandler handles HTTP requests for positions and their trades.
type PositionHandler struct {
	positionService service.PositionService
	logger          *logger.Logger
}

// NewPositionHandler creates a new PositionHandler.
func NewPositionHandler(positionService service.PositionService, logger *logger.Logger) *PositionHandler {
	return &PositionHandler{positionService: positionService, logger: logger}
}

// RegisterRoutes registers the position routes to the Echo group.
func (h *PositionHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreatePosition)
	g.GET("", h.GetAllPositions)
	g.GET("/:id", h.GetPosition)
	g.DELETE("/:id", h.DeletePosition)
	g.PUT("/:id/price", h.UpdateCurrentPrice)
	g.GET("/:id/metrics", h.GetPositionMetrics)
	g.POST("/:id/trades", h.RecordTrade)
	g.GET("/:id/trades", h.ListTrades)
}

// CreatePosition godoc
// @Summary Open a new position
// @Description Open a position and compute its sell targets and initial stop-loss
// @Tags positions
// @Accept  json
// @Produce  json
// @Param   position  body    dto.CreatePositionParams   true    "Position to open"
// @Success 201 {object} dto.PositionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 507 {object} dto.ErrorResponse
// @Router /positions [post]
func (h *PositionHandler) CreatePosition(c echo.Context) error {
	var req dto.CreatePositionParams
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	position, err := h.positionService.CreatePosition(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, h.toResponse(*position))
}

// GetAllPositions godoc
// @Summary Get all positions
// @Tags positions
// @Produce  json
// @Success 200 {array} dto.PositionResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /positions [get]
func (h *PositionHandler) GetAllPositions(c echo.Context) error {
	positions, err := h.positionService.GetAllPositions(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}

	responses := make([]dto.PositionResponse, 0, len(positions))
	for _, p := range positions {
		responses = append(responses, h.toResponse(p))
	}
	return c.JSON(http.StatusOK, responses)
}

// GetPosition godoc
// @Summary Get a position by ID
// @Tags positions
// @Produce  json
// @Param   id  path    string true    "Position ID"
// @Success 200 {object} dto.PositionResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /positions/{id} [get]
func (h *PositionHandler) GetPosition(c echo.Context) error {
	position, err := h.positionService.GetPosition(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, h.toResponse(*position))
}

// DeletePosition godoc
// @Summary Delete a position
// @Description Delete a position and every trade recorded against it
// @Tags positions
// @Param   id  path    string true    "Position ID"
// @Success 204 {object} nil
// @Failure 503 {object} dto.ErrorResponse
// @Router /positions/{id} [delete]
func (h *PositionHandler) DeletePosition(c echo.Context) error {
	if err := h.positionService.DeletePosition(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateCurrentPrice godoc
// @Summary Value a position at a scenario price
// @Description Nothing is persisted
// @Tags positions
// @Accept  json
// @Produce  json
// @Param   id     path    string            true  "Position ID"
// @Param   price  body    dto.PriceRequest  true  "Scenario price"
// @Success 200 {object} dto.PriceScenarioResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /positions/{id}/price [put]
func (h *PositionHandler) UpdateCurrentPrice(c echo.Context) error {
	var req dto.PriceRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	ctx := c.Request().Context()
	id := c.Param("id")
	price := req.Value()

	position, err := h.positionService.UpdateCurrentPrice(ctx, id, price)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	metrics, err := h.positionService.CalculatePositionMetrics(ctx, id, price)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	levels, err := h.positionService.AnalyzePosition(ctx, id, price)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, dto.PriceScenarioResponse{
		Position: h.toResponse(*position),
		Metrics:  *metrics,
		Levels:   *levels,
	})
}

// GetPositionMetrics godoc
// @Summary Profit and loss of a position at a price
// @Tags positions
// @Produce  json
// @Param   id     path    string  true  "Position ID"
// @Param   price  query   number  true  "Current price"
// @Success 200 {object} dto.ProfitLossMetrics
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /positions/{id}/metrics [get]
func (h *PositionHandler) GetPositionMetrics(c echo.Context) error {
	price, err := strconv.ParseFloat(c.QueryParam("price"), 64)
	if err != nil {
		return badRequest(c, "Invalid price")
	}

	metrics, err := h.positionService.CalculatePositionMetrics(c.Request().Context(), c.Param("id"), price)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, metrics)
}

// RecordTrade godoc
// @Summary Record a sale
// @Description Record a partial or full sale; the trade type is inferred from the price when omitted
// @Tags trades
// @Accept  json
// @Produce  json
// @Param   id     path    string                   true  "Position ID"
// @Param   trade  body    dto.RecordTradeRequest   true  "Trade to record"
// @Success 201 {object} dto.RecordTradeResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 507 {object} dto.ErrorResponse
// @Router /positions/{id}/trades [post]
func (h *PositionHandler) RecordTrade(c echo.Context) error {
	var req dto.RecordTradeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	result, err := h.positionService.RecordTrade(c.Request().Context(), dto.RecordTradeParams{
		PositionID: c.Param("id"),
		SharesSold: req.SharesSold,
		SellPrice:  req.SellPrice,
		TradeType:  req.TradeType,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, dto.RecordTradeResponse{
		Position: h.toResponse(result.Position),
		Trade:    result.Trade,
	})
}

// ListTrades godoc
// @Summary List the trades of a position
// @Tags trades
// @Produce  json
// @Param   id  path    string true    "Position ID"
// @Success 200 {array} entity.Trade
// @Failure 404 {object} dto.ErrorResponse
// @Router /positions/{id}/trades [get]
func (h *PositionHandler) ListTrades(c echo.Context) error {
	trades, err := h.positionService.ListTrades(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, trades)
}

func (h *PositionHandler) toResponse(p entity.Position) dto.PositionResponse {
	return dto.PositionResponse{Position: p, Status: h.positionService.GetPositionStatus(p)}
}
