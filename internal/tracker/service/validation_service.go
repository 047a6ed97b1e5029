package service

import (
	"fmt"
	"math"
	"regexp"

	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/internal/tracker/dto"
)

const (
	// MaxPrice is the largest accepted per-share price.
	MaxPrice = 999999.99
	// MaxShares is the largest accepted share count.
	MaxShares = 1000000
)

var tickerPattern = regexp.MustCompile(`^[A-Z]{1,5}$`)

// ValidationService checks user input against the business rules. Every applicable
// error is collected; a check never stops at the first failure.
type ValidationService interface {
	ValidateCreatePosition(params dto.CreatePositionParams, existingTickers []string) dto.ValidationResult
	ValidateRecordTrade(params dto.RecordTradeParams, position *entity.Position) dto.ValidationResult
	ValidatePriceInput(price float64) dto.ValidationResult
	ValidateTickerFormat(ticker string) bool
}

// NewValidationService creates a validation service.
func NewValidationService() ValidationService {
	return &validationService{}
}

type validationService struct{}

func (s *validationService) ValidateCreatePosition(params dto.CreatePositionParams, existingTickers []string) dto.ValidationResult {
	var errs []dto.FieldError

	switch {
	case params.Ticker == "":
		errs = append(errs, fieldError("ticker", "Ticker symbol is required", dto.ErrorCodeRequired))
	case !s.ValidateTickerFormat(params.Ticker):
		errs = append(errs, fieldError("ticker", "Ticker must be 1-5 uppercase letters only", dto.ErrorCodeInvalidFormat))
	case contains(existingTickers, params.Ticker):
		errs = append(errs, fieldError("ticker", "Position with this ticker already exists", dto.ErrorCodeDuplicateTicker))
	}

	if fe, ok := checkPrice("buyPrice", "Buy price", params.BuyPrice); !ok {
		errs = append(errs, fe)
	}

	shares, ok := number(params.OriginalShares)
	switch {
	case !ok:
		errs = append(errs, fieldError("originalShares", "Number of shares is required", dto.ErrorCodeRequired))
	case !isWhole(shares):
		errs = append(errs, fieldError("originalShares", "Number of shares must be a whole number", dto.ErrorCodeInvalidFormat))
	case shares <= 0:
		errs = append(errs, fieldError("originalShares", "Number of shares must be positive", dto.ErrorCodeOutOfRange))
	case shares > MaxShares:
		errs = append(errs, fieldError("originalShares", "Number of shares cannot exceed 1,000,000", dto.ErrorCodeOutOfRange))
	}

	return dto.NewValidationResult(errs)
}

// ValidateRecordTrade checks a sale against the position it targets. A nil position
// yields a single positionId error since nothing else can be checked without it.
func (s *validationService) ValidateRecordTrade(params dto.RecordTradeParams, position *entity.Position) dto.ValidationResult {
	if position == nil {
		return dto.NewValidationResult([]dto.FieldError{
			fieldError("positionId", "Position not found", dto.ErrorCodeRequired),
		})
	}

	var errs []dto.FieldError

	shares, ok := number(params.SharesSold)
	switch {
	case !ok:
		errs = append(errs, fieldError("sharesSold", "Number of shares to sell is required", dto.ErrorCodeRequired))
	case !isWhole(shares):
		errs = append(errs, fieldError("sharesSold", "Number of shares must be a whole number", dto.ErrorCodeInvalidFormat))
	case shares <= 0:
		errs = append(errs, fieldError("sharesSold", "Number of shares to sell must be positive", dto.ErrorCodeOutOfRange))
	case shares > float64(position.RemainingShares):
		errs = append(errs, fieldError("sharesSold",
			fmt.Sprintf("Cannot sell %d shares. Only %d shares remaining.", int64(shares), position.RemainingShares),
			dto.ErrorCodeInsufficientShares))
	}

	if fe, ok := checkPrice("sellPrice", "Sell price", params.SellPrice); !ok {
		errs = append(errs, fe)
	}

	if params.TradeType != "" && !params.TradeType.IsValid() {
		errs = append(errs, fieldError("tradeType",
			fmt.Sprintf("Trade type %q is not one of first_target, second_target, stop_loss, manual", params.TradeType),
			dto.ErrorCodeInvalidFormat))
	}

	return dto.NewValidationResult(errs)
}

// ValidatePriceInput checks a scenario or market price.
func (s *validationService) ValidatePriceInput(price float64) dto.ValidationResult {
	var errs []dto.FieldError
	if fe, ok := checkPrice("price", "Price", &price); !ok {
		errs = append(errs, fe)
	}
	return dto.NewValidationResult(errs)
}

func (s *validationService) ValidateTickerFormat(ticker string) bool {
	return tickerPattern.MatchString(ticker)
}

func checkPrice(field, label string, value *float64) (dto.FieldError, bool) {
	price, ok := number(value)
	switch {
	case !ok:
		return fieldError(field, label+" is required", dto.ErrorCodeRequired), false
	case price <= 0:
		return fieldError(field, label+" must be positive", dto.ErrorCodeOutOfRange), false
	case price > MaxPrice:
		return fieldError(field, label+" cannot exceed $999,999.99", dto.ErrorCodeOutOfRange), false
	}
	return dto.FieldError{}, true
}

func fieldError(field, message string, code dto.ErrorCode) dto.FieldError {
	return dto.FieldError{Field: field, Message: message, Code: code}
}

// number unwraps an optional input. Omitted and non-finite values are both missing.
func number(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}

func isWhole(v float64) bool {
	return math.Trunc(v) == v
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
