package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercadolens/domain"
)

type fakeHealthService struct {
	gotLookbackDays int
}

func (f *fakeHealthService) CalculateHealthScore(ctx context.Context, marketID uint64, lookbackDays int) (domain.AnalysisResult[domain.MarketHealthScore], error) {
	f.gotLookbackDays = lookbackDays
	return domain.NewAnalysisResult(domain.MarketHealthScore{MarketID: marketID, Score: 50}, "test", 85, nil), nil
}

func TestCalculateHealthScore_DefaultLookbackFromConfig(t *testing.T) {
	svc := &fakeHealthService{}
	h := NewHealthHandler(svc, 21)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health?market_id=1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.CalculateHealthScore(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 21, svc.gotLookbackDays)
}

func TestCalculateHealthScore_QueryParamOverridesDefault(t *testing.T) {
	svc := &fakeHealthService{}
	h := NewHealthHandler(svc, 21)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health?market_id=1&lookback_days=7", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.CalculateHealthScore(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, svc.gotLookbackDays)
}
