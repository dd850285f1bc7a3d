package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/oakmere/storequery/internal/analytics"
	"github.com/oakmere/storequery/internal/catalog"
	"github.com/oakmere/storequery/internal/conversation"
	"github.com/oakmere/storequery/internal/model"
	"github.com/oakmere/storequery/internal/query"
	"github.com/oakmere/storequery/internal/tenant"
)

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// SearchResponse wraps a result list with its count.
type SearchResponse[T any] struct {
	Results []T `json:"results"`
	Count   int `json:"count"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleProductSearch(c echo.Context) error {
	id, limit, err := searchParams(c)
	if err != nil {
		return err
	}
	hits, err := s.services.Catalog.Search(c.Request().Context(), id, c.QueryParam("q"), limit)
	if err != nil {
		return s.engineError(c, err)
	}
	return c.JSON(http.StatusOK, SearchResponse[catalog.ProductHit]{Results: hits, Count: len(hits)})
}

func (s *Server) handleConversationSearch(c echo.Context) error {
	id, limit, err := searchParams(c)
	if err != nil {
		return err
	}
	hits, err := s.services.Conversation.Search(c.Request().Context(), id, c.QueryParam("q"), limit)
	if err != nil {
		return s.engineError(c, err)
	}
	return c.JSON(http.StatusOK, SearchResponse[conversation.TurnHit]{Results: hits, Count: len(hits)})
}

func (s *Server) handleOrderSearch(c echo.Context) error {
	id, limit, err := searchParams(c)
	if err != nil {
		return err
	}
	orders, err := s.services.Order.Search(c.Request().Context(), id, c.QueryParam("q"), limit)
	if err != nil {
		return s.engineError(c, err)
	}
	return c.JSON(http.StatusOK, SearchResponse[model.Order]{Results: orders, Count: len(orders)})
}

func (s *Server) handleOrderByCode(c echo.Context) error {
	id, err := tenantFrom(c)
	if err != nil {
		return err
	}
	o, err := s.services.Order.GetByCode(c.Request().Context(), id, c.Param("code"))
	if err != nil {
		return s.engineError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (s *Server) handleEventCounts(c echo.Context) error {
	id, err := tenantFrom(c)
	if err != nil {
		return err
	}
	start, end, err := windowParams(c)
	if err != nil {
		return err
	}
	counts, err := s.services.Analytics.EventCounts(c.Request().Context(), id, start, end)
	if err != nil {
		return s.engineError(c, err)
	}
	return c.JSON(http.StatusOK, SearchResponse[analytics.TypeCount]{Results: counts, Count: len(counts)})
}

func (s *Server) handleDailyVolume(c echo.Context) error {
	id, err := tenantFrom(c)
	if err != nil {
		return err
	}
	days, err := intParam(c, "days")
	if err != nil {
		return err
	}
	daily, err := s.services.Analytics.DailyVolume(c.Request().Context(), id, days)
	if err != nil {
		return s.engineError(c, err)
	}
	return c.JSON(http.StatusOK, SearchResponse[analytics.DailyCount]{Results: daily, Count: len(daily)})
}

func (s *Server) handleTopProducts(c echo.Context) error {
	id, err := tenantFrom(c)
	if err != nil {
		return err
	}
	days, err := intParam(c, "days")
	if err != nil {
		return err
	}
	limit, err := intParam(c, "limit")
	if err != nil {
		return err
	}
	top, err := s.services.Analytics.TopProductMentions(c.Request().Context(), id, days, limit)
	if err != nil {
		return s.engineError(c, err)
	}
	return c.JSON(http.StatusOK, SearchResponse[analytics.ProductMention]{Results: top, Count: len(top)})
}

func (s *Server) handleEngagement(c echo.Context) error {
	id, err := tenantFrom(c)
	if err != nil {
		return err
	}
	days, err := intParam(c, "days")
	if err != nil {
		return err
	}
	m, err := s.services.Analytics.Engagement(c.Request().Context(), id, days)
	if err != nil {
		return s.engineError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (s *Server) handleSummary(c echo.Context) error {
	id, err := tenantFrom(c)
	if err != nil {
		return err
	}
	days, err := intParam(c, "days")
	if err != nil {
		return err
	}
	sum, err := s.services.Analytics.DashboardSummary(c.Request().Context(), id, days)
	if err != nil {
		return s.engineError(c, err)
	}
	return c.JSON(http.StatusOK, sum)
}

// engineError maps an engine error kind to an HTTP status. Storage failures
// keep their detail in the log, not the response.
func (s *Server) engineError(c echo.Context, err error) error {
	switch query.KindOf(err) {
	case query.KindInvalidArgument:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case query.KindNotFound:
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case query.KindStorageUnavailable:
		s.logger.Error("storage failure",
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err),
		)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
	default:
		s.logger.Error("unclassified handler error",
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err),
		)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func tenantFrom(c echo.Context) (tenant.ID, error) {
	id, err := tenant.FromContext(c.Request().Context())
	if err != nil {
		// requireTenant runs first, so this only fires on wiring mistakes.
		return "", echo.NewHTTPError(http.StatusBadRequest, "tenant is required")
	}
	return id, nil
}

func searchParams(c echo.Context) (tenant.ID, int, error) {
	id, err := tenantFrom(c)
	if err != nil {
		return "", 0, err
	}
	limit, err := intParam(c, "limit")
	if err != nil {
		return "", 0, err
	}
	return id, limit, nil
}

// intParam parses an optional integer query parameter; absent means zero,
// which the engine resolves to its default.
func intParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest,
			name+" must be an integer")
	}
	return n, nil
}

// windowParams resolves the aggregation window: explicit RFC3339 start and
// end when both are given, otherwise a trailing window from the optional
// days parameter.
func windowParams(c echo.Context) (time.Time, time.Time, error) {
	rawStart, rawEnd := c.QueryParam("start"), c.QueryParam("end")
	if rawStart == "" && rawEnd == "" {
		days, err := intParam(c, "days")
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		w, err := query.TrailingWindow(days, time.Now().UTC())
		if err != nil {
			return time.Time{}, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return w.Start, w.End, nil
	}

	start, err := timeParam(rawStart, "start")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := timeParam(rawEnd, "end")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func timeParam(raw, name string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest,
			name+" is required when the other bound is set")
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest,
			name+" must be an RFC3339 timestamp")
	}
	return t, nil
}
