package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/labstack/echo/v4"

	"energydash/internal/dashboard"
	"energydash/internal/logger"
	"energydash/internal/models"
	"energydash/internal/render"
	"energydash/internal/timeline"
	"energydash/internal/views"
)

type Handler struct {
	mu   sync.RWMutex
	dash *dashboard.Dashboard
}

// NewHandler accepts a nil dashboard; routes answer 503 until SetData.
func NewHandler(d *dashboard.Dashboard) *Handler {
	return &Handler{dash: d}
}

// SetData swaps in the loaded dashboard.
func (h *Handler) SetData(d *dashboard.Dashboard) {
	h.mu.Lock()
	h.dash = d
	h.mu.Unlock()
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.GetPage)

	api := e.Group("/api", h.requireData)
	api.GET("/state", h.GetState)
	api.GET("/countries", h.GetCountries)
	api.GET("/records", h.GetRecords)

	api.POST("/click/country/:code", h.ClickCountry)
	api.POST("/click/name/:name", h.ClickCountryName)
	api.POST("/click/map/:name", h.ClickMapShape)
	api.POST("/click/node/:code", h.ClickChordNode)
	api.POST("/click/type/:index", h.ClickType)
	api.POST("/filters/clear", h.ClearFilters)

	api.PUT("/range", h.UpdateRange)
	api.POST("/range/apply", h.ApplyRange)
	api.POST("/play", h.Play)

	api.PUT("/bar/items", h.SetBarItems)
	api.POST("/bar/sort", h.ToggleBarSort)

	api.GET("/tooltip/map/:code", h.GetMapTooltip)
	api.GET("/tooltip/node/:code", h.GetNodeTooltip)
	api.GET("/tooltip/rim/:index", h.GetRimTooltip)
}

// --- MIDDLEWARE ---

func (h *Handler) current() *dashboard.Dashboard {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dash
}

func (h *Handler) requireData(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.current() == nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "data is loading")
		}
		return next(c)
	}
}

// httpError maps dashboard errors to status codes.
func httpError(err error) error {
	code := http.StatusBadRequest
	switch {
	case errors.Is(err, dashboard.ErrAnimationPlaying),
		errors.Is(err, views.ErrControlsDisabled),
		errors.Is(err, timeline.ErrSliderDisabled):
		code = http.StatusConflict
	case errors.Is(err, dashboard.ErrUnknownCountry):
		code = http.StatusNotFound
	}
	return echo.NewHTTPError(code, err.Error())
}

// respond returns the new state after a gesture, or the mapped error.
func (h *Handler) respond(c echo.Context, err error) error {
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, h.current().Snapshot())
}

func intParam(c echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return v, nil
}

// --- HANDLERS ---

func (h *Handler) GetPage(c echo.Context) error {
	d := h.current()
	if d == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "data is loading")
	}
	var tt *views.Tooltip
	if code := c.QueryParam("tooltip"); code != "" {
		tt, _ = d.MapTooltip(code)
	}
	var buf bytes.Buffer
	if err := render.Write(&buf, d.Snapshot(), tt); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "render failed").SetInternal(err)
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func (h *Handler) GetState(c echo.Context) error {
	return c.JSON(http.StatusOK, h.current().Snapshot())
}

// returns all names, or the autocomplete matches for ?q=
func (h *Handler) GetCountries(c echo.Context) error {
	d := h.current()
	if q := c.QueryParam("q"); q != "" {
		return c.JSON(http.StatusOK, d.SearchCountries(q))
	}
	return c.JSON(http.StatusOK, d.CountryNames())
}

// streams the rows in the current range as NDJSON
func (h *Handler) GetRecords(c echo.Context) error {
	var buf bytes.Buffer
	if err := h.current().ExportRecords(&buf); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "export failed").SetInternal(err)
	}
	return c.Blob(http.StatusOK, "application/x-ndjson", buf.Bytes())
}

func (h *Handler) ClickCountry(c echo.Context) error {
	return h.respond(c, h.current().ClickCountry(c.Param("code")))
}

func (h *Handler) ClickCountryName(c echo.Context) error {
	return h.respond(c, h.current().ClickCountryName(c.Param("name")))
}

func (h *Handler) ClickMapShape(c echo.Context) error {
	return h.respond(c, h.current().ClickMapShape(c.Param("name")))
}

func (h *Handler) ClickChordNode(c echo.Context) error {
	return h.respond(c, h.current().ClickChordNode(c.Param("code")))
}

func (h *Handler) ClickType(c echo.Context) error {
	idx, err := intParam(c, "index")
	if err != nil {
		return err
	}
	return h.respond(c, h.current().ClickType(idx))
}

func (h *Handler) ClearFilters(c echo.Context) error {
	return h.respond(c, h.current().RemoveAllFilters())
}

type rangeRequest struct {
	Min   int  `json:"min"`
	Max   int  `json:"max"`
	Apply bool `json:"apply"`
}

// moves the slider; with apply set the views refilter at once
func (h *Handler) UpdateRange(c echo.Context) error {
	var req rangeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid range body")
	}
	d := h.current()
	if req.Apply {
		return h.respond(c, d.SetRange(models.YearRange{Min: req.Min, Max: req.Max}))
	}
	return h.respond(c, d.SliderUpdate(req.Min, req.Max))
}

func (h *Handler) ApplyRange(c echo.Context) error {
	return h.respond(c, h.current().ApplyRange())
}

// starts the sweep in the background and returns at once
func (h *Handler) Play(c echo.Context) error {
	done, err := h.current().Start(context.Background())
	if err != nil {
		return httpError(err)
	}
	go func() {
		if err := <-done; err != nil {
			logger.Warn("Play: %v", err)
		}
	}()
	return c.JSON(http.StatusAccepted, map[string]bool{"playing": true})
}

type itemsRequest struct {
	Value string `json:"value"`
}

func (h *Handler) SetBarItems(c echo.Context) error {
	var req itemsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid items body")
	}
	return h.respond(c, h.current().SetBarItems(req.Value))
}

func (h *Handler) ToggleBarSort(c echo.Context) error {
	return h.respond(c, h.current().ToggleBarSort())
}

func (h *Handler) GetMapTooltip(c echo.Context) error {
	tt, ok := h.current().MapTooltip(c.Param("code"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no tooltip")
	}
	return c.JSON(http.StatusOK, tt)
}

func (h *Handler) GetNodeTooltip(c echo.Context) error {
	tt, ok := h.current().NodeTooltip(c.Param("code"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no tooltip")
	}
	return c.JSON(http.StatusOK, tt)
}

func (h *Handler) GetRimTooltip(c echo.Context) error {
	idx, err := intParam(c, "index")
	if err != nil {
		return err
	}
	tt, err := h.current().RimTooltip(idx)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, tt)
}
