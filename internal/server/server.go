// Package server exposes the ledger over a small local JSON API so a browser
// front end can render it and drive clock in/out, edits and deletes.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kintai-rec/kintai/internal/export"
	"github.com/kintai-rec/kintai/internal/ledger"
	"github.com/kintai-rec/kintai/internal/model"
	"github.com/kintai-rec/kintai/internal/timecalc"
)

// Handler serves the ledger. Requests are serialized on mu, since the ledger
// itself is single-threaded.
type Handler struct {
	mu     sync.Mutex
	Ledger *ledger.Ledger
}

func NewHandler(l *ledger.Ledger) *Handler {
	return &Handler{Ledger: l}
}

type recordView struct {
	model.WorkRecord
	NetDuration  string `json:"netDuration"`
	BreakDisplay string `json:"breakDisplay"`
}

type stateView struct {
	Records             []recordView `json:"records"`
	IsWorking           bool         `json:"isWorking"`
	StartTime           *time.Time   `json:"startTime"`
	CurrentTime         time.Time    `json:"currentTime"`
	TotalNetDuration    string       `json:"totalNetDuration"`
	DefaultBreakMinutes int          `json:"defaultBreakMinutes"`
}

type editRequest struct {
	Date         string `json:"date"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	BreakMinutes any    `json:"breakMinutes"`
}

// input converts the request into form values. Numeric breaks are accepted
// as well as strings.
func (r editRequest) input() ledger.EditInput {
	in := ledger.EditInput{Date: r.Date, StartTime: r.StartTime, EndTime: r.EndTime}
	switch v := r.BreakMinutes.(type) {
	case string:
		in.BreakMinutes = v
	case float64:
		in.BreakMinutes = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return in
}

// Register mounts the API routes on router.
func Register(router *gin.Engine, h *Handler) {
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.GET("/state", h.State)
		api.POST("/clock-in", h.ClockIn)
		api.POST("/clock-out", h.ClockOut)
		api.PUT("/records/:id", h.Update)
		api.DELETE("/records/:id", h.Delete)
		api.GET("/export", h.Export)
	}
}

// NewRouter returns a gin engine with logging, recovery and the API routes.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	Register(router, h)
	return router
}

// Run serves the API on addr until ctx is cancelled.
func Run(ctx context.Context, addr string, h *Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// view must be called with mu held.
func (h *Handler) view() stateView {
	l := h.Ledger
	records := l.Records()
	views := make([]recordView, 0, len(records))
	for _, r := range records {
		views = append(views, recordView{
			WorkRecord:   r,
			NetDuration:  l.NetDuration(r),
			BreakDisplay: timecalc.FormatBreakTime(r.BreakMinutes),
		})
	}
	v := stateView{
		Records:             views,
		IsWorking:           l.IsWorking(),
		CurrentTime:         l.Now(),
		TotalNetDuration:    l.TotalNetDuration(),
		DefaultBreakMinutes: l.DefaultBreakMinutes(),
	}
	if start, ok := l.StartTime(); ok {
		v.StartTime = &start
	}
	return v
}

func (h *Handler) State(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.JSON(http.StatusOK, h.view())
}

func (h *Handler) ClockIn(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.Ledger.ClockIn(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view())
}

func (h *Handler) ClockOut(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := h.Ledger.ClockOut(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view())
}

func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.Ledger.EditRecord(id, req.input()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view())
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.Ledger.DeleteRecord(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view())
}

func (h *Handler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.DefaultQuery("format", string(export.CSV)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	records := h.Ledger.Records()
	defaultBreak := h.Ledger.DefaultBreakMinutes()
	now := h.Ledger.Now()
	h.mu.Unlock()

	var buf bytes.Buffer
	if err := export.Write(&buf, format, records, defaultBreak); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName(format, now)))
	c.Data(http.StatusOK, export.ContentType(format), buf.Bytes())
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrInvalidRange), errors.Is(err, ledger.ErrInvalidBreak):
		status = http.StatusBadRequest
	case errors.Is(err, ledger.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, ledger.ErrNotFound), errors.Is(err, export.ErrNoRecords):
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
