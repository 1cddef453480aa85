package server

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/leadflow/internal/common"
	"github.com/Veraticus/leadflow/internal/engine"
	"github.com/Veraticus/leadflow/internal/export"
	"github.com/Veraticus/leadflow/internal/filter"
	"github.com/Veraticus/leadflow/internal/metrics"
	"github.com/Veraticus/leadflow/internal/model"
)

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.health)

	api := r.Group("/api/v1")
	{
		api.GET("/dashboard", s.dashboard)
		api.GET("/filters", s.filters)
		api.GET("/stats", s.stats)
		api.GET("/report", s.report)

		months := api.Group("/months/:month")
		{
			months.GET("/leads", s.monthRecords(false))
			months.GET("/closings", s.monthRecords(true))
		}

		api.GET("/export/blended.csv", s.exportBlended)
		api.POST("/reload", s.reloadNow)
	}
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// session returns the current session and the request's criteria,
// writing the error response itself when either is unavailable.
func (s *Server) session(c *gin.Context) (*engine.Session, filter.Criteria, bool) {
	session, err := s.current.get()
	if err != nil {
		fail(c, statusFor(err), err)
		return nil, filter.Criteria{}, false
	}

	var params filter.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		fail(c, http.StatusBadRequest, common.NewUserError("invalid query", err))
		return nil, filter.Criteria{}, false
	}
	criteria, err := params.Criteria()
	if err != nil {
		fail(c, statusFor(err), err)
		return nil, filter.Criteria{}, false
	}
	return session, criteria, true
}

type healthResponse struct {
	LoadedAt *time.Time `json:"loaded_at,omitempty"`
	Status   string     `json:"status"`
	RunID    string     `json:"run_id,omitempty"`
}

func (s *Server) health(c *gin.Context) {
	session, err := s.current.get()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "loading"})
		return
	}
	c.JSON(http.StatusOK, healthResponse{Status: "ok", RunID: session.RunID, LoadedAt: &session.LoadedAt})
}

type dashboardResponse struct {
	export.ReportMeta
	metrics.Dashboard
}

func (s *Server) dashboard(c *gin.Context) {
	session, criteria, ok := s.session(c)
	if !ok {
		return
	}
	success(c, dashboardResponse{
		ReportMeta: export.ReportMeta{RunID: session.RunID, GeneratedAt: s.clock()},
		Dashboard:  session.Dashboard(criteria, s.clock()),
	})
}

func (s *Server) filters(c *gin.Context) {
	session, err := s.current.get()
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	success(c, session.Options())
}

func (s *Server) stats(c *gin.Context) {
	session, err := s.current.get()
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	success(c, session)
}

var reportContentTypes = map[export.Format]string{
	export.FormatJSON:     "application/json; charset=utf-8",
	export.FormatMarkdown: "text/markdown; charset=utf-8",
	export.FormatHTML:     "text/html; charset=utf-8",
}

func (s *Server) report(c *gin.Context) {
	session, criteria, ok := s.session(c)
	if !ok {
		return
	}

	format := export.Format(c.DefaultQuery("format", string(export.FormatMarkdown)))
	contentType, known := reportContentTypes[format]
	if !known {
		fail(c, http.StatusBadRequest, common.NewUserError("unknown report format "+string(format), common.ErrInvalidFilter))
		return
	}

	now := s.clock()
	var buf bytes.Buffer
	meta := export.ReportMeta{RunID: session.RunID, GeneratedAt: now}
	if err := export.WriteReport(&buf, format, meta, session.Dashboard(criteria, now)); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// recordsResponse lists records as rows in export column order.
type recordsResponse struct {
	Month   string     `json:"month"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Count   int        `json:"count"`
}

func (s *Server) monthRecords(closings bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, criteria, ok := s.session(c)
		if !ok {
			return
		}
		key, err := metrics.ParseMonthKey(c.Param("month"))
		if err != nil {
			fail(c, statusFor(err), err)
			return
		}

		var records []model.Record
		if closings {
			records = session.MonthClosings(criteria, key, s.clock())
		} else {
			records = session.MonthLeads(criteria, key)
		}

		if c.Query("format") == "csv" {
			writeCSV(c, export.MonthFilename(key, closings), records)
			return
		}

		rows := make([][]string, len(records))
		for i := range records {
			rows[i] = records[i].Values()
		}
		success(c, recordsResponse{Month: key, Columns: model.ExportColumns, Rows: rows, Count: len(rows)})
	}
}

func (s *Server) exportBlended(c *gin.Context) {
	session, err := s.current.get()
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	writeCSV(c, export.BlendedFilename(s.clock()), session.Records)
}

func writeCSV(c *gin.Context, filename string, records []model.Record) {
	var buf bytes.Buffer
	if err := export.WriteRecords(&buf, records); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (s *Server) reloadNow(c *gin.Context) {
	if s.reload == nil {
		fail(c, http.StatusNotImplemented, common.NewUserError("reload is not configured", nil))
		return
	}
	session, err := s.Reload(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, common.NewUserError("reload failed", err))
		return
	}
	success(c, session)
}
