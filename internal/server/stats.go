package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/timeslice/pkg/errors"
	"github.com/matzehuels/timeslice/pkg/pipeline"
	"github.com/matzehuels/timeslice/pkg/stats"
)

// StatsResponse is the aggregate of one period.
type StatsResponse struct {
	Mode       stats.Mode      `json:"mode"`
	Label      string          `json:"label"`
	Start      string          `json:"start"`
	End        string          `json:"end"`
	Prev       string          `json:"prev"`
	Next       string          `json:"next"`
	Total      int             `json:"total"`
	Categories []CategoryTotal `json:"categories"`
}

// CategoryTotal is one category's share of a period.
type CategoryTotal struct {
	Name    string  `json:"name"`
	Minutes int     `json:"minutes"`
	Hours   float64 `json:"hours"`
	Percent float64 `json:"percent"`
}

func (s *Server) period(r *http.Request) (stats.Period, error) {
	mode := strings.ToLower(chi.URLParam(r, "mode"))
	if err := errors.ValidateMode(mode); err != nil {
		return stats.Period{}, err
	}
	raw := chi.URLParam(r, "date")
	day, err := stats.ParseDay(raw, s.now())
	if err != nil {
		return stats.Period{}, errors.New(errors.ErrCodeInvalidDate, "invalid date %q (want YYYY.MM.DD)", raw)
	}
	return stats.NewPeriod(stats.Mode(mode), day), nil
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	p, err := s.period(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	rec, hit, err := s.runner.AggregateWithCacheInfo(r.Context(), p, refresh(r))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	setCacheHeader(w, hit)

	total := rec.Total()
	resp := StatsResponse{
		Mode:       p.Mode,
		Label:      p.Label(),
		Start:      stats.DateKey(p.Start),
		End:        stats.DateKey(p.End),
		Prev:       stats.DateKey(p.Prev().Start),
		Next:       stats.DateKey(p.Next().Start),
		Total:      total,
		Categories: make([]CategoryTotal, 0, rec.Len()),
	}
	rec.Each(func(name string, minutes int) {
		ct := CategoryTotal{Name: name, Minutes: minutes, Hours: stats.Hours(minutes)}
		if total > 0 {
			ct.Percent = float64(minutes) * 100 / float64(total)
		}
		resp.Categories = append(resp.Categories, ct)
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	i := strings.LastIndexByte(file, '.')
	if i <= 0 {
		writeError(w, s.logger, errors.New(errors.ErrCodeInvalidFormat, "missing format suffix in %q", file))
		return
	}
	date, format := file[:i], strings.ToLower(file[i+1:])

	mode := strings.ToLower(chi.URLParam(r, "mode"))
	if err := errors.ValidateMode(mode); err != nil {
		writeError(w, s.logger, err)
		return
	}
	day, err := stats.ParseDay(date, s.now())
	if err != nil {
		writeError(w, s.logger, errors.New(errors.ErrCodeInvalidDate, "invalid date %q (want YYYY.MM.DD)", date))
		return
	}

	opts := pipeline.Options{
		Mode:    stats.Mode(mode),
		Date:    day,
		Title:   r.URL.Query().Get("title"),
		Formats: []string{format},
		Refresh: refresh(r),
	}
	if v := r.URL.Query().Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, s.logger, errors.New(errors.ErrCodeInvalidInput, "invalid scale %q", v))
			return
		}
		opts.Scale = scale
	}
	s.applyChartDefaults(&opts)

	res, err := s.runner.Chart(r.Context(), opts)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	setCacheHeader(w, res.CacheInfo.RenderHit)
	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	w.Header().Set("X-Timeslice-Empty", strconv.FormatBool(res.Empty))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", stats.DateKey(res.Period.Start)+"-"+mode+"."+format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

// ChartDefaults are the annotation settings applied to every chart request.
type ChartDefaults struct {
	UnitLabel    string
	UnitSuffix   string
	LegendTitle  string
	Font         string
	FontFile     string
	BoldFontFile string
	Scale        float64
}

func (s *Server) applyChartDefaults(o *pipeline.Options) {
	d := s.config.Chart
	o.UnitLabel = d.UnitLabel
	o.UnitSuffix = d.UnitSuffix
	o.LegendTitle = d.LegendTitle
	o.Font = d.Font
	o.FontFile = d.FontFile
	o.BoldFontFile = d.BoldFontFile
	if o.Scale == 0 {
		o.Scale = d.Scale
	}
}

func refresh(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	return v
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set("X-Cache", "HIT")
		return
	}
	w.Header().Set("X-Cache", "MISS")
}
