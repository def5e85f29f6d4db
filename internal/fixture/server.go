package fixture

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abelbrown/cxdash/internal/model"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// LatencyFunc returns how long to stall a request before answering it.
type LatencyFunc func(r *http.Request) time.Duration

// Server answers the aggregation API endpoints from a Dataset. Failure and
// latency injection can be changed while the server runs.
type Server struct {
	data   *Dataset
	router *chi.Mux

	mu          sync.RWMutex
	latency     LatencyFunc
	failBanks   map[string]int
	failPaths   map[string]int
	contentType string
}

// NewServer creates a Server for data.
func NewServer(data *Dataset) *Server {
	s := &Server{
		data:      data,
		failBanks: make(map[string]int),
		failPaths: make(map[string]int),
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(s.inject)
	router.Route("/api", func(r chi.Router) {
		r.Get("/banks", s.handleBanks)
		r.Get("/summary", s.handleSummary)
		r.Get("/themes", s.handleThemes)
		r.Get("/sentiment", s.handleSentiment)
		r.Get("/theme-sentiment", s.handleThemeSentiment)
		r.Get("/reviews", s.handleReviews)
	})
	s.router = router
	return s
}

// Listen serves s on addr in the background and returns the base URL it
// answers on. Shut the returned server down to stop it.
func (s *Server) Listen(addr string) (*http.Server, string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{Handler: s, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		_ = srv.Serve(ln)
	}()
	return srv, "http://" + ln.Addr().String(), nil
}

// JitterLatency stalls each request for a random duration in [lo, hi).
// It makes responses resolve out of order.
func JitterLatency(lo, hi time.Duration) LatencyFunc {
	return func(*http.Request) time.Duration {
		if hi <= lo {
			return lo
		}
		return lo + time.Duration(rand.Int63n(int64(hi-lo)))
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetLatency installs fn as the per-request stall. Nil removes it.
func (s *Server) SetLatency(fn LatencyFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latency = fn
}

// FailBank makes every request filtered to bank answer with status.
// Status 0 clears the failure.
func (s *Server) FailBank(bank string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failBanks, bank)
		return
	}
	s.failBanks[bank] = status
}

// FailPath makes every request to path (e.g. "/api/summary") answer with
// status. Status 0 clears the failure.
func (s *Server) FailPath(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failPaths, path)
		return
	}
	s.failPaths[path] = status
}

// SetContentType overrides the Content-Type of successful responses.
func (s *Server) SetContentType(ct string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contentType = ct
}

// inject applies latency and failure injection before routing.
func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		latency := s.latency
		status := s.failPaths[r.URL.Path]
		if st, ok := s.failBanks[r.URL.Query().Get("bank")]; ok && status == 0 {
			status = st
		}
		s.mu.RUnlock()

		if latency != nil {
			if d := latency(r); d > 0 {
				t := time.NewTimer(d)
				select {
				case <-t.C:
				case <-r.Context().Done():
					t.Stop()
					return
				}
			}
		}
		if status != 0 {
			writeJSON(w, status, map[string]string{"detail": http.StatusText(status)}, "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) write(w http.ResponseWriter, v any) {
	s.mu.RLock()
	ct := s.contentType
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, v, ct)
}

func writeJSON(w http.ResponseWriter, status int, v any, contentType string) {
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func bankParam(r *http.Request) string {
	bank := r.URL.Query().Get("bank")
	if isAllBanks(bank) {
		return ""
	}
	return bank
}

// nullable renders an empty theme name as JSON null.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *Server) handleBanks(w http.ResponseWriter, r *http.Request) {
	s.write(w, s.data.Banks())
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.write(w, s.data.Summary(bankParam(r)))
}

type themeRow struct {
	Theme        *string `json:"theme"`
	ReviewCount  int     `json:"review_count"`
	AvgSentiment float64 `json:"avg_sentiment"`
}

func (s *Server) handleThemes(w http.ResponseWriter, r *http.Request) {
	themes := s.data.Themes(bankParam(r))
	rows := make([]themeRow, len(themes))
	for i, t := range themes {
		rows[i] = themeRow{Theme: nullable(t.Name), ReviewCount: t.ReviewCount, AvgSentiment: t.AvgSentiment}
	}
	s.write(w, rows)
}

func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	s.write(w, s.data.Sentiment(bankParam(r)))
}

type themeSentimentRow struct {
	Theme          *string              `json:"theme"`
	SentimentLabel model.SentimentLabel `json:"sentiment_label"`
	Count          int                  `json:"count"`
	AvgSentiment   float64              `json:"avg_sentiment"`
	MinSentiment   float64              `json:"min_sentiment"`
	MaxSentiment   float64              `json:"max_sentiment"`
}

func (s *Server) handleThemeSentiment(w http.ResponseWriter, r *http.Request) {
	cells := s.data.ThemeSentiment(bankParam(r))
	rows := make([]themeSentimentRow, len(cells))
	for i, c := range cells {
		rows[i] = themeSentimentRow{
			Theme:          nullable(c.Theme),
			SentimentLabel: c.SentimentLabel,
			Count:          c.Count,
			AvgSentiment:   c.AvgSentiment,
			MinSentiment:   c.MinSentiment,
			MaxSentiment:   c.MaxSentiment,
		}
	}
	s.write(w, rows)
}

func (s *Server) handleReviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, ok := intParam(q.Get("page"), 1, 1, 0)
	if !ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "page must be an integer >= 1"}, "")
		return
	}
	limit, ok := intParam(q.Get("limit"), defaultLimit, 1, maxLimit)
	if !ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "limit must be an integer in [1, 100]"}, "")
		return
	}
	label := model.SentimentLabel(strings.ToLower(q.Get("sentiment")))
	s.write(w, s.data.Reviews(bankParam(r), q.Get("theme"), label, page, limit))
}

// intParam parses v, using def when empty. hi <= 0 means no upper bound.
func intParam(v string, def, lo, hi int) (int, bool) {
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || (hi > 0 && n > hi) {
		return 0, false
	}
	return n, true
}
