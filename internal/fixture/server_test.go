package fixture

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abelbrown/cxdash/internal/analysis"
	"github.com/abelbrown/cxdash/internal/model"
	"github.com/abelbrown/cxdash/internal/store"
)

func testData() *Dataset {
	return NewDataset([]string{"CBE", "Abyssinia Bank"}, []model.Review{
		{ID: "1", BankName: "CBE", Theme: "Fees", SentimentScore: -0.5, SentimentLabel: model.Negative, Rating: 1, TopicConfidence: 0.6},
		{ID: "2", BankName: "CBE", Theme: "Fees", SentimentScore: 0.5, SentimentLabel: model.Positive, Rating: 5, TopicConfidence: 0.9},
		{ID: "3", BankName: "CBE", Theme: "App", SentimentScore: 0.1, SentimentLabel: model.Positive, Rating: 4, TopicConfidence: 0.7},
		{ID: "4", BankName: "Abyssinia Bank", Theme: "", SentimentScore: 0, SentimentLabel: model.Neutral, Rating: 3, TopicConfidence: 0.5},
		{ID: "5", BankName: "Dashen Bank", Theme: "Fees", SentimentScore: -0.8, SentimentLabel: model.Negative, Rating: 1, TopicConfidence: 0.8},
	})
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestBanksSortedAndDiscovered(t *testing.T) {
	rec := get(t, NewServer(testData()), "/api/banks")
	var banks []string
	if err := json.Unmarshal(rec.Body.Bytes(), &banks); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := "Abyssinia Bank,CBE,Dashen Bank"
	if strings.Join(banks, ",") != want {
		t.Errorf("banks = %v, want %s", banks, want)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestThemesOrderedAndNullable(t *testing.T) {
	rec := get(t, NewServer(testData()), "/api/themes?bank=all")
	var rows []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 themes, got %d: %v", len(rows), rows)
	}
	if rows[0]["theme"] != "Fees" || rows[0]["review_count"] != float64(3) {
		t.Errorf("first theme = %v, want Fees x3", rows[0])
	}
	var sawNull bool
	for _, r := range rows {
		if r["theme"] == nil {
			sawNull = true
		}
	}
	if !sawNull {
		t.Error("unassigned theme should be sent as null")
	}
}

func TestThemesFilteredByBank(t *testing.T) {
	d := testData()
	themes := d.Themes("CBE")
	if len(themes) != 2 || themes[0].Name != "Fees" || themes[0].AvgSentiment != 0 {
		t.Errorf("CBE themes = %+v", themes)
	}
}

func TestSummaryAndSentiment(t *testing.T) {
	d := testData()
	sum := d.Summary("CBE")
	if sum.TotalReviews != 3 || sum.PctPositive != 66.7 || sum.PctNegative != 33.3 {
		t.Errorf("summary = %+v", sum)
	}
	if (d.Summary("Nobody") != model.Summary{}) {
		t.Error("empty bank should have a zero summary")
	}
	b := d.Sentiment("")
	if b.Positive != 2 || b.Negative != 2 || b.Neutral != 1 {
		t.Errorf("sentiment = %+v", b)
	}
}

func TestThemeSentimentCells(t *testing.T) {
	rows := testData().ThemeSentiment("CBE")
	if len(rows) != 3 {
		t.Fatalf("expected 3 cells, got %+v", rows)
	}
	for _, r := range rows {
		if r.Theme == "Fees" && r.SentimentLabel == model.Negative && (r.Count != 1 || r.MinSentiment != -0.5) {
			t.Errorf("Fees/negative = %+v", r)
		}
	}
}

func TestReviewsPaging(t *testing.T) {
	s := NewServer(testData())
	rec := get(t, s, "/api/reviews?theme=Fees&page=1&limit=2")
	var page model.ReviewPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 3 || len(page.Reviews) != 2 || page.Limit != 2 {
		t.Fatalf("page = %+v", page)
	}
	if page.Reviews[0].ID != "2" || page.Reviews[1].ID != "5" {
		t.Errorf("reviews should be ordered by confidence desc, got %s,%s", page.Reviews[0].ID, page.Reviews[1].ID)
	}

	rec = get(t, s, "/api/reviews?theme=Fees&page=2&limit=2")
	json.Unmarshal(rec.Body.Bytes(), &page)
	if len(page.Reviews) != 1 || page.Reviews[0].ID != "1" {
		t.Errorf("page 2 = %+v", page.Reviews)
	}

	rec = get(t, s, "/api/reviews?theme=Fees&page=9&limit=2")
	json.Unmarshal(rec.Body.Bytes(), &page)
	if len(page.Reviews) != 0 || page.Total != 3 {
		t.Errorf("past the end should be empty with total, got %+v", page)
	}
}

func TestReviewsValidation(t *testing.T) {
	s := NewServer(testData())
	for _, path := range []string{
		"/api/reviews?limit=0",
		"/api/reviews?limit=101",
		"/api/reviews?page=0",
		"/api/reviews?page=x",
	} {
		if rec := get(t, s, path); rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("%s: status %d, want 422", path, rec.Code)
		}
	}
	rec := get(t, s, "/api/reviews")
	var page model.ReviewPage
	json.Unmarshal(rec.Body.Bytes(), &page)
	if page.Page != 1 || page.Limit != defaultLimit {
		t.Errorf("defaults = %d/%d", page.Page, page.Limit)
	}
}

func TestReviewsSentimentFilter(t *testing.T) {
	page := testData().Reviews("CBE", "Fees", model.Negative, 1, 10)
	if page.Total != 1 || page.Reviews[0].ID != "1" {
		t.Errorf("page = %+v", page)
	}
}

func TestFailureInjection(t *testing.T) {
	s := NewServer(testData())
	s.FailBank("CBE", http.StatusInternalServerError)
	if rec := get(t, s, "/api/themes?bank=CBE"); rec.Code != 500 {
		t.Errorf("failed bank status = %d", rec.Code)
	}
	if rec := get(t, s, "/api/themes?bank=Dashen+Bank"); rec.Code != 200 {
		t.Errorf("sibling bank status = %d", rec.Code)
	}
	s.FailBank("CBE", 0)
	if rec := get(t, s, "/api/themes?bank=CBE"); rec.Code != 200 {
		t.Errorf("cleared bank status = %d", rec.Code)
	}

	s.FailPath("/api/summary", http.StatusBadGateway)
	if rec := get(t, s, "/api/summary"); rec.Code != 502 {
		t.Errorf("failed path status = %d", rec.Code)
	}
}

func TestLatencyInjection(t *testing.T) {
	s := NewServer(testData())
	s.SetLatency(func(r *http.Request) time.Duration {
		if r.URL.Query().Get("bank") == "CBE" {
			return 30 * time.Millisecond
		}
		return 0
	})
	start := time.Now()
	get(t, s, "/api/summary?bank=CBE")
	if time.Since(start) < 30*time.Millisecond {
		t.Error("latency was not applied")
	}
}

func TestContentTypeOverride(t *testing.T) {
	s := NewServer(testData())
	s.SetContentType("text/html")
	if ct := get(t, s, "/api/banks").Header().Get("Content-Type"); ct != "text/html" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestSampleDeterministic(t *testing.T) {
	a, b := Sample(), Sample()
	if a.Len() != b.Len() || a.Len() == 0 {
		t.Fatalf("sample sizes %d vs %d", a.Len(), b.Len())
	}
	if len(a.Banks()) != 3 {
		t.Errorf("sample banks = %v", a.Banks())
	}
	if a.Summary("CBE") != b.Summary("CBE") {
		t.Error("sample is not deterministic")
	}
	for _, r := range a.All() {
		if want := analysis.LabelForScore(r.SentimentScore); r.SentimentLabel != want {
			t.Fatalf("review %s: score %v labeled %s, want %s", r.ID, r.SentimentScore, r.SentimentLabel, want)
		}
	}
}

func TestLoadDataset(t *testing.T) {
	d, err := LoadDataset(strings.NewReader(`[{"review_id":"a","bank_name":"CBE","theme":"Fees","sentiment_label":"negative","sentiment_score":-0.3}]`))
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if d.Len() != 1 || d.Banks()[0] != "CBE" {
		t.Errorf("dataset = %d reviews, banks %v", d.Len(), d.Banks())
	}
	if _, err := LoadDataset(strings.NewReader("{")); err == nil {
		t.Error("expected decode error")
	}
}

func TestJitterLatencyBounds(t *testing.T) {
	fn := JitterLatency(10*time.Millisecond, 20*time.Millisecond)
	for i := 0; i < 100; i++ {
		d := fn(nil)
		if d < 10*time.Millisecond || d >= 20*time.Millisecond {
			t.Fatalf("latency %v out of [10ms, 20ms)", d)
		}
	}
	if d := JitterLatency(5*time.Millisecond, 5*time.Millisecond)(nil); d != 5*time.Millisecond {
		t.Errorf("empty range should return lo, got %v", d)
	}
}

func TestListen(t *testing.T) {
	srv, base, err := NewServer(testData()).Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer srv.Close()

	resp, err := http.Get(base + "/api/banks")
	if err != nil {
		t.Fatalf("GET banks: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestLoadStore(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "reviews.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer st.Close()
	if _, err := st.AddBanks([]string{"Abyssinia Bank"}); err != nil {
		t.Fatal(err)
	}
	if _, err := st.SaveReviews(testData().All()); err != nil {
		t.Fatal(err)
	}

	data, err := LoadStore(st)
	if err != nil {
		t.Fatalf("LoadStore: %v", err)
	}
	if data.Len() != 5 {
		t.Errorf("Len = %d, want 5", data.Len())
	}
	if banks := data.Banks(); len(banks) != 3 || banks[0] != "Abyssinia Bank" {
		t.Errorf("banks = %v", banks)
	}
	if got := data.Themes("CBE"); len(got) != 2 {
		t.Errorf("CBE themes = %+v", got)
	}
}
