package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"keyword_bot/models"
	"keyword_bot/services"
)

type fakeService struct {
	rec       *models.Recommendation
	err       error
	keywords  []string
	runs      []models.Recommendation
	latestErr error
	gotRunID  string
	gotMax    int
	gotMode   models.RunMode
}

func (f *fakeService) Recommend(ctx context.Context, query string, maxResults int) (*models.Recommendation, error) {
	f.gotMax, f.gotMode = maxResults, models.ModeRecommend
	return f.rec, f.err
}

func (f *fakeService) Compare(ctx context.Context, query string, maxResults int) (*models.Recommendation, error) {
	f.gotMax, f.gotMode = maxResults, models.ModeCompare
	return f.rec, f.err
}

func (f *fakeService) TrendKeywords(ctx context.Context, query string) ([]string, error) {
	return f.keywords, f.err
}

func (f *fakeService) Latest(ctx context.Context, query string) (*models.Recommendation, error) {
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	return f.rec, nil
}

func (f *fakeService) History(ctx context.Context, query string, limit int) ([]models.Recommendation, error) {
	f.gotMax = limit
	return f.runs, f.err
}

func (f *fakeService) Run(ctx context.Context, runID string) (*models.Recommendation, error) {
	f.gotRunID = runID
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	return f.rec, nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, svc KeywordService, target string) envelope {
	t.Helper()
	r := chi.NewRouter()
	RegisterRoutes(r, svc)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("%s: status %d", target, rec.Code)
	}
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s: decode: %v (%s)", target, err, rec.Body.String())
	}
	return env
}

func sampleRecommendation() *models.Recommendation {
	return &models.Recommendation{
		RunID: "01A", Query: "이어폰", Mode: models.ModeRecommend,
		Keywords: []models.ScoreRecord{{Keyword: "무선이어폰", FrequencyScore: 1, TrendScore: 2, TotalScore: 3}},
	}
}

func TestRecommendHandler(t *testing.T) {
	svc := &fakeService{rec: sampleRecommendation()}
	env := do(t, svc, "/api/recommend?query=%EC%9D%B4%EC%96%B4%ED%8F%B0&max=5")
	if env.Code != models.CodeSuccess {
		t.Fatalf("code = %d (%s)", env.Code, env.Message)
	}
	var rec models.Recommendation
	if err := json.Unmarshal(env.Data, &rec); err != nil {
		t.Fatal(err)
	}
	if rec.RunID != "01A" || len(rec.Keywords) != 1 || rec.Keywords[0].TotalScore != 3 {
		t.Fatalf("data = %+v", rec)
	}
	if svc.gotMax != 5 || svc.gotMode != models.ModeRecommend {
		t.Fatalf("max = %d, mode = %s", svc.gotMax, svc.gotMode)
	}
}

func TestCompareHandlerUsesDefaultMax(t *testing.T) {
	svc := &fakeService{rec: sampleRecommendation()}
	env := do(t, svc, "/api/compare?query=q")
	if env.Code != models.CodeSuccess || svc.gotMax != 0 || svc.gotMode != models.ModeCompare {
		t.Fatalf("code = %d, max = %d, mode = %s", env.Code, svc.gotMax, svc.gotMode)
	}
}

func TestHandlersValidateParams(t *testing.T) {
	svc := &fakeService{rec: sampleRecommendation()}
	cases := []struct {
		target string
		code   int
	}{
		{"/api/recommend", models.CodeMissingParams},
		{"/api/recommend?query=%20", models.CodeMissingParams},
		{"/api/recommend?query=q&max=abc", models.CodeInvalidParams},
		{"/api/compare?query=q&max=-1", models.CodeInvalidParams},
		{"/api/keywords/trend", models.CodeMissingParams},
		{"/api/recommendation/latest", models.CodeMissingParams},
		{"/api/recommendation/history?limit=x", models.CodeInvalidParams},
	}
	for _, tc := range cases {
		if env := do(t, svc, tc.target); env.Code != tc.code {
			t.Errorf("%s: code = %d, want %d", tc.target, env.Code, tc.code)
		}
	}
}

func TestRecommendHandlerErrorCodes(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: missing naver.client_id", services.ErrConfiguration), models.CodeConfigError},
		{fmt.Errorf("%w: status 500", services.ErrSourceUnavailable), models.CodeThirdPartyAPIError},
		{services.ErrMalformedResponse, models.CodeThirdPartyAPIError},
		{context.Canceled, models.CodeServerError},
		{errors.New("boom"), models.CodeRecommendGenError},
	}
	for _, tc := range cases {
		env := do(t, &fakeService{err: tc.err}, "/api/recommend?query=q")
		if env.Code != tc.code {
			t.Errorf("%v: code = %d, want %d", tc.err, env.Code, tc.code)
		}
		if env.Message != tc.err.Error() {
			t.Errorf("message = %q", env.Message)
		}
	}
}

func TestTrendKeywordsHandler(t *testing.T) {
	env := do(t, &fakeService{keywords: []string{"무선이어폰", "블루투스이어폰"}}, "/api/keywords/trend?query=q")
	var kws []string
	if err := json.Unmarshal(env.Data, &kws); err != nil || len(kws) != 2 {
		t.Fatalf("data = %s, %v", env.Data, err)
	}

	env = do(t, &fakeService{}, "/api/keywords/trend?query=q")
	if env.Code != models.CodeNoRecommendData {
		t.Fatalf("empty: code = %d", env.Code)
	}
}

func TestLatestRecommendationHandler(t *testing.T) {
	env := do(t, &fakeService{rec: sampleRecommendation()}, "/api/recommendation/latest?query=q")
	if env.Code != models.CodeSuccess {
		t.Fatalf("code = %d", env.Code)
	}

	env = do(t, &fakeService{latestErr: sql.ErrNoRows}, "/api/recommendation/latest?query=q")
	if env.Code != models.CodeNoRecommendData {
		t.Fatalf("no rows: code = %d", env.Code)
	}

	env = do(t, &fakeService{latestErr: errors.New("db down")}, "/api/recommendation/latest?query=q")
	if env.Code != models.CodeDatabaseError {
		t.Fatalf("db error: code = %d", env.Code)
	}
}

func TestHistoryHandler(t *testing.T) {
	svc := &fakeService{runs: []models.Recommendation{*sampleRecommendation(), *sampleRecommendation()}}
	env := do(t, svc, "/api/recommendation/history?query=q&limit=2")
	var runs []models.Recommendation
	if err := json.Unmarshal(env.Data, &runs); err != nil || len(runs) != 2 {
		t.Fatalf("runs = %s, %v", env.Data, err)
	}
	if svc.gotMax != 2 {
		t.Fatalf("limit = %d", svc.gotMax)
	}
}

func TestRunHandler(t *testing.T) {
	svc := &fakeService{rec: sampleRecommendation()}
	env := do(t, svc, "/api/recommendation/run/01A")
	if env.Code != models.CodeSuccess || svc.gotRunID != "01A" {
		t.Fatalf("code = %d, run id = %q", env.Code, svc.gotRunID)
	}

	env = do(t, &fakeService{latestErr: sql.ErrNoRows}, "/api/recommendation/run/missing")
	if env.Code != models.CodeNoRecommendData {
		t.Fatalf("no rows: code = %d", env.Code)
	}

	env = do(t, &fakeService{latestErr: errors.New("db down")}, "/api/recommendation/run/01A")
	if env.Code != models.CodeDatabaseError {
		t.Fatalf("db error: code = %d", env.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	env := do(t, &fakeService{}, "/healthz")
	if env.Code != models.CodeSuccess {
		t.Fatalf("code = %d", env.Code)
	}
}
