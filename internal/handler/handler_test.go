package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"houseprice/internal/model"
	"houseprice/internal/regressor"
	"houseprice/internal/repository"
	"houseprice/internal/service"

	"github.com/gin-gonic/gin"
)

const frontendOrigin = "http://localhost:3000"

type errorResp struct {
	Error  string       `json:"error"`
	Fields []FieldError `json:"fields"`
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newLinearModel(t *testing.T, coefficients ...float64) regressor.Regressor {
	t.Helper()
	if len(coefficients) == 0 {
		coefficients = []float64{0.01, 0.02, -0.005, 0.003, 0.15, 0.10, 0.35}
	}
	reg, err := regressor.NewLinearModel(4.2, coefficients)
	if err != nil {
		t.Fatalf("NewLinearModel() error = %v", err)
	}
	return reg
}

func setupRouter(t *testing.T, reg regressor.Regressor) (*gin.Engine, *service.PredictionService) {
	t.Helper()
	svc := service.NewPredictionService(reg, nil, nil, nil)
	router := NewRouter(RouterConfig{
		AllowedOrigin: frontendOrigin,
		Build:         BuildInfo{Version: "test"},
		Predict:       NewPredictHandler(svc, nil),
	})
	return router, svc
}

func postPredict(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorResp {
	t.Helper()
	var resp errorResp
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v (%s)", err, rr.Body.String())
	}
	return resp
}

func hasField(resp errorResp, field string) bool {
	for _, f := range resp.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func TestPredict_Scenario(t *testing.T) {
	router, _ := setupRouter(t, newLinearModel(t))

	rr := postPredict(router, `{"category":1,"type":2,"city":3,"region":4,"room_count":3,"bathroom_count":1,"size":85.0}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var result model.PredictionResult
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	if math.Abs(result.TransformedInputs.RoomCountLog-1.3863) > 1e-4 ||
		math.Abs(result.TransformedInputs.BathroomCountLog-0.6931) > 1e-4 ||
		math.Abs(result.TransformedInputs.SizeLog-4.4543) > 1e-4 {
		t.Errorf("unexpected transformed inputs: %+v", result.TransformedInputs)
	}
	if result.PredictedPrice != int64(math.RoundToEven(math.Pow(10, result.Log10Price))) {
		t.Errorf("predicted_price %d != round(10^%v)", result.PredictedPrice, result.Log10Price)
	}
	if result.Note != model.PredictionNote {
		t.Errorf("note = %q", result.Note)
	}
	want := model.HouseRecord{Category: 1, Type: 2, City: 3, Region: 4, RoomCount: 3, BathroomCount: 1, Size: 85}
	if result.RawInputs != want {
		t.Errorf("raw_inputs = %+v, want %+v", result.RawInputs, want)
	}
}

func TestPredict_ResponseShape(t *testing.T) {
	router, _ := setupRouter(t, newLinearModel(t))

	rr := postPredict(router, `{"category":1,"type":2,"city":3,"region":4,"room_count":3,"bathroom_count":1,"size":85.0}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	for _, key := range []string{"predicted_price", "log10_price", "note", "raw_inputs", "transformed_inputs"} {
		if _, ok := payload[key]; !ok {
			t.Errorf("response missing %q", key)
		}
	}
	transformed, _ := payload["transformed_inputs"].(map[string]interface{})
	for _, key := range []string{"room_count_log", "bathroom_count_log", "size_log"} {
		if _, ok := transformed[key]; !ok {
			t.Errorf("transformed_inputs missing %q", key)
		}
	}
}

func TestPredict_ZeroBoundaries(t *testing.T) {
	router, _ := setupRouter(t, newLinearModel(t))

	rr := postPredict(router, `{"category":0,"type":0,"city":0,"region":0,"room_count":0,"bathroom_count":0,"size":0}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var result model.PredictionResult
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if result.TransformedInputs != (model.TransformedInputs{}) {
		t.Errorf("transformed inputs = %+v, want zeros", result.TransformedInputs)
	}
}

func TestPredict_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing size", `{"category":1,"type":2,"city":3,"region":4,"room_count":3,"bathroom_count":1}`, "size"},
		{"missing category", `{"type":2,"city":3,"region":4,"room_count":3,"bathroom_count":1,"size":85}`, "category"},
		{"negative size", `{"category":1,"type":2,"city":3,"region":4,"room_count":3,"bathroom_count":1,"size":-1}`, "size"},
		{"negative rooms", `{"category":1,"type":2,"city":3,"region":4,"room_count":-2,"bathroom_count":1,"size":85}`, "room_count"},
		{"negative bathrooms", `{"category":1,"type":2,"city":3,"region":4,"room_count":2,"bathroom_count":-1,"size":85}`, "bathroom_count"},
		{"string rooms", `{"category":1,"type":2,"city":3,"region":4,"room_count":"three","bathroom_count":1,"size":85}`, "room_count"},
		{"fractional city", `{"category":1,"type":2,"city":3.5,"region":4,"room_count":3,"bathroom_count":1,"size":85}`, "city"},
	}

	router, _ := setupRouter(t, newLinearModel(t))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postPredict(router, tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
			}
			resp := decodeError(t, rr)
			if !hasField(resp, tt.field) {
				t.Errorf("expected field %q in %+v", tt.field, resp.Fields)
			}
		})
	}
}

func TestPredict_EmptyObjectListsAllFields(t *testing.T) {
	router, _ := setupRouter(t, newLinearModel(t))

	rr := postPredict(router, `{}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	resp := decodeError(t, rr)
	if len(resp.Fields) != 7 {
		t.Errorf("expected 7 field errors, got %+v", resp.Fields)
	}
}

func TestPredict_MalformedBody(t *testing.T) {
	router, _ := setupRouter(t, newLinearModel(t))

	for _, body := range []string{"", "{not json", "[1,2,3]"} {
		rr := postPredict(router, body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, rr.Code)
		}
	}
}

func TestPredict_ModelErrorIsGeneric(t *testing.T) {
	// a three-feature model cannot consume the seven-feature vector
	router, _ := setupRouter(t, newLinearModel(t, 1, 2, 3))

	rr := postPredict(router, `{"category":1,"type":2,"city":3,"region":4,"room_count":3,"bathroom_count":1,"size":85.0}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	resp := decodeError(t, rr)
	if resp.Error != "prediction failed" {
		t.Errorf("error = %q, want generic message", resp.Error)
	}
	if bytes.Contains(rr.Body.Bytes(), []byte("feature count")) {
		t.Errorf("internal error leaked: %s", rr.Body.String())
	}
}

func TestPredict_Idempotent(t *testing.T) {
	router, _ := setupRouter(t, newLinearModel(t))
	body := `{"category":2,"type":1,"city":7,"region":3,"room_count":4,"bathroom_count":2,"size":120.5}`

	first := postPredict(router, body)
	second := postPredict(router, body)
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("unexpected status %d / %d", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("responses differ:\n%s\n%s", first.Body.String(), second.Body.String())
	}
}

func TestPredict_ConcurrentRequests(t *testing.T) {
	router, _ := setupRouter(t, newLinearModel(t))

	const n = 40
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := fmt.Sprintf(`{"category":%d,"type":1,"city":2,"region":3,"room_count":%d,"bathroom_count":1,"size":%d}`, i, i%5, 40+i)
			rr := postPredict(router, body)
			if rr.Code != http.StatusOK {
				t.Errorf("request %d: status %d", i, rr.Code)
				return
			}
			var result model.PredictionResult
			if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
				t.Errorf("request %d: invalid json: %v", i, err)
				return
			}
			want := model.HouseRecord{Category: i, Type: 1, City: 2, Region: 3, RoomCount: i % 5, BathroomCount: 1, Size: float64(40 + i)}
			if result.RawInputs != want {
				t.Errorf("request %d got response for %+v", i, result.RawInputs)
			}
		}(i)
	}
	wg.Wait()
}

func TestRequestIDHeader(t *testing.T) {
	router, _ := setupRouter(t, newLinearModel(t))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if got := rr.Header().Get("X-Request-Id"); got != "abc-123" {
		t.Errorf("X-Request-Id = %q, want abc-123", got)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Header().Get("X-Request-Id") == "" {
		t.Error("expected generated X-Request-Id")
	}
}

func TestCORS(t *testing.T) {
	router, _ := setupRouter(t, newLinearModel(t))

	t.Run("preflight from front-end", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/predict", nil)
		req.Header.Set("Origin", frontendOrigin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "content-type")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code < 200 || rr.Code >= 300 {
			t.Fatalf("expected 2xx preflight, got %d", rr.Code)
		}
		if got := rr.Header().Get("Access-Control-Allow-Origin"); got != frontendOrigin {
			t.Errorf("Access-Control-Allow-Origin = %q", got)
		}
		if !strings.Contains(rr.Header().Get("Access-Control-Allow-Methods"), "POST") {
			t.Errorf("Access-Control-Allow-Methods = %q", rr.Header().Get("Access-Control-Allow-Methods"))
		}
	})

	t.Run("simple request from front-end", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/predict",
			strings.NewReader(`{"category":1,"type":2,"city":3,"region":4,"room_count":3,"bathroom_count":1,"size":85.0}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Origin", frontendOrigin)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if got := rr.Header().Get("Access-Control-Allow-Origin"); got != frontendOrigin {
			t.Errorf("Access-Control-Allow-Origin = %q", got)
		}
	})

	t.Run("other origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(`{}`))
		req.Header.Set("Origin", "http://evil.example")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Access-Control-Allow-Origin = %q, want empty", got)
		}
	})
}

func TestModelInfo(t *testing.T) {
	router, _ := setupRouter(t, newLinearModel(t))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/model", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var info model.ModelInfo
	if err := json.Unmarshal(rr.Body.Bytes(), &info); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if info.Type != regressor.TypeLinear || info.NumFeatures != 7 {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestHealthAndVersion(t *testing.T) {
	router, _ := setupRouter(t, newLinearModel(t))

	for _, path := range []string{"/health", "/version"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), `"version":"test"`) {
			t.Errorf("%s: body %s missing version", path, rr.Body.String())
		}
	}
}

func TestRecentPredictions(t *testing.T) {
	repo, err := repository.NewPredictionRepository("sqlite3", ":memory:", 1, 1)
	if err != nil {
		t.Fatalf("NewPredictionRepository() error = %v", err)
	}
	defer repo.Close()

	svc := service.NewPredictionService(newLinearModel(t), nil, repo, nil)
	router := NewRouter(RouterConfig{
		AllowedOrigin: frontendOrigin,
		Predict:       NewPredictHandler(svc, nil),
		PredictionLog: NewPredictionLogHandler(repo, 20, 100),
	})

	for i := 0; i < 3; i++ {
		body := fmt.Sprintf(`{"category":1,"type":2,"city":3,"region":4,"room_count":%d,"bathroom_count":1,"size":85.0}`, i)
		if rr := postPredict(router, body); rr.Code != http.StatusOK {
			t.Fatalf("predict %d: status %d", i, rr.Code)
		}
	}
	svc.Close()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/predictions/recent?limit=2", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp model.RecentPredictionsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Count != 2 || len(resp.Predictions) != 2 {
		t.Errorf("expected 2 predictions, got %d", resp.Count)
	}
	for _, p := range resp.Predictions {
		if p.RequestID == "" {
			t.Errorf("prediction %d has no request id", p.ID)
		}
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/predictions/recent?limit=abc", nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad limit, got %d", rr.Code)
	}
}

func TestRecentPredictions_DisabledRoute(t *testing.T) {
	router, _ := setupRouter(t, newLinearModel(t))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/predictions/recent", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}
