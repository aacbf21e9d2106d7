package mockjudge

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"contesthub/internal/testutil"

	"github.com/gin-gonic/gin"
)

func TestTraceHeadersEchoedOrGenerated(t *testing.T) {
	r, _ := newTestServer(t, Options{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(traceIDHeader, "trace-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	testutil.AssertEqual(t, w.Header().Get(traceIDHeader), "trace-1")
	testutil.AssertTrue(t, w.Header().Get(requestIDHeader) != "", "request id generated")
}

func TestErrorBodyCarriesTraceID(t *testing.T) {
	r, _ := newTestServer(t, Options{})
	req := httptest.NewRequest(http.MethodGet, "/api/approved_contest/zz/problems", nil)
	req.Header.Set(traceIDHeader, "trace-2")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body struct {
		Message string `json:"message"`
		TraceID string `json:"trace_id"`
	}
	testutil.MustUnmarshalJSON(t, w.Body.Bytes(), &body)
	testutil.AssertEqual(t, body.TraceID, "trace-2")
	testutil.AssertEqual(t, body.Message, "Contest not found")
}

func TestCORS(t *testing.T) {
	r, _ := newTestServer(t, Options{CORS: CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}, MaxAge: time.Minute}})

	req := httptest.NewRequest(http.MethodOptions, "/api/admin/add", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	testutil.AssertEqual(t, w.Code, http.StatusNoContent)
	testutil.AssertEqual(t, w.Header().Get("Access-Control-Allow-Origin"), "http://localhost:3000")
	testutil.AssertEqual(t, w.Header().Get("Access-Control-Max-Age"), "60")

	req = httptest.NewRequest(http.MethodOptions, "/api/admin/add", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	testutil.AssertEqual(t, w.Code, http.StatusForbidden)

	req = httptest.NewRequest(http.MethodGet, "/api/approved_contest", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	testutil.AssertEqual(t, w.Header().Get("Access-Control-Allow-Origin"), "")
}

func TestCORSDisabledWithoutOrigins(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(CORSConfig{}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	testutil.AssertEqual(t, w.Code, http.StatusOK)
	testutil.AssertEqual(t, w.Header().Get("Access-Control-Allow-Origin"), "")
}

func TestSampleFixturesLoad(t *testing.T) {
	f, err := LoadFixtures("../../configs/fixtures.yaml")
	testutil.MustNoError(t, err)
	testutil.AssertEqual(t, len(f.Contests), 3)

	problems, err := f.WireProblems("1001")
	testutil.MustNoError(t, err)
	testutil.AssertEqual(t, len(problems[0].TestCases), 1)

	problems, err = f.WireProblems("1002")
	testutil.MustNoError(t, err)
	testutil.AssertEqual(t, problems[1].TestCases[0].InputLines(), []string{"3", "first", "", "third"})
}
