package web_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"

	"tailored-cv-web/internal/bootstrap"
	"tailored-cv-web/internal/shared/config"
	"tailored-cv-web/internal/shared/server/middleware"
)

type fakeTailorAPI struct {
	srv         *httptest.Server
	tailorCalls int32
	failTailor  atomic.Bool
	failLetter  atomic.Bool
}

func newFakeTailorAPI(t *testing.T) *fakeTailorAPI {
	t.Helper()
	f := &fakeTailorAPI{}
	mux := http.NewServeMux()
	mux.HandleFunc("/tailor", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.tailorCalls, 1)
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if f.failTailor.Load() {
			http.Error(w, "model unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"match_score":82,"missing_skills":["Kubernetes","Go"]}`)
	})
	mux.HandleFunc("/download/cv", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = io.WriteString(w, "%PDF cv")
	})
	mux.HandleFunc("/download/cover_letter", func(w http.ResponseWriter, r *http.Request) {
		if f.failLetter.Load() {
			http.Error(w, "not generated", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = io.WriteString(w, "%PDF letter")
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func newTestRouter(t *testing.T, api *fakeTailorAPI) *gin.Engine {
	t.Helper()
	return newTestRouterWith(t, api, nil)
}

func newTestRouterWith(t *testing.T, api *fakeTailorAPI, adjust func(*config.Config)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Config{
		Port:            "0",
		Env:             "dev",
		TailorAPIURL:    api.srv.URL,
		LocalStoreDir:   t.TempDir(),
		ObjectStoreType: "local",
		CORSAllowOrigin: []string{"http://localhost:3000"},
	}
	if adjust != nil {
		adjust(&cfg)
	}
	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app.Router
}

func do(r *gin.Engine, req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func login(t *testing.T, r *gin.Engine) *http.Cookie {
	t.Helper()
	resp := do(r, postForm("/login", url.Values{"email": {"ada@example.com"}, "password": {"pw"}}), nil)
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 after login, got %d: %s", resp.Code, resp.Body.String())
	}
	if loc := resp.Header().Get("Location"); loc != "/dashboard" {
		t.Fatalf("expected redirect to /dashboard, got %q", loc)
	}
	for _, c := range resp.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	t.Fatalf("login did not set session cookie")
	return nil
}

func uploadProfile(t *testing.T, r *gin.Engine, cookie *http.Cookie, name string) *httptest.ResponseRecorder {
	t.Helper()
	return uploadProfileBytes(t, r, cookie, name, []byte("%PDF-1.4 profile"))
}

func uploadProfileBytes(t *testing.T, r *gin.Engine, cookie *http.Cookie, name string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("linkedin_pdf", name)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/dashboard/profile", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return do(r, req, cookie)
}

func getDashboard(t *testing.T, r *gin.Engine, cookie *http.Cookie) string {
	t.Helper()
	resp := do(r, httptest.NewRequest(http.MethodGet, "/dashboard", nil), cookie)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 dashboard, got %d", resp.Code)
	}
	return resp.Body.String()
}

func expectRedirect(t *testing.T, resp *httptest.ResponseRecorder, location string) {
	t.Helper()
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", resp.Code, resp.Body.String())
	}
	if got := resp.Header().Get("Location"); got != location {
		t.Fatalf("expected redirect to %q, got %q", location, got)
	}
}

func TestDashboardRedirectsWithoutSession(t *testing.T) {
	r := newTestRouter(t, newFakeTailorAPI(t))

	resp := do(r, httptest.NewRequest(http.MethodGet, "/dashboard", nil), nil)
	expectRedirect(t, resp, "/")
	if strings.Contains(resp.Body.String(), "Upload Your LinkedIn Profile") {
		t.Fatalf("protected content rendered without session")
	}

	resp = do(r, httptest.NewRequest(http.MethodGet, "/dashboard", nil), &http.Cookie{Name: middleware.SessionCookieName, Value: "forged"})
	expectRedirect(t, resp, "/")
}

func TestEntryPageToggle(t *testing.T) {
	r := newTestRouter(t, newFakeTailorAPI(t))

	resp := do(r, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "Welcome Back") {
		t.Fatalf("expected sign-in copy, got %d: %s", resp.Code, resp.Body.String())
	}
	resp = do(r, httptest.NewRequest(http.MethodGet, "/?mode=signup", nil), nil)
	if !strings.Contains(resp.Body.String(), "Create Account") {
		t.Fatalf("expected sign-up copy")
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	r := newTestRouter(t, newFakeTailorAPI(t))

	resp := do(r, postForm("/login", url.Values{"email": {"ada@example.com"}}), nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "Please enter your email and password") {
		t.Fatalf("expected notice in page")
	}
	if len(resp.Result().Cookies()) != 0 {
		t.Fatalf("expected no cookie on failed login")
	}
}

func TestWizardHappyPath(t *testing.T) {
	api := newFakeTailorAPI(t)
	r := newTestRouter(t, api)
	cookie := login(t, r)

	page := getDashboard(t, r, cookie)
	if !strings.Contains(page, "Upload Your LinkedIn Profile") || !strings.Contains(page, "ada@example.com") {
		t.Fatalf("expected step 1 for signed in visitor")
	}

	resp := do(r, postForm("/dashboard/advance", nil), cookie)
	if resp.Code != http.StatusBadRequest || !strings.Contains(resp.Body.String(), "Please select your LinkedIn PDF first") {
		t.Fatalf("expected advance without profile to be refused, got %d", resp.Code)
	}

	expectRedirect(t, uploadProfile(t, r, cookie, "resume.pdf"), "/dashboard")
	page = getDashboard(t, r, cookie)
	if !strings.Contains(page, "resume.pdf") || !strings.Contains(page, "Click to change") {
		t.Fatalf("expected selected file on step 1")
	}

	expectRedirect(t, do(r, postForm("/dashboard/advance", nil), cookie), "/dashboard")
	if page = getDashboard(t, r, cookie); !strings.Contains(page, "Paste the Job Description") {
		t.Fatalf("expected step 2")
	}

	jd := strings.Repeat("Go Kubernetes ", 36)
	expectRedirect(t, do(r, postForm("/dashboard/tailor", url.Values{"job_description": {jd}}), cookie), "/dashboard")
	page = getDashboard(t, r, cookie)
	if !strings.Contains(page, "82%") {
		t.Fatalf("expected match score, got %s", page)
	}
	if !strings.Contains(page, "Kubernetes, Go") {
		t.Fatalf("expected missing skills joined")
	}
	if n := atomic.LoadInt32(&api.tailorCalls); n != 1 {
		t.Fatalf("expected one tailor call, got %d", n)
	}

	resp = do(r, httptest.NewRequest(http.MethodGet, "/dashboard/download/cv", nil), cookie)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 download, got %d", resp.Code)
	}
	if cd := resp.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="tailored_cv.pdf"`) {
		t.Fatalf("unexpected Content-Disposition %q", cd)
	}
	if resp.Body.String() != "%PDF cv" {
		t.Fatalf("unexpected body %q", resp.Body.String())
	}

	expectRedirect(t, do(r, postForm("/dashboard/restart", nil), cookie), "/dashboard")
	page = getDashboard(t, r, cookie)
	if !strings.Contains(page, "Upload Your LinkedIn Profile") || strings.Contains(page, "resume.pdf") {
		t.Fatalf("expected reset to empty step 1")
	}
}

func TestEmptyJobDescriptionMakesNoCall(t *testing.T) {
	api := newFakeTailorAPI(t)
	r := newTestRouter(t, api)
	cookie := login(t, r)
	uploadProfile(t, r, cookie, "resume.pdf")
	do(r, postForm("/dashboard/advance", nil), cookie)

	resp := do(r, postForm("/dashboard/tailor", url.Values{"job_description": {""}}), cookie)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	body := resp.Body.String()
	if !strings.Contains(body, "Please upload your LinkedIn PDF and paste the job description") {
		t.Fatalf("expected missing input notice")
	}
	if !strings.Contains(body, "Paste the Job Description") {
		t.Fatalf("expected to remain on step 2")
	}
	if n := atomic.LoadInt32(&api.tailorCalls); n != 0 {
		t.Fatalf("expected no backend call, got %d", n)
	}
}

func TestTailorFailureStaysOnStepTwo(t *testing.T) {
	api := newFakeTailorAPI(t)
	api.failTailor.Store(true)
	r := newTestRouter(t, api)
	cookie := login(t, r)
	uploadProfile(t, r, cookie, "resume.pdf")
	do(r, postForm("/dashboard/advance", nil), cookie)

	resp := do(r, postForm("/dashboard/tailor", url.Values{"job_description": {"Go developer"}}), cookie)
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
	body := resp.Body.String()
	if !strings.Contains(body, "Failed to process application. Please try again.") {
		t.Fatalf("expected failure notice")
	}
	if !strings.Contains(body, "Go developer") {
		t.Fatalf("expected typed description to survive")
	}
	if n := atomic.LoadInt32(&api.tailorCalls); n != 1 {
		t.Fatalf("expected exactly one attempt, got %d", n)
	}
}

func TestBackKeepsTypedText(t *testing.T) {
	r := newTestRouter(t, newFakeTailorAPI(t))
	cookie := login(t, r)
	uploadProfile(t, r, cookie, "resume.pdf")
	do(r, postForm("/dashboard/advance", nil), cookie)

	expectRedirect(t, do(r, postForm("/dashboard/back", url.Values{"job_description": {"draft text"}}), cookie), "/dashboard")
	if page := getDashboard(t, r, cookie); !strings.Contains(page, "Upload Your LinkedIn Profile") {
		t.Fatalf("expected step 1 after back")
	}
	do(r, postForm("/dashboard/advance", nil), cookie)
	if page := getDashboard(t, r, cookie); !strings.Contains(page, "draft text") {
		t.Fatalf("expected draft text kept")
	}
}

func TestDownloadFailureKeepsResults(t *testing.T) {
	api := newFakeTailorAPI(t)
	api.failLetter.Store(true)
	r := newTestRouter(t, api)
	cookie := login(t, r)
	uploadProfile(t, r, cookie, "resume.pdf")
	do(r, postForm("/dashboard/advance", nil), cookie)
	do(r, postForm("/dashboard/tailor", url.Values{"job_description": {"Go developer"}}), cookie)

	resp := do(r, httptest.NewRequest(http.MethodGet, "/dashboard/download/cover_letter", nil), cookie)
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
	body := resp.Body.String()
	if !strings.Contains(body, "Failed to download document") || !strings.Contains(body, "82%") {
		t.Fatalf("expected notice over unchanged results")
	}

	api.failLetter.Store(false)
	resp = do(r, httptest.NewRequest(http.MethodGet, "/dashboard/download/cover_letter", nil), cookie)
	if resp.Code != http.StatusOK || resp.Body.String() != "%PDF letter" {
		t.Fatalf("expected retry to succeed, got %d", resp.Code)
	}

	resp = do(r, httptest.NewRequest(http.MethodGet, "/dashboard/download/resume", nil), cookie)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown artifact, got %d", resp.Code)
	}
}

func TestLogoutEndsSession(t *testing.T) {
	r := newTestRouter(t, newFakeTailorAPI(t))
	cookie := login(t, r)

	resp := do(r, postForm("/logout", nil), cookie)
	expectRedirect(t, resp, "/")

	resp = do(r, httptest.NewRequest(http.MethodGet, "/dashboard", nil), cookie)
	expectRedirect(t, resp, "/")
}

func TestOversizedProfileShowsLimitNotice(t *testing.T) {
	r := newTestRouterWith(t, newFakeTailorAPI(t), func(cfg *config.Config) {
		cfg.MaxUploadBytes = 512
	})
	cookie := login(t, r)

	resp := uploadProfileBytes(t, r, cookie, "big.pdf", bytes.Repeat([]byte("x"), 4096))
	if resp.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", resp.Code)
	}
	body := resp.Body.String()
	if !strings.Contains(body, "Your LinkedIn PDF is too large to upload") {
		t.Fatalf("expected size notice in page")
	}
	if strings.Contains(body, "Please select your LinkedIn PDF first") {
		t.Fatalf("oversized upload reported as missing file")
	}
	if page := getDashboard(t, r, cookie); strings.Contains(page, "big.pdf") {
		t.Fatalf("oversized file should not be selected")
	}
}

func TestThrottledTailorPostRendersNotice(t *testing.T) {
	api := newFakeTailorAPI(t)
	api.failTailor.Store(true)
	r := newTestRouterWith(t, api, func(cfg *config.Config) {
		cfg.TailorRatePerMin = 1
		cfg.TailorBurst = 1
	})
	cookie := login(t, r)
	uploadProfile(t, r, cookie, "resume.pdf")
	do(r, postForm("/dashboard/advance", nil), cookie)

	resp := do(r, postForm("/dashboard/tailor", url.Values{"job_description": {"Go developer"}}), cookie)
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 from the failing backend, got %d", resp.Code)
	}

	resp = do(r, postForm("/dashboard/tailor", url.Values{"job_description": {"Senior Go developer"}}), cookie)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
	body := resp.Body.String()
	if !strings.Contains(body, "Too many requests. Please wait a moment and try again.") {
		t.Fatalf("expected rate limit notice in page")
	}
	if !strings.Contains(body, "Senior Go developer") {
		t.Fatalf("expected typed job description to be kept")
	}
	if got := atomic.LoadInt32(&api.tailorCalls); got != 1 {
		t.Fatalf("expected one backend call, got %d", got)
	}
}

func TestThrottledLoginRendersEntryPage(t *testing.T) {
	r := newTestRouter(t, newFakeTailorAPI(t))

	var resp *httptest.ResponseRecorder
	for i := 0; i < 6; i++ {
		req := postForm("/login", url.Values{"email": {"ada@example.com"}, "password": {"pw"}})
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "rotated-" + string(rune('a'+i))})
		resp = do(r, req, nil)
	}
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected sixth login to be limited, got %d", resp.Code)
	}
	body := resp.Body.String()
	if !strings.Contains(body, "Welcome Back") || !strings.Contains(body, "Too many requests") {
		t.Fatalf("expected entry page with notice")
	}
}
