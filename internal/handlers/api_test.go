package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hackcampus/apply-backend/internal/database"
	"github.com/hackcampus/apply-backend/internal/middleware"
	"github.com/hackcampus/apply-backend/internal/models"
	"github.com/hackcampus/apply-backend/internal/services"
)

var testDBCounter atomic.Int64

func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:apitest%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := services.NewUserService(db, log)
	applications := services.NewApplicationService(db, log)
	events := services.NewEventService(db, log)
	companies := services.NewCompanyService(db, events, log)
	sessions := middleware.NewSessions("test-secret", time.Hour)

	router := NewRouter(RouterDeps{
		Auth:         NewAuthHandler(users, sessions),
		Applications: NewApplicationHandler(applications),
		Companies:    NewCompanyHandler(companies),
		Staff:        NewStaffHandler(applications, events, companies),
		Sessions:     sessions,
		Limiter:      middleware.NewRateLimiter(),
		RateLimit:    1000,
		RateWindow:   time.Minute,
		CORSOrigins:  []string{"*"},
	})
	return router, db
}

func doJSON(router http.Handler, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

// signUp registers and logs in, returning the session cookies.
func signUp(t *testing.T, router http.Handler, email string) []*http.Cookie {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":"foobar"}`, email)
	if rec := doJSON(router, http.MethodPost, "/users", body, nil); rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	rec := doJSON(router, http.MethodPost, "/sessions", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("login should set a session cookie")
	}
	return cookies
}

const completeApplication = `{
	"firstName": "Ada",
	"lastName": "Lovelace",
	"gender": "female",
	"dateOfBirth": "1996-12-10",
	"university": "other",
	"otherUniversity": "Open University",
	"course": "Mathematics",
	"courseYear": "2",
	"graduationYear": "2019"
}`

func TestRegisterRejectsJunk(t *testing.T) {
	router, _ := newTestServer(t)

	if rec := doJSON(router, http.MethodPost, "/users", `{"weird":"stuff"}`, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("junk register should 400, got %d", rec.Code)
	}
	if rec := doJSON(router, http.MethodPost, "/users", `{"name":1337,"email":"not an email"}`, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad types should 400, got %d", rec.Code)
	}
}

func TestRegisterDuplicateConflicts(t *testing.T) {
	router, _ := newTestServer(t)
	body := `{"email":"foo@bar.baz","password":"foobar"}`

	if rec := doJSON(router, http.MethodPost, "/users", body, nil); rec.Code != http.StatusCreated {
		t.Fatalf("first register should 201, got %d %s", rec.Code, rec.Body.String())
	}
	rec := doJSON(router, http.MethodPost, "/users", body, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second register should 409, got %d", rec.Code)
	}
	if out := decodeBody(t, rec); out["error"] != "emailTaken" {
		t.Fatalf("conflict should carry emailTaken, got %v", out)
	}
}

func TestLoginFailures(t *testing.T) {
	router, _ := newTestServer(t)
	signUp(t, router, "foo@bar.baz")

	rec := doJSON(router, http.MethodPost, "/sessions", `{"email":"foo@bar.baz","password":"nope99"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password should 401, got %d", rec.Code)
	}
}

func TestMeRequiresSession(t *testing.T) {
	router, _ := newTestServer(t)
	if rec := doJSON(router, http.MethodGet, "/me", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous /me should 401, got %d", rec.Code)
	}

	cookies := signUp(t, router, "foo@bar.baz")
	rec := doJSON(router, http.MethodGet, "/me", "", cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("/me should 200, got %d", rec.Code)
	}
	if out := decodeBody(t, rec); out["email"] != "foo@bar.baz" {
		t.Fatalf("unexpected /me body: %v", out)
	}
}

func TestMeApplicationRedirects(t *testing.T) {
	router, _ := newTestServer(t)

	if rec := doJSON(router, http.MethodGet, "/me/application", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous should 401, got %d", rec.Code)
	}

	cookies := signUp(t, router, "foo@bar.baz")
	rec := doJSON(router, http.MethodGet, "/me/application", "", cookies)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if location := rec.Header().Get("Location"); !strings.HasSuffix(location, "/application") {
		t.Fatalf("unexpected redirect target %q", location)
	}
}

func TestApplicationLifecycle(t *testing.T) {
	router, _ := newTestServer(t)
	cookies := signUp(t, router, "ada@bar.baz")

	// partial update creates the application lazily
	rec := doJSON(router, http.MethodPut, "/me/application", `{"firstName":"Ada"}`, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("partial update should 200, got %d %s", rec.Code, rec.Body.String())
	}
	created := decodeBody(t, rec)
	if created["firstName"] != "Ada" || created["stage"] != "unfinished" {
		t.Fatalf("unexpected application: %v", created)
	}

	// finish attempt with fields missing: 400 naming every empty field
	rec = doJSON(router, http.MethodPut, "/me/application", `{"finished":true,"firstName":"Ada"}`, cookies)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("incomplete finish should 400, got %d %s", rec.Code, rec.Body.String())
	}
	out := decodeBody(t, rec)
	missing, _ := out["errors"].([]any)
	found := false
	for _, field := range missing {
		if field == "lastName" {
			found = true
		}
	}
	if !found {
		t.Fatalf("errors should contain lastName, got %v", out)
	}

	// complete and finish
	rec = doJSON(router, http.MethodPut, "/me/application", completeApplication, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("full update should 200, got %d %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(router, http.MethodPut, "/me/application", `{"finished":true}`, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("finish should 200, got %d %s", rec.Code, rec.Body.String())
	}
	finished := decodeBody(t, rec)
	if finished["finishedAt"] == nil {
		t.Fatalf("finishedAt should be stamped: %v", finished)
	}
	if finished["stage"] != "finished" {
		t.Fatalf("stage should be finished: %v", finished)
	}
	if finished["dateOfBirth"] != "1996-12-10" {
		t.Fatalf("dates must serialize as YYYY-MM-DD, got %v", finished["dateOfBirth"])
	}

	// canonical read includes the tech preference map
	userID := int(created["userId"].(float64))
	rec = doJSON(router, http.MethodGet, fmt.Sprintf("/users/%d/application", userID), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get should 200, got %d", rec.Code)
	}
	full := decodeBody(t, rec)
	if _, ok := full["techPreferences"].(map[string]any); !ok {
		t.Fatalf("response should nest techPreferences, got %v", full)
	}
}

func TestApplicationNotFound(t *testing.T) {
	router, _ := newTestServer(t)
	if rec := doJSON(router, http.MethodGet, "/users/9999/application", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing application should 404, got %d", rec.Code)
	}
}

func TestApplicationRejectsBadEnums(t *testing.T) {
	router, _ := newTestServer(t)
	cookies := signUp(t, router, "ada@bar.baz")

	rec := doJSON(router, http.MethodPut, "/me/application", `{"gender":"robot"}`, cookies)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad enum should 400, got %d", rec.Code)
	}
	out := decodeBody(t, rec)
	fields, _ := out["errors"].([]any)
	if len(fields) != 1 || fields[0] != "gender" {
		t.Fatalf("validation should name the gender field, got %v", out)
	}
}

func TestTechPreferencesEndpoint(t *testing.T) {
	router, _ := newTestServer(t)
	cookies := signUp(t, router, "ada@bar.baz")

	// no application yet: precondition surfaced as a client error
	rec := doJSON(router, http.MethodPut, "/me/application/techpreferences", `{"go":3}`, cookies)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing application should 400, got %d %s", rec.Code, rec.Body.String())
	}

	doJSON(router, http.MethodPut, "/me/application", `{"firstName":"Ada"}`, cookies)

	rec = doJSON(router, http.MethodPut, "/me/application/techpreferences", `{"go":3,"python":1}`, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("write should 200, got %d %s", rec.Code, rec.Body.String())
	}

	// out-of-range preference is rejected before any write
	rec = doJSON(router, http.MethodPut, "/me/application/techpreferences", `{"haskell":9}`, cookies)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad preference should 400, got %d", rec.Code)
	}

	// partial second write returns the full map
	rec = doJSON(router, http.MethodPut, "/me/application/techpreferences", `{"go":2}`, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("second write should 200, got %d", rec.Code)
	}
	out := decodeBody(t, rec)
	if out["go"] != float64(2) || out["python"] != float64(1) {
		t.Fatalf("expected the full preference map, got %v", out)
	}
}

// promoteToMatcher flips an account to the staff role directly in storage.
func promoteToMatcher(t *testing.T, db *gorm.DB, email string) {
	t.Helper()
	if err := db.Model(&models.User{}).Where("email = ?", email).Update("role", models.RoleMatcher).Error; err != nil {
		t.Fatalf("promote matcher: %v", err)
	}
}

func TestStaffWorkflow(t *testing.T) {
	router, db := newTestServer(t)

	applicantCookies := signUp(t, router, "ada@bar.baz")
	doJSON(router, http.MethodPut, "/me/application", completeApplication, applicantCookies)
	doJSON(router, http.MethodPut, "/me/application", `{"finished":true}`, applicantCookies)

	// applicants cannot reach staff routes
	if rec := doJSON(router, http.MethodGet, "/applications", "", applicantCookies); rec.Code != http.StatusForbidden {
		t.Fatalf("applicant on staff route should 403, got %d", rec.Code)
	}

	signUp(t, router, "staff@bar.baz")
	promoteToMatcher(t, db, "staff@bar.baz")
	rec := doJSON(router, http.MethodPost, "/sessions", `{"email":"staff@bar.baz","password":"foobar"}`, nil)
	matcherCookies := rec.Result().Cookies()

	rec = doJSON(router, http.MethodGet, "/applications?stage=finished", "", matcherCookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("list should 200, got %d %s", rec.Code, rec.Body.String())
	}
	listing := decodeBody(t, rec)
	apps, _ := listing["applications"].([]any)
	if len(apps) != 1 {
		t.Fatalf("expected one finished application, got %v", listing)
	}
	appID := int(apps[0].(map[string]any)["id"].(float64))

	// shortlist: stage-changing event
	rec = doJSON(router, http.MethodPost, fmt.Sprintf("/applications/%d/events", appID), `{"type":"shortlisted","payload":{"note":"strong"}}`, matcherCookies)
	if rec.Code != http.StatusCreated {
		t.Fatalf("event should 201, got %d %s", rec.Code, rec.Body.String())
	}
	event := decodeBody(t, rec)
	if event["type"] != "shortlisted" || event["label"] != "shortlisted" {
		t.Fatalf("unexpected event: %v", event)
	}

	// illegal jump is rejected
	rec = doJSON(router, http.MethodPost, fmt.Sprintf("/applications/%d/events", appID), `{"type":"signedContract"}`, matcherCookies)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("illegal transition should 400, got %d", rec.Code)
	}

	// feed shows the shortlist with its display label
	rec = doJSON(router, http.MethodGet, fmt.Sprintf("/applications/%d/events", appID), "", matcherCookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("feed should 200, got %d", rec.Code)
	}
	feed := decodeBody(t, rec)
	eventsList, _ := feed["events"].([]any)
	if len(eventsList) != 1 {
		t.Fatalf("expected one event, got %v", feed)
	}

	// companies: staff create, applicant read and choose
	rec = doJSON(router, http.MethodPost, "/companies", `{"name":"Monzo","website":"https://monzo.com"}`, matcherCookies)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create company should 201, got %d %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(router, http.MethodGet, "/companies", "", applicantCookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("list companies should 200, got %d", rec.Code)
	}
	rec = doJSON(router, http.MethodPut, "/me/companypreferences", `{"firstChoice":"Monzo"}`, applicantCookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("company preferences should 200, got %d %s", rec.Code, rec.Body.String())
	}

	// the applicant is now ready to match
	rec = doJSON(router, http.MethodGet, "/applications?stage=readyToMatch", "", matcherCookies)
	listing = decodeBody(t, rec)
	apps, _ = listing["applications"].([]any)
	if len(apps) != 1 {
		t.Fatalf("expected the applicant in readyToMatch, got %v", listing)
	}
}
