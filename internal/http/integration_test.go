package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"sync"
	"testing"
	"time"

	"mindhaven-backend-go/internal/config"
	"mindhaven-backend-go/internal/db"
	"mindhaven-backend-go/internal/migrations"
	"mindhaven-backend-go/internal/services"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
)

var (
	testDB     *sqlx.DB
	testServer *Server
	testAPI    *httptest.Server
)

func TestMain(m *testing.M) {
	_ = godotenv.Load("../../.env.local")
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		fmt.Println("DATABASE_URL not set, skipping integration tests")
		os.Exit(0)
	}

	var err error
	testDB, err = db.Open(dsn)
	if err != nil {
		fmt.Printf("db open: %v\n", err)
		os.Exit(1)
	}
	if err := migrations.Apply(testDB, "../../migrations"); err != nil {
		fmt.Printf("migrations: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Config{
		DatabaseURL:       dsn,
		JWTSecret:         "integration-test-secret",
		JWTIssuer:         "mindhaven-test",
		AccessTTLSeconds:  900,
		RefreshTTLSeconds: 86400,
		MediaStoragePath:  os.TempDir(),
	}
	hub := services.NewMetricsHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	testServer = NewServer(testDB, cfg, hub)
	testAPI = httptest.NewServer(testServer.Router(ctx))

	code := m.Run()

	testAPI.Close()
	cancel()
	_ = testDB.Close()
	os.Exit(code)
}

func postJSON(t *testing.T, path string, payload interface{}, token string) (*http.Response, map[string]interface{}) {
	t.Helper()
	return doJSON(t, http.MethodPost, path, payload, token)
}

func doJSON(t *testing.T, method, path string, payload interface{}, token string) (*http.Response, map[string]interface{}) {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	req, err := http.NewRequest(method, testAPI.URL+path, &body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var decoded map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, _, err := testServer.Tokens.CreateAccessToken(uuid.NewString(), "ops@test.local", services.RoleAdmin)
	if err != nil {
		t.Fatalf("admin token: %v", err)
	}
	return token
}

func createCategory(t *testing.T) string {
	t.Helper()
	id := uuid.NewString()
	_, err := testDB.Exec(`INSERT INTO workshop_categories (id, title, description) VALUES ($1,$2,$3)`,
		id, "Category "+id[:8], "integration fixture")
	if err != nil {
		t.Fatalf("insert category: %v", err)
	}
	return id
}

func createWorkshop(t *testing.T, categoryID, status string, capacity int, eventDate time.Time) string {
	t.Helper()
	id := uuid.NewString()
	_, err := testDB.Exec(`
INSERT INTO workshops (id, title, description, event_date, event_time, location, capacity, category_id, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`, id, "Workshop "+id[:8], "integration fixture", eventDate, "10:00", "Room 1", capacity, categoryID, status)
	if err != nil {
		t.Fatalf("insert workshop: %v", err)
	}
	return id
}

func createSession(t *testing.T, categoryID, status string, eventDate time.Time) string {
	t.Helper()
	id := uuid.NewString()
	_, err := testDB.Exec(`
INSERT INTO counseling_sessions (id, title, description, event_date, event_time, location, category_id, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`, id, "Session "+id[:8], "integration fixture", eventDate, "14:00", "Room 2", categoryID, status)
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}
	return id
}

func TestSignupLoginAndMe(t *testing.T) {
	email := fmt.Sprintf("it-%s@test.local", uuid.NewString()[:8])

	resp, body := postJSON(t, "/api/auth/signup", map[string]string{
		"name": "Integration Tester", "email": email, "password": "pass1234",
	}, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup: status = %d, body = %v", resp.StatusCode, body)
	}

	resp, body = postJSON(t, "/api/auth/signup", map[string]string{
		"name": "Integration Tester", "email": email, "password": "pass1234",
	}, "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("duplicate signup: status = %d, want 400", resp.StatusCode)
	}

	resp, body = postJSON(t, "/api/auth/login", map[string]string{
		"email": email, "password": "pass1234",
	}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: status = %d, body = %v", resp.StatusCode, body)
	}
	access, _ := body["accessToken"].(string)
	if access == "" {
		t.Fatal("login returned no access token")
	}
	if body["redirectUrl"] != "/user/dashboard" {
		t.Errorf("redirectUrl = %v, want /user/dashboard", body["redirectUrl"])
	}

	resp, body = doJSON(t, http.MethodGet, "/api/me", nil, access)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me: status = %d, body = %v", resp.StatusCode, body)
	}
	user, _ := body["user"].(map[string]interface{})
	if user == nil || user["email"] != email {
		t.Errorf("me user = %v, want email %s", body["user"], email)
	}

	resp, _ = postJSON(t, "/api/auth/login", map[string]string{
		"email": email, "password": "wrong-pass",
	}, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad password login: status = %d, want 401", resp.StatusCode)
	}
}

func TestWorkshopCapacityAndDuplicates(t *testing.T) {
	categoryID := createCategory(t)
	futureDate := time.Now().UTC().AddDate(0, 0, 14)
	workshopID := createWorkshop(t, categoryID, services.StatusApproved, 1, futureDate)

	register := func(name, email string) (*http.Response, map[string]interface{}) {
		return postJSON(t, "/api/workshops/"+workshopID+"/register",
			map[string]string{"name": name, "email": email}, "")
	}

	resp, body := register("First Person", "first@test.local")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first registration: status = %d, body = %v", resp.StatusCode, body)
	}

	resp, body = register("First Person", "FIRST@test.local")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("duplicate registration: status = %d, want 400", resp.StatusCode)
	}
	if body["message"] != "You are already registered for this workshop." {
		t.Errorf("duplicate registration message = %v", body["message"])
	}

	resp, body = register("Second Person", "second@test.local")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("over-capacity registration: status = %d, want 400", resp.StatusCode)
	}
	if body["message"] != "This workshop is fully booked." {
		t.Errorf("over-capacity message = %v", body["message"])
	}

	resp, _ = doJSON(t, http.MethodDelete, "/api/workshops/"+workshopID+"/register",
		map[string]string{"email": "first@test.local"}, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("cancel registration: status = %d, want 204", resp.StatusCode)
	}

	resp, body = register("Second Person", "second@test.local")
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("registration after cancel: status = %d, body = %v", resp.StatusCode, body)
	}
}

// Capacity must hold when registrations land at the same time, not just in
// sequence. Eight parallel requests against two seats should yield exactly
// two created registrations.
func TestWorkshopCapacityUnderConcurrentLoad(t *testing.T) {
	categoryID := createCategory(t)
	futureDate := time.Now().UTC().AddDate(0, 0, 10)
	workshopID := createWorkshop(t, categoryID, services.StatusApproved, 2, futureDate)

	const attempts = 8
	codes := make(chan int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload, _ := json.Marshal(map[string]string{
				"name":  fmt.Sprintf("Racer %d", i),
				"email": fmt.Sprintf("racer-%d@test.local", i),
			})
			resp, err := http.Post(testAPI.URL+"/api/workshops/"+workshopID+"/register",
				"application/json", bytes.NewReader(payload))
			if err != nil {
				codes <- 0
				return
			}
			resp.Body.Close()
			codes <- resp.StatusCode
		}(i)
	}
	wg.Wait()
	close(codes)

	created := 0
	for code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusBadRequest:
		default:
			t.Errorf("unexpected status %d", code)
		}
	}
	if created != 2 {
		t.Errorf("created = %d registrations, want 2", created)
	}

	var stored int
	if err := testDB.Get(&stored, `SELECT count(*) FROM workshop_registrations WHERE workshop_id = $1`, workshopID); err != nil {
		t.Fatalf("count registrations: %v", err)
	}
	if stored != 2 {
		t.Errorf("stored = %d registrations, want 2", stored)
	}
}

func TestWorkshopRegistrationVisibility(t *testing.T) {
	categoryID := createCategory(t)
	futureDate := time.Now().UTC().AddDate(0, 0, 7)
	pastDate := time.Now().UTC().AddDate(0, 0, -7)

	pendingID := createWorkshop(t, categoryID, services.StatusPending, 10, futureDate)
	pastID := createWorkshop(t, categoryID, services.StatusApproved, 10, pastDate)

	for _, workshopID := range []string{pendingID, pastID} {
		resp, _ := postJSON(t, "/api/workshops/"+workshopID+"/register",
			map[string]string{"name": "Someone", "email": "someone@test.local"}, "")
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("workshop %s: register status = %d, want 404", workshopID, resp.StatusCode)
		}
	}
}

func TestSessionEditResetsApprovedStatus(t *testing.T) {
	categoryID := createCategory(t)
	futureDate := time.Now().UTC().AddDate(0, 0, 21)
	sessionID := createSession(t, categoryID, services.StatusApproved, futureDate)
	token := adminToken(t)

	resp, body := doJSON(t, http.MethodPut, "/api/sessions/"+sessionID, map[string]string{
		"title":       "Edited Session",
		"description": "updated fixture",
		"date":        futureDate.Format("2006-01-02"),
		"time":        "15:00",
		"location":    "Room 3",
		"categoryId":  categoryID,
	}, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update session: status = %d, body = %v", resp.StatusCode, body)
	}
	if body["status"] != services.StatusPending {
		t.Errorf("status after edit = %v, want %s", body["status"], services.StatusPending)
	}
}

func TestWorkshopEditKeepsApprovedStatus(t *testing.T) {
	categoryID := createCategory(t)
	futureDate := time.Now().UTC().AddDate(0, 0, 21)
	workshopID := createWorkshop(t, categoryID, services.StatusApproved, 10, futureDate)
	token := adminToken(t)

	resp, body := doJSON(t, http.MethodPut, "/api/workshops/"+workshopID, map[string]interface{}{
		"title":       "Edited Workshop",
		"description": "updated fixture",
		"date":        futureDate.Format("2006-01-02"),
		"time":        "11:00",
		"location":    "Room 4",
		"capacity":    12,
		"categoryId":  categoryID,
	}, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update workshop: status = %d, body = %v", resp.StatusCode, body)
	}
	if body["status"] != services.StatusApproved {
		t.Errorf("status after edit = %v, want %s", body["status"], services.StatusApproved)
	}
}

func TestRoleGatesOnStaffRoutes(t *testing.T) {
	userToken, _, err := testServer.Tokens.CreateAccessToken(uuid.NewString(), "plain@test.local", services.RoleUser)
	if err != nil {
		t.Fatalf("user token: %v", err)
	}

	resp, _ := doJSON(t, http.MethodGet, "/api/workshops/", nil, userToken)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("user on staff list: status = %d, want 403", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodGet, "/api/staff/dashboard/stats", nil, userToken)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("user on dashboard stats: status = %d, want 403", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodGet, "/api/staff/dashboard/stats", nil, adminToken(t))
	if resp.StatusCode != http.StatusOK {
		t.Errorf("admin on dashboard stats: status = %d, want 200", resp.StatusCode)
	}
}

func TestMoodLoggingRateLimit(t *testing.T) {
	email := fmt.Sprintf("mood-%s@test.local", uuid.NewString()[:8])
	resp, body := postJSON(t, "/api/auth/signup", map[string]string{
		"name": "Mood Tester", "email": email, "password": "pass1234",
	}, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup: status = %d, body = %v", resp.StatusCode, body)
	}
	_, body = postJSON(t, "/api/auth/login", map[string]string{
		"email": email, "password": "pass1234",
	}, "")
	token, _ := body["accessToken"].(string)
	if token == "" {
		t.Fatal("login returned no access token")
	}

	resp, body = postJSON(t, "/api/me/mood", map[string]string{"mood": "calm"}, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first mood log: status = %d, body = %v", resp.StatusCode, body)
	}

	resp, body = postJSON(t, "/api/me/mood", map[string]string{"mood": "anxious"}, token)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("second mood log: status = %d, want 400", resp.StatusCode)
	}
	hours, _ := body["hoursUntilNext"].(float64)
	if hours < 1 || hours > 24 {
		t.Errorf("hoursUntilNext = %v, want within [1,24]", body["hoursUntilNext"])
	}

	resp, body = doJSON(t, http.MethodGet, "/api/me/mood", nil, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("mood check: status = %d", resp.StatusCode)
	}
	if canLog, _ := body["canLog"].(bool); canLog {
		t.Error("mood check reports canLog right after logging")
	}
}

func TestWorkshopImageUpload(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Disposition", `form-data; name="file"; filename="banner.png"`)
	partHeader.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(partHeader)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write([]byte("not-really-a-png")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	_ = mw.Close()

	req, err := http.NewRequest(http.MethodPost, testAPI.URL+"/api/workshops/image", &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload: status = %d, want 201", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if body["assetId"] == "" {
		t.Fatal("upload returned no asset id")
	}

	var bucket string
	if err := testDB.Get(&bucket, `SELECT bucket FROM media_assets WHERE id = $1`, body["assetId"]); err != nil {
		t.Fatalf("load asset row: %v", err)
	}
	if bucket != services.BucketWorkshops {
		t.Errorf("bucket = %q, want %q", bucket, services.BucketWorkshops)
	}

	contentResp, err := http.Get(testAPI.URL + body["url"])
	if err != nil {
		t.Fatalf("fetch content: %v", err)
	}
	contentResp.Body.Close()
	if contentResp.StatusCode != http.StatusOK {
		t.Errorf("fetch content: status = %d, want 200", contentResp.StatusCode)
	}
}

func TestContactMessageFlow(t *testing.T) {
	resp, body := postJSON(t, "/api/contact", map[string]string{
		"name":    "Visitor",
		"email":   "visitor@test.local",
		"message": "Just checking in.",
	}, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create contact: status = %d, body = %v", resp.StatusCode, body)
	}

	resp, _ = doJSON(t, http.MethodGet, "/api/contact", nil, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("anonymous contact list: status = %d, want 401", resp.StatusCode)
	}

	req, err := http.NewRequest(http.MethodGet, testAPI.URL+"/api/contact", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	listResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("admin contact list: %v", err)
	}
	defer listResp.Body.Close()
	if listResp.StatusCode != http.StatusOK {
		t.Errorf("admin contact list: status = %d, want 200", listResp.StatusCode)
	}
	var listBody struct {
		Items []ContactMessageDTO `json:"items"`
	}
	if err := json.NewDecoder(listResp.Body).Decode(&listBody); err != nil {
		t.Fatalf("decode contact list: %v", err)
	}
	if len(listBody.Items) == 0 {
		t.Error("contact list is empty after submit")
	}
}
