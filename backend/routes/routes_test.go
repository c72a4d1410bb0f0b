package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"lms/backend/certificates"
	"lms/backend/config"
	"lms/backend/middleware"
	"lms/backend/models"
	"lms/backend/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct{}

func (fakeGenerator) GeneratePractice(_ context.Context, content string) ([]models.PracticeQuestion, error) {
	return []models.PracticeQuestion{{
		Question: "What is this lesson about?",
		Options:  []string{content, "b", "c", "d"},
		Answer:   content,
	}}, nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	renderer, err := certificates.NewRenderer()
	require.NoError(t, err)

	log := testutil.Logger(t)
	app := fiber.New()
	app.Use(middleware.LoggingMiddleware(log))
	SetupRoutes(app, Deps{
		DB:        testutil.DB(t),
		Cfg:       &config.Config{JWTSecret: "test-secret"},
		Log:       log,
		Generator: fakeGenerator{},
		Renderer:  renderer,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode(t *testing.T, raw []byte) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

func register(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	status, body := call(t, app, "POST", "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	return decode(t, body)["token"].(string)
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "ada")

	status, _ := call(t, app, "POST", "/api/auth/register", "", map[string]string{"username": "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, body := call(t, app, "POST", "/api/auth/login", "", map[string]string{"username": "ada", "password": "secret123"})
	require.Equal(t, http.StatusOK, status)
	token := decode(t, body)["token"].(string)

	status, _ = call(t, app, "POST", "/api/auth/login", "", map[string]string{"username": "ada", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = call(t, app, "GET", "/api/user/profile", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ada", decode(t, body)["username"])

	status, _ = call(t, app, "GET", "/api/user/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLearningJourney(t *testing.T) {
	app := newTestApp(t)
	owner := register(t, app, "owner")
	learner := register(t, app, "learner")

	status, body := call(t, app, "POST", "/api/courses", owner, map[string]string{"title": "Go", "description": "intro"})
	require.Equal(t, http.StatusCreated, status, string(body))
	courseID := uint(decode(t, body)["id"].(float64))
	coursePath := fmt.Sprintf("/api/courses/%d", courseID)

	var lessonIDs []uint
	for _, title := range []string{"Basics", "Channels"} {
		status, body = call(t, app, "POST", coursePath+"/lessons", owner, map[string]string{"title": title, "content": title + " text"})
		require.Equal(t, http.StatusCreated, status, string(body))
		lessonIDs = append(lessonIDs, uint(decode(t, body)["id"].(float64)))
	}
	lessonPath := func(i int) string { return fmt.Sprintf("%s/lessons/%d", coursePath, lessonIDs[i]) }

	status, _ = call(t, app, "POST", coursePath+"/lessons", learner, map[string]string{"title": "nope"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = call(t, app, "PUT", lessonPath(1)+"/quiz", owner, map[string]interface{}{
		"questions": []map[string]interface{}{
			{"text": "unbuffered send blocks?", "choices": []map[string]interface{}{
				{"text": "yes", "is_correct": true},
				{"text": "no"},
			}},
		},
	})
	require.Equal(t, http.StatusOK, status, string(body))
	quiz := decode(t, body)
	question := quiz["questions"].([]interface{})[0].(map[string]interface{})
	choices := question["choices"].([]interface{})
	correct := choices[0].(map[string]interface{})["id"]

	status, _ = call(t, app, "POST", lessonPath(0)+"/complete", learner, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, app, "POST", coursePath+"/enroll", owner, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = call(t, app, "POST", coursePath+"/enroll", learner, nil)
	require.Equal(t, http.StatusCreated, status)
	status, _ = call(t, app, "POST", coursePath+"/enroll", learner, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = call(t, app, "GET", lessonPath(1)+"/quiz", learner, nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, string(body), "is_correct")

	status, body = call(t, app, "POST", lessonPath(0)+"/complete", learner, nil)
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = call(t, app, "POST", coursePath+"/certificate", learner, nil)
	assert.Equal(t, http.StatusPreconditionFailed, status, string(body))

	status, body = call(t, app, "POST", lessonPath(1)+"/quiz", learner, map[string]interface{}{
		"answers": map[string]interface{}{fmt.Sprint(question["id"]): correct},
	})
	require.Equal(t, http.StatusOK, status, string(body))
	verdict := decode(t, body)
	assert.Equal(t, true, verdict["passed"])
	assert.Equal(t, float64(1), verdict["score"])

	status, body = call(t, app, "GET", coursePath+"/progress", learner, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(100), decode(t, body)["progress"])

	status, body = call(t, app, "POST", coursePath+"/certificate", learner, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	certID := decode(t, body)["certificate_id"].(string)
	assert.Len(t, certID, 12)

	status, body = call(t, app, "POST", coursePath+"/certificate", learner, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, certID, decode(t, body)["certificate_id"])

	req := httptest.NewRequest("GET", coursePath+"/certificate", nil)
	req.Header.Set("Authorization", "Bearer "+learner)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	_ = resp.Body.Close()

	status, _ = call(t, app, "POST", coursePath+"/rate", learner, map[string]int{"rating": 9})
	assert.Equal(t, http.StatusBadRequest, status)
	status, body = call(t, app, "POST", coursePath+"/rate", learner, map[string]int{"rating": 5})
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = call(t, app, "GET", "/api/courses?sort=rating", learner, nil)
	require.Equal(t, http.StatusOK, status)
	var listed []map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, float64(5), listed[0]["average_rating"])
	assert.Equal(t, true, listed[0]["is_enrolled"])

	status, _ = call(t, app, "GET", coursePath+"/progress-summary", learner, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, body = call(t, app, "GET", coursePath+"/progress-summary", owner, nil)
	require.Equal(t, http.StatusOK, status)
	var summary []map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &summary))
	require.Len(t, summary, 1)
	assert.Equal(t, "learner", summary[0]["student_name"])
	assert.Equal(t, float64(100), summary[0]["progress"])

	status, body = call(t, app, "GET", coursePath+"/analytics", owner, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, float64(1), decode(t, body)["completed"])

	status, body = call(t, app, "POST", lessonPath(0)+"/generate-practice", learner, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Len(t, decode(t, body)["questions"], 1)

	status, body = call(t, app, "GET", "/api/progress", learner, nil)
	require.Equal(t, http.StatusOK, status)
	var dashboard []map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &dashboard))
	require.Len(t, dashboard, 1)
	assert.Equal(t, true, dashboard[0]["has_certificate"])

	status, _ = call(t, app, "DELETE", coursePath, learner, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = call(t, app, "DELETE", coursePath, owner, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = call(t, app, "GET", coursePath, learner, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestInvalidPathID(t *testing.T) {
	app := newTestApp(t)
	token := register(t, app, "ada")
	status, _ := call(t, app, "GET", "/api/courses/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSwaggerDocIsServed(t *testing.T) {
	app := newTestApp(t)
	status, body := call(t, app, "GET", "/swagger/doc.json", "", nil)
	require.Equal(t, http.StatusOK, status)
	doc := decode(t, body)
	assert.Equal(t, "/api", doc["basePath"])
	assert.Contains(t, doc["paths"], "/courses/{id}/certificate")
}

// Every API route must be described in the generated swagger document.
func TestSwaggerDocCoversRoutes(t *testing.T) {
	app := newTestApp(t)
	status, body := call(t, app, "GET", "/swagger/doc.json", "", nil)
	require.Equal(t, http.StatusOK, status)
	paths, ok := decode(t, body)["paths"].(map[string]interface{})
	require.True(t, ok)

	param := regexp.MustCompile(`:(\w+)`)
	for _, route := range app.GetRoutes(true) {
		if !strings.HasPrefix(route.Path, "/api/") || route.Method == fiber.MethodHead {
			continue
		}
		docPath := param.ReplaceAllString(strings.TrimSuffix(strings.TrimPrefix(route.Path, "/api"), "/"), "{$1}")
		ops, ok := paths[docPath].(map[string]interface{})
		if !assert.True(t, ok, "undocumented path %s", docPath) {
			continue
		}
		assert.Contains(t, ops, strings.ToLower(route.Method), "undocumented %s %s", route.Method, docPath)
	}
}
