package saved

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func newSavedApp(mock pgxmock.PgxPoolIface) *fiber.App {
	app := fiber.New()
	asUser := func(c *fiber.Ctx) error {
		c.Locals("user_id", "user-1")
		return c.Next()
	}
	RegisterRoutes(app.Group("/users"), NewService(mock), asUser)
	return app
}

func TestSaveHandlerToggles(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM saved_posts`).
		WithArgs("user-1", "post-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`INSERT INTO saved_posts`).
		WithArgs("user-1", "post-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	app := newSavedApp(mock)
	body, _ := json.Marshal(map[string]string{"postId": "post-1"})
	req := httptest.NewRequest(http.MethodPost, "/users/save", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("save status: %v", err)
	}

	raw, _ := io.ReadAll(resp.Body)
	var out struct {
		Message string `json:"message"`
		IsSaved bool   `json:"isSaved"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.IsSaved || out.Message != "Post saved" {
		t.Fatalf("unexpected body %s", raw)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSaveHandlerMissingPostID(t *testing.T) {
	app := newSavedApp(nil)
	req := httptest.NewRequest(http.MethodPost, "/users/save", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request")
	}
}

func TestSaveHandlerError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM saved_posts`).
		WithArgs("user-1", "post-1").
		WillReturnError(errSaved)

	app := newSavedApp(mock)
	body, _ := json.Marshal(map[string]string{"postId": "post-1"})
	req := httptest.NewRequest(http.MethodPost, "/users/save", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected save error")
	}
}

func TestProfilePostsHandler(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM posts p\s+WHERE p.user_id`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(postCols).AddRow(postRow("post-1", "user-1")...))
	mock.ExpectQuery(`FROM saved_posts sp`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(postCols))

	app := newSavedApp(mock)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/users/profilePosts", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("profile posts status: %v", err)
	}

	raw, _ := io.ReadAll(resp.Body)
	var out struct {
		UserPosts  []map[string]any `json:"userPosts"`
		SavedPosts []map[string]any `json:"savedPosts"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.UserPosts) != 1 || len(out.SavedPosts) != 0 {
		t.Fatalf("unexpected body %s", raw)
	}
	if out.SavedPosts == nil {
		t.Fatal("savedPosts must encode as an empty array")
	}
}

func TestProfilePostsHandlerError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM posts p\s+WHERE p.user_id`).
		WithArgs("user-1").
		WillReturnError(errSaved)

	app := newSavedApp(mock)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/users/profilePosts", nil))
	if err != nil || resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected profile posts error")
	}
}
