package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/mserg12/Major-LocNation/internal/config"

	"github.com/gofiber/fiber/v2"
)

func TestHealthRoute(t *testing.T) {
	s := NewServer(config.Config{JWTSecret: "secret", CookieName: "token", ServerPort: ":0"}, nil, nil)

	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 status")
	}
}

func TestErrorHandlerHidesDetailInProduction(t *testing.T) {
	s := NewServer(config.Config{JWTSecret: "secret", CookieName: "token", Environment: "production"}, nil, nil)
	s.App.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("pool exhausted")
	})

	resp, err := s.App.Test(httptest.NewRequest("GET", "/boom", nil))
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 500 {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}

	raw, _ := io.ReadAll(resp.Body)
	var out map[string]string
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["message"] != "Internal Server Error" {
		t.Fatalf("expected generic message, got %s", raw)
	}
}

func TestErrorHandlerEchoesDetailInDevelopment(t *testing.T) {
	s := NewServer(config.Config{JWTSecret: "secret", CookieName: "token", Environment: "development"}, nil, nil)
	s.App.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("pool exhausted")
	})

	resp, err := s.App.Test(httptest.NewRequest("GET", "/boom", nil))
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 500 {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}

	raw, _ := io.ReadAll(resp.Body)
	var out map[string]string
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["message"] != "pool exhausted" {
		t.Fatalf("expected error detail, got %s", raw)
	}
}

func TestErrorHandlerKeepsFiberStatus(t *testing.T) {
	s := NewServer(config.Config{JWTSecret: "secret", CookieName: "token", Environment: "production"}, nil, nil)
	s.App.Get("/teapot", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})

	resp, err := s.App.Test(httptest.NewRequest("GET", "/teapot", nil))
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != fiber.StatusTeapot {
		t.Fatalf("expected 418, got %d", resp.StatusCode)
	}

	raw, _ := io.ReadAll(resp.Body)
	var out map[string]string
	if err := json.Unmarshal(raw, &out); err != nil || out["message"] != "short and stout" {
		t.Fatalf("unexpected body %s", raw)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	s := NewServer(config.Config{JWTSecret: "secret", CookieName: "token", ServerPort: ":0"}, nil, nil)

	for _, route := range []struct{ method, path string }{
		{"POST", "/posts/"},
		{"GET", "/users/profilePosts"},
		{"GET", "/chats/"},
		{"POST", "/messages/chat-1"},
	} {
		req := httptest.NewRequest(route.method, route.path, nil)
		resp, err := s.App.Test(req)
		if err != nil {
			t.Fatalf("test request %s %s: %v", route.method, route.path, err)
		}
		if resp.StatusCode != 401 {
			t.Fatalf("%s %s: expected 401, got %d", route.method, route.path, resp.StatusCode)
		}
	}
}
