//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	tc "github.com/testcontainers/testcontainers-go/modules/compose"
	"github.com/testcontainers/testcontainers-go/wait"
)

// jwtSecret must match JWT_SECRET in docker-compose.test.yml.
const jwtSecret = "integration-test-secret"

var (
	baseURL    string
	mailURL    string
	httpClient *http.Client
)

// Response types — defined locally to keep tests truly black-box (no internal imports).

type messageResponse struct {
	Message string `json:"message"`
	OrderID string `json:"orderID"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type orderRequest struct {
	Items []itemRequest `json:"items"`
}

type itemRequest struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// mailpitMessages mirrors the mailpit /api/v1/messages listing.
type mailpitMessages struct {
	Total    int `json:"total"`
	Messages []struct {
		Subject string `json:"Subject"`
		To      []struct {
			Address string `json:"Address"`
		} `json:"To"`
	} `json:"messages"`
}

func TestMain(m *testing.M) {
	os.Exit(testMain(m))
}

func testMain(m *testing.M) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	dc, err := tc.NewDockerCompose("docker-compose.test.yml")
	if err != nil {
		log.Fatalf("compose init: %v", err)
	}

	// Start dynamodb-local + mailpit + api, wait for API readiness.
	err = dc.
		WaitForService("api", wait.ForHTTP("/readyz").WithPort("8080/tcp")).
		Up(ctx, tc.Wait(true))
	if err != nil {
		log.Fatalf("compose up: %v", err)
	}

	apiContainer, err := dc.ServiceContainer(ctx, "api")
	if err != nil {
		log.Fatalf("api container: %v", err)
	}

	host, err := apiContainer.Host(ctx)
	if err != nil {
		log.Fatalf("host: %v", err)
	}

	apiPort, err := apiContainer.MappedPort(ctx, "8080/tcp")
	if err != nil {
		log.Fatalf("api port: %v", err)
	}
	baseURL = fmt.Sprintf("http://%s:%s", host, apiPort.Port())

	mailContainer, err := dc.ServiceContainer(ctx, "mailpit")
	if err != nil {
		log.Fatalf("mailpit container: %v", err)
	}
	mailPort, err := mailContainer.MappedPort(ctx, "8025/tcp")
	if err != nil {
		log.Fatalf("mailpit port: %v", err)
	}
	mailURL = fmt.Sprintf("http://%s:%s", host, mailPort.Port())

	httpClient = &http.Client{Timeout: 10 * time.Second}
	log.Printf("API at %s, mailpit at %s", baseURL, mailURL)

	// Provision the DynamoDB tables by running create-tables inside the
	// already-running API container (the image includes the binary).
	exitCode, output, err := apiContainer.Exec(ctx, []string{
		"/app/create-tables",
		"--endpoint=http://dynamodb:8000",
	})
	if err != nil {
		log.Fatalf("create-tables exec: %v", err)
	}
	if exitCode != 0 {
		out, _ := io.ReadAll(output)
		log.Fatalf("create-tables exited %d: %s", exitCode, out)
	}
	log.Printf("tables created")

	result := m.Run()

	if err := dc.Down(context.Background(), tc.RemoveOrphans(true)); err != nil {
		log.Printf("compose down: %v", err)
	}

	return result
}

// HTTP helpers.

func signToken(t *testing.T, email string) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
	}).SignedString([]byte(jwtSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func doPost(t *testing.T, path string, body any, authz string) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, baseURL+path, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}

	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	return v
}

func fetchMail(t *testing.T) mailpitMessages {
	t.Helper()

	resp, err := httpClient.Get(mailURL + "/api/v1/messages")
	if err != nil {
		t.Fatalf("list mail: %v", err)
	}
	defer resp.Body.Close()

	return decodeJSON[mailpitMessages](t, resp)
}
