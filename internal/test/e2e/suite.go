// Package e2e exercises the full query service stack: configuration file,
// document loading, and the HTTP query endpoint.
package e2e

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/sjonq/sjonq-go/internal/app/config"
	"github.com/sjonq/sjonq-go/internal/app/loader"
	"github.com/sjonq/sjonq-go/internal/app/service"
	"github.com/sjonq/sjonq-go/sjonq"
)

const (
	TestServerPort = 8385
	TestTimeout    = 30 * time.Second
)

const testDocument = `{
	"vendor": {
		"name": "Star Trek",
		"items": [
			{"id": 1, "name": "MacBook Pro 13 inch retina", "price": 1350},
			{"id": 2, "name": "MacBook Pro 15 inch retina", "price": 1700},
			{"id": 3, "name": "Sony VAIO", "price": 1200},
			{"id": 4, "name": "Fujitsu", "price": 850},
			{"id": 5, "name": "HP core i5", "price": 850},
			{"id": 6, "name": "HP core i7", "price": 950}
		]
	}
}`

// QueryServiceE2ESuite boots the service against a document on disk and
// talks to it over real HTTP.
type QueryServiceE2ESuite struct {
	suite.Suite
	AppCtx    context.Context
	AppCancel context.CancelFunc
	TempDir   string
	Service   *service.QueryService
	BaseURL   string
}

// SetupSuite prepares the document and configuration files and starts the
// service.
func (s *QueryServiceE2ESuite) SetupSuite() {
	tempDir, err := os.MkdirTemp("", "sjonqd-e2e-*")
	s.Require().NoError(err, "Failed to create temp directory")
	s.TempDir = tempDir

	docPath := filepath.Join(s.TempDir, "products.json")
	s.Require().NoError(os.WriteFile(docPath, []byte(testDocument), 0644))

	configPath := filepath.Join(s.TempDir, "sjonqd.toml")
	configContent := fmt.Sprintf(`[server]
listen_addr = "127.0.0.1:%d"

[document]
uri = %q
`, TestServerPort, docPath)
	s.Require().NoError(os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := config.Load(configPath)
	s.Require().NoError(err, "Failed to load configuration")

	content, err := loader.Fetch(cfg.Document.URI, cfg.Document.Charset)
	s.Require().NoError(err, "Failed to fetch document")

	base, err := sjonq.NewBytes(content, sjonq.WithSeparator(cfg.Document.Separator))
	s.Require().NoError(err, "Failed to parse document")

	s.Service = service.NewQueryService(cfg, base, zap.NewNop())
	s.AppCtx, s.AppCancel = context.WithCancel(context.Background())
	s.Require().NoError(s.Service.Start(s.AppCtx))

	s.BaseURL = fmt.Sprintf("http://127.0.0.1:%d", TestServerPort)
	s.waitForServiceToStart()
}

// TearDownSuite stops the service and removes the temp directory.
func (s *QueryServiceE2ESuite) TearDownSuite() {
	if s.Service != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Service.Shutdown(ctx)
	}
	if s.AppCancel != nil {
		s.AppCancel()
	}
	if s.TempDir != "" {
		os.RemoveAll(s.TempDir)
	}
}

func (s *QueryServiceE2ESuite) waitForServiceToStart() {
	client := &http.Client{Timeout: 5 * time.Second}

	maxRetries := 20
	retryDelay := 250 * time.Millisecond

	for i := 0; i < maxRetries; i++ {
		resp, err := client.Get(s.BaseURL + "/healthz")
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			return
		}
		if resp != nil {
			resp.Body.Close()
		}
		time.Sleep(retryDelay)
	}

	s.FailNow("Service failed to start within the expected time")
}

// postQuery sends a query description to the service and returns the
// response with its body read out.
func (s *QueryServiceE2ESuite) postQuery(body string) (*http.Response, string) {
	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/query", strings.NewReader(body))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := (&http.Client{Timeout: TestTimeout}).Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp, string(raw)
}

// RunE2ETests runs the given suites.
func RunE2ETests(t *testing.T, testCases ...suite.TestingSuite) {
	for _, testCase := range testCases {
		suite.Run(t, testCase)
	}
}
