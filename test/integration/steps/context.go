// Package steps provides step definitions for the ledger feature files.
package steps

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"

	"github.com/yafera/herdbook/internal/config"
	"github.com/yafera/herdbook/internal/repository/sheets"
	"github.com/yafera/herdbook/internal/server/handlers"
	"github.com/yafera/herdbook/internal/server/router"
	"github.com/yafera/herdbook/internal/service/commands"
	"github.com/yafera/herdbook/internal/service/reporting"
	"github.com/yafera/herdbook/internal/service/whatsapp"
	"github.com/yafera/herdbook/internal/store"
	whatsappclient "github.com/yafera/herdbook/pkg/clients/whatsapp"
)

const verifyToken = "herdbook-verify"

// TestContext holds the state of one scenario.
type TestContext struct {
	server       *httptest.Server
	meta         *fakeMeta
	repo         *sheets.MemoryRepository
	response     *http.Response
	responseBody []byte
}

type contextKey struct{}

// GetTestContext retrieves the TestContext from context.
func GetTestContext(ctx context.Context) *TestContext {
	if tc, ok := ctx.Value(contextKey{}).(*TestContext); ok {
		return tc
	}
	return nil
}

// SetTestContext stores the TestContext in context.
func SetTestContext(ctx context.Context, tc *TestContext) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// fakeMeta records the messages sent to the WhatsApp Cloud API.
type fakeMeta struct {
	server *httptest.Server

	mu   sync.Mutex
	sent map[string][]string
}

func newFakeMeta() *fakeMeta {
	m := &fakeMeta{sent: make(map[string][]string)}
	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			To   string `json:"to"`
			Text struct {
				Body string `json:"body"`
			} `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		m.mu.Lock()
		m.sent[body.To] = append(m.sent[body.To], body.Text.Body)
		m.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.test"}]}`))
	}))
	return m
}

func (m *fakeMeta) messagesTo(number string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent[number]...)
}

// InitializeTestSuite sets up resources before any scenarios run.
func InitializeTestSuite(ctx *godog.TestSuiteContext) {
	ctx.BeforeSuite(func() {
		gin.SetMode(gin.TestMode)
	})
}

// InitializeScenario builds a fresh server over an empty in-memory
// spreadsheet for every scenario and registers the step definitions.
func InitializeScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc := &TestContext{
			meta: newFakeMeta(),
			repo: sheets.NewMemoryRepository(),
		}

		waCfg := config.WhatsAppConfig{
			AccessToken:   "test-token",
			PhoneNumberID: "1000",
			VerifyToken:   verifyToken,
			BaseURL:       tc.meta.server.URL,
			APIVersion:    "v20.0",
		}

		st := store.New(tc.repo, store.DefaultTables, time.UTC, nil)
		reports := reporting.NewService(st, nil, nil)
		dispatcher := commands.NewService(st, reports, time.UTC, nil)
		messaging := whatsapp.NewMetaWhatsAppService(waCfg, whatsappclient.NewClient(waCfg), dispatcher, nil)

		engine := router.New(
			handlers.NewLedgerHandler(st, reports, time.UTC, nil),
			handlers.NewWebhookHandler(messaging, nil),
			nil,
		)
		tc.server = httptest.NewServer(engine)

		return SetTestContext(ctx, tc), nil
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if tc := GetTestContext(ctx); tc != nil {
			tc.server.Close()
			tc.meta.server.Close()
		}
		return ctx, nil
	})

	registerAPISteps(ctx)
	registerLedgerSteps(ctx)
	registerWhatsAppSteps(ctx)
}
