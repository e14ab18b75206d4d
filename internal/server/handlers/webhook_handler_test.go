package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yafera/herdbook/internal/domain/models"
)

type stubMessaging struct {
	handleErr error
	sendErr   error
	payloads  []models.WebhookPayload
}

func (s *stubMessaging) VerifyWebhookToken(mode, token, challenge string) (string, error) {
	if token != "secret" {
		return "", errors.New("invalid verify token")
	}
	return challenge, nil
}

func (s *stubMessaging) HandleWebhook(_ context.Context, payload models.WebhookPayload) error {
	s.payloads = append(s.payloads, payload)
	return s.handleErr
}

func (s *stubMessaging) SendOutbound(context.Context, models.OutboundMessageRequest) error {
	return s.sendErr
}

func webhookEngine(svc *stubMessaging) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewWebhookHandler(svc, nil)
	r := gin.New()
	r.GET("/webhook", h.Verify)
	r.POST("/webhook", h.Receive)
	r.POST("/send-message", h.SendMessage)
	return r
}

func TestWebhookHandler_Verify(t *testing.T) {
	r := webhookEngine(&stubMessaging{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=secret&hub.challenge=abc", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "abc" {
		t.Errorf("verify = %d %q", rec.Code, rec.Body)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=abc", nil))
	if rec.Code != http.StatusForbidden {
		t.Errorf("wrong token status = %d", rec.Code)
	}
}

func TestWebhookHandler_Receive(t *testing.T) {
	body := `{"object":"whatsapp_business_account","entry":[{"changes":[{"value":{"messages":[{"from":"22501","id":"m1","type":"text","text":{"body":"/projets"}}]}}]}]}`

	tests := []struct {
		name      string
		body      string
		handleErr error
		want      int
	}{
		{name: "accepted", body: body, want: http.StatusOK},
		{name: "processing error still acknowledged", body: body, handleErr: errors.New("send failed"), want: http.StatusOK},
		{name: "malformed json", body: `{"entry":`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubMessaging{handleErr: tt.handleErr}
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			webhookEngine(svc).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusOK && svc.payloads[0].Entry[0].Changes[0].Value.Messages[0].Body() != "/projets" {
				t.Errorf("payload not forwarded: %+v", svc.payloads)
			}
		})
	}
}

func TestWebhookHandler_SendMessage(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		sendErr error
		want    int
	}{
		{name: "sent", body: `{"to":"22501","message":"hello"}`, want: http.StatusAccepted},
		{name: "missing message", body: `{"to":"22501"}`, want: http.StatusBadRequest},
		{name: "api failure", body: `{"to":"22501","message":"hello"}`, sendErr: errors.New("401"), want: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/send-message", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			webhookEngine(&stubMessaging{sendErr: tt.sendErr}).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
