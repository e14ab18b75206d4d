package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	"github.com/yafera/herdbook/internal/domain/models"
)

func registerWhatsAppSteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^the number "([^"]*)" sends "([^"]*)"$`, theNumberSends)
	ctx.Step(`^the number "([^"]*)" should receive a reply containing "([^"]*)"$`, theNumberShouldReceiveAReplyContaining)
	ctx.Step(`^Meta verifies the webhook with token "([^"]*)"$`, metaVerifiesTheWebhookWithToken)
}

func theNumberSends(ctx context.Context, number, text string) (context.Context, error) {
	payload := models.WebhookPayload{
		Object: "whatsapp_business_account",
		Entry: []models.WebhookEntry{{
			Changes: []models.WebhookChange{{
				Field: "messages",
				Value: models.WebhookValue{
					MessagingProduct: "whatsapp",
					Messages: []models.InboundMessage{{
						From: number,
						ID:   "wamid.in",
						Type: "text",
						Text: &models.TextContent{Body: text},
					}},
				},
			}},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return ctx, err
	}
	return send(ctx, "POST", "/webhook", string(body))
}

func theNumberShouldReceiveAReplyContaining(ctx context.Context, number, expected string) error {
	replies := GetTestContext(ctx).meta.messagesTo(number)
	if len(replies) == 0 {
		return fmt.Errorf("no reply sent to %s", number)
	}
	last := replies[len(replies)-1]
	if !strings.Contains(last, expected) {
		return fmt.Errorf("last reply to %s is %q, want it to contain %q", number, last, expected)
	}
	return nil
}

func metaVerifiesTheWebhookWithToken(ctx context.Context, token string) (context.Context, error) {
	return send(ctx, "GET", "/webhook?hub.mode=subscribe&hub.challenge=1158201444&hub.verify_token="+token, "")
}
