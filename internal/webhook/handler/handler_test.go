package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/printprice/printprice/internal/config"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/httpclient"
	"github.com/printprice/printprice/internal/logger"
	"github.com/printprice/printprice/internal/types"
	"github.com/printprice/printprice/internal/webhook/payload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBuilder struct {
	payload json.RawMessage
	err     error
}

func (b stubBuilder) BuildPayload(_ context.Context, _ string, _ json.RawMessage) (json.RawMessage, error) {
	return b.payload, b.err
}

type stubFactory struct {
	builder payload.PayloadBuilder
	err     error
}

func (f stubFactory) GetBuilder(string) (payload.PayloadBuilder, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.builder, nil
}

// recordingClient captures outbound requests and the tenant identity each
// was sent under.
type recordingClient struct {
	requests []*httpclient.Request
	tenants  []string
	resp     *httpclient.Response
	err      error
}

func (c *recordingClient) Send(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error) {
	c.requests = append(c.requests, req)
	c.tenants = append(c.tenants, types.GetTenantID(ctx))
	if c.err != nil {
		return nil, c.err
	}
	return c.resp, nil
}

func newTestHandler(t *testing.T, webhookCfg config.Webhook, factory payload.PayloadBuilderFactory, client httpclient.Client) *handler {
	t.Helper()
	log, err := logger.NewLogger(&config.Configuration{})
	require.NoError(t, err)

	h, err := NewHandler(nil, &config.Configuration{Webhook: webhookCfg}, factory, client, log)
	require.NoError(t, err)
	return h.(*handler)
}

func webhookConfig(overrides ...func(*config.TenantWebhookConfig)) config.Webhook {
	tenant := config.TenantWebhookConfig{
		Endpoint: "https://tenant.example.com/hooks",
		Headers:  map[string]string{"X-Signature": "sig"},
		Enabled:  true,
	}
	for _, o := range overrides {
		o(&tenant)
	}
	return config.Webhook{
		Topic:   "webhooks",
		Tenants: map[string]config.TenantWebhookConfig{"tenant_1": tenant},
	}
}

func webhookMessage(t *testing.T, event types.WebhookEvent) *message.Message {
	t.Helper()
	body, err := json.Marshal(event)
	require.NoError(t, err)
	return message.NewMessage(event.ID, body)
}

func snapshotEvent() types.WebhookEvent {
	return types.WebhookEvent{
		ID:        "evt_1",
		EventName: types.WebhookEventPriceSnapshotCreated,
		TenantID:  "tenant_1",
		UserID:    "user_1",
		Payload:   json.RawMessage(`{"snapshot_id":"snap_1","tenant_id":"tenant_1"}`),
	}
}

func TestProcessMessageDeliversToTenantEndpoint(t *testing.T) {
	built := json.RawMessage(`{"event_type":"pricing.snapshot.created"}`)
	client := &recordingClient{resp: &httpclient.Response{StatusCode: http.StatusOK}}
	h := newTestHandler(t, webhookConfig(), stubFactory{builder: stubBuilder{payload: built}}, client)

	require.NoError(t, h.processMessage(webhookMessage(t, snapshotEvent())))

	require.Len(t, client.requests, 1)
	req := client.requests[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "https://tenant.example.com/hooks", req.URL)
	assert.Equal(t, "sig", req.Headers["X-Signature"])
	assert.Equal(t, []byte(built), req.Body)
	assert.Equal(t, "tenant_1", client.tenants[0], "delivery runs under the event's tenant")
}

func TestProcessMessageSkipsUnknownTenant(t *testing.T) {
	client := &recordingClient{resp: &httpclient.Response{StatusCode: http.StatusOK}}
	cfg := config.Webhook{Topic: "webhooks"}
	h := newTestHandler(t, cfg, stubFactory{builder: stubBuilder{}}, client)

	require.NoError(t, h.processMessage(webhookMessage(t, snapshotEvent())))
	assert.Empty(t, client.requests)
}

func TestProcessMessageSkipsDisabledTenant(t *testing.T) {
	client := &recordingClient{resp: &httpclient.Response{StatusCode: http.StatusOK}}
	cfg := webhookConfig(func(tc *config.TenantWebhookConfig) { tc.Enabled = false })
	h := newTestHandler(t, cfg, stubFactory{builder: stubBuilder{}}, client)

	require.NoError(t, h.processMessage(webhookMessage(t, snapshotEvent())))
	assert.Empty(t, client.requests)
}

func TestProcessMessageSkipsExcludedEvent(t *testing.T) {
	client := &recordingClient{resp: &httpclient.Response{StatusCode: http.StatusOK}}
	cfg := webhookConfig(func(tc *config.TenantWebhookConfig) {
		tc.ExcludedEvents = []string{types.WebhookEventPriceSnapshotCreated}
	})
	h := newTestHandler(t, cfg, stubFactory{builder: stubBuilder{}}, client)

	require.NoError(t, h.processMessage(webhookMessage(t, snapshotEvent())))
	assert.Empty(t, client.requests)
}

func TestProcessMessageAcksMalformedEvent(t *testing.T) {
	client := &recordingClient{resp: &httpclient.Response{StatusCode: http.StatusOK}}
	h := newTestHandler(t, webhookConfig(), stubFactory{builder: stubBuilder{}}, client)

	msg := message.NewMessage("evt_bad", []byte("{not json"))
	require.NoError(t, h.processMessage(msg), "undecodable events are acked, not retried")
	assert.Empty(t, client.requests)
}

func TestProcessMessagePropagatesDeliveryFailure(t *testing.T) {
	sendErr := httpclient.NewError(http.StatusServiceUnavailable, nil)
	client := &recordingClient{err: sendErr}
	h := newTestHandler(t, webhookConfig(), stubFactory{builder: stubBuilder{payload: json.RawMessage(`{}`)}}, client)

	err := h.processMessage(webhookMessage(t, snapshotEvent()))
	require.Error(t, err)

	httpErr, ok := httpclient.IsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
}

func TestProcessMessagePropagatesUnknownEventType(t *testing.T) {
	factoryErr := ierr.NewError("no payload builder registered for event type").
		Mark(ierr.ErrInvalidOperation)
	client := &recordingClient{resp: &httpclient.Response{StatusCode: http.StatusOK}}
	h := newTestHandler(t, webhookConfig(), stubFactory{err: factoryErr}, client)

	err := h.processMessage(webhookMessage(t, snapshotEvent()))
	require.Error(t, err)
	assert.True(t, ierr.IsInvalidOperation(err))
	assert.Empty(t, client.requests)
}
