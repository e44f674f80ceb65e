package webhook_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"alertdesk.app/intake/internal/filter"
	"alertdesk.app/intake/internal/http/handler/webhook"
	"alertdesk.app/intake/internal/metrics"
	"alertdesk.app/intake/internal/model"
	"alertdesk.app/intake/internal/service"
	"alertdesk.app/intake/internal/store"
)

type mockIngestService struct {
	authenticateFn func(ctx context.Context, webhookID, apiKey string) (*model.Integration, error)
	ingestFn       func(ctx context.Context, params service.AlertIngestParams) (*service.AlertIngestResult, error)
	processFn      func(ctx context.Context, integration *model.Integration, params service.AlertIngestParams) (*service.AlertIngestResult, error)
}

func (m *mockIngestService) Authenticate(ctx context.Context, webhookID, apiKey string) (*model.Integration, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, webhookID, apiKey)
	}
	return nil, service.ErrIntegrationNotFound
}

func (m *mockIngestService) Ingest(ctx context.Context, params service.AlertIngestParams) (*service.AlertIngestResult, error) {
	if m.ingestFn != nil {
		return m.ingestFn(ctx, params)
	}
	return nil, service.ErrIntegrationNotFound
}

func (m *mockIngestService) Process(ctx context.Context, integration *model.Integration, params service.AlertIngestParams) (*service.AlertIngestResult, error) {
	if m.processFn != nil {
		return m.processFn(ctx, integration, params)
	}
	return nil, errors.New("process not stubbed")
}

func post(router *gin.Engine, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(w *httptest.ResponseRecorder) map[string]any {
	var resp map[string]any
	Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
	return resp
}

func newRouter(h *webhook.AlertWebhookHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/webhooks/alerts/:webhook_id", h.HandleAlert)
	router.POST("/webhooks/alerts/:webhook_id/test", h.HandleTest)
	return router
}

var _ = Describe("AlertWebhookHandler", func() {
	var (
		svc      *mockIngestService
		recorder *metrics.Intake
		router   *gin.Engine
	)

	BeforeEach(func() {
		svc = &mockIngestService{}
		recorder = metrics.New()
		router = newRouter(webhook.NewAlertWebhookHandler(svc, recorder, 64))
	})

	Describe("HandleAlert", func() {
		var integration *model.Integration

		BeforeEach(func() {
			integration = &model.Integration{ID: 42, Name: "prom", WebhookID: "wh-1", Enabled: true}
			svc.authenticateFn = func(context.Context, string, string) (*model.Integration, error) {
				return integration, nil
			}
		})

		It("passes the webhook id, key and body to the service", func() {
			var got service.AlertIngestParams
			svc.processFn = func(_ context.Context, _ *model.Integration, params service.AlertIngestParams) (*service.AlertIngestResult, error) {
				got = params
				return &service.AlertIngestResult{
					Decision: filter.Decision{Admit: true},
					Ticket:   &model.Ticket{ID: 1234, TicketNumber: "ALT-000042"},
				}, nil
			}

			w := post(router, "/webhooks/alerts/wh-1", `{"severity":"critical"}`, map[string]string{"X-API-Key": "k1"})

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(got.WebhookID).To(Equal("wh-1"))
			Expect(got.APIKey).To(Equal("k1"))
			Expect(string(got.Body)).To(Equal(`{"severity":"critical"}`))

			resp := decodeBody(w)
			Expect(resp["ticketCreated"]).To(BeTrue())
			Expect(resp["ticketId"]).To(Equal("1234"))
			Expect(resp["ticketNumber"]).To(Equal("ALT-000042"))
			Expect(resp["message"]).NotTo(BeEmpty())
			count, err := testutil.GatherAndCount(recorder.Registry(), "alert_intake_requests_total")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1))
		})

		It("reads the key from a bearer token", func() {
			var key string
			svc.processFn = func(_ context.Context, _ *model.Integration, params service.AlertIngestParams) (*service.AlertIngestResult, error) {
				key = params.APIKey
				return &service.AlertIngestResult{Decision: filter.Decision{Reason: "x"}}, nil
			}

			post(router, "/webhooks/alerts/wh-1", `{}`, map[string]string{"Authorization": "Bearer tok"})
			Expect(key).To(Equal("tok"))
		})

		It("reports a filtered alert with its reason", func() {
			svc.processFn = func(context.Context, *model.Integration, service.AlertIngestParams) (*service.AlertIngestResult, error) {
				return &service.AlertIngestResult{
					Decision: filter.Decision{Admit: false, Reason: `excluded by filter rule "drop info"`},
				}, nil
			}

			w := post(router, "/webhooks/alerts/wh-1", `{"severity":"info"}`, map[string]string{"X-API-Key": "k"})

			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decodeBody(w)
			Expect(resp["ticketCreated"]).To(BeFalse())
			Expect(resp["message"]).To(ContainSubstring("drop info"))
			Expect(resp).NotTo(HaveKey("ticketId"))
		})

		It("reports a suppressed duplicate", func() {
			svc.processFn = func(context.Context, *model.Integration, service.AlertIngestParams) (*service.AlertIngestResult, error) {
				return &service.AlertIngestResult{Decision: filter.Decision{Admit: true}, Duplicate: true}, nil
			}

			w := post(router, "/webhooks/alerts/wh-1", `{}`, map[string]string{"X-API-Key": "k"})
			resp := decodeBody(w)
			Expect(resp["ticketCreated"]).To(BeFalse())
			Expect(resp["duplicate"]).To(BeTrue())
		})

		DescribeTable("maps authentication errors to status codes",
			func(err error, status int, code string) {
				svc.authenticateFn = func(context.Context, string, string) (*model.Integration, error) {
					return nil, err
				}
				svc.processFn = func(context.Context, *model.Integration, service.AlertIngestParams) (*service.AlertIngestResult, error) {
					Fail("body should not be processed")
					return nil, nil
				}

				w := post(router, "/webhooks/alerts/wh-1", `{}`, map[string]string{"X-API-Key": "k"})

				Expect(w.Code).To(Equal(status))
				resp := decodeBody(w)
				Expect(resp["error"]).To(Equal(code))
				Expect(resp["message"]).NotTo(BeEmpty())
			},
			Entry("unknown webhook", service.ErrIntegrationNotFound, http.StatusNotFound, "not_found"),
			Entry("disabled integration", service.ErrIntegrationDisabled, http.StatusForbidden, "forbidden"),
			Entry("bad key", service.ErrInvalidAPIKey, http.StatusUnauthorized, "unauthorized"),
			Entry("lookup failure", errors.New("fetching integration: db down"), http.StatusInternalServerError, "internal_error"),
		)

		DescribeTable("maps processing errors to status codes",
			func(err error, status int, code string) {
				svc.processFn = func(context.Context, *model.Integration, service.AlertIngestParams) (*service.AlertIngestResult, error) {
					return nil, err
				}

				w := post(router, "/webhooks/alerts/wh-1", `{}`, map[string]string{"X-API-Key": "k"})

				Expect(w.Code).To(Equal(status))
				resp := decodeBody(w)
				Expect(resp["error"]).To(Equal(code))
				Expect(resp["message"]).NotTo(BeEmpty())
			},
			Entry("invalid json", service.ErrInvalidPayload, http.StatusBadRequest, "invalid_payload"),
			Entry("store failure", errors.New("creating ticket: db down"), http.StatusInternalServerError, "internal_error"),
		)

		It("hands the authenticated integration to the pipeline", func() {
			var got *model.Integration
			svc.processFn = func(_ context.Context, in *model.Integration, _ service.AlertIngestParams) (*service.AlertIngestResult, error) {
				got = in
				return &service.AlertIngestResult{Decision: filter.Decision{Reason: "x"}}, nil
			}

			post(router, "/webhooks/alerts/wh-1", `{}`, map[string]string{"X-API-Key": "k"})
			Expect(got).To(BeIdenticalTo(integration))
		})

		It("surfaces the underlying message on a 500", func() {
			svc.processFn = func(context.Context, *model.Integration, service.AlertIngestParams) (*service.AlertIngestResult, error) {
				return nil, errors.New("creating ticket: db down")
			}

			w := post(router, "/webhooks/alerts/wh-1", `{}`, nil)
			Expect(decodeBody(w)["message"]).To(ContainSubstring("db down"))
		})

		It("rejects bodies over the limit with 413", func() {
			svc.processFn = func(context.Context, *model.Integration, service.AlertIngestParams) (*service.AlertIngestResult, error) {
				Fail("service should not be called")
				return nil, nil
			}

			body := `{"msg":"` + strings.Repeat("x", 100) + `"}`
			w := post(router, "/webhooks/alerts/wh-1", body, map[string]string{"X-API-Key": "k"})

			Expect(w.Code).To(Equal(http.StatusRequestEntityTooLarge))
			Expect(decodeBody(w)["error"]).To(Equal("payload_too_large"))
		})
	})

	Describe("HandleTest", func() {
		It("returns the integration summary", func() {
			source := "Grafana"
			svc.authenticateFn = func(_ context.Context, webhookID, apiKey string) (*model.Integration, error) {
				Expect(webhookID).To(Equal("wh-1"))
				Expect(apiKey).To(Equal("k"))
				return &model.Integration{Name: "grafana", SourceSystem: &source, Enabled: true}, nil
			}

			w := post(router, "/webhooks/alerts/wh-1/test", `{}`, map[string]string{"X-API-Key": "k"})

			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decodeBody(w)
			Expect(resp["message"]).NotTo(BeEmpty())
			Expect(resp["integration"]).To(Equal(map[string]any{
				"name":         "grafana",
				"sourceSystem": "Grafana",
				"enabled":      true,
			}))
		})

		It("returns 403 for a disabled integration", func() {
			svc.authenticateFn = func(context.Context, string, string) (*model.Integration, error) {
				return &model.Integration{Enabled: false}, service.ErrIntegrationDisabled
			}

			w := post(router, "/webhooks/alerts/wh-1/test", `{}`, map[string]string{"X-API-Key": "k"})
			Expect(w.Code).To(Equal(http.StatusForbidden))
		})
	})
})

// In-memory collaborators for running the real ingest service behind the handler.

type memIntegrations struct {
	store.IntegrationStore
	integration *model.Integration
}

func (m *memIntegrations) GetByWebhookID(_ context.Context, webhookID string) (*model.Integration, error) {
	if m.integration != nil && m.integration.WebhookID == webhookID {
		return m.integration, nil
	}
	return nil, store.ErrNotFound
}

type memRules struct {
	store.FilterRuleStore
	rules []model.FilterRule
}

func (m *memRules) ListByIntegration(context.Context, int64) ([]model.FilterRule, error) {
	return m.rules, nil
}

type memMappings struct {
	store.FieldMappingStore
}

func (m *memMappings) ListByIntegration(context.Context, int64) ([]model.FieldMapping, error) {
	return nil, nil
}

type memTickets struct {
	store.TicketStore
	created []model.TicketDraft
}

func (m *memTickets) Create(_ context.Context, draft model.TicketDraft, _ int64) (*model.Ticket, error) {
	m.created = append(m.created, draft)
	return &model.Ticket{
		ID:           int64(len(m.created)),
		TicketNumber: "ALT-00000" + string(rune('0'+len(m.created))),
		Priority:     draft.Priority,
		Tags:         draft.Tags,
	}, nil
}

type staticIdentity struct{}

func (staticIdentity) GetOrCreateSystemUser(context.Context) (int64, error) { return 1, nil }

var _ = Describe("alert webhook end to end", func() {
	var (
		integration *model.Integration
		tickets     *memTickets
		svc         service.AlertIngestService
		router      *gin.Engine
	)

	BeforeEach(func() {
		source := "Prometheus"
		integration = &model.Integration{
			ID: 1, Name: "prom", Enabled: true, WebhookID: "wh-e2e", APIKey: "key",
			SourceSystem: &source, DefaultPriority: model.PriorityMedium,
		}
		tickets = &memTickets{}
		svc = service.NewAlertIngestService(service.AlertIngestDeps{
			Integrations: &memIntegrations{integration: integration},
			FilterRules: &memRules{rules: []model.FilterRule{{
				ID: 1, Name: "drop info", Enabled: true, FilterType: model.FilterTypeExclude,
				FieldPath: "severity", Operator: model.OperatorEquals, Value: "info", Priority: 0,
			}}},
			FieldMappings: &memMappings{},
			Tickets:       tickets,
			Identity:      staticIdentity{},
		})
		router = newRouter(webhook.NewAlertWebhookHandler(svc, nil, 0))
	})

	It("filters info alerts and tickets critical ones", func() {
		w := post(router, "/webhooks/alerts/wh-e2e", `{"severity":"info"}`, map[string]string{"X-API-Key": "key"})
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(decodeBody(w)["ticketCreated"]).To(BeFalse())
		Expect(tickets.created).To(BeEmpty())

		w = post(router, "/webhooks/alerts/wh-e2e", `{"severity":"critical"}`, map[string]string{"X-API-Key": "key"})
		Expect(w.Code).To(Equal(http.StatusOK))
		resp := decodeBody(w)
		Expect(resp["ticketCreated"]).To(BeTrue())
		Expect(resp["ticketNumber"]).To(Equal("ALT-000001"))

		Expect(tickets.created).To(HaveLen(1))
		Expect(tickets.created[0].Priority).To(Equal(model.PriorityMedium))
		Expect(tickets.created[0].Tags).To(ContainElement("source:Prometheus"))
	})

	It("authenticates before parsing the body", func() {
		w := post(router, "/webhooks/alerts/wh-e2e", `not json`, map[string]string{"X-API-Key": "wrong"})
		Expect(w.Code).To(Equal(http.StatusUnauthorized))

		w = post(router, "/webhooks/alerts/wh-e2e", `not json`, map[string]string{"X-API-Key": "key"})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(decodeBody(w)["error"]).To(Equal("invalid_payload"))

		w = post(router, "/webhooks/alerts/wh-e2e", `{"a":1}}`, map[string]string{"X-API-Key": "key"})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(tickets.created).To(BeEmpty())
	})

	Context("with a small body limit", func() {
		oversize := `{"msg":"` + strings.Repeat("x", 200) + `"}`

		BeforeEach(func() {
			router = newRouter(webhook.NewAlertWebhookHandler(svc, nil, 64))
		})

		It("checks credentials before the size of the body", func() {
			w := post(router, "/webhooks/alerts/unknown", oversize, map[string]string{"X-API-Key": "key"})
			Expect(w.Code).To(Equal(http.StatusNotFound))

			w = post(router, "/webhooks/alerts/wh-e2e", oversize, map[string]string{"X-API-Key": "wrong"})
			Expect(w.Code).To(Equal(http.StatusUnauthorized))

			integration.Enabled = false
			w = post(router, "/webhooks/alerts/wh-e2e", oversize, map[string]string{"X-API-Key": "key"})
			Expect(w.Code).To(Equal(http.StatusForbidden))
		})

		It("rejects an oversize body once authenticated", func() {
			w := post(router, "/webhooks/alerts/wh-e2e", oversize, map[string]string{"X-API-Key": "key"})
			Expect(w.Code).To(Equal(http.StatusRequestEntityTooLarge))
			Expect(decodeBody(w)["error"]).To(Equal("payload_too_large"))
			Expect(tickets.created).To(BeEmpty())
		})
	})
})
