package http_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/audit"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/auth"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/billing"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/dto"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/quota"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/tenant"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/usecase"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/infrastructure/memory"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/infrastructure/metrics"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/infrastructure/pdf"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/infrastructure/stripebilling"
	apphttp "github.com/jhoicas/lavanderia-enterprise-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/lavanderia-enterprise-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Servidor de prueba: router completo sobre el store en memoria
// ──────────────────────────────────────────────────────────────────────────────

const webhookSecret = "whsec_scenario"

type testServer struct {
	app   *fiber.App
	store *memory.Store
}

type serverConfig struct {
	deps      apphttp.RouterDeps
	immutable bool
}

type serverOption func(*serverConfig)

func withRateLimit(rps float64, burst int) serverOption {
	return func(c *serverConfig) { c.deps.RateLimiter = apphttp.NewIPRateLimiter(rps, burst) }
}

// withSharedBuffers deja a Fiber reutilizar el buffer del request entre peticiones
// (Immutable=false), como hace por defecto.
func withSharedBuffers() serverOption {
	return func(c *serverConfig) { c.immutable = false }
}

func newServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	store := memory.NewStore()
	dir := tenant.NewDirectory(store.Accounts())
	m := metrics.New()

	recorder := audit.NewRecorder(store.APILogs(), 256, zerolog.Nop(), m.AuditDropped)
	recorder.Start()
	authn := auth.NewAuthenticator(dir, auth.WithAuditSink(recorder), auth.WithOutcomeHook(func(o auth.Outcome) {
		m.AuthOutcome(string(o))
	}))
	tracker := quota.NewTracker(store.Usage(), quota.WithDecisionHook(m.QuotaDecision))
	t.Cleanup(func() {
		tracker.Wait()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = recorder.Close(ctx)
	})

	cfg := serverConfig{immutable: true, deps: apphttp.RouterDeps{
		Gate:         auth.NewGate(authn, tracker, time.Second),
		APIKeyHeader: "x-api-key",
		JWTSecret:    testJWTSecret,
		JWTIssuer:    testIssuer,
		EnterpriseUC: usecase.NewEnterpriseUseCase(store.TxRunner(), store.Accounts(), dir, authn),
		BranchUC:     usecase.NewBranchUseCase(store.TxRunner(), store.Branches(), dir),
		ReportUC:     quota.NewReportUseCase(dir, tracker),
		StatementUC:  billing.NewStatementUseCase(dir, tracker, pdf.NewMarotoPDFGenerator()),
		AuditUC:      audit.NewUseCase(dir, store.APILogs(), 24*time.Hour),
		PlanSyncUC:   billing.NewPlanSyncUseCase(dir, nil, zerolog.Nop()),
		Webhook:      stripebilling.NewWebhookVerifier(webhookSecret),
		Metrics:      m.Handler(),
		Logger:       zerolog.Nop(),
	}}
	for _, opt := range opts {
		opt(&cfg)
	}

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler, Immutable: cfg.immutable})
	app.Use(apphttp.RequestLogger(zerolog.Nop(), m))
	require.NoError(t, apphttp.Router(app, cfg.deps))
	return &testServer{app: app, store: store}
}

type call struct {
	method string
	path   string
	key    string
	body   interface{}
	header map[string]string
}

func (s *testServer) do(t *testing.T, c call) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	switch b := c.body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(c.method, c.path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.key != "" {
		req.Header.Set("x-api-key", c.key)
	}
	for k, v := range c.header {
		req.Header.Set(k, v)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

type account struct {
	ID       string
	TenantID string
	Key      string
}

func (s *testServer) createAccount(t *testing.T, userID, plan string, monthlyQuota *int) account {
	t.Helper()
	resp, body := s.do(t, call{method: http.MethodPost, path: "/enterprise", body: dto.CreateEnterpriseRequest{
		UserID:           userID,
		CompanyName:      "Lavandería " + userID,
		SubscriptionPlan: plan,
		BillingEmail:     userID + "@lavanderia.co",
		MonthlyQuota:     monthlyQuota,
	}})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var out dto.CreateEnterpriseResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return account{ID: out.Account.ID, TenantID: out.Account.TenantID, Key: out.APIKey}
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e), string(body))
	return e.Code
}

func operatorToken(t *testing.T) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testOperatorID, pkgjwt.RoleOperator, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

// ──────────────────────────────────────────────────────────────────────────────
// Autenticación
// ──────────────────────────────────────────────────────────────────────────────

func TestScenario_CrearCuenta_KeyAutentica(t *testing.T) {
	s := newServer(t)
	a := s.createAccount(t, "user-1", "STARTUP", nil)
	assert.True(t, strings.HasPrefix(a.Key, "lvk_"))

	resp, body := s.do(t, call{method: http.MethodGet, path: "/enterprise/" + a.ID, key: a.Key})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "10000", resp.Header.Get(apphttp.HeaderQuotaLimit))
	assert.Equal(t, "9999", resp.Header.Get(apphttp.HeaderQuotaRemaining))

	var out dto.EnterpriseResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, a.TenantID, out.TenantID)
	assert.NotContains(t, string(body), a.Key, "la key nunca vuelve a mostrarse")
}

func TestScenario_SinKeyOKeyInvalida_Retorna401(t *testing.T) {
	s := newServer(t)
	s.createAccount(t, "user-1", "STARTUP", nil)

	resp, body := s.do(t, call{method: http.MethodGet, path: "/enterprise"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_API_KEY", errorCode(t, body))

	resp, body = s.do(t, call{method: http.MethodGet, path: "/enterprise", key: "lvk_no_existe_0000000000000000"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_API_KEY", errorCode(t, body))
	assert.NotContains(t, string(body), "lvk_no_existe")
}

func TestScenario_ToggleOffYOn_403LuegoMismaKey200(t *testing.T) {
	s := newServer(t)
	a := s.createAccount(t, "user-a", "STARTUP", nil)
	b := s.createAccount(t, "user-b", "STARTUP", nil)
	togglePath := "/enterprise/" + a.ID + "/api-key/toggle"

	resp, body := s.do(t, call{method: http.MethodPatch, path: togglePath, key: a.Key, body: map[string]bool{"enabled": false}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = s.do(t, call{method: http.MethodGet, path: "/enterprise/" + a.ID, key: a.Key})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "API_KEY_DISABLED", errorCode(t, body))

	// Con la key propia deshabilitada, otra cuenta la reactiva.
	resp, body = s.do(t, call{method: http.MethodPatch, path: togglePath, key: b.Key, body: map[string]bool{"enabled": true}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, _ = s.do(t, call{method: http.MethodGet, path: "/enterprise/" + a.ID, key: a.Key})
	assert.Equal(t, http.StatusOK, resp.StatusCode, "la misma key vuelve a ser válida")
}

func TestScenario_ToggleSinEnabled_Retorna400(t *testing.T) {
	s := newServer(t)
	a := s.createAccount(t, "user-a", "STARTUP", nil)

	resp, body := s.do(t, call{method: http.MethodPatch, path: "/enterprise/" + a.ID + "/api-key/toggle", key: a.Key, body: map[string]string{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, body))
}

func TestScenario_RotarKey_AnteriorRechazadaNuevaAceptada(t *testing.T) {
	s := newServer(t)
	a := s.createAccount(t, "user-a", "GROWTH", nil)

	resp, body := s.do(t, call{method: http.MethodPost, path: "/enterprise/" + a.ID + "/api-key/regenerate", key: a.Key})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var rotated dto.RegenerateKeyResponse
	require.NoError(t, json.Unmarshal(body, &rotated))
	require.NotEqual(t, a.Key, rotated.APIKey)

	resp, body = s.do(t, call{method: http.MethodGet, path: "/enterprise/" + a.ID, key: a.Key})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_API_KEY", errorCode(t, body))

	resp, _ = s.do(t, call{method: http.MethodGet, path: "/enterprise/" + a.ID, key: rotated.APIKey})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestScenario_ValidarKey_Publica(t *testing.T) {
	s := newServer(t)
	a := s.createAccount(t, "user-a", "ENTERPRISE", nil)

	resp, body := s.do(t, call{method: http.MethodPost, path: "/enterprise/validate-api-key", body: dto.ValidateKeyRequest{APIKey: a.Key}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out dto.ValidateKeyResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.True(t, out.Valid)
	require.NotNil(t, out.Account)
	assert.Equal(t, a.TenantID, out.Account.TenantID)

	resp, body = s.do(t, call{method: http.MethodPost, path: "/enterprise/validate-api-key", body: dto.ValidateKeyRequest{APIKey: "lvk_falsa"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out = dto.ValidateKeyResponse{}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.False(t, out.Valid)
	assert.Nil(t, out.Account)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cuota
// ──────────────────────────────────────────────────────────────────────────────

func TestScenario_CuotaDos_TerceraPeticion429(t *testing.T) {
	s := newServer(t)
	a := s.createAccount(t, "user-a", "STARTUP", intPtr(2))
	path := "/enterprise/" + a.ID

	for i := 0; i < 2; i++ {
		resp, body := s.do(t, call{method: http.MethodGet, path: path, key: a.Key})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	}
	resp, body := s.do(t, call{method: http.MethodGet, path: path, key: a.Key})
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderRetryAfter))
	assert.Equal(t, "0", resp.Header.Get(apphttp.HeaderQuotaRemaining))

	var out dto.QuotaExceededResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "QUOTA_EXCEEDED", out.Code)
	assert.EqualValues(t, 2, out.Used)
	assert.Equal(t, 2, out.Quota)
	assert.True(t, out.ResetAt.After(time.Now()))

	// Las rutas no medidas siguen disponibles con la cuota agotada.
	resp, _ = s.do(t, call{method: http.MethodGet, path: path + "/quota", key: a.Key})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestScenario_PeticionesConcurrentes_ExactamenteNAdmitidas(t *testing.T) {
	const quotaN, extra = 5, 5
	s := newServer(t)
	a := s.createAccount(t, "user-a", "STARTUP", intPtr(quotaN))

	statuses := make([]int, quotaN+extra)
	errs := make([]error, quotaN+extra)
	var wg sync.WaitGroup
	for i := range statuses {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/enterprise/"+a.ID, nil)
			req.Header.Set("x-api-key", a.Key)
			resp, err := s.app.Test(req, -1)
			if err != nil {
				errs[i] = err
				return
			}
			resp.Body.Close()
			statuses[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	var ok, limited int
	for i, st := range statuses {
		require.NoError(t, errs[i])
		switch st {
		case http.StatusOK:
			ok++
		case http.StatusTooManyRequests:
			limited++
		}
	}
	assert.Equal(t, quotaN, ok)
	assert.Equal(t, extra, limited)

	resp, body := s.do(t, call{method: http.MethodGet, path: "/enterprise/" + a.ID + "/quota", key: a.Key})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var report dto.QuotaResponse
	require.NoError(t, json.Unmarshal(body, &report))
	assert.EqualValues(t, quotaN, report.Used, "los rechazos no cuentan")
}

func TestScenario_ReporteDeCuota_Idempotente(t *testing.T) {
	s := newServer(t)
	a := s.createAccount(t, "user-a", "GROWTH", nil)
	for i := 0; i < 3; i++ {
		resp, _ := s.do(t, call{method: http.MethodGet, path: "/enterprise/" + a.ID, key: a.Key})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	var first, second dto.QuotaResponse
	resp, body := s.do(t, call{method: http.MethodGet, path: "/enterprise/" + a.ID + "/quota", key: a.Key})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(apphttp.HeaderQuotaLimit), "la ruta de cuota no se mide")
	require.NoError(t, json.Unmarshal(body, &first))

	_, body = s.do(t, call{method: http.MethodGet, path: "/enterprise/" + a.ID + "/quota", key: a.Key})
	require.NoError(t, json.Unmarshal(body, &second))

	assert.EqualValues(t, 3, first.Used)
	assert.Equal(t, first.Used, second.Used)
	require.NotNil(t, first.Remaining)
	assert.EqualValues(t, 100_000-3, *first.Remaining)
}

func TestScenario_CuotaIlimitada_CabeceraUnlimited(t *testing.T) {
	s := newServer(t)
	resp, body := s.do(t, call{method: http.MethodPost, path: "/enterprise", body: dto.CreateEnterpriseRequest{
		UserID:           "user-c",
		CompanyName:      "Lavandería Custom",
		SubscriptionPlan: "CUSTOM",
		BillingEmail:     "custom@lavanderia.co",
	}})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var created dto.CreateEnterpriseResponse
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Nil(t, created.Account.MonthlyQuota)

	resp, _ = s.do(t, call{method: http.MethodGet, path: "/enterprise/" + created.Account.ID, key: created.APIKey})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "unlimited", resp.Header.Get(apphttp.HeaderQuotaLimit))
}

func TestScenario_EstadoDeCuentaPDF(t *testing.T) {
	s := newServer(t)
	a := s.createAccount(t, "user-a", "STARTUP", nil)

	resp, body := s.do(t, call{method: http.MethodGet, path: "/enterprise/" + a.ID + "/quota/statement?period=2025-01", key: a.Key})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "estado_uso_"+a.TenantID+"_2025-01.pdf")
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	resp, body = s.do(t, call{method: http.MethodGet, path: "/enterprise/" + a.ID + "/quota/statement?period=enero", key: a.Key})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, body))
}

// ──────────────────────────────────────────────────────────────────────────────
// Cuentas y sucursales
// ──────────────────────────────────────────────────────────────────────────────

func TestScenario_CrearCuenta_Validaciones(t *testing.T) {
	s := newServer(t)

	resp, body := s.do(t, call{method: http.MethodPost, path: "/enterprise", body: []byte(`{"userId":`)})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", errorCode(t, body))

	resp, body = s.do(t, call{method: http.MethodPost, path: "/enterprise", body: dto.CreateEnterpriseRequest{
		UserID: "user-x", CompanyName: "X", SubscriptionPlan: "STARTUP", BillingEmail: "no-es-email",
	}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, body))
	assert.Contains(t, string(body), "billingEmail")

	s.createAccount(t, "user-x", "STARTUP", nil)
	resp, body = s.do(t, call{method: http.MethodPost, path: "/enterprise", body: dto.CreateEnterpriseRequest{
		UserID: "user-x", CompanyName: "X", SubscriptionPlan: "STARTUP", BillingEmail: "x@lavanderia.co",
	}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ACCOUNT_EXISTS", errorCode(t, body))
}

func TestScenario_BuscarPorUsuarioYTenant(t *testing.T) {
	s := newServer(t)
	a := s.createAccount(t, "user-a", "STARTUP", nil)

	resp, body := s.do(t, call{method: http.MethodGet, path: "/enterprise/by-user/user-a", key: a.Key})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), a.ID)

	resp, body = s.do(t, call{method: http.MethodGet, path: "/enterprise/by-tenant/" + a.TenantID, key: a.Key})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), a.ID)

	resp, body = s.do(t, call{method: http.MethodGet, path: "/enterprise/by-user/nadie", key: a.Key})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))

	resp, body = s.do(t, call{method: http.MethodGet, path: "/enterprise?limit=500", key: a.Key})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, body))
}

func TestScenario_ActualizarPlan_AplicaCuotaDelPlan(t *testing.T) {
	s := newServer(t)
	a := s.createAccount(t, "user-a", "STARTUP", nil)

	resp, body := s.do(t, call{method: http.MethodPatch, path: "/enterprise/" + a.ID, key: a.Key, body: map[string]string{"subscriptionPlan": "ENTERPRISE"}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out dto.EnterpriseResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "ENTERPRISE", out.SubscriptionPlan)
	require.NotNil(t, out.MonthlyQuota)
	assert.Equal(t, 1_000_000, *out.MonthlyQuota)
	assert.Equal(t, 50, out.MaxBranches)
}

func TestScenario_CodigoDeSucursal_UnicoPorOrganizacion(t *testing.T) {
	s := newServer(t)
	a := s.createAccount(t, "user-a", "GROWTH", nil)
	b := s.createAccount(t, "user-b", "GROWTH", nil)
	branch := dto.CreateBranchRequest{Name: "Norte", Code: strPtr("NORTE"), City: "Bogotá", Country: "co"}

	resp, body := s.do(t, call{method: http.MethodPost, path: "/enterprise/" + a.ID + "/branches", key: a.Key, body: branch})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var created dto.BranchResponse
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "CO", created.Country)

	resp, body = s.do(t, call{method: http.MethodPost, path: "/enterprise/" + a.ID + "/branches", key: a.Key, body: branch})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "BRANCH_CODE_TAKEN", errorCode(t, body))

	resp, body = s.do(t, call{method: http.MethodPost, path: "/enterprise/" + b.ID + "/branches", key: b.Key, body: branch})
	assert.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
}

func TestScenario_BufferCompartido_SucursalConservaSuOrganizacion(t *testing.T) {
	s := newServer(t, withSharedBuffers())
	a := s.createAccount(t, "user-a", "GROWTH", nil)
	b := s.createAccount(t, "user-b", "GROWTH", nil)
	branch := dto.CreateBranchRequest{Name: "Norte", Code: strPtr("NORTE")}

	resp, body := s.do(t, call{method: http.MethodPost, path: "/enterprise/" + a.ID + "/branches", key: a.Key, body: branch})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var created dto.BranchResponse
	require.NoError(t, json.Unmarshal(body, &created))

	// Una petición intermedia con otro path reutiliza el buffer del request anterior.
	resp, _ = s.do(t, call{method: http.MethodGet, path: "/enterprise/by-tenant/" + b.TenantID, key: b.Key})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stored, err := s.store.Branches().GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, a.ID, stored.OrganizationID)

	resp, body = s.do(t, call{method: http.MethodPost, path: "/enterprise/" + b.ID + "/branches", key: b.Key, body: branch})
	assert.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
}

func TestScenario_BufferCompartido_AuditoriaConservaPath(t *testing.T) {
	s := newServer(t, withSharedBuffers())
	a := s.createAccount(t, "user-a", "GROWTH", nil)
	b := s.createAccount(t, "user-b", "GROWTH", nil)

	first := "/enterprise/" + a.ID
	resp, _ := s.do(t, call{method: http.MethodGet, path: first, key: a.Key})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = s.do(t, call{method: http.MethodGet, path: "/enterprise/by-user/user-b-con-un-path-mas-largo", key: b.Key})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	require.Eventually(t, func() bool {
		n, err := s.store.APILogs().CountByAccount(context.Background(), a.ID)
		return err == nil && n >= 1
	}, 2*time.Second, 10*time.Millisecond)

	logs, err := s.store.APILogs().ListByAccount(context.Background(), a.ID, 10, 0)
	require.NoError(t, err)
	require.NotEmpty(t, logs)
	for _, l := range logs {
		assert.Equal(t, first, l.Path)
		assert.Equal(t, http.MethodGet, l.Method)
	}
}

func TestScenario_LimiteDeSucursales_DelPlan(t *testing.T) {
	s := newServer(t)
	a := s.createAccount(t, "user-a", "STARTUP", nil)
	path := "/enterprise/" + a.ID + "/branches"

	for i := 0; i < 3; i++ {
		resp, body := s.do(t, call{method: http.MethodPost, path: path, key: a.Key, body: dto.CreateBranchRequest{Name: fmt.Sprintf("Sede %d", i)}})
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	}
	resp, body := s.do(t, call{method: http.MethodPost, path: path, key: a.Key, body: dto.CreateBranchRequest{Name: "Sede extra"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "BRANCH_LIMIT_REACHED", errorCode(t, body))

	// Una sucursal inactiva no ocupa cupo; reactivarla sí.
	resp, body = s.do(t, call{method: http.MethodPost, path: path, key: a.Key, body: dto.CreateBranchRequest{Name: "Bodega", IsActive: boolPtr(false)}})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var inactive dto.BranchResponse
	require.NoError(t, json.Unmarshal(body, &inactive))

	resp, body = s.do(t, call{method: http.MethodPatch, path: "/enterprise/branches/" + inactive.ID, key: a.Key, body: map[string]bool{"isActive": true}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "BRANCH_LIMIT_REACHED", errorCode(t, body))

	resp, body = s.do(t, call{method: http.MethodGet, path: path + "?active=true", key: a.Key})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.BranchListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, 3, list.Page.Total)
}

func TestScenario_CicloDeVidaDeSucursal(t *testing.T) {
	s := newServer(t)
	a := s.createAccount(t, "user-a", "GROWTH", nil)

	resp, body := s.do(t, call{method: http.MethodPost, path: "/enterprise/" + a.ID + "/branches", key: a.Key, body: dto.CreateBranchRequest{Name: "Centro"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var br dto.BranchResponse
	require.NoError(t, json.Unmarshal(body, &br))
	branchPath := "/enterprise/branches/" + br.ID

	resp, body = s.do(t, call{method: http.MethodPost, path: branchPath + "/deactivate", key: a.Key})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"isActive":false`)

	resp, _ = s.do(t, call{method: http.MethodGet, path: branchPath, key: a.Key})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.do(t, call{method: http.MethodDelete, path: branchPath, key: a.Key})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = s.do(t, call{method: http.MethodGet, path: branchPath, key: a.Key})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))
}

func TestScenario_EliminarCuenta_SucursalesRetornan404(t *testing.T) {
	s := newServer(t)
	a := s.createAccount(t, "user-a", "GROWTH", nil)
	b := s.createAccount(t, "user-b", "GROWTH", nil)

	resp, body := s.do(t, call{method: http.MethodPost, path: "/enterprise/" + a.ID + "/branches", key: a.Key, body: dto.CreateBranchRequest{Name: "Centro"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, _ = s.do(t, call{method: http.MethodDelete, path: "/enterprise/" + a.ID, key: b.Key})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = s.do(t, call{method: http.MethodGet, path: "/enterprise/" + a.ID + "/branches", key: b.Key})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))

	resp, _ = s.do(t, call{method: http.MethodGet, path: "/enterprise/" + b.ID, key: a.Key})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "la key de la cuenta eliminada ya no autentica")
}

// ──────────────────────────────────────────────────────────────────────────────
// Auditoría, billing y operador
// ──────────────────────────────────────────────────────────────────────────────

func TestScenario_RastroDeAuditoria(t *testing.T) {
	s := newServer(t)
	a := s.createAccount(t, "user-a", "STARTUP", nil)
	s.do(t, call{method: http.MethodGet, path: "/enterprise/" + a.ID, key: a.Key})

	assert.Eventually(t, func() bool {
		resp, body := s.do(t, call{method: http.MethodGet, path: "/enterprise/" + a.ID + "/api-logs", key: a.Key})
		if resp.StatusCode != http.StatusOK {
			return false
		}
		var out dto.APILogListResponse
		if err := json.Unmarshal(body, &out); err != nil || len(out.Items) == 0 {
			return false
		}
		return out.Items[0].Outcome == string(auth.OutcomeAuthenticated) && !strings.Contains(string(body), a.Key)
	}, 2*time.Second, 20*time.Millisecond)
}

func signStripe(payload []byte, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", at.Unix(), payload)))
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func subscriptionUpdated(customerID, plan string) []byte {
	return []byte(fmt.Sprintf(`{"id":"evt_1","object":"event","type":"customer.subscription.updated",
"data":{"object":{"id":"sub_1","object":"subscription","customer":%q,"status":"active","metadata":{"plan":%q}}}}`, customerID, plan))
}

func TestScenario_WebhookStripe_AplicaPlan(t *testing.T) {
	s := newServer(t)
	a := s.createAccount(t, "user-a", "STARTUP", nil)
	resp, body := s.do(t, call{method: http.MethodPatch, path: "/enterprise/" + a.ID, key: a.Key, body: map[string]string{"stripeCustomerId": "cus_123"}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	payload := subscriptionUpdated("cus_123", "GROWTH")
	resp, body = s.do(t, call{method: http.MethodPost, path: "/billing/stripe/webhook", body: payload,
		header: map[string]string{apphttp.HeaderStripeSignature: signStripe(payload, time.Now())}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var ack apphttp.WebhookAck
	require.NoError(t, json.Unmarshal(body, &ack))
	assert.True(t, ack.Applied)
	assert.Equal(t, "GROWTH", ack.Plan)

	resp, body = s.do(t, call{method: http.MethodGet, path: "/enterprise/" + a.ID, key: a.Key})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "100000", resp.Header.Get(apphttp.HeaderQuotaLimit))
	assert.Contains(t, string(body), `"subscriptionPlan":"GROWTH"`)
}

func TestScenario_WebhookStripe_ClienteDesconocido200(t *testing.T) {
	s := newServer(t)
	payload := subscriptionUpdated("cus_desconocido", "GROWTH")

	resp, body := s.do(t, call{method: http.MethodPost, path: "/billing/stripe/webhook", body: payload,
		header: map[string]string{apphttp.HeaderStripeSignature: signStripe(payload, time.Now())}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"applied":false`)
}

func TestScenario_WebhookStripe_FirmaInvalida400(t *testing.T) {
	s := newServer(t)
	payload := subscriptionUpdated("cus_123", "GROWTH")

	resp, body := s.do(t, call{method: http.MethodPost, path: "/billing/stripe/webhook", body: payload,
		header: map[string]string{apphttp.HeaderStripeSignature: "t=1,v1=deadbeef"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_SIGNATURE", errorCode(t, body))
}

func TestScenario_Operador_PurgaYSincronizacion(t *testing.T) {
	s := newServer(t)
	a := s.createAccount(t, "user-a", "STARTUP", nil)

	resp, body := s.do(t, call{method: http.MethodPost, path: "/admin/audit/purge", key: a.Key})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "una API key no abre la superficie de operador")
	assert.Equal(t, "MISSING_TOKEN", errorCode(t, body))

	bearer := map[string]string{fiber.HeaderAuthorization: operatorToken(t)}
	resp, body = s.do(t, call{method: http.MethodPost, path: "/admin/audit/purge", header: bearer})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var purge dto.PurgeResponse
	require.NoError(t, json.Unmarshal(body, &purge))
	assert.False(t, purge.Cutoff.IsZero())

	// Sin customer de Stripe la sincronización es inválida; con customer y sin proveedor, 503.
	resp, body = s.do(t, call{method: http.MethodPost, path: "/admin/enterprise/" + a.ID + "/billing/sync", header: bearer})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, body))

	s.do(t, call{method: http.MethodPatch, path: "/enterprise/" + a.ID, key: a.Key, body: map[string]string{"stripeCustomerId": "cus_9"}})
	resp, body = s.do(t, call{method: http.MethodPost, path: "/admin/enterprise/" + a.ID + "/billing/sync", header: bearer})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "BILLING_UNAVAILABLE", errorCode(t, body))
}

// ──────────────────────────────────────────────────────────────────────────────
// Superficie pública
// ──────────────────────────────────────────────────────────────────────────────

func TestScenario_RutasPublicas_SeLimitanPorIP(t *testing.T) {
	s := newServer(t, withRateLimit(0.001, 2))
	req := dto.ValidateKeyRequest{APIKey: "lvk_prueba"}

	for i := 0; i < 2; i++ {
		resp, _ := s.do(t, call{method: http.MethodPost, path: "/enterprise/validate-api-key", body: req})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, body := s.do(t, call{method: http.MethodPost, path: "/enterprise/validate-api-key", body: req})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "RATE_LIMITED", errorCode(t, body))
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderRetryAfter))

	resp, _ = s.do(t, call{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, resp.StatusCode, "health no se limita")
}

func TestScenario_HealthMetricsY404(t *testing.T) {
	s := newServer(t)

	resp, body := s.do(t, call{method: http.MethodGet, path: "/health"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	s.do(t, call{method: http.MethodGet, path: "/enterprise"})
	resp, body = s.do(t, call{method: http.MethodGet, path: "/metrics"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "enterprise_http_requests_total")
	assert.Contains(t, string(body), `outcome="missing_credential"`)

	resp, body = s.do(t, call{method: http.MethodGet, path: "/no-existe"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
