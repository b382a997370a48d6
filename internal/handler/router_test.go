package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/eaglebank/ledger/internal/cqrs"
	"github.com/eaglebank/ledger/internal/middleware"
	"github.com/eaglebank/ledger/internal/models"
	ledgerredis "github.com/eaglebank/ledger/internal/redis"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, accounts AccountCommander) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := zap.NewNop()
	return NewRouter(RouterDeps{
		Users:       NewUserHandler(&mockUserCommander{}, &mockUserQuerier{}, logger),
		Accounts:    NewAccountHandler(accounts, logger),
		Auth:        middleware.StubAuthenticator,
		Idempotency: ledgerredis.NewIdempotencyStore(client, time.Hour, time.Minute, logger),
		Logger:      logger,
	})
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t, &mockAccountCommander{})
	w := doJSON(router, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRouter_AccountRoutesRequireAuth(t *testing.T) {
	router := newTestRouter(t, &mockAccountCommander{})
	for _, path := range []string{"/v1/accounts/deposit", "/v1/accounts/transfer", "/v1/accounts/withdraw", "/v1/users/me"} {
		method := http.MethodPost
		if path == "/v1/users/me" {
			method = http.MethodGet
		}
		w := doJSON(router, method, path, `{}`)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, w.Code)
		}
	}
}

func TestRouter_DepositReplaysIdempotentRequest(t *testing.T) {
	var calls int32
	router := newTestRouter(t, &mockAccountCommander{
		depositFn: func(cmd cqrs.DepositCommand) (*models.DepositResult, error) {
			n := atomic.AddInt32(&calls, 1)
			return &models.DepositResult{Balance: decimal.NewFromInt(int64(n) * 100), Owner: cmd.Owner}, nil
		},
	})

	send := func() *httptest.ResponseRecorder {
		req, _ := http.NewRequest(http.MethodPost, "/v1/accounts/deposit", strings.NewReader(`{"amount":100}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer 3")
		req.Header.Set(middleware.IdempotencyKeyHeader, "dep-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	first := send()
	second := send()

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("expected 200s, got %d and %d", first.Code, second.Code)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected one deposit, got %d", calls)
	}
	if second.Header().Get(middleware.IdempotentReplayedHeader) != "true" {
		t.Error("expected replay header on the second response")
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("replayed body differs: %s vs %s", first.Body.String(), second.Body.String())
	}
}
