package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/granaevo/granaevo-backend/internal/domain"
	"github.com/granaevo/granaevo-backend/internal/middleware"
	"github.com/granaevo/granaevo-backend/internal/service"
	"github.com/granaevo/granaevo-backend/internal/testutil"
	"github.com/labstack/echo/v4"
)

// Helper to set up auth context
func setupAuthContext(c echo.Context, accountID uuid.UUID) {
	ctx := context.WithValue(c.Request().Context(), middleware.AccountIDKey, accountID)
	c.SetRequest(c.Request().WithContext(ctx))
}

// testEnv is an account seeded in an in-memory store
type testEnv struct {
	store     *testutil.MockStore
	sessions  *service.SessionManager
	accountID uuid.UUID
}

func newTestEnv(t *testing.T, profiles ...string) *testEnv {
	t.Helper()
	store := testutil.NewMockStore()
	accountID := uuid.New()

	st := domain.NewAccountState(accountID, time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC))
	for _, name := range profiles {
		if _, err := st.AddProfile(name); err != nil {
			t.Fatalf("seed profile %q: %v", name, err)
		}
	}
	store.PutState(st)

	return &testEnv{store: store, sessions: service.NewSessionManager(store), accountID: accountID}
}

// newContext builds an authenticated echo context. Path params are given as
// name, value pairs.
func (env *testEnv) newContext(method, target, body string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)

	setupAuthContext(c, env.accountID)
	return c, rec
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) ProblemDetails {
	t.Helper()
	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal problem details: %v (%s)", err, rec.Body.String())
	}
	return problem
}
