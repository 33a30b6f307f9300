package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	appmenu "github.com/littlelemon/menu/internal/application/menu"
	"github.com/littlelemon/menu/internal/domain/menu"
	"github.com/littlelemon/menu/internal/infrastructure/config"
	"github.com/littlelemon/menu/internal/infrastructure/event"
	"github.com/littlelemon/menu/internal/infrastructure/migration"
	"github.com/littlelemon/menu/internal/infrastructure/persistence"
	"github.com/littlelemon/menu/internal/interfaces/http/dto"
	"github.com/littlelemon/menu/internal/interfaces/http/middleware"
	"github.com/littlelemon/menu/internal/interfaces/http/router"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type stubMenuSource struct {
	items []menu.RemoteMenuItem
}

func (s stubMenuSource) FetchMenu(context.Context) []menu.RemoteMenuItem {
	return s.items
}

type testApp struct {
	engine *gin.Engine
	db     *persistence.Database
	repo   *persistence.GormMenuItemRepository
	stream *MenuStreamHandler
}

func newTestApp(t *testing.T, remote []menu.RemoteMenuItem, streamOpts ...MenuStreamOption) *testApp {
	t.Helper()

	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	migrator, err := migration.New(sqlDB, config.DriverSQLite, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, migrator.Up())
	require.NoError(t, migrator.Close())

	bus := event.NewInMemoryEventBus(zap.NewNop())
	repo := persistence.NewGormMenuItemRepository(db.DB, bus, zap.NewNop())
	t.Cleanup(repo.Close)

	service := appmenu.NewMenuService(repo)
	seeder := appmenu.NewSeeder(repo, stubMenuSource{items: remote})
	stream := NewMenuStreamHandler(repo, streamOpts...)
	t.Cleanup(stream.Stop)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	router.NewRouter(engine).
		Register(MenuRoutes(NewMenuHandler(service, seeder), stream)).
		RegisterPage(PageRoutes(NewMenuPageHandler(service), stream, NewHealthHandler(db, WithLiveStats(func() LiveStats {
			return LiveStats{
				StreamClients:   stream.ClientCount(),
				FeedSubscribers: repo.SubscriberCount(),
				BusHandlers:     bus.HandlerCount(),
			}
		})))).
		Setup()

	return &testApp{engine: engine, db: db, repo: repo, stream: stream}
}

func (a *testApp) insert(t *testing.T, id, name, price string) {
	t.Helper()
	require.NoError(t, a.repo.Insert(context.Background(), &menu.MenuItem{
		ID:    id,
		Name:  name,
		Price: decimal.RequireFromString(price),
	}))
}

func (a *testApp) names(t *testing.T) []string {
	t.Helper()
	items, err := a.repo.FindAll(context.Background())
	require.NoError(t, err)
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	return names
}

func (a *testApp) do(method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testApp) doJSON(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	return a.do(method, target, reader, "application/json")
}

func (a *testApp) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	return a.do(http.MethodPost, target, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	resp := decodeResponse(t, w)
	require.True(t, resp.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	return out
}
