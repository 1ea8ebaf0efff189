package handlers_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"restaurant-pos-api/config"
	"restaurant-pos-api/events"
	"restaurant-pos-api/handlers"
	"restaurant-pos-api/middleware"
	"restaurant-pos-api/models"
	"restaurant-pos-api/routes"
	"restaurant-pos-api/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := middleware.RegisterValidators(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Error   string          `json:"error"`
	Token   string          `json:"token"`
	Message string          `json:"message"`
}

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	h      *handlers.Handler
}

func newServer(t *testing.T) *testServer {
	t.Helper()
	db, err := config.OpenDatabase("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	broker := events.NewBroker(8)
	log := zap.NewNop()
	h := &handlers.Handler{
		Orders:   services.NewOrderService(db, broker, log, time.UTC),
		Reports:  services.NewReportService(db, time.UTC),
		Accounts: services.NewAccountService(db).WithHashCost(bcrypt.MinCost),
		Catalog:  services.NewCatalogService(db),
		Tokens:   middleware.NewTokenIssuer([]byte("test-secret"), time.Hour),
		Broker:   broker,
		Log:      log,
	}
	router := routes.NewRouter(h, routes.Options{LoginRatePerMin: 1000})
	return &testServer{t: t, db: db, router: router, h: h}
}

func (s *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w.Code, env
}

// user creates an active account and returns it with a signed token
func (s *testServer) user(name string, role models.UserRole) (*models.User, string) {
	s.t.Helper()
	active := true
	u, err := s.h.Accounts.CreateUser(context.Background(), services.NewUserInput{
		RegisterInput: services.RegisterInput{Name: name, Email: name + "@example.com", Password: "secret1", Role: role},
		IsActive:      &active,
	})
	require.NoError(s.t, err)
	token, err := s.h.Tokens.Generate(u)
	require.NoError(s.t, err)
	return u, token
}

func (s *testServer) menuItem(name string, price float64) models.MenuItem {
	s.t.Helper()
	cat := models.Category{Name: "cat-" + name}
	require.NoError(s.t, s.db.Create(&cat).Error)
	item := models.MenuItem{Name: name, Description: name, Price: price, CategoryID: cat.ID, IsAvailable: true}
	require.NoError(s.t, s.db.Create(&item).Error)
	return item
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestRegisterAndLogin(t *testing.T) {
	s := newServer(t)

	code, env := s.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "Ama", "email": "ama@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusCreated, code)
	assert.NotEmpty(t, env.Token)

	code, env = s.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "Kofi", "email": "kofi@example.com", "password": "secret1", "role": "waiter"})
	assert.Equal(t, http.StatusCreated, code)
	assert.Empty(t, env.Token)
	assert.Contains(t, env.Message, "pending")

	code, env = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "kofi@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Account is inactive. Please contact your admin.", env.Error)

	code, env = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ama@example.com", "password": "nope123"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid credentials", env.Error)
	assert.False(t, env.Success)

	code, env = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ama@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, env.Token)

	code, env = s.do(http.MethodGet, "/api/auth/me", env.Token, nil)
	require.Equal(t, http.StatusOK, code)
	me := decode[models.User](t, env.Data)
	assert.Equal(t, "ama@example.com", me.Email)

	code, _ = s.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "Bad", "email": "bad@example.com", "password": "secret1", "role": "chef"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAuthFailsClosed(t *testing.T) {
	s := newServer(t)
	u, token := s.user("kofi", models.RoleWaiter)

	code, _ := s.do(http.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(http.MethodGet, "/api/orders", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	require.NoError(t, s.db.Model(u).Update("is_active", false).Error)
	code, _ = s.do(http.MethodGet, "/api/orders", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	require.NoError(t, s.db.Delete(u).Error)
	code, _ = s.do(http.MethodGet, "/api/orders", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestCreateOrderOverHTTP(t *testing.T) {
	s := newServer(t)
	customer, token := s.user("ama", models.RoleCustomer)
	a := s.menuItem("A", 10)
	b := s.menuItem("B", 5)

	code, env := s.do(http.MethodPost, "/api/orders", token, gin.H{
		"user":        999,
		"totalAmount": 1,
		"items": []gin.H{
			{"menuItem": a.ID, "price": 10, "quantity": 2},
			{"menuItem": b.ID, "price": 5, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	order := decode[models.Order](t, env.Data)
	assert.Equal(t, 25.0, order.TotalAmount)
	assert.Equal(t, customer.ID, order.UserID)
	assert.Equal(t, models.StatusPending, order.Status)

	// the embedded user carries only id, name and email
	raw := decode[map[string]json.RawMessage](t, env.Data)
	owner := decode[map[string]interface{}](t, raw["user"])
	assert.Len(t, owner, 3)
	assert.Equal(t, "ama", owner["name"])
	assert.NotContains(t, owner, "role")
	assert.NotContains(t, owner, "isActive")

	code, env = s.do(http.MethodPost, "/api/orders", token, gin.H{"items": []gin.H{}})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(http.MethodPost, "/api/orders", token, gin.H{
		"items":         []gin.H{{"menuItem": a.ID, "quantity": 1}},
		"paymentMethod": "Barter",
	})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestKitchenSeesEveryonesActiveOrders(t *testing.T) {
	s := newServer(t)
	_, amaToken := s.user("ama", models.RoleCustomer)
	_, kofiToken := s.user("kofi", models.RoleCustomer)
	_, chefToken := s.user("chef", models.RoleKitchen)
	item := s.menuItem("Rice", 4)

	for _, tok := range []string{amaToken, kofiToken} {
		code, env := s.do(http.MethodPost, "/api/orders", tok, gin.H{"items": []gin.H{{"menuItem": item.ID, "quantity": 1}}})
		require.Equal(t, http.StatusCreated, code, env.Error)
	}

	code, env := s.do(http.MethodGet, "/api/orders?status=pending&status=preparing", chefToken, nil)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, env.Count)
	assert.Equal(t, 2, *env.Count)

	code, env = s.do(http.MethodGet, "/api/orders", amaToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, *env.Count)
}

func TestOrderMutationsRequireStaff(t *testing.T) {
	s := newServer(t)
	_, custToken := s.user("ama", models.RoleCustomer)
	_, waiterToken := s.user("kofi", models.RoleWaiter)
	item := s.menuItem("Rice", 4)

	code, env := s.do(http.MethodPost, "/api/orders", custToken, gin.H{"items": []gin.H{{"menuItem": item.ID, "quantity": 1}}})
	require.Equal(t, http.StatusCreated, code)
	order := decode[models.Order](t, env.Data)
	path := fmt.Sprintf("/api/orders/%d", order.ID)

	code, _ = s.do(http.MethodPut, path, custToken, gin.H{"status": "served"})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(http.MethodPut, path, waiterToken, gin.H{"status": "served", "revision": 1})
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, models.StatusServed, decode[models.Order](t, env.Data).Status)

	code, _ = s.do(http.MethodPut, path, waiterToken, gin.H{"status": "ready", "revision": 1})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = s.do(http.MethodPut, path, waiterToken, gin.H{"status": "eaten"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(http.MethodGet, path+"/history", waiterToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, *env.Count)

	code, _ = s.do(http.MethodDelete, path, waiterToken, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodDelete, path, waiterToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSelfServiceLimits(t *testing.T) {
	s := newServer(t)
	admin, adminToken := s.user("boss", models.RoleAdmin)
	_, custToken := s.user("ama", models.RoleCustomer)

	code, env := s.do(http.MethodPut, "/api/auth/me", custToken, gin.H{"role": "admin"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "You cannot change your own role", env.Error)

	code, env = s.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", admin.ID), adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "You cannot delete your own account", env.Error)

	var count int64
	s.db.Model(&models.User{}).Where("id = ?", admin.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	code, _ = s.do(http.MethodGet, "/api/users", custToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestRoleAllowLists(t *testing.T) {
	s := newServer(t)
	_, adminToken := s.user("boss", models.RoleAdmin)
	_, staffToken := s.user("sam", models.RoleStaff)
	_, cashierToken := s.user("till", models.RoleCashier)
	_, kitchenToken := s.user("chef", models.RoleKitchen)

	code, env := s.do(http.MethodPost, "/api/categories", staffToken, gin.H{"name": "Drinks"})
	assert.Equal(t, http.StatusForbidden, code)
	code, env = s.do(http.MethodPost, "/api/categories", adminToken, gin.H{"name": "Drinks"})
	require.Equal(t, http.StatusCreated, code, env.Error)
	cat := decode[models.Category](t, env.Data)

	newItem := gin.H{"name": "Tea", "description": "Hot", "price": 3, "category": cat.ID}
	code, _ = s.do(http.MethodPost, "/api/menu-items", cashierToken, newItem)
	assert.Equal(t, http.StatusForbidden, code)
	code, env = s.do(http.MethodPost, "/api/menu-items", staffToken, newItem)
	require.Equal(t, http.StatusCreated, code, env.Error)
	item := decode[models.MenuItem](t, env.Data)

	path := fmt.Sprintf("/api/menu-items/%d", item.ID)
	code, _ = s.do(http.MethodPut, path, kitchenToken, gin.H{"price": 4})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(http.MethodPut, path, cashierToken, gin.H{"isAvailable": false})
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(http.MethodGet, "/api/stats", kitchenToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(http.MethodGet, "/api/stats", staffToken, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = s.do(http.MethodGet, "/api/menu-items?category="+fmt.Sprint(cat.ID), "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, *env.Count)
}

func TestPublicEndpoints(t *testing.T) {
	s := newServer(t)

	code, env := s.do(http.MethodGet, "/api/analytics", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	code, env = s.do(http.MethodGet, "/api/order-flow", "", nil)
	assert.Equal(t, http.StatusOK, code)
	flow := decode[struct {
		TerminalStates []models.OrderStatus                        `json:"terminalStates"`
		Transitions    map[models.OrderStatus][]models.OrderStatus `json:"transitions"`
		Enforced       bool                                        `json:"enforced"`
	}](t, env.Data)
	assert.Equal(t, []models.OrderStatus{models.StatusServed, models.StatusCancelled}, flow.TerminalStates)
	assert.Equal(t, []models.OrderStatus{models.StatusServed, models.StatusCancelled}, flow.Transitions[models.StatusReady])
	assert.Empty(t, flow.Transitions[models.StatusServed])
	assert.False(t, flow.Enforced)

	code, _ = s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(http.MethodGet, "/api/orders/abc", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestOrderStreamPushesCreatedOrders(t *testing.T) {
	s := newServer(t)
	_, chefToken := s.user("chef", models.RoleKitchen)
	_, amaToken := s.user("ama", models.RoleCustomer)
	item := s.menuItem("Rice", 4)

	code, _ := s.do(http.MethodGet, "/api/orders/stream", amaToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	srv := httptest.NewServer(s.router)
	defer srv.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/orders/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+chefToken)

	// headers only go out with the first event, so connect in the background
	type result struct {
		resp *http.Response
		err  error
	}
	opened := make(chan result, 1)
	go func() {
		resp, err := http.DefaultClient.Do(req)
		opened <- result{resp, err}
	}()
	require.Eventually(t, func() bool { return s.h.Broker.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	code, env := s.do(http.MethodPost, "/api/orders", amaToken, gin.H{
		"items": []gin.H{{"menuItem": item.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	order := decode[models.Order](t, env.Data)

	var res result
	select {
	case res = <-opened:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not open")
	}
	require.NoError(t, res.err)
	defer res.resp.Body.Close()
	assert.Equal(t, http.StatusOK, res.resp.StatusCode)
	assert.Contains(t, res.resp.Header.Get("Content-Type"), "text/event-stream")

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(res.resp.Body)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	var event, data string
	for data == "" {
		select {
		case line, open := <-lines:
			require.True(t, open, "stream closed early")
			switch {
			case strings.HasPrefix(line, "event:"):
				event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:") && event == "order.created":
				data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			}
		case <-time.After(2 * time.Second):
			t.Fatal("no order.created frame")
		}
	}

	pushed := decode[events.Event](t, json.RawMessage(data))
	assert.Equal(t, events.OrderCreated, pushed.Type)
	assert.Equal(t, order.ID, pushed.OrderID)
	assert.Equal(t, models.StatusPending, pushed.Status)

	cancel()
	require.Eventually(t, func() bool { return s.h.Broker.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}
