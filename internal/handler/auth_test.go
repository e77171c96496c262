package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dineops/api/internal/auth"
	"github.com/dineops/api/internal/database"
	"github.com/dineops/api/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/crypto/bcrypt"
)

type mockAuthStore struct {
	getUserByEmailFn        func(ctx context.Context, email string) (database.User, error)
	getUserByIDFn           func(ctx context.Context, id uuid.UUID) (database.User, error)
	listUsersByRestaurantFn func(ctx context.Context, restaurantID uuid.UUID) ([]database.User, error)
}

func (m *mockAuthStore) GetUserByEmail(ctx context.Context, email string) (database.User, error) {
	if m.getUserByEmailFn != nil {
		return m.getUserByEmailFn(ctx, email)
	}
	return database.User{}, pgx.ErrNoRows
}

func (m *mockAuthStore) GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(ctx, id)
	}
	return database.User{}, pgx.ErrNoRows
}

func (m *mockAuthStore) ListUsersByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]database.User, error) {
	if m.listUsersByRestaurantFn != nil {
		return m.listUsersByRestaurantFn(ctx, restaurantID)
	}
	return []database.User{}, nil
}

func setupAuthRouter(store *mockAuthStore) *chi.Mux {
	h := handler.NewAuthHandler(store, testJWTSecret)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return string(h)
}

func testUser(t *testing.T, restaurantID uuid.UUID, role, password string) database.User {
	return database.User{
		ID:             uuid.New(),
		RestaurantID:   restaurantID,
		FullName:       "Asha Nair",
		Email:          "asha@example.com",
		HashedPassword: mustHash(t, password),
		Role:           database.UserRole(role),
	}
}

func TestLoginHandler_Success(t *testing.T) {
	restaurantID := uuid.New()
	user := testUser(t, restaurantID, "MANAGER", "s3cret")
	store := &mockAuthStore{
		getUserByEmailFn: func(ctx context.Context, email string) (database.User, error) {
			if email != user.Email {
				t.Errorf("email: got %q", email)
			}
			return user, nil
		},
	}
	router := setupAuthRouter(store)

	rr := doRequest(t, router, "POST", "/auth/login", map[string]string{"email": user.Email, "password": "s3cret"})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d (body: %s)", rr.Code, rr.Body.String())
	}
	resp := decodeBody(t, rr)
	access, _ := resp["access_token"].(string)
	if access == "" {
		t.Fatal("missing access_token")
	}
	claims, err := auth.ValidateToken(testJWTSecret, access)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if claims.UserID != user.ID || claims.RestaurantID != restaurantID || claims.Role != "MANAGER" {
		t.Errorf("claims: %+v", claims)
	}
	if resp["refresh_token"] == "" {
		t.Error("missing refresh_token")
	}
}

func TestLoginHandler_WrongPassword(t *testing.T) {
	restaurantID := uuid.New()
	user := testUser(t, restaurantID, "MANAGER", "s3cret")
	store := &mockAuthStore{
		getUserByEmailFn: func(ctx context.Context, email string) (database.User, error) {
			return user, nil
		},
	}
	router := setupAuthRouter(store)

	rr := doRequest(t, router, "POST", "/auth/login", map[string]string{"email": user.Email, "password": "wrong"})

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestLoginHandler_UnknownEmail(t *testing.T) {
	router := setupAuthRouter(&mockAuthStore{})

	rr := doRequest(t, router, "POST", "/auth/login", map[string]string{"email": "nobody@example.com", "password": "x"})

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestLoginHandler_MissingFields(t *testing.T) {
	router := setupAuthRouter(&mockAuthStore{})

	rr := doRequest(t, router, "POST", "/auth/login", map[string]string{"email": "a@b.c"})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestPinLoginHandler_Success(t *testing.T) {
	restaurantID := uuid.New()
	cook := testUser(t, restaurantID, "KITCHEN", "unused")
	cook.Pin = pgtype.Text{String: mustHash(t, "4321"), Valid: true}
	other := testUser(t, restaurantID, "WAITER", "unused")
	other.Pin = pgtype.Text{String: mustHash(t, "9999"), Valid: true}

	store := &mockAuthStore{
		listUsersByRestaurantFn: func(ctx context.Context, rid uuid.UUID) ([]database.User, error) {
			if rid != restaurantID {
				t.Errorf("restaurant ID: got %v", rid)
			}
			return []database.User{other, cook}, nil
		},
	}
	router := setupAuthRouter(store)

	rr := doRequest(t, router, "POST", "/auth/pin-login", map[string]string{
		"restaurant_id": restaurantID.String(),
		"pin":           "4321",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d (body: %s)", rr.Code, rr.Body.String())
	}
	resp := decodeBody(t, rr)
	claims, err := auth.ValidateToken(testJWTSecret, resp["access_token"].(string))
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if claims.UserID != cook.ID || claims.Role != "KITCHEN" {
		t.Errorf("token issued for wrong user: %+v", claims)
	}
}

func TestPinLoginHandler_WrongPin(t *testing.T) {
	restaurantID := uuid.New()
	cook := testUser(t, restaurantID, "KITCHEN", "unused")
	cook.Pin = pgtype.Text{String: mustHash(t, "4321"), Valid: true}

	store := &mockAuthStore{
		listUsersByRestaurantFn: func(ctx context.Context, rid uuid.UUID) ([]database.User, error) {
			return []database.User{cook}, nil
		},
	}
	router := setupAuthRouter(store)

	rr := doRequest(t, router, "POST", "/auth/pin-login", map[string]string{
		"restaurant_id": restaurantID.String(),
		"pin":           "0000",
	})

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestRefreshHandler_Success(t *testing.T) {
	restaurantID := uuid.New()
	user := testUser(t, restaurantID, "CASHIER", "unused")
	store := &mockAuthStore{
		getUserByIDFn: func(ctx context.Context, id uuid.UUID) (database.User, error) {
			if id != user.ID {
				return database.User{}, pgx.ErrNoRows
			}
			return user, nil
		},
	}
	router := setupAuthRouter(store)

	refresh, err := auth.GenerateRefreshToken(testJWTSecret, user.ID)
	if err != nil {
		t.Fatalf("generate refresh: %v", err)
	}

	rr := doRequest(t, router, "POST", "/auth/refresh", map[string]string{"refresh_token": refresh})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d (body: %s)", rr.Code, rr.Body.String())
	}
	resp := decodeBody(t, rr)
	claims, err := auth.ValidateToken(testJWTSecret, resp["access_token"].(string))
	if err != nil {
		t.Fatalf("reissued token does not validate: %v", err)
	}
	if claims.Role != "CASHIER" {
		t.Errorf("role reloaded from store: got %q", claims.Role)
	}
}

func TestRefreshHandler_AccessTokenRejected(t *testing.T) {
	router := setupAuthRouter(&mockAuthStore{})

	access, err := auth.GenerateToken(testJWTSecret, uuid.New(), uuid.New(), "OWNER")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	rr := doRequest(t, router, "POST", "/auth/refresh", map[string]string{"refresh_token": access})

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}
