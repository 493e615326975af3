package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amitrajput-dev/zelora-backend/internal/auth"
	"github.com/amitrajput-dev/zelora-backend/internal/cart"
	"github.com/amitrajput-dev/zelora-backend/internal/catalog"
	"github.com/amitrajput-dev/zelora-backend/internal/coupons"
	"github.com/amitrajput-dev/zelora-backend/internal/orders"
	"github.com/amitrajput-dev/zelora-backend/internal/payments"
	"github.com/amitrajput-dev/zelora-backend/internal/users"
	pkgauth "github.com/amitrajput-dev/zelora-backend/pkg/auth"
	"github.com/amitrajput-dev/zelora-backend/pkg/config"
	"github.com/amitrajput-dev/zelora-backend/pkg/db/models"
	"github.com/amitrajput-dev/zelora-backend/pkg/enums"
	"github.com/amitrajput-dev/zelora-backend/pkg/logger"
	"github.com/amitrajput-dev/zelora-backend/pkg/pagination"
)

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.AuthResponse, error) {
	panic("unimplemented")
}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.AuthResponse, error) {
	panic("unimplemented")
}

type stubUserService struct{}

func (stubUserService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return &models.User{}, nil
}

func (stubUserService) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	return nil, nil
}

func (stubUserService) AddAddress(ctx context.Context, userID uuid.UUID, input users.AddressInput) (*models.Address, error) {
	panic("unimplemented")
}

func (stubUserService) UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, input users.AddressInput) (*models.Address, error) {
	panic("unimplemented")
}

func (stubUserService) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	panic("unimplemented")
}

func (stubUserService) ToggleFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	panic("unimplemented")
}

func (stubUserService) ListFavorites(ctx context.Context, userID uuid.UUID) ([]models.Product, error) {
	return nil, nil
}

func (stubUserService) CreditWallet(ctx context.Context, userID uuid.UUID, amountCents int) error {
	panic("unimplemented")
}

type stubCatalogService struct{}

func (stubCatalogService) CreateProduct(ctx context.Context, input catalog.CreateProductInput) (*models.Product, error) {
	panic("unimplemented")
}

func (stubCatalogService) UpdateProduct(ctx context.Context, productID uuid.UUID, input catalog.UpdateProductInput) (*models.Product, error) {
	panic("unimplemented")
}

func (stubCatalogService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	panic("unimplemented")
}

func (stubCatalogService) GetProduct(ctx context.Context, idOrSlug string) (*models.Product, error) {
	panic("unimplemented")
}

func (stubCatalogService) ListProducts(ctx context.Context, filter catalog.ListFilter) ([]models.Product, string, error) {
	return []models.Product{}, "", nil
}

func (stubCatalogService) ListLowStock(ctx context.Context) ([]models.Product, error) {
	return nil, nil
}

type stubCartService struct{}

func (stubCartService) Get(ctx context.Context, userID uuid.UUID) (*cart.View, error) {
	return &cart.View{}, nil
}

func (stubCartService) Add(ctx context.Context, userID uuid.UUID, input cart.AddInput) (*cart.View, error) {
	panic("unimplemented")
}

func (stubCartService) UpdateQuantity(ctx context.Context, userID uuid.UUID, input cart.UpdateInput) (*cart.View, error) {
	panic("unimplemented")
}

func (stubCartService) Remove(ctx context.Context, userID uuid.UUID, input cart.RemoveInput) (*cart.View, error) {
	panic("unimplemented")
}

func (stubCartService) Clear(ctx context.Context, userID uuid.UUID) (*cart.View, error) {
	panic("unimplemented")
}

type stubCouponService struct{}

func (stubCouponService) Validate(ctx context.Context, code string, userID uuid.UUID, cartTotalCents int) (*models.Coupon, error) {
	return &models.Coupon{Code: code, Type: enums.CouponTypeFlat, Value: 500}, nil
}

func (stubCouponService) Redeem(ctx context.Context, tx *gorm.DB, coupon *models.Coupon, userID, orderID uuid.UUID) error {
	panic("unimplemented")
}

func (stubCouponService) Create(ctx context.Context, input coupons.CreateInput) (*models.Coupon, error) {
	panic("unimplemented")
}

func (stubCouponService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.Coupon, error) {
	panic("unimplemented")
}

func (stubCouponService) Delete(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

func (stubCouponService) List(ctx context.Context) ([]models.Coupon, error) {
	return []models.Coupon{}, nil
}

func (stubCouponService) ConvertWallet(ctx context.Context, userID uuid.UUID, amountCents int) (*models.Coupon, error) {
	panic("unimplemented")
}

func (stubCouponService) ListWalletCoupons(ctx context.Context, userID uuid.UUID) ([]models.Coupon, error) {
	return nil, nil
}

type stubOrderService struct{}

func (stubOrderService) Checkout(ctx context.Context, userID uuid.UUID, input orders.CheckoutInput) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrderService) GetMyOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrderService) ListMyOrders(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]models.Order, string, error) {
	return nil, "", nil
}

func (stubOrderService) Cancel(ctx context.Context, input orders.CancelInput) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrderService) AdminList(ctx context.Context, page pagination.Params) ([]models.Order, string, error) {
	return nil, "", nil
}

func (stubOrderService) AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*models.Order, error) {
	panic("unimplemented")
}

type stubPaymentService struct{}

func (stubPaymentService) CreateGatewayOrder(ctx context.Context, userID, orderID uuid.UUID) (*payments.CheckoutSession, error) {
	panic("unimplemented")
}

func (stubPaymentService) VerifyPayment(ctx context.Context, userID uuid.UUID, input payments.VerifyInput) (*models.Payment, error) {
	panic("unimplemented")
}

func (stubPaymentService) HandleWebhook(ctx context.Context, body []byte, signature, eventID string) error {
	return nil
}

func (stubPaymentService) MarkCODCollected(ctx context.Context, orderID uuid.UUID, collectedBy string) (*models.Payment, error) {
	panic("unimplemented")
}

func (stubPaymentService) GetByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	return nil, nil
}

func (stubPaymentService) AdminList(ctx context.Context, page pagination.Params) ([]models.Payment, string, error) {
	return nil, "", nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Env:         "test",
			CORSOrigins: []string{"http://localhost:3000"},
		},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "zelora-test",
			ExpirationMinutes: 60,
		},
		AuthRateLimit: config.AuthRateLimitConfig{
			LoginWindow:    time.Minute,
			RegisterWindow: 5 * time.Minute,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Deps{
		Config:         cfg,
		Logger:         logg,
		AuthService:    stubAuthService{},
		UserService:    stubUserService{},
		CatalogService: stubCatalogService{},
		CartService:    stubCartService{},
		CouponService:  stubCouponService{},
		OrderService:   stubOrderService{},
		PaymentService: stubPaymentService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPublicCatalogNeedsNoToken(t *testing.T) {
	router := newTestRouter(testConfig())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupAcceptsBuyerToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleBuyer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for buyer got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	buyer := httptest.NewRequest(http.MethodGet, "/api/admin/v1/coupons", nil)
	buyer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleBuyer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, buyer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for buyer got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/coupons", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestCouponValidateRouteRequiresToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	body := `{"code":"FLAT500","cart_total_cents":2000}`

	anon := httptest.NewRequest(http.MethodPost, "/api/v1/coupons/validate", strings.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, anon)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/coupons/validate", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleBuyer))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for buyer got %d", resp.Code)
	}
}

func TestWebhookRouteIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/razorpay", nil)
	req.Header.Set("X-Razorpay-Signature", "sig")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
