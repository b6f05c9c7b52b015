package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"badmintonStore/entities"
	"badmintonStore/models"
	"badmintonStore/payment"
	"badmintonStore/repository"
	"badmintonStore/repository/memory"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type fakeBridge struct {
	requests []payment.Request
	err      error
}

func (f *fakeBridge) CreatePaymentIntent(_ context.Context, req payment.Request) (payment.Intent, error) {
	if f.err != nil {
		return payment.Intent{}, f.err
	}
	f.requests = append(f.requests, req)
	n := len(f.requests)
	return payment.Intent{
		Id:           fmt.Sprintf("pi_%d", n),
		ClientSecret: fmt.Sprintf("pi_%d_secret", n),
		Status:       "requires_payment_method",
	}, nil
}

func (f *fakeBridge) ParseWebhook([]byte, string) (payment.Event, error) {
	return payment.Event{}, errors.New("not supported")
}

// flakyCatalog refuses reservations for one product id.
type flakyCatalog struct {
	*memory.CatalogRepo
	failFor string
}

func (f *flakyCatalog) Reserve(ctx context.Context, line entities.StockLine) (bool, error) {
	if line.ProductId == f.failFor {
		return false, nil
	}
	return f.CatalogRepo.Reserve(ctx, line)
}

type testStore struct {
	catalog  *memory.CatalogRepo
	carts    *memory.CartRepo
	orders   *memory.OrderRepo
	users    *memory.UserRepo
	sessions *memory.SessionRepo
	bridge   *fakeBridge

	catalogSvc CatalogService
	cartSvc    CartService
	orderSvc   OrderService
	userSvc    UserService
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()
	ts := &testStore{
		catalog:  memory.NewCatalogRepository(),
		carts:    memory.NewCartRepository(),
		orders:   memory.NewOrderRepository(),
		users:    memory.NewUserRepository(),
		sessions: memory.NewSessionRepository(),
		bridge:   &fakeBridge{},
	}
	ts.wire(ts.catalog)
	return ts
}

func (ts *testStore) wire(catalog repository.CatalogRepository) {
	ts.catalogSvc = NewCatalogService(catalog)
	ts.cartSvc = NewCartService(catalog, ts.carts)
	ts.orderSvc = NewOrderService(catalog, ts.carts, ts.orders, ts.users, ts.bridge, "usd")
	ts.userSvc = NewUserService(ts.users, ts.sessions, NewTokenManager("test-secret", 24*time.Hour))
}

func (ts *testStore) seed(t *testing.T, category string, prod entities.Product) entities.Product {
	t.Helper()
	created, err := ts.catalogSvc.CreateProduct(context.Background(), category, prod)
	require.NoError(t, err)
	return created
}

func (ts *testStore) stock(t *testing.T, category, id, color, label string) int {
	t.Helper()
	prod, found, err := ts.catalog.GetProduct(context.Background(), category, id)
	require.NoError(t, err)
	require.True(t, found)
	qty, ok := prod.Stock(color, label)
	require.True(t, ok)
	return qty
}

func (ts *testStore) addToCart(t *testing.T, userId int, req entities.CartRequest) {
	t.Helper()
	_, err := ts.cartSvc.AddItem(context.Background(), userId, req)
	require.NoError(t, err)
}

func intp(n int) *int { return &n }

func strp(s string) *string { return &s }

func racket(id string, price float64, stock int) entities.Product {
	return entities.Product{
		Id:    id,
		Name:  "Astrox 77 Pro",
		Brand: "Yonex",
		Price: price,
		Colors: []entities.ColorVariant{{
			Color: "High Orange",
			Photo: "https://cdn.example.com/ax77-orange.png",
			Variants: []entities.Variant{
				{Type: "4ug5", MaxTension: "28 lbs", Quantity: stock},
				{Type: "3ug5", MaxTension: "28 lbs", Quantity: stock},
			},
		}},
	}
}

func twoColorRacket(id string, price float64, stock int) entities.Product {
	p := racket(id, price, stock)
	p.Colors = append(p.Colors, entities.ColorVariant{
		Color: "Black",
		Photo: "https://cdn.example.com/ax77-black.png",
		Variants: []entities.Variant{
			{Type: "3ug5", MaxTension: "28 lbs", Quantity: stock},
		},
	})
	return p
}

func grip(id string, price float64, stock int) entities.Product {
	return entities.Product{
		Id:    id,
		Name:  "Super Grap",
		Brand: "Yonex",
		Price: price,
		Colors: []entities.ColorVariant{{
			Color:    "White",
			Photo:    "https://cdn.example.com/ac102-white.png",
			Quantity: intp(stock),
		}},
	}
}

func shoe(id string, price float64, stock int) entities.Product {
	return entities.Product{
		Id:    id,
		Name:  "Power Cushion 65Z",
		Brand: "Yonex",
		Price: price,
		Colors: []entities.ColorVariant{{
			Color: "White Tiger",
			Photo: "https://cdn.example.com/65z.png",
			Variants: []entities.Variant{
				{Size: "42", Quantity: stock},
			},
		}},
	}
}

var delivery = entities.DeliveryInfo{
	ReceiverName: "Linh Nguyen",
	PhoneNumber:  "+84 912 345 678",
	Address:      "12 Ly Thuong Kiet, Hanoi",
}

func orderRequest(method string) entities.OrderRequest {
	return entities.OrderRequest{DeliveryInfo: delivery, PaymentMethod: method}
}

var admin = models.Claims{UserId: 99, Role: models.RoleAdmin}

func customer(id int) models.Claims {
	return models.Claims{UserId: id, Role: models.RoleUser}
}
