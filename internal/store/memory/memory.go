package memory

import (
	"context"
	"errors"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"fuelsales/internal/domain"
	"fuelsales/internal/store"
)

type Store struct {
	mu           sync.RWMutex
	inventory    map[string][]domain.InventoryItem
	salesByID    map[int64]domain.SaleRecord
	nextSaleID   int64
	usersByLogin map[string]domain.UserAccount
}

// seedUsers builds the dev/demo accounts. Passwords come from
// SEED_ADMIN_PASSWORD and SEED_ATTENDANT_PASSWORD, falling back to dev
// defaults with a warning. The postgres store never uses these.
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	attendantPwd := envOr("SEED_ATTENDANT_PASSWORD", "attendant123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_ATTENDANT_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_ATTENDANT_PASSWORD to override.")
	}

	users := map[string]domain.UserAccount{}
	for i, u := range []struct {
		login    string
		password string
		role     string
		branch   string
	}{
		{"admin", adminPwd, "admin", "1"},
		{"kigali", attendantPwd, "attendant", "1"},
		{"huye", attendantPwd, "attendant", "2"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.login, err)
		}
		users[u.login] = domain.UserAccount{
			ID:           int64(i + 1),
			Login:        u.login,
			PasswordHash: string(hash),
			Role:         u.role,
			BranchID:     u.branch,
			Active:       true,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// New returns an empty store with no users.
func New() *Store {
	return &Store{
		inventory:    map[string][]domain.InventoryItem{},
		salesByID:    map[int64]domain.SaleRecord{},
		usersByLogin: map[string]domain.UserAccount{},
	}
}

// NewSeeded returns a store with two stocked branches, a few sales on the
// first and the seed users.
func NewSeeded() *Store {
	s := New()
	s.usersByLogin = seedUsers()

	var itemID int64
	stock := func(branch string, prices map[string]int64) {
		names := make([]string, 0, len(prices))
		for name := range prices {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			itemID++
			s.inventory[branch] = append(s.inventory[branch], domain.InventoryItem{
				ID:        itemID,
				FuelType:  name,
				UnitPrice: decimal.NewFromInt(prices[name]),
				BranchID:  branch,
			})
		}
	}
	stock("1", map[string]int64{"Diesel": 1500, "Petrol": 1600, "Kerosene": 1200})
	stock("2", map[string]int64{"Diesel": 1520, "Petrol": 1630})

	today := domain.DateOf(time.Now())
	for _, sale := range []domain.SaleRecord{
		{FuelType: "Diesel", Liters: decimal.NewFromInt(40), SalePricePerLiter: decimal.NewFromInt(1500), PaymentMode: domain.PaymentCash},
		{FuelType: "Petrol", Liters: decimal.RequireFromString("12.5"), SalePricePerLiter: decimal.NewFromInt(1600), PaymentMode: domain.PaymentMobileMoney},
		{FuelType: "Diesel", Liters: decimal.NewFromInt(8), SalePricePerLiter: decimal.NewFromInt(1500), PaymentMode: domain.PaymentCard},
	} {
		sale.SaleDate = today
		sale.BranchID = "1"
		s.nextSaleID++
		sale.ID = s.nextSaleID
		s.salesByID[sale.ID] = sale
	}
	return s
}

// StockFuel adds or reprices a fuel type for a branch.
func (s *Store) StockFuel(_ context.Context, branchID string, fuelType string, unitPrice decimal.Decimal) (*domain.InventoryItem, error) {
	if strings.TrimSpace(branchID) == "" || strings.TrimSpace(fuelType) == "" || unitPrice.IsNegative() {
		return nil, store.ErrInvalidSale
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.inventory[branchID]
	for i := range items {
		if items[i].FuelType == fuelType {
			items[i].UnitPrice = unitPrice
			item := items[i]
			return &item, nil
		}
	}
	var maxID int64
	for _, branchItems := range s.inventory {
		for _, item := range branchItems {
			maxID = max(maxID, item.ID)
		}
	}
	item := domain.InventoryItem{ID: maxID + 1, FuelType: fuelType, UnitPrice: unitPrice, BranchID: branchID}
	s.inventory[branchID] = append(items, item)
	return &item, nil
}

// AddUser registers an account; the password is hashed here.
func (s *Store) AddUser(_ context.Context, user domain.UserAccount, password string) error {
	login := strings.ToLower(strings.TrimSpace(user.Login))
	if login == "" || strings.TrimSpace(password) == "" {
		return errors.New("login and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.usersByLogin[login]; exists {
		return store.ErrDuplicate
	}
	if user.ID == 0 {
		user.ID = int64(len(s.usersByLogin) + 1)
	}
	user.Login = login
	user.PasswordHash = string(hash)
	user.Active = true
	s.usersByLogin[login] = user
	return nil
}

func (s *Store) ListSales(_ context.Context, branchID string) ([]domain.SaleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := make([]domain.SaleRecord, 0, len(s.salesByID))
	for _, sale := range s.salesByID {
		if sale.BranchID == branchID {
			sales = append(sales, sale)
		}
	}
	slices.SortFunc(sales, func(a, b domain.SaleRecord) int {
		return compareInt64(a.ID, b.ID)
	})
	return sales, nil
}

func (s *Store) ListInventory(_ context.Context, branchID string) ([]domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.inventory[branchID]), nil
}

func (s *Store) GetSale(_ context.Context, id int64) (*domain.SaleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.salesByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &sale, nil
}

func (s *Store) CreateSale(_ context.Context, sale domain.SaleRecord) (*domain.SaleRecord, error) {
	if err := store.CheckSale(sale); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSaleID++
	sale.ID = s.nextSaleID
	s.salesByID[sale.ID] = sale
	created := sale
	return &created, nil
}

func (s *Store) UpdateSale(_ context.Context, sale domain.SaleRecord) (*domain.SaleRecord, error) {
	if err := store.CheckSale(sale); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.salesByID[sale.ID]; !ok {
		return nil, store.ErrNotFound
	}
	s.salesByID[sale.ID] = sale
	updated := sale
	return &updated, nil
}

func (s *Store) DeleteSale(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.salesByID[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.salesByID, id)
	return nil
}

func (s *Store) FindUserByLogin(_ context.Context, login string) (*domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.usersByLogin[strings.ToLower(strings.TrimSpace(login))]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &user, nil
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
