package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"fuelsales/internal/domain"
	"fuelsales/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Migrate creates the tables if they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const saleColumns = `id, fuel_type, liters, sale_price_per_liter, sale_date, payment_mode, branch_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSale(row rowScanner) (domain.SaleRecord, error) {
	var (
		sale     domain.SaleRecord
		saleDate time.Time
		mode     string
	)
	if err := row.Scan(&sale.ID, &sale.FuelType, &sale.Liters, &sale.SalePricePerLiter, &saleDate, &mode, &sale.BranchID); err != nil {
		return domain.SaleRecord{}, err
	}
	sale.SaleDate = domain.DateOf(saleDate)
	sale.PaymentMode = domain.PaymentMode(mode)
	return sale, nil
}

func (s *Store) ListSales(ctx context.Context, branchID string) ([]domain.SaleRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+saleColumns+`
		FROM fuel_sales
		WHERE branch_id = $1
		ORDER BY id
	`, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]domain.SaleRecord, 0, 64)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sales, nil
}

func (s *Store) ListInventory(ctx context.Context, branchID string) ([]domain.InventoryItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fuel_type, unit_price, branch_id
		FROM inventory
		WHERE branch_id = $1
		ORDER BY fuel_type
	`, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.InventoryItem, 0, 8)
	for rows.Next() {
		var item domain.InventoryItem
		if err := rows.Scan(&item.ID, &item.FuelType, &item.UnitPrice, &item.BranchID); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) GetSale(ctx context.Context, id int64) (*domain.SaleRecord, error) {
	sale, err := scanSale(s.db.QueryRowContext(ctx, `
		SELECT `+saleColumns+`
		FROM fuel_sales
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

func (s *Store) CreateSale(ctx context.Context, sale domain.SaleRecord) (*domain.SaleRecord, error) {
	if err := store.CheckSale(sale); err != nil {
		return nil, err
	}

	created, err := scanSale(s.db.QueryRowContext(ctx, `
		INSERT INTO fuel_sales (fuel_type, liters, sale_price_per_liter, sale_date, payment_mode, branch_id)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING `+saleColumns,
		sale.FuelType, sale.Liters, sale.SalePricePerLiter, sale.SaleDate.Time(), string(sale.PaymentMode), sale.BranchID,
	))
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) UpdateSale(ctx context.Context, sale domain.SaleRecord) (*domain.SaleRecord, error) {
	if err := store.CheckSale(sale); err != nil {
		return nil, err
	}

	updated, err := scanSale(s.db.QueryRowContext(ctx, `
		UPDATE fuel_sales
		SET fuel_type = $2, liters = $3, sale_price_per_liter = $4, sale_date = $5,
			payment_mode = $6, branch_id = $7, updated_at = now()
		WHERE id = $1
		RETURNING `+saleColumns,
		sale.ID, sale.FuelType, sale.Liters, sale.SalePricePerLiter, sale.SaleDate.Time(), string(sale.PaymentMode), sale.BranchID,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

func (s *Store) DeleteSale(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM fuel_sales WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) FindUserByLogin(ctx context.Context, login string) (*domain.UserAccount, error) {
	var user domain.UserAccount
	err := s.db.QueryRowContext(ctx, `
		SELECT id, login, password_hash, role, branch_id, active
		FROM users
		WHERE login = $1
	`, strings.ToLower(strings.TrimSpace(login))).Scan(
		&user.ID, &user.Login, &user.PasswordHash, &user.Role, &user.BranchID, &user.Active,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// StockFuel inserts a fuel type for a branch or reprices the existing one.
func (s *Store) StockFuel(ctx context.Context, branchID string, fuelType string, unitPrice decimal.Decimal) (*domain.InventoryItem, error) {
	if strings.TrimSpace(branchID) == "" || strings.TrimSpace(fuelType) == "" || unitPrice.IsNegative() {
		return nil, store.ErrInvalidSale
	}

	var item domain.InventoryItem
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO inventory (branch_id, fuel_type, unit_price, updated_at)
		VALUES ($1,$2,$3,now())
		ON CONFLICT (branch_id, fuel_type)
		DO UPDATE SET unit_price = EXCLUDED.unit_price, updated_at = now()
		RETURNING id, fuel_type, unit_price, branch_id
	`, branchID, fuelType, unitPrice).Scan(&item.ID, &item.FuelType, &item.UnitPrice, &item.BranchID)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) AddUser(ctx context.Context, user domain.UserAccount, password string) error {
	login := strings.ToLower(strings.TrimSpace(user.Login))
	if login == "" || strings.TrimSpace(password) == "" {
		return errors.New("login and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (login, password_hash, role, branch_id, active, created_at)
		VALUES ($1,$2,$3,$4,true,now())
	`, login, string(hash), user.Role, user.BranchID)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return err
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
