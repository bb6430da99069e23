// Package seed loads demo merchandise and the admin account.
package seed

import (
	"context"
	"fmt"
	"strings"

	"clubstore/internal/domain"
	"clubstore/internal/money"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type productSeed struct {
	Name        string
	Description string
	Rupees      int64
	ImageURL    string
	Category    string
	Stock       int
}

// Admin identifies the account granted the admin role.
type Admin struct {
	Email    string
	Password string
}

var products = []productSeed{
	{"Home Jersey 2024", "Official home kit in club green and maroon", 2499, "https://images.unsplash.com/photo-1577212017184-80cc0da11082?w=400", "jerseys", 50},
	{"Away Jersey 2024", "Official away kit, lightweight match fabric", 2499, "https://images.unsplash.com/photo-1580087256394-dc596e1c8f4f?w=400", "jerseys", 40},
	{"Training Top", "Breathable training top worn by the squad", 1299, "https://images.unsplash.com/photo-1556906781-9a412961c28c?w=400", "training", 60},
	{"Club Scarf", "Knitted supporters scarf", 599, "https://images.unsplash.com/photo-1520903920243-00d872a2d1c9?w=400", "accessories", 120},
	{"Supporters Cap", "Embroidered crest cap", 499, "https://images.unsplash.com/photo-1588850561407-ed78c282e89b?w=400", "accessories", 80},
	{"Match Ball Replica", "Size 5 replica of the league match ball", 1799, "https://images.unsplash.com/photo-1614632537190-23e4146777db?w=400", "equipment", 25},
	{"Crest Mug", "Ceramic mug with the club crest", 349, "https://images.unsplash.com/photo-1514228742587-6b1558fcca3d?w=400", "souvenirs", 0},
}

// Apply inserts seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool, admin Admin) error {
	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %q: %w", p.Name, err)
		}
	}
	if admin.Email != "" {
		if err := upsertAdmin(ctx, pool, admin); err != nil {
			return fmt.Errorf("upsert admin %s: %w", admin.Email, err)
		}
	}
	return nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (name, description, price_cents, image_url, category, stock_quantity)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (name, category) DO UPDATE
SET description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    image_url = EXCLUDED.image_url,
    stock_quantity = EXCLUDED.stock_quantity
`
	_, err := pool.Exec(ctx, q, p.Name, p.Description, money.FromRupees(p.Rupees), p.ImageURL, p.Category, p.Stock)
	return err
}

// upsertAdmin keeps an existing password so a reseed never locks out an admin
// who changed it.
func upsertAdmin(ctx context.Context, pool *pgxpool.Pool, admin Admin) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	const q = `
INSERT INTO users (email, display_name, role, password_hash)
VALUES ($1, 'Club Admin', $2, $3)
ON CONFLICT (email) DO UPDATE SET role = EXCLUDED.role
`
	_, err = pool.Exec(ctx, q, strings.ToLower(strings.TrimSpace(admin.Email)), domain.RoleAdmin, string(hashed))
	return err
}
