// internal/db/postgres.go
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"nutriplan/internal/apperr"
	"nutriplan/internal/models"
)

type Config struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	ConnLifetime time.Duration
}

// PostgresDB persists users, generated diet plans and payment records.
type PostgresDB struct {
	pool *pgxpool.Pool
}

func NewPostgresDB(cfg Config) (*PostgresDB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s pool_max_conns=%d",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode, cfg.MaxOpenConns,
	)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DB connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.ConnLifetime
	poolConfig.MaxConnIdleTime = 15 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{pool: pool}, nil
}

func (db *PostgresDB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// SaveDietPlan upserts the user by phone/email and stores the generated
// plan as a JSON document against that user.
func (db *PostgresDB) SaveDietPlan(ctx context.Context, profile models.UserProfile, plan *models.DietPlan) error {
	userID, err := db.upsertUser(ctx, profile)
	if err != nil {
		return err
	}

	planJSON, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to serialize diet plan: %w", err)
	}

	query := `
        INSERT INTO diet_plans (user_id, diet_type, plan, price)
        VALUES ($1, $2, $3, $4)
    `

	_, err = db.pool.Exec(ctx, query, userID, profile.DietType, planJSON, plan.Price)
	if err != nil {
		return fmt.Errorf("failed to save diet plan: %w", err)
	}
	return nil
}

// GetLatestDietPlan returns the most recent plan stored for the user.
func (db *PostgresDB) GetLatestDietPlan(ctx context.Context, email string) (*models.DietPlan, error) {
	query := `
        SELECT p.plan
        FROM diet_plans p
        JOIN users u ON u.id = p.user_id
        WHERE u.email = $1
        ORDER BY p.created_at DESC
        LIMIT 1
    `

	var planJSON []byte
	if err := db.pool.QueryRow(ctx, query, email).Scan(&planJSON); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Validation(apperr.KindPlanNotFound, "nenhum plano encontrado para este usuário")
		}
		return nil, fmt.Errorf("failed to get diet plan: %w", err)
	}

	var plan models.DietPlan
	if err := json.Unmarshal(planJSON, &plan); err != nil {
		return nil, fmt.Errorf("failed to decode diet plan: %w", err)
	}
	return &plan, nil
}

func (db *PostgresDB) SavePayment(ctx context.Context, payment *models.Payment) error {
	query := `
        INSERT INTO payments (external_reference, provider_payment_id, amount, currency, status, payer_email)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `

	err := db.pool.QueryRow(ctx, query,
		payment.ExternalReference, payment.ProviderPaymentID,
		payment.Amount, payment.Currency, payment.Status, payment.PayerEmail,
	).Scan(&payment.ID)
	if err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

// UpdatePaymentStatus records the terminal status transition reported by
// the provider webhook.
func (db *PostgresDB) UpdatePaymentStatus(ctx context.Context, externalReference, providerPaymentID, status string) error {
	query := `
        UPDATE payments
        SET status = $2, provider_payment_id = $3, updated_at = NOW()
        WHERE external_reference = $1
    `

	_, err := db.pool.Exec(ctx, query, externalReference, status, providerPaymentID)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	return nil
}

func (db *PostgresDB) upsertUser(ctx context.Context, profile models.UserProfile) (int64, error) {
	query := `
        INSERT INTO users (name, email, phone, age, height, weight, gender, goal, diet_type, allergies)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (email) DO UPDATE
        SET name = $1, phone = $3, age = $4, height = $5, weight = $6,
            gender = $7, goal = $8, diet_type = $9, allergies = $10, updated_at = NOW()
        RETURNING id
    `

	var id int64
	err := db.pool.QueryRow(ctx, query,
		profile.Name, profile.Email, profile.Phone,
		profile.Age, profile.Height, profile.Weight,
		profile.Gender, profile.Goal, profile.DietType,
		strings.Join(profile.Allergies, ","),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save user: %w", err)
	}
	return id, nil
}
