package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/models"
)

// uniqueViolation код ошибки PostgreSQL для нарушения уникального ограничения.
const uniqueViolation = "23505"

// CreateUser сохраняет нового пользователя в базу данных и возвращает его UID.
//
// Возвращает ErrEmailTaken, если email уже занят: уникальность гарантирует
// ограничение в базе, поэтому гонка двух одновременных регистраций
// на один email разрешается в пользу ровно одной из них.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"

	var newUID string
	query := `INSERT INTO users (name, email, password_hash)
			  VALUES ($1, $2, $3)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash).Scan(&newUID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return "", fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

const userColumns = `uid, name, email, password_hash, customer_id,
			      subscription_id, price_id, is_subscribed, subscription_expiry`

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var customerID, subscriptionID, priceID sql.NullString
	var subscriptionExpiry sql.NullTime

	if err := row.Scan(&u.UID, &u.Name, &u.Email, &u.PasswordHash,
		&customerID, &subscriptionID, &priceID, &u.IsSubscribed, &subscriptionExpiry); err != nil {
		return nil, err
	}

	u.CustomerID = customerID.String
	u.SubscriptionID = subscriptionID.String
	u.PriceID = priceID.String
	if subscriptionExpiry.Valid {
		u.SubscriptionExpiry = &subscriptionExpiry.Time
	}
	return u, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по его email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateSubscriptionFields записывает идентификаторы биллинг-провайдера,
// флаг подписки и дату истечения на пользователя.
func (s *Storage) UpdateSubscriptionFields(ctx context.Context, userUID string,
	customerID, subscriptionID, priceID string, isSubscribed bool, expiry *time.Time) error {
	const op = "storage.UpdateSubscriptionFields"

	query := `UPDATE users
			  SET customer_id = $1,
			      subscription_id = $2,
			      price_id = $3,
			      is_subscribed = $4,
			      subscription_expiry = $5
			  WHERE uid = $6`
	res, err := s.DB.ExecContext(ctx, query,
		customerID, subscriptionID, priceID, isSubscribed, expiry, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

// SetSubscribed переключает только флаг is_subscribed, не трогая дату истечения.
// Используется при resume и cancel, когда провайдер меняет статус подписки.
func (s *Storage) SetSubscribed(ctx context.Context, userUID string, isSubscribed bool) error {
	const op = "storage.SetSubscribed"

	query := `UPDATE users
			  SET is_subscribed = $1
			  WHERE uid = $2`
	res, err := s.DB.ExecContext(ctx, query, isSubscribed, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}
