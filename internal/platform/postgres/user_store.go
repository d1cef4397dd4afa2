package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
	"github.com/phrazzld/kanban-api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db         store.DBTX
	bcryptCost int
	logger     *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// A bcryptCost outside bcrypt's accepted range falls back to bcrypt.DefaultCost.
func NewPostgresUserStore(db store.DBTX, bcryptCost int, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:         db,
		bcryptCost: bcryptCost,
		logger:     logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// Create implements store.UserStore.Create.
// A plaintext Password is hashed with bcrypt and then cleared from the user.
// Returns store.ErrEmailExists if the email is already taken.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	if user.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), s.bcryptCost)
		if err != nil {
			log.Error("failed to hash password", slog.String("error", err.Error()))
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user.HashedPassword = string(hash)
		user.Password = ""
	}

	query := `
		INSERT INTO users (name, email, email_verified_at, password, remember_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var verifiedAt sql.NullTime
	if user.EmailVerifiedAt != nil {
		verifiedAt = sql.NullTime{Time: *user.EmailVerifiedAt, Valid: true}
	}

	err := s.db.QueryRowContext(
		ctx,
		query,
		user.Name,
		user.Email,
		verifiedAt,
		user.HashedPassword,
		nullString(user.RememberToken),
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("attempted to create user with existing email")
			return store.ErrEmailExists
		}
		log.Error("failed to create user", slog.String("error", err.Error()))
		return store.NewStoreError("user", "create", "insert failed", MapError(err))
	}

	log.Info("user created successfully", slog.Int64("user_id", user.ID))
	return nil
}

// ListPublic implements store.UserStore.ListPublic.
func (s *PostgresUserStore) ListPublic(ctx context.Context) ([]domain.PublicUser, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, email, created_at
		FROM users
		ORDER BY created_at DESC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list users", slog.String("error", err.Error()))
		return nil, store.NewStoreError("user", "list", "query failed", MapError(err))
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	users := make([]domain.PublicUser, 0)
	for rows.Next() {
		var u domain.PublicUser
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
			log.Error("failed to scan user row", slog.String("error", err.Error()))
			return nil, store.NewStoreError("user", "list", "scan failed", MapError(err))
		}
		u.CreatedAt = domain.Timestamp(u.CreatedAt)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("user", "list", "row iteration failed", MapError(err))
	}

	return users, nil
}

// WithTx implements store.UserStore.WithTx.
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{
		db:         tx,
		bcryptCost: s.bcryptCost,
		logger:     s.logger,
	}
}
