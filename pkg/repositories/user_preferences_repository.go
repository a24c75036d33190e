package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/verifidia/verifidia-engine/pkg/database"
	"github.com/verifidia/verifidia-engine/pkg/models"
)

// UserPreferencesRepository provides data access for per-user settings.
type UserPreferencesRepository interface {
	Upsert(ctx context.Context, prefs *models.UserPreferences) error
	GetByUserID(ctx context.Context, userID string) (*models.UserPreferences, error)
}

type userPreferencesRepository struct {
	db *database.DB
}

// NewUserPreferencesRepository creates a new UserPreferencesRepository.
func NewUserPreferencesRepository(db *database.DB) UserPreferencesRepository {
	return &userPreferencesRepository{db: db}
}

var _ UserPreferencesRepository = (*userPreferencesRepository)(nil)

func (r *userPreferencesRepository) Upsert(ctx context.Context, prefs *models.UserPreferences) error {
	now := time.Now()
	prefs.UpdatedAt = now
	if prefs.ID == uuid.Nil {
		prefs.ID = uuid.New()
		prefs.CreatedAt = now
	}
	if prefs.Theme == "" {
		prefs.Theme = models.ThemeSystem
	}
	if prefs.Language == "" {
		prefs.Language = "en"
	}

	bookmarks := prefs.Bookmarks
	if bookmarks == nil {
		bookmarks = []string{}
	}
	encoded, err := json.Marshal(bookmarks)
	if err != nil {
		return fmt.Errorf("marshal bookmarks: %w", err)
	}

	query := `
		INSERT INTO user_preferences (
			id, user_id, language, theme, bookmarks, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id)
		DO UPDATE SET
			language = EXCLUDED.language,
			theme = EXCLUDED.theme,
			bookmarks = EXCLUDED.bookmarks,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`

	err = r.db.QueryRow(ctx, query,
		prefs.ID, prefs.UserID, prefs.Language, prefs.Theme, encoded,
		prefs.CreatedAt, prefs.UpdatedAt,
	).Scan(&prefs.ID, &prefs.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user preferences: %w", err)
	}

	return nil
}

func (r *userPreferencesRepository) GetByUserID(ctx context.Context, userID string) (*models.UserPreferences, error) {
	query := `
		SELECT id, user_id, language, theme, bookmarks, created_at, updated_at
		FROM user_preferences
		WHERE user_id = $1`

	var p models.UserPreferences
	var bookmarks []byte

	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.ID, &p.UserID, &p.Language, &p.Theme, &bookmarks, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user preferences: %w", err)
	}

	if err := json.Unmarshal(bookmarks, &p.Bookmarks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bookmarks: %w", err)
	}

	return &p, nil
}
