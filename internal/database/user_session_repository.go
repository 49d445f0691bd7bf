package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wanderplan/trip-planner-backend/internal/models"
)

// UserSessionRepository records sign-ins with parsed device information
type UserSessionRepository struct {
	db DB
}

// NewUserSessionRepository creates a new user session repository
func NewUserSessionRepository(db DB) *UserSessionRepository {
	return &UserSessionRepository{
		db: db,
	}
}

// RecordSession inserts a session row for a successful sign-in
func (r *UserSessionRepository) RecordSession(userID uuid.UUID, ipAddress, deviceType, os, browser, userAgent string) (*models.UserSession, error) {
	now := time.Now()
	session := &models.UserSession{
		ID:         uuid.New(),
		UserID:     userID,
		IPAddress:  ipAddress,
		DeviceType: deviceType,
		OS:         os,
		Browser:    browser,
		UserAgent:  userAgent,
		LastSeenAt: now,
		CreatedAt:  now,
	}

	query := `
		INSERT INTO user_sessions (
			id, user_id, ip_address, device_type, os, browser,
			user_agent, last_seen_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(
		query,
		session.ID,
		session.UserID,
		session.IPAddress,
		session.DeviceType,
		session.OS,
		session.Browser,
		session.UserAgent,
		session.LastSeenAt,
		session.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record session: %w", err)
	}

	return session, nil
}

// ListSessionsByUser retrieves a user's sessions, most recent first
func (r *UserSessionRepository) ListSessionsByUser(userID uuid.UUID) ([]*models.UserSession, error) {
	sessions := []*models.UserSession{}

	query := `
		SELECT id, user_id, ip_address, device_type, os, browser,
		       user_agent, last_seen_at, created_at
		FROM user_sessions
		WHERE user_id = $1
		ORDER BY last_seen_at DESC
	`

	err := r.db.Select(&sessions, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return sessions, nil
}
