package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/stitts-dev/club-sim/internal/club"
	"github.com/stitts-dev/club-sim/internal/league"
)

// SeasonRecord is the archived header of a season
type SeasonRecord struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	League      string         `gorm:"not null" json:"league"`
	UserClub    string         `gorm:"not null" json:"user_club"`
	Seed        int64          `json:"seed"`
	TotalRounds int            `json:"total_rounds"`
	Clubs       datatypes.JSON `json:"clubs"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// MatchRecord is one played fixture
type MatchRecord struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	SeasonID  uuid.UUID      `gorm:"type:uuid;index;not null" json:"season_id"`
	Round     int            `gorm:"index" json:"round"`
	Home      string         `gorm:"not null" json:"home"`
	Away      string         `gorm:"not null" json:"away"`
	HomeGoals int            `json:"home_goals"`
	AwayGoals int            `json:"away_goals"`
	Events    datatypes.JSON `json:"events"`
	PlayedAt  time.Time      `json:"played_at"`
}

// ClubSnapshot records the user club's dynamics after a round
type ClubSnapshot struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	SeasonID        uuid.UUID      `gorm:"type:uuid;index;not null" json:"season_id"`
	Round           int            `gorm:"index" json:"round"`
	Club            string         `gorm:"not null" json:"club"`
	Position        int            `json:"position"`
	BoardTrust      float64        `json:"board_trust"`
	TeamInstability float64        `json:"team_instability"`
	CoachPressure   float64        `json:"coach_pressure"`
	UnderUltimatum  bool           `json:"under_ultimatum"`
	Balance         string         `json:"balance"`
	FinancialStatus string         `json:"financial_status"`
	Standings       datatypes.JSON `json:"standings"`
	CreatedAt       time.Time      `json:"created_at"`
}

// Archive appends finished fixtures and per-round club snapshots. It is a
// history, never read back to restore a season.
type Archive struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewArchive migrates the archive tables
func NewArchive(db *gorm.DB, logger *logrus.Logger) (*Archive, error) {
	if err := db.AutoMigrate(&SeasonRecord{}, &MatchRecord{}, &ClubSnapshot{}); err != nil {
		return nil, fmt.Errorf("failed to migrate archive: %w", err)
	}
	return &Archive{db: db, logger: logger}, nil
}

// RecordSeason stores the season header
func (a *Archive) RecordSeason(ctx context.Context, s *league.Season, seed int64) error {
	names := make([]string, 0, len(s.League.Clubs))
	for _, c := range s.League.Clubs {
		names = append(names, c.Name)
	}
	clubs, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("failed to marshal clubs: %w", err)
	}

	rec := SeasonRecord{
		ID:          s.ID,
		League:      s.League.Name,
		UserClub:    s.UserClub.Name,
		Seed:        seed,
		TotalRounds: s.League.TotalRounds(),
		Clubs:       datatypes.JSON(clubs),
	}
	if err := a.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to archive season: %w", err)
	}
	return nil
}

// RecordRound stores every fixture of the round and a snapshot of the user club
func (a *Archive) RecordRound(ctx context.Context, seasonID uuid.UUID, summary *league.RoundSummary, user *club.Club) error {
	matches := make([]MatchRecord, 0, len(summary.Results))
	for _, r := range summary.Results {
		events, err := json.Marshal(r.Match.Events)
		if err != nil {
			return fmt.Errorf("failed to marshal events: %w", err)
		}
		matches = append(matches, MatchRecord{
			ID:        uuid.New(),
			SeasonID:  seasonID,
			Round:     r.Round,
			Home:      r.Home,
			Away:      r.Away,
			HomeGoals: r.HomeGoals,
			AwayGoals: r.AwayGoals,
			Events:    datatypes.JSON(events),
			PlayedAt:  r.PlayedAt,
		})
	}

	standings, err := json.Marshal(summary.Standings)
	if err != nil {
		return fmt.Errorf("failed to marshal standings: %w", err)
	}
	snapshot := ClubSnapshot{
		ID:              uuid.New(),
		SeasonID:        seasonID,
		Round:           summary.Round,
		Club:            user.Name,
		Position:        summary.UserPosition,
		BoardTrust:      user.BoardTrust,
		TeamInstability: user.TeamInstability,
		CoachPressure:   user.CoachPressure,
		UnderUltimatum:  user.UnderUltimatum,
		Balance:         user.Balance.StringFixed(2),
		FinancialStatus: string(user.FinancialStatus),
		Standings:       datatypes.JSON(standings),
	}

	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(matches) > 0 {
			if err := tx.Create(&matches).Error; err != nil {
				return err
			}
		}
		return tx.Create(&snapshot).Error
	})
	if err != nil {
		return fmt.Errorf("failed to archive round %d: %w", summary.Round, err)
	}

	a.logger.WithFields(logrus.Fields{
		"season":  seasonID.String(),
		"round":   summary.Round,
		"matches": len(matches),
	}).Debug("Round archived")
	return nil
}

// Matches lists a season's fixtures in play order
func (a *Archive) Matches(ctx context.Context, seasonID uuid.UUID) ([]MatchRecord, error) {
	var out []MatchRecord
	err := a.db.WithContext(ctx).
		Where("season_id = ?", seasonID).
		Order("round ASC, played_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load matches: %w", err)
	}
	return out, nil
}

// ClubHistory lists the user club snapshots of a season by round
func (a *Archive) ClubHistory(ctx context.Context, seasonID uuid.UUID) ([]ClubSnapshot, error) {
	var out []ClubSnapshot
	err := a.db.WithContext(ctx).
		Where("season_id = ?", seasonID).
		Order("round ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load club history: %w", err)
	}
	return out, nil
}
