// Package runs stores the records of finished runs
package runs

import (
	"context"
	"time"

	"github.com/KirkDiggler/rpg-action/internal/errors"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=runsmock github.com/KirkDiggler/rpg-action/internal/repositories/runs Repository

// Record is one finished run. It is history only; nothing resumes from it.
type Record struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`

	// Result is "completed" or "defeated"
	Result          string  `json:"result"`
	PlayerName      string  `json:"player_name"`
	Stage           string  `json:"stage"`
	Level           int     `json:"level"`
	Experience      int     `json:"experience"`
	EnemiesDefeated int     `json:"enemies_defeated"`
	PlayTime        float64 `json:"play_time"`

	FinishedAt time.Time `json:"finished_at"`
}

// SaveInput contains the record to store
type SaveInput struct {
	Record *Record
}

// SaveOutput contains the stored record
type SaveOutput struct {
	Record *Record
}

// GetInput identifies a record
type GetInput struct {
	ID string
}

// GetOutput contains the record
type GetOutput struct {
	Record *Record
}

// ListRecentInput limits the listing. Limit <= 0 means every stored record.
type ListRecentInput struct {
	Limit int
}

// ListRecentOutput holds records, newest first
type ListRecentOutput struct {
	Records []*Record
}

// Repository defines storage for run records
type Repository interface {
	// Save stores a record and trims the history
	Save(ctx context.Context, input *SaveInput) (*SaveOutput, error)

	// Get retrieves a record by id
	Get(ctx context.Context, input *GetInput) (*GetOutput, error)

	// ListRecent returns the most recently finished runs
	ListRecent(ctx context.Context, input *ListRecentInput) (*ListRecentOutput, error)
}

func validateSave(input *SaveInput) error {
	if input == nil || input.Record == nil {
		return errors.InvalidArgument("record is required")
	}
	if input.Record.ID == "" {
		return errors.InvalidArgument("record ID is required")
	}
	return nil
}
