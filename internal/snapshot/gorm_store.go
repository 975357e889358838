package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/partnerz-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/partnerz-backend/pkg/errors"
)

const defaultKeep = 10

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// GormStore keeps snapshots in the directory_snapshots table and prunes all
// but the newest keep rows on every save.
type GormStore struct {
	db   txRunner
	keep int
}

func NewGormStore(db txRunner, keep int) (*GormStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if keep <= 0 {
		keep = defaultKeep
	}
	return &GormStore{db: db, keep: keep}, nil
}

func (s *GormStore) Save(ctx context.Context, state State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode snapshot")
	}
	row := &models.DirectorySnapshot{
		ID:          uuid.New(),
		Version:     state.Version,
		MemberCount: len(state.Members),
		Payload:     payload,
		TakenAt:     state.TakenAt.UTC(),
	}
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		newest := tx.Model(&models.DirectorySnapshot{}).
			Select("id").
			Order("taken_at DESC").
			Limit(s.keep)
		return tx.Where("id NOT IN (?)", newest).Delete(&models.DirectorySnapshot{}).Error
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save snapshot")
	}
	return nil
}

func (s *GormStore) Load(ctx context.Context) (State, error) {
	var row models.DirectorySnapshot
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Order("taken_at DESC").Take(&row).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return State{}, ErrNoSnapshot
	}
	if err != nil {
		return State{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load snapshot")
	}
	var state State
	if err := json.Unmarshal(row.Payload, &state); err != nil {
		return State{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode snapshot")
	}
	return state, nil
}
