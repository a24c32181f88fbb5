package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/diewo77/gestion/internal/log"
	"github.com/diewo77/gestion/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxNumberAttempts bounds how often the counter is advanced past numbers
// that already exist in the documents table.
const maxNumberAttempts = 5

// FormatNumber renders a document number: FAC-2024-0007.
func FormatNumber(kind models.DocumentKind, year int, value int64) string {
	return fmt.Sprintf("%s-%04d-%04d", kind.Prefix(), year, value)
}

// Numberer hands out document numbers from a persisted counter per kind and
// year. Reservations are serialised in-process by mu; across processes the
// row lock taken by the counter UPDATE does the same job.
type Numberer struct {
	db     *gorm.DB
	logger *log.Logger
	now    func() time.Time

	mu sync.Mutex
}

func NewNumberer(db *gorm.DB, logger *log.Logger) *Numberer {
	return &Numberer{db: db, logger: logger.WithComponent(log.ComponentNumbering), now: time.Now}
}

// Allocate reserves the next number of kind for the current year.
func (n *Numberer) Allocate(ctx context.Context, kind models.DocumentKind) (string, error) {
	return n.Reserve(ctx, kind, n.now(), nil)
}

// Reserve advances the counter of kind for the year of at and calls fn with
// the new number inside the same transaction. If fn fails the counter
// increment is rolled back with it, so numbers are never skipped or reused.
func (n *Numberer) Reserve(ctx context.Context, kind models.DocumentKind, at time.Time, fn func(tx *gorm.DB, number string) error) (string, error) {
	if !kind.Valid() {
		return "", invalid("kind", "invalid_value")
	}
	year := at.UTC().Year()

	n.mu.Lock()
	defer n.mu.Unlock()

	var number string
	err := n.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for attempt := 0; attempt < maxNumberAttempts; attempt++ {
			value, err := nextValue(tx, kind, year)
			if err != nil {
				return err
			}
			candidate := FormatNumber(kind, year, value)
			if kind.IsDocument() {
				var count int64
				if err := tx.Model(&models.Document{}).Where("number = ?", candidate).Count(&count).Error; err != nil {
					return err
				}
				if count > 0 {
					n.logger.WarnContext(ctx, "number already used, advancing counter", log.FieldNumber, candidate)
					continue
				}
			}
			number = candidate
			if fn == nil {
				return nil
			}
			return fn(tx, number)
		}
		return &ConflictError{Field: "number", Value: fmt.Sprintf("%s-%04d-*", kind.Prefix(), year)}
	})
	if err != nil {
		return "", storageError("reserve number", "document", 0, "number", number, err)
	}
	n.logger.DebugContext(ctx, "number allocated", log.FieldOperation, log.OpAllocate, log.FieldKind, string(kind), log.FieldNumber, number)
	return number, nil
}

// nextValue increments the (kind, year) counter and returns the new value,
// creating the row on first use.
func nextValue(tx *gorm.DB, kind models.DocumentKind, year int) (int64, error) {
	ok, err := incrementSequence(tx, kind, year)
	if err != nil {
		return 0, err
	}
	if !ok {
		seq := models.DocumentSequence{Kind: kind, Year: year, LastValue: 1}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq)
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected == 1 {
			return 1, nil
		}
		// created concurrently by another process
		if ok, err = incrementSequence(tx, kind, year); err != nil {
			return 0, err
		} else if !ok {
			return 0, fmt.Errorf("sequence %s/%d missing after insert", kind, year)
		}
	}

	var seq models.DocumentSequence
	if err := tx.Where("kind = ? AND year = ?", kind, year).Take(&seq).Error; err != nil {
		return 0, err
	}
	return seq.LastValue, nil
}

func incrementSequence(tx *gorm.DB, kind models.DocumentKind, year int) (bool, error) {
	res := tx.Model(&models.DocumentSequence{}).
		Where("kind = ? AND year = ?", kind, year).
		Updates(map[string]any{
			"last_value": gorm.Expr("last_value + ?", 1),
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected == 1, res.Error
}
