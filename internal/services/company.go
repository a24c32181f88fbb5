package services

import (
	"context"
	"errors"
	"strings"

	"github.com/diewo77/gestion/internal/log"
	"github.com/diewo77/gestion/internal/models"
	"github.com/diewo77/gestion/validation"
	"gorm.io/gorm"
)

type CompanyInput struct {
	Name     string `json:"name"`
	TaxID    string `json:"tax_id"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	BankName string `json:"bank_name"`
	RIB      string `json:"rib"`
	Footer   string `json:"footer"`
}

// CompanyService reads and writes the single company profile. Until one is
// saved, Profile returns the configured defaults.
type CompanyService struct {
	db       *gorm.DB
	defaults models.CompanyProfile
	logger   *log.Logger
}

func NewCompanyService(db *gorm.DB, defaults models.CompanyProfile, logger *log.Logger) *CompanyService {
	return &CompanyService{db: db, defaults: defaults, logger: logger.WithComponent(log.ComponentApp)}
}

// IsConfigured reports whether a profile row exists.
func (s *CompanyService) IsConfigured(ctx context.Context) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.CompanyProfile{}).Count(&count).Error; err != nil {
		return false, storageError("count company profiles", "company", 0, "", "", err)
	}
	return count > 0, nil
}

// Profile returns the stored profile, or the defaults when none exists.
func (s *CompanyService) Profile(ctx context.Context) (models.CompanyProfile, error) {
	var p models.CompanyProfile
	err := s.db.WithContext(ctx).Order("id ASC").First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.defaults, nil
	}
	if err != nil {
		return models.CompanyProfile{}, storageError("get company profile", "company", 0, "", "", err)
	}
	return p, nil
}

// Save creates the profile on first use and overwrites it afterwards.
func (s *CompanyService) Save(ctx context.Context, in CompanyInput) (*models.CompanyProfile, error) {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}

	var p models.CompanyProfile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Order("id ASC").First(&p).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		p.Name = strings.TrimSpace(in.Name)
		p.TaxID = strings.TrimSpace(in.TaxID)
		p.Address = strings.TrimSpace(in.Address)
		p.Phone = strings.TrimSpace(in.Phone)
		p.Email = strings.TrimSpace(in.Email)
		p.BankName = strings.TrimSpace(in.BankName)
		p.RIB = strings.TrimSpace(in.RIB)
		p.Footer = strings.TrimSpace(in.Footer)
		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, storageError("save company profile", "company", p.ID, "", "", err)
	}
	s.logger.InfoContext(ctx, "company profile saved", log.FieldOperation, log.OpUpdate)
	return &p, nil
}
