package service

import (
	"go.uber.org/zap"

	"github.com/campuseats/ordering/internal/models"
)

// VendorService serves the browse surface: vendor listings and menus
type VendorService struct {
	vendors VendorRepo
	logger  *zap.Logger
}

// NewVendorService creates a new vendor service
func NewVendorService(vendors VendorRepo, logger *zap.Logger) *VendorService {
	return &VendorService{
		vendors: vendors,
		logger:  logger,
	}
}

// List lists vendors, optionally scoped to a university
func (s *VendorService) List(universityID string) ([]*models.Vendor, error) {
	return s.vendors.List(universityID)
}

// Menu returns a vendor's menu
func (s *VendorService) Menu(vendorID string) ([]*models.MenuItem, error) {
	vendor, err := s.vendors.GetByID(vendorID)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, ErrVendorNotFound
	}
	return s.vendors.ListMenuItems(vendorID)
}
