package services

import (
	"context"
	"time"

	"github.com/scrubline/scrubline-backend-go/apperrors"
	"github.com/scrubline/scrubline-backend-go/models"
	"github.com/scrubline/scrubline-backend-go/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const addressNotFound = "address not found"

type AddressInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state"`
	Pincode string `json:"pincode" validate:"required"`
	Primary bool   `json:"primary"`
}

type AddressUpdate struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	Pincode *string `json:"pincode"`
	Primary *bool   `json:"primary"`
}

// AddressService keeps at most one primary address per user. The unset-then-set
// sequences are not atomic across concurrent requests for the same user.
type AddressService struct {
	addresses repository.AddressRepository
	log       *zap.Logger
}

func NewAddressService(addresses repository.AddressRepository, log *zap.Logger) *AddressService {
	return &AddressService{addresses: addresses, log: log}
}

func (s *AddressService) List(ctx context.Context, userID string) ([]models.Address, error) {
	return s.addresses.ListByUser(ctx, userID)
}

// Add inserts a new address. The first address is always primary; asking for
// primary moves it from any other address.
func (s *AddressService) Add(ctx context.Context, userID string, in AddressInput) (*models.Address, error) {
	if in.Address == "" || in.City == "" || in.Pincode == "" {
		return nil, apperrors.BadRequest("address, city and pincode are required")
	}

	existing, err := s.addresses.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	primary := in.Primary || len(existing) == 0
	if primary {
		if err := s.addresses.UnsetPrimary(ctx, userID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	addr := &models.Address{
		UserID:    userID,
		Name:      in.Name,
		Phone:     in.Phone,
		Address:   in.Address,
		City:      in.City,
		State:     in.State,
		Pincode:   in.Pincode,
		Primary:   primary,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.addresses.Insert(ctx, addr); err != nil {
		return nil, err
	}
	return addr, nil
}

// owned loads an address and hides addresses of other users behind the same
// not found error as missing ones.
func (s *AddressService) owned(ctx context.Context, userID, id string) (*models.Address, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.NotFound(addressNotFound)
	}
	addr, err := s.addresses.Get(ctx, oid)
	if err != nil {
		return nil, notFound(err, addressNotFound)
	}
	if addr.UserID != userID {
		return nil, apperrors.NotFound(addressNotFound)
	}
	return addr, nil
}

// Update edits an owned address. primary=true moves the primary flag here;
// primary=false on the current primary is ignored.
func (s *AddressService) Update(ctx context.Context, userID, id string, in AddressUpdate) (*models.Address, error) {
	addr, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	fields := repository.Fields{}
	for key, v := range map[string]*string{
		"name":    in.Name,
		"phone":   in.Phone,
		"address": in.Address,
		"city":    in.City,
		"state":   in.State,
		"pincode": in.Pincode,
	} {
		if value, ok := trimmed(v); ok {
			fields[key] = value
		}
	}
	for _, required := range []string{"address", "city", "pincode"} {
		if v, ok := fields[required]; ok && v == "" {
			return nil, apperrors.BadRequest(required + " cannot be empty")
		}
	}

	if in.Primary != nil && *in.Primary && !addr.Primary {
		if err := s.addresses.UnsetPrimary(ctx, userID); err != nil {
			return nil, err
		}
		fields["primary"] = true
	}

	fields["updatedAt"] = time.Now().UTC()
	if err := s.addresses.Update(ctx, addr.ID, fields); err != nil {
		return nil, notFound(err, addressNotFound)
	}
	updated, err := s.addresses.Get(ctx, addr.ID)
	return updated, notFound(err, addressNotFound)
}

func (s *AddressService) SetPrimary(ctx context.Context, userID, id string) (*models.Address, error) {
	addr, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.addresses.UnsetPrimary(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.addresses.SetPrimary(ctx, addr.ID); err != nil {
		return nil, notFound(err, addressNotFound)
	}
	addr.Primary = true
	return addr, nil
}

// Delete removes an owned address. When it was the primary one, the oldest
// remaining address is promoted.
func (s *AddressService) Delete(ctx context.Context, userID, id string) error {
	addr, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.addresses.Delete(ctx, addr.ID); err != nil {
		return notFound(err, addressNotFound)
	}
	if !addr.Primary {
		return nil
	}

	remaining, err := s.addresses.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		return nil
	}
	if err := s.addresses.SetPrimary(ctx, remaining[0].ID); err != nil {
		return err
	}
	s.log.Debug("Promoted primary address", zap.String("user_id", userID), zap.String("address_id", remaining[0].ID.Hex()))
	return nil
}
