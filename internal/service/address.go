package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"grocery-mart/internal/models"
	"grocery-mart/internal/repository"
)

type AddressService struct {
	addresses repository.AddressStore
	tx        repository.TxManager
	Now       func() time.Time
}

func NewAddressService(repos repository.Set) *AddressService {
	return &AddressService{addresses: repos.Addresses, tx: repos.Tx, Now: time.Now}
}

func (s *AddressService) List(ctx context.Context, session *models.Session) ([]*models.Address, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	return s.addresses.FindByUser(ctx, session.UserID)
}

// Save crea o actualiza la dirección y la deja como predeterminada
func (s *AddressService) Save(ctx context.Context, session *models.Session, address *models.Address) (*models.Address, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if err := validateAddress(address); err != nil {
		return nil, err
	}

	now := s.Now()
	address.UserID = session.UserID
	address.UpdatedAt = now

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if address.ID.IsZero() {
			address.ID = primitive.NewObjectID()
			address.CreatedAt = now
		} else {
			existing, err := s.addresses.FindByID(ctx, session.UserID, address.ID)
			if err != nil {
				return err
			}
			address.CreatedAt = existing.CreatedAt
		}
		return s.addresses.SaveAsDefault(ctx, address)
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

func validateAddress(a *models.Address) error {
	return validateStruct(a)
}

func (s *AddressService) Select(ctx context.Context, session *models.Session, id primitive.ObjectID) error {
	if err := requireSession(session); err != nil {
		return err
	}
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		return s.addresses.SetDefault(ctx, session.UserID, id)
	})
}

// Delete borra la dirección; si era la predeterminada promueve la más reciente
func (s *AddressService) Delete(ctx context.Context, session *models.Session, id primitive.ObjectID) error {
	if err := requireSession(session); err != nil {
		return err
	}
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		address, err := s.addresses.FindByID(ctx, session.UserID, id)
		if err != nil {
			return err
		}
		if err := s.addresses.Delete(ctx, session.UserID, id); err != nil {
			return err
		}
		if !address.DefaultAddress {
			return nil
		}

		rest, err := s.addresses.FindByUser(ctx, session.UserID)
		if err != nil || len(rest) == 0 {
			return err
		}
		latest := rest[0]
		for _, a := range rest[1:] {
			if a.UpdatedAt.After(latest.UpdatedAt) {
				latest = a
			}
		}
		return s.addresses.SetDefault(ctx, session.UserID, latest.ID)
	})
}

func (s *AddressService) Default(ctx context.Context, session *models.Session) (*models.Address, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	return s.Resolve(ctx, session.UserID, "")
}

// Resolve usa la dirección indicada o, si no hay, la predeterminada
func (s *AddressService) Resolve(ctx context.Context, userID, rawID string) (*models.Address, error) {
	if rawID != "" {
		id, err := ParseID("address_id", rawID)
		if err != nil {
			return nil, err
		}
		address, err := s.addresses.FindByID(ctx, userID, id)
		if errors.Is(err, repository.ErrAddressNotFound) {
			return nil, ErrAddressRequired
		}
		return address, err
	}

	all, err := s.addresses.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, a := range all {
		if a.DefaultAddress {
			return a, nil
		}
	}
	return nil, ErrAddressRequired
}
