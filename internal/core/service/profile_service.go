package service

import (
	"context"
	"strings"

	"github.com/kompu/storefront/internal/core/domain"
	"github.com/kompu/storefront/internal/core/ports"
)

const (
	opProfileGet    = "profile.get"
	opProfileUpdate = "profile.update"
)

type ProfileService struct {
	resolver *Resolver
	users    ports.UserRepository
	txn      *Txn
}

func NewProfileService(resolver *Resolver, users ports.UserRepository, txn *Txn) *ProfileService {
	return &ProfileService{resolver: resolver, users: users, txn: txn}
}

func (s *ProfileService) Get(ctx context.Context) (*domain.User, error) {
	sess, err := s.resolver.Current(ctx, opProfileGet)
	if err != nil {
		return nil, err
	}
	u := *sess.User()
	return &u, nil
}

// Update replaces name, phone and address. E-mail and password are not
// editable here.
func (s *ProfileService) Update(ctx context.Context, in ports.ProfileInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)
	address := strings.TrimSpace(in.Address)
	if name == "" || phone == "" || address == "" {
		return nil, domain.Invalid(msgFieldsRequired)
	}

	var updated domain.User
	err := s.txn.Do(func() error {
		sess, err := s.resolver.Current(ctx, opProfileUpdate)
		if err != nil {
			return err
		}
		u := sess.User()
		u.Name, u.Phone, u.Address = name, phone, address
		if err := s.users.SaveAll(ctx, sess.Users); err != nil {
			return err
		}
		updated = *u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
