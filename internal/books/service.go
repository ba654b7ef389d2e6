// Package books is the operation surface of the ledger. Each Service method
// runs in exactly one unit of work against the store.
package books

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/oikonomos-dev/oikonomos/internal/depreciation"
	"github.com/oikonomos-dev/oikonomos/internal/importer"
	"github.com/oikonomos-dev/oikonomos/internal/ledger"
	"github.com/oikonomos-dev/oikonomos/internal/model"
	"github.com/oikonomos-dev/oikonomos/internal/reconcile"
	"github.com/oikonomos-dev/oikonomos/internal/store"
)

// Service provides the bookkeeping operations.
type Service struct {
	store      *store.Store
	ledger     *ledger.Ledger
	scheduler  *depreciation.Scheduler
	reconciler *reconcile.Engine
	importers  *importer.Registry
	log        *zap.Logger
}

// NewService creates a Service over s. A nil logger disables logging.
func NewService(s *store.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := ledger.New(logger.Named("ledger"))
	return &Service{
		store:      s,
		ledger:     l,
		scheduler:  depreciation.NewScheduler(l, logger.Named("depreciation")),
		reconciler: reconcile.NewEngine(l, logger.Named("reconcile")),
		importers:  importer.DefaultRegistry(),
		log:        logger,
	}
}

// CreateAccountParams holds parameters for opening an account.
type CreateAccountParams struct {
	Name           string
	Type           model.AccountType
	Purpose        model.AssetPurpose
	OpeningBalance int64
}

// CreateAccount opens an account with an opening balance. Liability
// accounts cannot open with a positive balance.
func (s *Service) CreateAccount(ctx context.Context, p CreateAccountParams) (model.Account, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return model.Account{}, fmt.Errorf("%w: account name is required", model.ErrInvalidInput)
	}
	if _, err := model.ParseAccountType(string(p.Type)); err != nil {
		return model.Account{}, err
	}
	if _, err := model.ParseAssetPurpose(string(p.Purpose)); err != nil {
		return model.Account{}, err
	}
	if !p.Type.AllowsBalance(p.OpeningBalance) {
		return model.Account{}, fmt.Errorf("%w: liability account balance cannot be positive", model.ErrInvalidInput)
	}

	var acct model.Account
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		acct, err = tx.InsertAccount(model.Account{
			Name:    name,
			Type:    p.Type,
			Purpose: p.Purpose,
			Balance: p.OpeningBalance,
		})
		return err
	})
	if err != nil {
		return model.Account{}, err
	}
	s.log.Info("account created", zap.String("id", acct.ID), zap.String("name", acct.Name), zap.Stringer("type", acct.Type))
	return acct, nil
}

// GetAccount returns an account by ID.
func (s *Service) GetAccount(ctx context.Context, id string) (model.Account, error) {
	var acct model.Account
	err := s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		acct, err = tx.GetAccount(id)
		return err
	})
	return acct, err
}

// FindAccount resolves ref as an account ID, or failing that as a
// case-insensitive account name.
func (s *Service) FindAccount(ctx context.Context, ref string) (model.Account, error) {
	var acct model.Account
	err := s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		acct, err = findAccount(tx, ref)
		return err
	})
	return acct, err
}

func findAccount(tx *store.Tx, ref string) (model.Account, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Account{}, fmt.Errorf("%w: account is required", model.ErrInvalidInput)
	}
	accts, err := tx.ListAccounts()
	if err != nil {
		return model.Account{}, err
	}
	var byName []model.Account
	for _, a := range accts {
		if a.ID == ref {
			return a, nil
		}
		if strings.EqualFold(a.Name, ref) {
			byName = append(byName, a)
		}
	}
	switch len(byName) {
	case 0:
		return model.Account{}, fmt.Errorf("%w: account %s", model.ErrNotFound, ref)
	case 1:
		return byName[0], nil
	default:
		return model.Account{}, fmt.Errorf("%w: account name %q is ambiguous, use its ID", model.ErrInvalidInput, ref)
	}
}

// ListAccounts returns every account ordered by name.
func (s *Service) ListAccounts(ctx context.Context) ([]model.Account, error) {
	var accts []model.Account
	err := s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		accts, err = tx.ListAccounts()
		return err
	})
	return accts, err
}

// CreateCategory adds a category. parentID may be empty.
func (s *Service) CreateCategory(ctx context.Context, name, parentID string) (model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Category{}, fmt.Errorf("%w: category name is required", model.ErrInvalidInput)
	}
	var c model.Category
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		c, err = tx.InsertCategory(model.Category{Name: name, ParentID: parentID, Active: true})
		return err
	})
	return c, err
}

// ListCategories returns every category ordered by name.
func (s *Service) ListCategories(ctx context.Context) ([]model.Category, error) {
	var cats []model.Category
	err := s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		cats, err = tx.ListCategories()
		return err
	})
	return cats, err
}

// CreatePayee adds a payee. defaultCategoryID may be empty.
func (s *Service) CreatePayee(ctx context.Context, name, defaultCategoryID string) (model.Payee, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Payee{}, fmt.Errorf("%w: payee name is required", model.ErrInvalidInput)
	}
	var p model.Payee
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		p, err = tx.InsertPayee(model.Payee{Name: name, DefaultCategoryID: defaultCategoryID})
		return err
	})
	return p, err
}

// ListPayees returns every payee ordered by name.
func (s *Service) ListPayees(ctx context.Context) ([]model.Payee, error) {
	var payees []model.Payee
	err := s.store.View(ctx, func(tx *store.Tx) error {
		var err error
		payees, err = tx.ListPayees()
		return err
	})
	return payees, err
}
