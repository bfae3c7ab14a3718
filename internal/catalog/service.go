package catalog

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"Storefront/pkg/kit"
)

// Service is the catalog's use-case layer: every page-level action goes
// through it rather than touching the store directly.
type Service struct {
	store   Store
	log     *zap.Logger
	metrics *Metrics
}

func NewService(store Store, log *zap.Logger, metrics *Metrics) *Service {
	return &Service{store: store, log: kit.OrNop(log), metrics: metrics}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// AddProduct validates d, commits it and appends it with a fresh id.
// Failures are *ValidationError or *PersistenceError; on either, nothing
// has been written and the caller may retry with the same draft.
func (s *Service) AddProduct(ctx context.Context, d ProductDraft) (Product, error) {
	if err := s.check(d); err != nil {
		return Product{}, err
	}

	p, err := d.Commit()
	if err != nil {
		return Product{}, commitFailed(err)
	}

	created, err := s.store.Append(ctx, p)
	if err != nil {
		s.persistFailed("append", err)
		return Product{}, err
	}

	s.metrics.added()
	s.log.Info("product added", zap.String("id", created.ID), zap.String("name", created.Name))
	return created, nil
}

// List derives the visible subset from the full stored collection on every
// call; nothing about the filter is persisted.
func (s *Service) List(ctx context.Context, c Criteria) []Product {
	return FilterProducts(s.store.LoadAll(ctx), c)
}

func (s *Service) All(ctx context.Context) []Product {
	return s.store.LoadAll(ctx)
}

func (s *Service) Search(ctx context.Context, term string, limit int) []Product {
	return SearchByName(s.store.LoadAll(ctx), term, limit)
}

// Detail returns ErrNotFound for an unknown id.
func (s *Service) Detail(ctx context.Context, id string) (Product, error) {
	p, ok, err := s.store.Get(ctx, id)
	if err != nil {
		s.persistFailed("get", err)
		return Product{}, err
	}
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

// UpdateProduct overlays patch on the stored product and re-runs the form
// rules against the result.
func (s *Service) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (Product, error) {
	updated, err := s.store.Update(ctx, id, func(cur Product) (Product, error) {
		d := patch.Apply(cur.Draft())
		if err := s.check(d); err != nil {
			return Product{}, err
		}
		p, err := d.Commit()
		if err != nil {
			return Product{}, commitFailed(err)
		}
		return p, nil
	})
	if err != nil {
		s.persistFailed("update", err)
		return Product{}, err
	}

	s.log.Info("product updated", zap.String("id", id), adminField(ctx))
	return updated, nil
}

func (s *Service) RemoveProduct(ctx context.Context, id string) error {
	if err := s.store.Remove(ctx, id); err != nil {
		s.persistFailed("remove", err)
		return err
	}
	s.log.Info("product removed", zap.String("id", id), adminField(ctx))
	return nil
}

func (s *Service) ReplaceAll(ctx context.Context, products []Product) error {
	if err := s.store.ReplaceAll(ctx, products); err != nil {
		s.persistFailed("replace_all", err)
		return err
	}
	s.log.Info("catalog replaced", zap.Int("count", len(products)), adminField(ctx))
	return nil
}

func (s *Service) check(d ProductDraft) error {
	err := CheckForm(d)
	var verr *ValidationError
	if errors.As(err, &verr) {
		s.metrics.rejected(verr.Fields)
	}
	return err
}

func (s *Service) persistFailed(op string, err error) {
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		return
	}
	s.metrics.persistFailed(op)
	s.log.Error("catalog persistence failed", zap.String("op", op), zap.Error(err))
}

// adminField names the admin behind a write, when the request carried one.
func adminField(ctx context.Context) zap.Field {
	sub, ok := AdminFromContext(ctx)
	if !ok {
		return zap.Skip()
	}
	return zap.String("admin", sub)
}

func commitFailed(err error) error {
	return &ValidationError{Message: FormInvalidMessage, Fields: []FieldError{{Field: "form", Message: err.Error()}}}
}
