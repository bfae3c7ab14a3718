package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"Storefront/pkg/kit"
)

// DefaultStorageKey names the entry holding the product array.
const DefaultStorageKey = "products"

// Storage is a named-entry byte store, the server-side counterpart of
// browser local storage. A missing key reports ok == false, not an error.
type Storage interface {
	GetItem(ctx context.Context, key string) (value []byte, ok bool, err error)
	SetItem(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
}

// Store owns the persisted product collection.
type Store interface {
	Ping(ctx context.Context) error

	// LoadAll never fails: an absent, unreadable or malformed collection
	// reads as empty.
	LoadAll(ctx context.Context) []Product

	// Append assigns a fresh id to p, ignoring any id it carries, and
	// writes the whole collection back.
	Append(ctx context.Context, p Product) (Product, error)

	ReplaceAll(ctx context.Context, products []Product) error
	Get(ctx context.Context, id string) (Product, bool, error)

	// Update applies fn to the stored product under the write lock. The id
	// is preserved whatever fn returns.
	Update(ctx context.Context, id string, fn func(Product) (Product, error)) (Product, error)
	Remove(ctx context.Context, id string) error
}

// KVStore keeps the whole collection as one JSON array under a single key.
// Every write is a full read-modify-write; the mutex makes that atomic
// within the process. Separate processes sharing a Storage are last-writer-wins.
type KVStore struct {
	mu      sync.RWMutex
	storage Storage
	key     string
	events  Publisher
	log     *zap.Logger
	newID   func() string
}

type StoreOption func(*KVStore)

func WithKey(key string) StoreOption {
	return func(s *KVStore) {
		if key != "" {
			s.key = key
		}
	}
}

func WithPublisher(p Publisher) StoreOption {
	return func(s *KVStore) {
		if p != nil {
			s.events = p
		}
	}
}

func WithLogger(l *zap.Logger) StoreOption {
	return func(s *KVStore) { s.log = kit.OrNop(l) }
}

func withIDFunc(fn func() string) StoreOption {
	return func(s *KVStore) { s.newID = fn }
}

func NewKVStore(storage Storage, opts ...StoreOption) *KVStore {
	s := &KVStore{
		storage: storage,
		key:     DefaultStorageKey,
		events:  NopPublisher{},
		log:     zap.NewNop(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *KVStore) Ping(ctx context.Context) error {
	return s.storage.Ping(ctx)
}

func (s *KVStore) LoadAll(ctx context.Context) []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products, err := s.read(ctx)
	if err != nil {
		s.log.Warn("load products failed, serving empty catalog", zap.Error(err))
		return []Product{}
	}
	return products
}

func (s *KVStore) Get(ctx context.Context, id string) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products, err := s.read(ctx)
	if err != nil {
		var perr *PersistenceError
		if errors.As(err, &perr) {
			return Product{}, false, err
		}
		// Malformed data holds no products.
		return Product{}, false, nil
	}

	i := indexOf(products, id)
	if i < 0 {
		return Product{}, false, nil
	}
	return products[i], true, nil
}

func (s *KVStore) Append(ctx context.Context, p Product) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.read(ctx)
	if err != nil {
		return Product{}, asPersistence("read", err)
	}

	p.ID = s.freshID(products)
	if p.ImageURLs == nil {
		p.ImageURLs = []string{}
	}

	if err := s.write(ctx, append(products, p)); err != nil {
		return Product{}, err
	}

	s.publish(ctx, EventProductCreated, p.ID)
	return p, nil
}

func (s *KVStore) ReplaceAll(ctx context.Context, products []Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		if p.ID == "" {
			return invalidCatalog("product without id")
		}
		if _, dup := seen[p.ID]; dup {
			return invalidCatalog("duplicate id " + p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	if err := s.write(ctx, products); err != nil {
		return err
	}

	s.publish(ctx, EventCatalogReplaced, "")
	return nil
}

func (s *KVStore) Update(ctx context.Context, id string, fn func(Product) (Product, error)) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.read(ctx)
	if err != nil {
		return Product{}, asPersistence("read", err)
	}

	i := indexOf(products, id)
	if i < 0 {
		return Product{}, ErrNotFound
	}

	updated, err := fn(products[i])
	if err != nil {
		return Product{}, err
	}
	updated.ID = id
	products[i] = updated

	if err := s.write(ctx, products); err != nil {
		return Product{}, err
	}

	s.publish(ctx, EventProductUpdated, id)
	return updated, nil
}

func (s *KVStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.read(ctx)
	if err != nil {
		return asPersistence("read", err)
	}

	i := indexOf(products, id)
	if i < 0 {
		return ErrNotFound
	}

	products = append(products[:i], products[i+1:]...)
	if err := s.write(ctx, products); err != nil {
		return err
	}

	s.publish(ctx, EventProductRemoved, id)
	return nil
}

// read returns a *PersistenceError when the storage fails and a plain
// decode error when the stored value is not a product array.
func (s *KVStore) read(ctx context.Context) ([]Product, error) {
	raw, ok, err := s.storage.GetItem(ctx, s.key)
	if err != nil {
		return nil, &PersistenceError{Op: "read", Err: err}
	}
	if !ok || len(raw) == 0 {
		return []Product{}, nil
	}

	var products []Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, err
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

func (s *KVStore) write(ctx context.Context, products []Product) error {
	if products == nil {
		products = []Product{}
	}
	raw, err := json.Marshal(products)
	if err != nil {
		return &PersistenceError{Op: "encode", Err: err}
	}
	if err := s.storage.SetItem(ctx, s.key, raw); err != nil {
		return &PersistenceError{Op: "write", Err: err}
	}
	return nil
}

func (s *KVStore) freshID(products []Product) string {
	for {
		id := s.newID()
		if indexOf(products, id) < 0 {
			return id
		}
	}
}

func (s *KVStore) publish(ctx context.Context, typ, id string) {
	if err := s.events.Publish(ctx, NewEvent(typ, id)); err != nil {
		s.log.Warn("publish event failed", zap.String("type", typ), zap.String("id", id), zap.Error(err))
	}
}

// asPersistence keeps storage failures as they are and reports an
// unparseable stored collection as a failed read, so a write never
// clobbers data it could not understand.
func asPersistence(op string, err error) error {
	var perr *PersistenceError
	if errors.As(err, &perr) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

func invalidCatalog(msg string) error {
	return &ValidationError{Message: "invalid catalog", Fields: []FieldError{{Field: "id", Message: msg}}}
}

func indexOf(products []Product, id string) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}
