package services

import (
	"context"
	"database/sql"

	"github.com/catalogo-api/apiserver/internal/store"
	"github.com/catalogo-api/apiserver/types"
)

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]types.Category, error)
	Get(ctx context.Context, id int) (types.Category, error)
	Create(ctx context.Context, category types.Category) (types.Category, error)
	Update(ctx context.Context, category types.Category) (types.Category, error)
	Delete(ctx context.Context, id int) (types.Category, error)
}

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	List(ctx context.Context) ([]types.Product, error)
	Get(ctx context.Context, id int) (types.Product, error)
	Create(ctx context.Context, product types.Product) (types.Product, error)
	Update(ctx context.Context, product types.Product) (types.Product, error)
	Delete(ctx context.Context, id int) (types.Product, error)
}

// Session is a unit of work over both collections. Writes are kept only
// if Commit is called; Close must always be called.
type Session interface {
	Categories() CategoryRepository
	Products() ProductRepository
	Commit() error
	Close() error
}

// SessionFactory opens one Session per request.
type SessionFactory func(ctx context.Context) (Session, error)

// NewSQLSessionFactory opens sessions as transactions on db.
func NewSQLSessionFactory(db *sql.DB) SessionFactory {
	return func(ctx context.Context) (Session, error) {
		sess, err := store.OpenSession(ctx, db)
		if err != nil {
			return nil, err
		}
		return sqlSession{sess: sess}, nil
	}
}

type sqlSession struct {
	sess *store.Session
}

func (s sqlSession) Categories() CategoryRepository { return s.sess.Categories() }
func (s sqlSession) Products() ProductRepository    { return s.sess.Products() }
func (s sqlSession) Commit() error                  { return s.sess.Commit() }
func (s sqlSession) Close() error                   { return s.sess.Close() }

func inSession(ctx context.Context, open SessionFactory, fn func(Session) error) (err error) {
	sess, err := open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := sess.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(sess)
}
