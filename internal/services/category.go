package services

import (
	"context"

	"github.com/catalogo-api/apiserver/types"
	"github.com/sirupsen/logrus"
)

// CategoryService encapsulates category use-cases.
type CategoryService struct {
	sessions SessionFactory
	events   eventNotifier
}

func NewCategoryService(sessions SessionFactory, publisher EventPublisher, logger logrus.FieldLogger) *CategoryService {
	return &CategoryService{
		sessions: sessions,
		events:   newEventNotifier(publisher, logger),
	}
}

func (s *CategoryService) List(ctx context.Context) ([]types.Category, error) {
	var categories []types.Category
	err := inSession(ctx, s.sessions, func(sess Session) error {
		var err error
		categories, err = sess.Categories().List(ctx)
		return err
	})
	return categories, err
}

func (s *CategoryService) Get(ctx context.Context, id int) (types.Category, error) {
	var category types.Category
	err := inSession(ctx, s.sessions, func(sess Session) error {
		var err error
		category, err = sess.Categories().Get(ctx, id)
		return err
	})
	return category, err
}

// Create inserts the category. Any id in the input is ignored.
func (s *CategoryService) Create(ctx context.Context, category types.Category) (types.Category, error) {
	category.ID = 0

	var created types.Category
	err := inSession(ctx, s.sessions, func(sess Session) error {
		var err error
		created, err = sess.Categories().Create(ctx, category)
		if err != nil {
			return err
		}
		return sess.Commit()
	})
	if err != nil {
		return types.Category{}, err
	}

	s.events.notify(ctx, types.EntityCategory, types.ActionCreated, created.ID, created)
	return created, nil
}

// Update copies name and description onto the stored category. Other
// columns are left as they are.
func (s *CategoryService) Update(ctx context.Context, id int, category types.Category) (types.Category, error) {
	if category.ID != id {
		return types.Category{}, ErrIDMismatch
	}

	var updated types.Category
	err := inSession(ctx, s.sessions, func(sess Session) error {
		repo := sess.Categories()
		current, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}

		current.Name = category.Name
		current.Description = category.Description

		updated, err = repo.Update(ctx, current)
		if err != nil {
			return err
		}
		return sess.Commit()
	})
	if err != nil {
		return types.Category{}, err
	}

	s.events.notify(ctx, types.EntityCategory, types.ActionUpdated, updated.ID, updated)
	return updated, nil
}

// Delete removes the category and returns it as it was before deletion.
func (s *CategoryService) Delete(ctx context.Context, id int) (types.Category, error) {
	var deleted types.Category
	err := inSession(ctx, s.sessions, func(sess Session) error {
		var err error
		deleted, err = sess.Categories().Delete(ctx, id)
		if err != nil {
			return err
		}
		return sess.Commit()
	})
	if err != nil {
		return types.Category{}, err
	}

	s.events.notify(ctx, types.EntityCategory, types.ActionDeleted, deleted.ID, deleted)
	return deleted, nil
}
