package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pbandeira/agendabot/internal/domain"
	"github.com/pbandeira/agendabot/internal/storage"
)

// ShoppingService is plain keyed CRUD; the shopping list carries no temporal
// logic.
type ShoppingService struct {
	store storage.ShoppingStore
}

func NewShoppingService(store storage.ShoppingStore) *ShoppingService {
	return &ShoppingService{store: store}
}

func (s *ShoppingService) Add(text string) (*domain.ShoppingItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("shopping item text cannot be empty")
	}

	item := &domain.ShoppingItem{
		ID:        uuid.NewString(),
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := s.store.UpsertShoppingItem(item); err != nil {
		return nil, fmt.Errorf("add shopping item: %w", err)
	}
	return item, nil
}

func (s *ShoppingService) Rename(id, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("shopping item text cannot be empty")
	}
	item, err := s.find(id)
	if err != nil {
		return err
	}
	item.Text = text
	return s.store.UpsertShoppingItem(item)
}

func (s *ShoppingService) Toggle(id string) error {
	item, err := s.find(id)
	if err != nil {
		return err
	}
	item.Completed = !item.Completed
	return s.store.UpsertShoppingItem(item)
}

func (s *ShoppingService) Delete(id string) error {
	return s.store.DeleteShoppingItem(id)
}

func (s *ShoppingService) ClearCompleted() error {
	return s.store.DeleteCompletedShoppingItems()
}

func (s *ShoppingService) List() ([]*domain.ShoppingItem, error) {
	return s.store.ListShoppingItems()
}

func (s *ShoppingService) find(id string) (*domain.ShoppingItem, error) {
	items, err := s.store.ListShoppingItems()
	if err != nil {
		return nil, fmt.Errorf("list shopping items: %w", err)
	}
	for _, item := range items {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, fmt.Errorf("shopping item not found")
}
