package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/scrubline/scrubline-backend-go/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FileProductRepository keeps the catalog in a JSON array on disk. It backs the
// catalog when MongoDB is unreachable.
type FileProductRepository struct {
	mu   sync.RWMutex
	path string
}

func NewFileProductRepository(path string) *FileProductRepository {
	return &FileProductRepository{path: path}
}

func (r *FileProductRepository) load() ([]models.Product, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return []models.Product{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.path, err)
	}
	products := []models.Product{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return products, nil
	}
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", r.path, err)
	}
	return products, nil
}

func (r *FileProductRepository) save(products []models.Product) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(r.path), err)
	}
	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return err
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	return os.Rename(tmp, r.path)
}

func (r *FileProductRepository) List(_ context.Context, f ProductFilter) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products, err := r.load()
	if err != nil {
		return nil, err
	}
	out := []models.Product{}
	for _, p := range products {
		if matchesProduct(p, f) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *FileProductRepository) Get(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID.Hex() == id {
			return &products[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *FileProductRepository) Create(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.load()
	if err != nil {
		return err
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	return r.save(append(products, *p))
}

func (r *FileProductRepository) Update(_ context.Context, id string, fields Fields) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID.Hex() != id {
			continue
		}
		var updated models.Product
		if err := applyFields(products[i], fields, &updated); err != nil {
			return nil, err
		}
		products[i] = updated
		if err := r.save(products); err != nil {
			return nil, err
		}
		return &products[i], nil
	}
	return nil, ErrNotFound
}

func (r *FileProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.load()
	if err != nil {
		return err
	}
	for i := range products {
		if products[i].ID.Hex() == id {
			return r.save(append(products[:i], products[i+1:]...))
		}
	}
	return ErrNotFound
}

func matchesProduct(p models.Product, f ProductFilter) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Subcategory != "" && p.Subcategory != f.Subcategory {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
		return false
	}
	return true
}
