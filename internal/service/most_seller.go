package service

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"grocery-mart/internal/cache"
	"grocery-mart/internal/models"
	"grocery-mart/internal/repository"
)

const mostSellerPrefix = "most_sellers:"

type MostSellerService struct {
	store repository.MostSellerStore
	cache *cache.Cache
	topN  int
}

func NewMostSellerService(repos repository.Set, c *cache.Cache, topN int) *MostSellerService {
	return &MostSellerService{store: repos.MostSellers, cache: c, topN: topN}
}

// Top devuelve el ranking por unidades vendidas (desempate por nombre)
func (s *MostSellerService) Top(ctx context.Context, n int) ([]*models.MostSellerCounter, error) {
	if n <= 0 {
		n = s.topN
	}
	key := fmt.Sprintf("%stop:%d", mostSellerPrefix, n)

	var cached []*models.MostSellerCounter
	if found, err := s.cache.Unmarshal(key, &cached); err == nil && found {
		return cached, nil
	}

	top, err := s.store.Top(ctx, n)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Marshal(key, top)
	return top, nil
}

// All devuelve el ranking completo sin caché (exportación)
func (s *MostSellerService) All(ctx context.Context) ([]*models.MostSellerCounter, error) {
	return s.store.Top(ctx, 0)
}

// Badges marca los productos dentro del top configurado
func (s *MostSellerService) Badges(ctx context.Context) (map[primitive.ObjectID]bool, error) {
	top, err := s.Top(ctx, s.topN)
	if err != nil {
		return nil, err
	}
	badges := make(map[primitive.ObjectID]bool, len(top))
	for _, c := range top {
		badges[c.ProductID] = true
	}
	return badges, nil
}

func (s *MostSellerService) Refresh(ctx context.Context) error {
	s.Invalidate()
	_, err := s.Top(ctx, s.topN)
	return err
}

func (s *MostSellerService) Invalidate() {
	s.cache.DeleteByPrefix(mostSellerPrefix)
}
