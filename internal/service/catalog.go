package service

import (
	"context"
	"fmt"
	"log"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"grocery-mart/internal/cache"
	"grocery-mart/internal/catalog"
	"grocery-mart/internal/models"
	"grocery-mart/internal/repository"
)

const (
	productListPrefix = "products:list:"
	productPrefix     = "product:"
	SortByMostSeller  = "most_seller"
)

type ProductPage struct {
	Data       []*models.Product `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int64             `json:"total_pages"`
}

type CatalogService struct {
	products    repository.ProductStore
	sales       repository.MostSellerStore
	mostSellers *MostSellerService
	manifest    *catalog.Manifest
	cache       *cache.Cache
}

func NewCatalogService(repos repository.Set, mostSellers *MostSellerService, manifest *catalog.Manifest, c *cache.Cache) *CatalogService {
	return &CatalogService{
		products:    repos.Products,
		sales:       repos.MostSellers,
		mostSellers: mostSellers,
		manifest:    manifest,
		cache:       c,
	}
}

// List lista productos con paginación, filtros y orden (con caché)
func (s *CatalogService) List(ctx context.Context, q models.ProductQuery) (*ProductPage, error) {
	cacheKey := fmt.Sprintf(
		"%sp%d_s%d_cat:%s_q:%s_sort:%s_%s",
		productListPrefix, q.Page, q.PageSize, q.Category, q.Search, q.SortBy, q.SortOrder,
	)

	var cached ProductPage
	if found, err := s.cache.Unmarshal(cacheKey, &cached); err == nil && found {
		return &cached, nil
	}

	var (
		products []*models.Product
		total    int64
		err      error
	)
	if q.SortBy == SortByMostSeller {
		products, total, err = s.listByMostSeller(ctx, q)
	} else {
		products, total, err = s.products.FindAll(ctx, q)
	}
	if err != nil {
		return nil, err
	}

	if err := s.decorate(ctx, products...); err != nil {
		return nil, err
	}

	page := &ProductPage{
		Data:       products,
		Total:      total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages(total, q.PageSize),
	}
	if err := s.cache.Marshal(cacheKey, page); err != nil {
		log.Printf("⚠️ caching product list: %v", err)
	}
	return page, nil
}

// listByMostSeller ordena en memoria por unidades vendidas y luego pagina
func (s *CatalogService) listByMostSeller(ctx context.Context, q models.ProductQuery) ([]*models.Product, int64, error) {
	all := q
	all.Page, all.PageSize, all.SortBy = 0, 0, "name"
	all.SortOrder = "asc"
	products, total, err := s.products.FindAll(ctx, all)
	if err != nil {
		return nil, 0, err
	}

	counters, err := s.sales.Top(ctx, 0)
	if err != nil {
		return nil, 0, err
	}
	sold := make(map[primitive.ObjectID]int, len(counters))
	for _, c := range counters {
		sold[c.ProductID] = c.QuantitySold
	}

	asc := q.SortOrder == "asc"
	sort.SliceStable(products, func(i, j int) bool {
		a, b := sold[products[i].ID], sold[products[j].ID]
		if asc {
			return a < b
		}
		return a > b
	})

	if q.Page > 0 && q.PageSize > 0 {
		start := min((q.Page-1)*q.PageSize, len(products))
		end := min(start+q.PageSize, len(products))
		products = products[start:end]
	}
	return products, total, nil
}

func totalPages(total int64, pageSize int) int64 {
	if pageSize <= 0 {
		return 1
	}
	tp := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		tp++
	}
	return tp
}

// decorate completa imágenes desde el manifiesto y marca los más vendidos
func (s *CatalogService) decorate(ctx context.Context, products ...*models.Product) error {
	badges, err := s.mostSellers.Badges(ctx)
	if err != nil {
		return err
	}
	for _, p := range products {
		s.manifest.Apply(p)
		p.MostSeller = badges[p.ID]
	}
	return nil
}

// Get obtiene un producto por ID (con caché)
func (s *CatalogService) Get(ctx context.Context, rawID string) (*models.Product, error) {
	id, err := ParseID("id", rawID)
	if err != nil {
		return nil, err
	}
	cacheKey := productPrefix + id.Hex()

	var cached models.Product
	if found, err := s.cache.Unmarshal(cacheKey, &cached); err == nil && found {
		return &cached, nil
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.decorate(ctx, product); err != nil {
		return nil, err
	}
	if err := s.cache.Marshal(cacheKey, product); err != nil {
		log.Printf("⚠️ caching product %s: %v", id.Hex(), err)
	}
	return product, nil
}

func (s *CatalogService) Create(ctx context.Context, session *models.Session, product *models.Product) (*models.Product, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	if err := validateStruct(product); err != nil {
		return nil, err
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	s.cache.DeleteByPrefix(productListPrefix)
	s.manifest.Apply(product)
	return product, nil
}

// Update actualiza parcialmente, incluido el stock
func (s *CatalogService) Update(ctx context.Context, session *models.Session, rawID string, update *models.ProductUpdate) (*models.Product, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	id, err := ParseID("id", rawID)
	if err != nil {
		return nil, err
	}
	if update.Empty() {
		return nil, &ValidationError{Field: "body", Message: "no valid fields to update"}
	}

	if err := s.products.Update(ctx, id, update); err != nil {
		return nil, err
	}
	s.invalidate(id)
	return s.Get(ctx, rawID)
}

// Delete realiza un borrado lógico
func (s *CatalogService) Delete(ctx context.Context, session *models.Session, rawID string) error {
	if err := requireAdmin(session); err != nil {
		return err
	}
	id, err := ParseID("id", rawID)
	if err != nil {
		return err
	}
	if err := s.products.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidate(id)
	return nil
}

func (s *CatalogService) invalidate(id primitive.ObjectID) {
	s.cache.Delete(productPrefix + id.Hex())
	s.cache.DeleteByPrefix(productListPrefix)
}

// Invalidate descarta listados y productos cacheados
func (s *CatalogService) Invalidate() {
	s.cache.DeleteByPrefix(productListPrefix)
	s.cache.DeleteByPrefix(productPrefix)
}
