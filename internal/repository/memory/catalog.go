package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"grocery-mart/internal/models"
	"grocery-mart/internal/repository"
)

type products struct{ s *Store }

func (r *products) Create(ctx context.Context, product *models.Product) error {
	defer r.s.lock(ctx)()

	product.ID = primitive.NewObjectID()
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	product.IsDeleted = false
	r.s.st.products[product.ID] = cloneProduct(product)
	return nil
}

func (r *products) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	defer r.s.lock(ctx)()

	p, ok := r.s.st.products[id]
	if !ok || p.IsDeleted {
		return nil, repository.ErrProductNotFound
	}
	return cloneProduct(p), nil
}

func (r *products) FindAll(ctx context.Context, q models.ProductQuery) ([]*models.Product, int64, error) {
	defer r.s.lock(ctx)()

	search := strings.ToLower(q.Search)
	matched := make([]*models.Product, 0)
	for _, p := range r.s.st.products {
		if p.IsDeleted {
			continue
		}
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) &&
			!strings.Contains(strings.ToLower(p.Category), search) {
			continue
		}
		matched = append(matched, cloneProduct(p))
	}

	field := "created_at"
	if repository.SortableFields[q.SortBy] {
		field = q.SortBy
	}
	asc := q.SortOrder == "asc"
	sort.SliceStable(matched, func(i, j int) bool {
		c := compareProducts(matched[i], matched[j], field)
		if c == 0 {
			return matched[i].ID.Hex() < matched[j].ID.Hex()
		}
		if asc {
			return c < 0
		}
		return c > 0
	})

	total := int64(len(matched))
	if q.Page > 0 && q.PageSize > 0 {
		start := (q.Page - 1) * q.PageSize
		if start > len(matched) {
			start = len(matched)
		}
		end := start + q.PageSize
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func compareProducts(a, b *models.Product, field string) int {
	switch field {
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "price":
		return compareFloat(a.Price, b.Price)
	case "discounted_price":
		return compareFloat(a.DiscountedPrice, b.DiscountedPrice)
	case "available_quantity":
		return a.AvailableQuantity - b.AvailableQuantity
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (r *products) Update(ctx context.Context, id primitive.ObjectID, update *models.ProductUpdate) error {
	defer r.s.lock(ctx)()

	p, ok := r.s.st.products[id]
	if !ok || p.IsDeleted {
		return repository.ErrProductNotFound
	}
	update.Apply(p)
	p.UpdatedAt = time.Now()
	return nil
}

func (r *products) SetStock(ctx context.Context, id primitive.ObjectID, stock int) error {
	defer r.s.lock(ctx)()

	p, ok := r.s.st.products[id]
	if !ok || p.IsDeleted {
		return repository.ErrProductNotFound
	}
	p.AvailableQuantity = stock
	p.UpdatedAt = time.Now()
	return nil
}

func (r *products) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	defer r.s.lock(ctx)()

	p, ok := r.s.st.products[id]
	if !ok || p.IsDeleted {
		return repository.ErrProductNotFound
	}
	p.IsDeleted = true
	p.UpdatedAt = time.Now()
	return nil
}

type mostSellers struct{ s *Store }

func (r *mostSellers) Increment(ctx context.Context, productID primitive.ObjectID, name string, quantity int) error {
	defer r.s.lock(ctx)()

	c, ok := r.s.st.mostSellers[productID]
	if !ok {
		c = &models.MostSellerCounter{ProductID: productID}
		r.s.st.mostSellers[productID] = c
	}
	c.ProductName = name
	c.QuantitySold += quantity
	c.UpdatedAt = time.Now()
	return nil
}

func (r *mostSellers) Top(ctx context.Context, n int) ([]*models.MostSellerCounter, error) {
	defer r.s.lock(ctx)()

	out := make([]*models.MostSellerCounter, 0, len(r.s.st.mostSellers))
	for _, c := range r.s.st.mostSellers {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].QuantitySold != out[j].QuantitySold {
			return out[i].QuantitySold > out[j].QuantitySold
		}
		return out[i].ProductName < out[j].ProductName
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}
