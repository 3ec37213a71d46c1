package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/cache"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const maxIDsPerRequest = 100

type CatalogHTTP struct {
	Svc     *service.CatalogService
	Cart    *service.CartService
	Reviews *service.ReviewService
	Cache   *cache.Pages
}

// cached serves key from the page cache or renders it with build and stores
// the result.
func (h *CatalogHTTP) cached(c echo.Context, key string, build func() (envelope, error)) error {
	ctx := c.Request().Context()
	if b, hit := h.Cache.Get(ctx, key); hit {
		c.Response().Header().Set("X-Cache", "HIT")
		return c.JSONBlob(http.StatusOK, b)
	}

	body, err := build()
	if err != nil {
		return err
	}
	body["ok"] = true
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	h.Cache.Set(ctx, key, b)
	c.Response().Header().Set("X-Cache", "MISS")
	return c.JSONBlob(http.StatusOK, b)
}

func queryInt64(c echo.Context, name string) (*int64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, &service.ValidationError{Fields: []string{name}}
	}
	return &v, nil
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list")

	q := service.ProductQuery{
		Query:    strings.TrimSpace(c.QueryParam("q")),
		Category: strings.TrimSpace(c.QueryParam("category")),
		Sort:     c.QueryParam("sort"),
	}
	var err error
	if q.MinPrice, err = queryInt64(c, "min_price"); err != nil {
		return fail(c, l, "list_products", err)
	}
	if q.MaxPrice, err = queryInt64(c, "max_price"); err != nil {
		return fail(c, l, "list_products", err)
	}
	if p, perr := strconv.Atoi(c.QueryParam("page")); perr == nil {
		q.Page = p
	}

	key := cache.ListingPrefix + c.QueryParams().Encode()
	err = h.cached(c, key, func() (envelope, error) {
		page, err := h.Svc.ListProducts(ctx, q)
		if err != nil {
			return nil, err
		}
		return envelope{
			"products": transport.Cards(page.Products),
			"total":    page.Total,
			"page":     page.Page,
			"pages":    page.Pages,
		}, nil
	})
	if err != nil {
		return fail(c, l, "list_products", err)
	}
	return nil
}

func (h *CatalogHTTP) ProductsByIDs(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.by_ids")

	var ids []uuid.UUID
	for _, raw := range c.QueryParams()["ids"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				return fail(c, l, "products_by_ids", &service.ValidationError{Fields: []string{"ids"}})
			}
			ids = append(ids, id)
		}
	}
	if len(ids) > maxIDsPerRequest {
		return fail(c, l, "products_by_ids", &service.ValidationError{Fields: []string{"ids"}})
	}

	products, err := h.Cart.ProductsByIDs(ctx, ids)
	if err != nil {
		return fail(c, l, "products_by_ids", err)
	}
	return ok(c, http.StatusOK, envelope{"products": transport.Cards(products)})
}

func (h *CatalogHTTP) ProductBySlug(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.product")

	slug := c.Param("slug")
	err := h.cached(c, cache.ProductPrefix+slug, func() (envelope, error) {
		d, err := h.Svc.ProductBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		images := []string(d.Product.Images)
		if images == nil {
			images = []string{}
		}
		return envelope{"product": transport.ProductDetail{
			ProductCard: transport.Card(d.Product),
			Description: d.Product.Description,
			Images:      images,
			Category:    d.Product.Category,
			Reviews:     transport.Reviews(d.Reviews),
			Rating:      d.Stats,
		}}, nil
	})
	if err != nil {
		return fail(c, l, "get_product", err)
	}
	return nil
}

func (h *CatalogHTTP) Related(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.related")

	slug := c.Param("slug")
	err := h.cached(c, cache.ProductPrefix+slug+":related", func() (envelope, error) {
		products, err := h.Svc.Related(ctx, slug)
		if err != nil {
			return nil, err
		}
		return envelope{"products": transport.Cards(products)}, nil
	})
	if err != nil {
		return fail(c, l, "related_products", err)
	}
	return nil
}

func (h *CatalogHTTP) Categories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.categories")

	err := h.cached(c, cache.CategoryPrefix, func() (envelope, error) {
		cats, err := h.Svc.Categories(ctx)
		if err != nil {
			return nil, err
		}
		return envelope{"categories": cats}, nil
	})
	if err != nil {
		return fail(c, l, "categories", err)
	}
	return nil
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create")

	var req transport.CreateProductRequest
	if err := bindValid(c, &req); err != nil {
		return fail(c, l, "create_product", err)
	}

	p, err := h.Svc.CreateProduct(ctx, service.ProductInput{
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		Price:        req.Price,
		Stock:        req.Stock,
		Images:       req.Images,
		CategorySlug: req.CategorySlug,
	})
	if err != nil {
		return fail(c, l, "create_product", err)
	}

	l.Info("product created", "product_id", p.ID)
	return ok(c, http.StatusCreated, envelope{"product": p})
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.patch")

	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, l, "patch_product", err)
	}
	var req transport.PatchProductRequest
	if err := bindValid(c, &req); err != nil {
		return fail(c, l, "patch_product", err)
	}

	p, err := h.Svc.PatchProduct(ctx, id, service.ProductPatchInput{
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		Price:        req.Price,
		Stock:        req.Stock,
		Images:       req.Images,
		CategorySlug: req.CategorySlug,
	})
	if err != nil {
		return fail(c, l, "patch_product", err)
	}

	l.Info("product patched", "product_id", p.ID)
	return ok(c, http.StatusOK, envelope{"product": p})
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete")

	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, l, "delete_product", err)
	}
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return fail(c, l, "delete_product", err)
	}

	l.Info("product deleted", "product_id", id)
	return ok(c, http.StatusOK, nil)
}

func (h *CatalogHTTP) SubmitReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.review")

	userID, err := GetID(c)
	if err != nil {
		return fail(c, l, "submit_review", err)
	}
	productID, err := paramID(c, "id")
	if err != nil {
		return fail(c, l, "submit_review", err)
	}
	var req transport.ReviewRequest
	if err := bindValid(c, &req); err != nil {
		return fail(c, l, "submit_review", err)
	}

	rv, err := h.Reviews.Submit(ctx, userID, productID, req.Rating, req.Body)
	if err != nil {
		return fail(c, l, "submit_review", err)
	}
	return ok(c, http.StatusCreated, envelope{"review": rv})
}
