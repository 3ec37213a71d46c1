package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	pkg_hash "github.com/Skotchmaster/storefront/pkg/hash"
)

type seedUser struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

type seedCategory struct {
	Name   string `yaml:"name"`
	Slug   string `yaml:"slug"`
	Image  string `yaml:"image"`
	Parent string `yaml:"parent"`
}

type seedProduct struct {
	Name        string          `yaml:"name"`
	Slug        string          `yaml:"slug"`
	Description string          `yaml:"description"`
	Price       decimal.Decimal `yaml:"price"`
	Stock       int             `yaml:"stock"`
	Category    string          `yaml:"category"`
	Images      []string        `yaml:"images"`
}

type catalog struct {
	Users      []seedUser     `yaml:"users"`
	Categories []seedCategory `yaml:"categories"`
	Products   []seedProduct  `yaml:"products"`
}

var hundred = decimal.NewFromInt(100)

func parseCatalog(raw []byte) (*catalog, error) {
	var c catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	cats := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		cats[cat.Slug] = true
	}
	for i, p := range c.Products {
		if p.Price.IsNegative() {
			return nil, fmt.Errorf("product %q: negative price", p.Name)
		}
		if p.Category != "" && !cats[p.Category] {
			return nil, fmt.Errorf("product %q: unknown category %q", p.Name, p.Category)
		}
		if p.Slug == "" {
			c.Products[i].Slug = service.Slugify(p.Name)
		}
	}
	return &c, nil
}

func (p seedProduct) cents() int64 {
	return p.Price.Mul(hundred).Round(0).IntPart()
}

// apply upserts everything in c. Existing users keep their password.
func apply(ctx context.Context, r *repo.GormRepo, index service.ProductIndex, c *catalog, logger *slog.Logger) error {
	for _, u := range c.Users {
		hash, err := pkg_hash.HashPassword(u.Password)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.Email, err)
		}
		role := u.Role
		if role != models.RoleAdmin {
			role = models.RoleUser
		}
		user := &models.User{Email: u.Email, Name: u.Name, PasswordHash: hash, Role: role}
		if err := r.EnsureUser(ctx, user); err != nil {
			return fmt.Errorf("upsert user %s: %w", u.Email, err)
		}
	}

	catIDs := make(map[string]*models.Category, len(c.Categories))
	for _, sc := range c.Categories {
		cat := &models.Category{Name: sc.Name, Slug: sc.Slug, Image: sc.Image}
		if sc.Parent != "" {
			parent, ok := catIDs[sc.Parent]
			if !ok {
				return fmt.Errorf("category %q: parent %q must come first", sc.Slug, sc.Parent)
			}
			cat.ParentID = &parent.ID
		}
		if err := r.UpsertCategory(ctx, cat); err != nil {
			return fmt.Errorf("upsert category %s: %w", sc.Slug, err)
		}
		catIDs[sc.Slug] = cat
	}

	var indexErrs []error
	for _, sp := range c.Products {
		p := &models.Product{
			Name:        sp.Name,
			Slug:        sp.Slug,
			Description: sp.Description,
			PriceCents:  sp.cents(),
			Stock:       sp.Stock,
			Images:      models.StringList(sp.Images),
		}
		if cat, ok := catIDs[sp.Category]; ok {
			p.CategoryID = &cat.ID
		}
		if err := r.UpsertProduct(ctx, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", sp.Slug, err)
		}
		if index != nil {
			if err := index.Index(ctx, p); err != nil {
				indexErrs = append(indexErrs, err)
			}
		}
	}
	if err := errors.Join(indexErrs...); err != nil {
		logger.Warn("seed_index_error", "error", err)
	}

	logger.Info("catalog seeded", "users", len(c.Users), "categories", len(c.Categories), "products", len(c.Products))
	return nil
}
