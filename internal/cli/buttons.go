package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"buttonshop/internal/models"
	"buttonshop/internal/storage"
	"buttonshop/internal/store"
)

var buttonsCmd = &cobra.Command{
	Use:   "buttons",
	Short: "Add and remove catalog buttons",
}

var buttonsAddFlags struct {
	price    string
	imageURL string
	inactive bool
}

var buttonsAddCmd = &cobra.Command{
	Use:   "add <category> <name>",
	Short: "Add a button to a category",
	Long: `Adds a button to the category given by id or slug path. Colors are left
empty; run "recolor" (or "image set") to derive them from the image.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		price, err := parseButtonPrice(buttonsAddFlags.price)
		if err != nil {
			return err
		}
		return withButtonAdmin(false, func(a *buttonAdmin) error {
			b, err := a.Add(cmd.Context(), args[0], newButton{
				Name:     args[1],
				Price:    price,
				ImageURL: buttonsAddFlags.imageURL,
				Inactive: buttonsAddFlags.inactive,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", b.Name, b.ID)
			return nil
		})
	},
}

var buttonsRemoveCmd = &cobra.Command{
	Use:   "remove <button-id>",
	Short: "Delete a button and its stored image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid button id %q", args[0])
		}
		return withButtonAdmin(true, func(a *buttonAdmin) error {
			b, err := a.Remove(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s (%s)\n", b.Name, b.ID)
			return nil
		})
	},
}

func init() {
	f := buttonsAddCmd.Flags()
	f.StringVar(&buttonsAddFlags.price, "price", "0", "list price shown with the button")
	f.StringVar(&buttonsAddFlags.imageURL, "image-url", "", "image URL (absolute or site-relative)")
	f.BoolVar(&buttonsAddFlags.inactive, "inactive", false, "create the button hidden")

	buttonsCmd.AddCommand(buttonsAddCmd, buttonsRemoveCmd)
	rootCmd.AddCommand(buttonsCmd)
}

// withButtonAdmin opens the database, catalog cache and, when withStorage
// is set and storage is configured, the object store.
func withButtonAdmin(withStorage bool, fn func(a *buttonAdmin) error) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	catalogCache, closeCache := openCatalogCache()
	defer closeCache()

	a := &buttonAdmin{
		buttons:    store.NewButtonStore(db),
		categories: &categoryAdmin{categories: store.NewCategoryStore(db)},
		cache:      catalogCache,
	}
	if withStorage {
		sc, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
		if err != nil {
			return fmt.Errorf("init storage: %w", err)
		}
		if sc != nil {
			a.objects = sc
		}
	}
	return fn(a)
}

func parseButtonPrice(s string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q", s)
	}
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("price cannot be negative, got %s", price)
	}
	return price.Round(2), nil
}

type buttonRepo interface {
	Create(ctx context.Context, b *models.Button) (*models.Button, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Button, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type objectRemover interface {
	Delete(ctx context.Context, key string) error
	ExtractKey(rawURL string) (string, bool)
}

// buttonAdmin adds and removes buttons. objects is nil when object
// storage is not configured; stored images are then left in place.
type buttonAdmin struct {
	buttons    buttonRepo
	categories *categoryAdmin
	objects    objectRemover
	cache      cacheInvalidator
}

type newButton struct {
	Name     string
	Price    decimal.Decimal
	ImageURL string
	Inactive bool
}

// Add creates a button in the category named by categoryRef.
func (a *buttonAdmin) Add(ctx context.Context, categoryRef string, in newButton) (*models.Button, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errors.New("button name is required")
	}

	tree, err := a.categories.loadTree(ctx)
	if err != nil {
		return nil, err
	}
	c, err := a.categories.resolve(ctx, tree, categoryRef)
	if err != nil {
		return nil, err
	}

	b, err := a.buttons.Create(ctx, &models.Button{
		Name:       name,
		CategoryID: &c.ID,
		Price:      in.Price,
		IsActive:   !in.Inactive,
		ImageURL:   strings.TrimSpace(in.ImageURL),
	})
	if err != nil {
		return nil, err
	}
	if a.cache != nil {
		a.cache.InvalidateAll(ctx)
	}
	return b, nil
}

// Remove deletes a button, then its image object when the image lives in
// our bucket. A failed object delete is logged, not returned.
func (a *buttonAdmin) Remove(ctx context.Context, id uuid.UUID) (*models.Button, error) {
	b, err := a.buttons.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("button %s not found", id)
	}

	if err := a.buttons.Delete(ctx, id); err != nil {
		return nil, err
	}

	if a.objects != nil {
		if key, ok := a.objects.ExtractKey(b.ImageURL); ok {
			if err := a.objects.Delete(ctx, key); err != nil {
				slog.Warn("remove button image", "key", key, "error", err)
			}
		}
	}
	if a.cache != nil {
		a.cache.InvalidateAll(ctx)
	}
	return b, nil
}
