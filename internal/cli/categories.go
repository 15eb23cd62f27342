package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"buttonshop/internal/catalog"
	"buttonshop/internal/colors"
	"buttonshop/internal/models"
	"buttonshop/internal/slug"
	"buttonshop/internal/store"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Manage the category tree",
	Long: `Create, edit, recolor, move and delete categories. A category is named
either by its id or by its slug path (animals/cats); slug paths only reach
active categories. Every change clears the catalog cache, since colors and
previews are inherited across the tree.`,
}

var categoriesListFlags struct{ active bool }

var categoriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the category tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCategoryAdmin(func(a *categoryAdmin) error {
			return a.Print(cmd.Context(), cmd.OutOrStdout(), categoriesListFlags.active)
		})
	},
}

var categoriesCreateFlags newCategory

var categoriesCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Add a category at the end of its siblings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := categoriesCreateFlags
		in.Name = args[0]
		return withCategoryAdmin(func(a *categoryAdmin) error {
			c, err := a.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", c.Slug, c.ID)
			return nil
		})
	},
}

var categoriesEditFlags struct {
	name, slug, description, background string
	active                              bool
}

var categoriesEditCmd = &cobra.Command{
	Use:   "edit <category>",
	Short: "Change name, slug, description, background or visibility",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		var e categoryEdit
		if f.Changed("name") {
			e.Name = &categoriesEditFlags.name
		}
		if f.Changed("slug") {
			e.Slug = &categoriesEditFlags.slug
		}
		if f.Changed("description") {
			e.Description = &categoriesEditFlags.description
		}
		if f.Changed("background") {
			e.Background = &categoriesEditFlags.background
		}
		if f.Changed("active") {
			e.Active = &categoriesEditFlags.active
		}
		if e == (categoryEdit{}) {
			return errors.New("nothing to change")
		}
		return withCategoryAdmin(func(a *categoryAdmin) error {
			c, err := a.Edit(cmd.Context(), args[0], e)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s (%s)\n", c.Slug, c.ID)
			return nil
		})
	},
}

var categoriesColorsFlags struct{ primary, secondary string }

var categoriesColorsCmd = &cobra.Command{
	Use:   "set-colors <category>",
	Short: "Set or clear explicit theme colors",
	Long: `Sets the primary and/or secondary theme color of a category. An empty
value clears the color so it is inherited from the nearest ancestor again.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		var primary, secondary *string
		if f.Changed("primary") {
			primary = &categoriesColorsFlags.primary
		}
		if f.Changed("secondary") {
			secondary = &categoriesColorsFlags.secondary
		}
		if primary == nil && secondary == nil {
			return errors.New("set --primary and/or --secondary")
		}
		return withCategoryAdmin(func(a *categoryAdmin) error {
			c, err := a.SetColors(cmd.Context(), args[0], primary, secondary)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s colors: %s\n", c.Slug, colorsLabel(c))
			return nil
		})
	},
}

var categoriesMoveFlags struct {
	parent   string
	position int
}

var categoriesMoveCmd = &cobra.Command{
	Use:   "move <category>",
	Short: "Move a category under another parent or to another position",
	Long: `Moves a category under --parent (or to the roots when --parent is
omitted) at --position among its new siblings, counting from 0. A negative
position appends it. Sibling sort orders are renumbered in one transaction.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCategoryAdmin(func(a *categoryAdmin) error {
			c, err := a.Move(cmd.Context(), args[0], categoriesMoveFlags.parent, categoriesMoveFlags.position)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "moved %s to position %d\n", c.Slug, c.SortOrder)
			return nil
		})
	},
}

var categoriesDeleteCmd = &cobra.Command{
	Use:   "delete <category>",
	Short: "Delete a category; its children become roots",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCategoryAdmin(func(a *categoryAdmin) error {
			c, orphans, err := a.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s; %d subcategories are now roots\n", c.Slug, orphans)
			return nil
		})
	},
}

func init() {
	categoriesListCmd.Flags().BoolVar(&categoriesListFlags.active, "active", false, "only list active categories")

	cf := categoriesCreateCmd.Flags()
	cf.StringVar(&categoriesCreateFlags.Parent, "parent", "", "parent category id or slug path (default: new root)")
	cf.StringVar(&categoriesCreateFlags.Description, "description", "", "description in Markdown")
	cf.BoolVar(&categoriesCreateFlags.Inactive, "inactive", false, "create the category hidden")

	ef := categoriesEditCmd.Flags()
	ef.StringVar(&categoriesEditFlags.name, "name", "", "display name")
	ef.StringVar(&categoriesEditFlags.slug, "slug", "", "slug, unique among siblings")
	ef.StringVar(&categoriesEditFlags.description, "description", "", "description in Markdown")
	ef.StringVar(&categoriesEditFlags.background, "background", "", "background image URL (empty to inherit)")
	ef.BoolVar(&categoriesEditFlags.active, "active", true, "whether the category is visible")

	kf := categoriesColorsCmd.Flags()
	kf.StringVar(&categoriesColorsFlags.primary, "primary", "", "primary color as #rrggbb (empty to inherit)")
	kf.StringVar(&categoriesColorsFlags.secondary, "secondary", "", "secondary color as #rrggbb (empty to inherit)")

	mf := categoriesMoveCmd.Flags()
	mf.StringVar(&categoriesMoveFlags.parent, "parent", "", "new parent id or slug path (default: roots)")
	mf.IntVar(&categoriesMoveFlags.position, "position", -1, "position among the new siblings")

	categoriesCmd.AddCommand(categoriesListCmd, categoriesCreateCmd, categoriesEditCmd,
		categoriesColorsCmd, categoriesMoveCmd, categoriesDeleteCmd)
	rootCmd.AddCommand(categoriesCmd)
}

// withCategoryAdmin opens the database and catalog cache for one command.
func withCategoryAdmin(fn func(a *categoryAdmin) error) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	catalogCache, closeCache := openCatalogCache()
	defer closeCache()

	return fn(&categoryAdmin{categories: store.NewCategoryStore(db), cache: catalogCache})
}

// categoryRepo is the category persistence the admin commands need.
type categoryRepo interface {
	List(ctx context.Context) ([]models.Category, error)
	ListActive(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) error
	SetColors(ctx context.Context, id uuid.UUID, primary, secondary *string) error
	Delete(ctx context.Context, id uuid.UUID) error
	Reorder(ctx context.Context, items []store.ReorderItem) error
	NextSortOrder(ctx context.Context, parentID *uuid.UUID) (int, error)
}

// categoryAdmin applies tree edits and clears the catalog cache after
// each successful change.
type categoryAdmin struct {
	categories categoryRepo
	cache      cacheInvalidator
}

// newCategory holds the input of Create.
type newCategory struct {
	Name        string
	Parent      string
	Description string
	Inactive    bool
}

// categoryEdit lists the fields Edit changes; nil fields are kept.
type categoryEdit struct {
	Name        *string
	Slug        *string
	Description *string
	Background  *string
	Active      *bool
}

func (a *categoryAdmin) changed(ctx context.Context) {
	if a.cache != nil {
		a.cache.InvalidateAll(ctx)
	}
}

func (a *categoryAdmin) loadTree(ctx context.Context) (*catalog.Tree, error) {
	all, err := a.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.NewTree(all), nil
}

// resolve finds a category by id, or by slug path among active categories.
func (a *categoryAdmin) resolve(ctx context.Context, tree *catalog.Tree, ref string) (*models.Category, error) {
	if id, err := uuid.Parse(ref); err == nil {
		c, err := a.categories.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, fmt.Errorf("category %s not found", id)
		}
		return c, nil
	}
	cwa := tree.ResolvePath(catalog.SplitPath(ref))
	if cwa == nil {
		return nil, fmt.Errorf("category path %q not found", ref)
	}
	c := cwa.Category
	return &c, nil
}

// siblingSlugs returns the slugs used under parentID, except by id.
func siblingSlugs(tree *catalog.Tree, parentID *uuid.UUID, except uuid.UUID) map[string]bool {
	taken := make(map[string]bool)
	for _, s := range tree.Siblings(parentID) {
		if s.ID != except {
			taken[s.Slug] = true
		}
	}
	return taken
}

// Create adds a category after its last sibling. The slug is derived from
// the name and suffixed when a sibling already uses it.
func (a *categoryAdmin) Create(ctx context.Context, in newCategory) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errors.New("category name is required")
	}
	base := slug.Generate(name)
	if !slug.Valid(base) {
		return nil, fmt.Errorf("cannot derive a slug from %q", name)
	}

	tree, err := a.loadTree(ctx)
	if err != nil {
		return nil, err
	}
	var parentID *uuid.UUID
	if in.Parent != "" {
		parent, err := a.resolve(ctx, tree, in.Parent)
		if err != nil {
			return nil, err
		}
		parentID = &parent.ID
	}

	taken := siblingSlugs(tree, parentID, uuid.Nil)
	order, err := a.categories.NextSortOrder(ctx, parentID)
	if err != nil {
		return nil, err
	}

	c, err := a.categories.Create(ctx, &models.Category{
		Name:        name,
		Slug:        slug.Unique(base, func(s string) bool { return taken[s] }),
		Description: in.Description,
		ParentID:    parentID,
		SortOrder:   order,
		IsActive:    !in.Inactive,
	})
	if err != nil {
		return nil, err
	}
	a.changed(ctx)
	return c, nil
}

// Edit applies e to the category and saves it.
func (a *categoryAdmin) Edit(ctx context.Context, ref string, e categoryEdit) (*models.Category, error) {
	tree, err := a.loadTree(ctx)
	if err != nil {
		return nil, err
	}
	c, err := a.resolve(ctx, tree, ref)
	if err != nil {
		return nil, err
	}

	if e.Name != nil {
		name := strings.TrimSpace(*e.Name)
		if name == "" {
			return nil, errors.New("category name cannot be empty")
		}
		c.Name = name
	}
	if e.Slug != nil && *e.Slug != c.Slug {
		if !slug.Valid(*e.Slug) {
			return nil, fmt.Errorf("invalid slug %q", *e.Slug)
		}
		if siblingSlugs(tree, c.ParentID, c.ID)[*e.Slug] {
			return nil, fmt.Errorf("slug %q is already used by a sibling", *e.Slug)
		}
		c.Slug = *e.Slug
	}
	if e.Description != nil {
		c.Description = *e.Description
	}
	if e.Background != nil {
		c.BackgroundImage = nil
		if bg := strings.TrimSpace(*e.Background); bg != "" {
			c.BackgroundImage = &bg
		}
	}
	if e.Active != nil {
		c.IsActive = *e.Active
	}

	if err := a.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	a.changed(ctx)
	return c, nil
}

// normalizeColor parses a hex color into lowercase #rrggbb. An empty value
// yields nil, meaning "inherit".
func normalizeColor(s string) (*string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	rgb, ok := colors.ParseHex(s)
	if !ok {
		return nil, fmt.Errorf("invalid color %q", s)
	}
	hex := rgb.Hex()
	return &hex, nil
}

// SetColors changes the explicit colors of a category. A nil argument
// keeps the current value; an empty one clears it.
func (a *categoryAdmin) SetColors(ctx context.Context, ref string, primary, secondary *string) (*models.Category, error) {
	tree, err := a.loadTree(ctx)
	if err != nil {
		return nil, err
	}
	c, err := a.resolve(ctx, tree, ref)
	if err != nil {
		return nil, err
	}

	if primary != nil {
		if c.PrimaryColor, err = normalizeColor(*primary); err != nil {
			return nil, err
		}
	}
	if secondary != nil {
		if c.SecondaryColor, err = normalizeColor(*secondary); err != nil {
			return nil, err
		}
	}

	if err := a.categories.SetColors(ctx, c.ID, c.PrimaryColor, c.SecondaryColor); err != nil {
		return nil, err
	}
	a.changed(ctx)
	return c, nil
}

// Move reparents a category (nil parent = root) and places it at position
// among its new siblings; a negative or too large position appends it.
// The whole sibling list is renumbered from 0.
func (a *categoryAdmin) Move(ctx context.Context, ref, parentRef string, position int) (*models.Category, error) {
	tree, err := a.loadTree(ctx)
	if err != nil {
		return nil, err
	}
	c, err := a.resolve(ctx, tree, ref)
	if err != nil {
		return nil, err
	}

	var parentID *uuid.UUID
	if parentRef != "" {
		parent, err := a.resolve(ctx, tree, parentRef)
		if err != nil {
			return nil, err
		}
		if parent.ID == c.ID {
			return nil, fmt.Errorf("cannot move %s under itself", c.Slug)
		}
		for _, id := range tree.DescendantIDs(c.ID) {
			if id == parent.ID {
				return nil, fmt.Errorf("cannot move %s under its own subcategory %s", c.Slug, parent.Slug)
			}
		}
		parentID = &parent.ID
	}
	if siblingSlugs(tree, parentID, c.ID)[c.Slug] {
		return nil, fmt.Errorf("slug %q is already used under the new parent", c.Slug)
	}

	var order []uuid.UUID
	for _, s := range tree.Siblings(parentID) {
		if s.ID != c.ID {
			order = append(order, s.ID)
		}
	}
	if position < 0 || position > len(order) {
		position = len(order)
	}
	order = append(order[:position], append([]uuid.UUID{c.ID}, order[position:]...)...)

	items := make([]store.ReorderItem, len(order))
	for i, id := range order {
		items[i] = store.ReorderItem{ID: id, ParentID: parentID, Order: i}
	}
	if err := a.categories.Reorder(ctx, items); err != nil {
		return nil, err
	}
	a.changed(ctx)

	c.ParentID = parentID
	c.SortOrder = position
	return c, nil
}

// Delete removes a category. Its direct children become roots and its
// buttons become uncategorized; the number of orphaned children is
// returned.
func (a *categoryAdmin) Delete(ctx context.Context, ref string) (*models.Category, int, error) {
	tree, err := a.loadTree(ctx)
	if err != nil {
		return nil, 0, err
	}
	c, err := a.resolve(ctx, tree, ref)
	if err != nil {
		return nil, 0, err
	}
	orphans := len(tree.Siblings(&c.ID))

	if err := a.categories.Delete(ctx, c.ID); err != nil {
		return nil, 0, err
	}
	a.changed(ctx)
	return c, orphans, nil
}

// Print writes the category tree, indented by depth. A top-level entry
// that has a parent reference points at a parent missing from the
// listing: deleted, or inactive when only active categories are shown.
func (a *categoryAdmin) Print(ctx context.Context, w io.Writer, activeOnly bool) error {
	list := a.categories.List
	if activeOnly {
		list = a.categories.ListActive
	}
	all, err := list(ctx)
	if err != nil {
		return err
	}
	tree := catalog.NewTree(all)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tID\tORDER\tCOLORS\tSTATUS")
	tree.Walk(func(c models.Category, depth int) {
		status := "active"
		if !c.IsActive {
			status = "inactive"
		}
		if depth == 0 && !c.IsRoot() {
			status += ", parent not listed"
		}
		fmt.Fprintf(tw, "%s%s\t%s\t%d\t%s\t%s\n",
			strings.Repeat("  ", depth), c.Slug, c.ID, c.SortOrder, colorsLabel(&c), status)
	})
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d categories\n", tree.Len())
	return nil
}

func colorsLabel(c *models.Category) string {
	value := func(p *string) string {
		if p == nil {
			return "inherit"
		}
		return *p
	}
	return value(c.PrimaryColor) + "/" + value(c.SecondaryColor)
}
