package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"buttonshop/internal/models"
	"buttonshop/internal/pricing"
	"buttonshop/internal/store"
)

var requestsFlags struct {
	status string
	limit  int
}

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "Review and answer custom-order requests",
}

var requestsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List custom-order requests, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		status := models.RequestStatus(requestsFlags.status)
		switch status {
		case "", models.RequestStatusNew, models.RequestStatusQuoted, models.RequestStatusClosed:
		default:
			return fmt.Errorf("unknown status %q (want new, quoted or closed)", requestsFlags.status)
		}
		if requestsFlags.limit <= 0 {
			return fmt.Errorf("--limit must be positive")
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		items, err := store.NewCustomRequestStore(db).List(cmd.Context(), status, requestsFlags.limit)
		if err != nil {
			return err
		}
		return printRequests(cmd.OutOrStdout(), items, cfg.Pricing)
	},
}

var requestsQuoteCmd = &cobra.Command{
	Use:   "quote <request-id> <unit-price>",
	Short: "Record the quoted unit price of a request",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid request id %q", args[0])
		}
		price, err := parseUnitPrice(args[1])
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		return answerRequest(cmd.Context(), store.NewCustomRequestStore(db), cmd.OutOrStdout(), id, &price)
	},
}

var requestsCloseCmd = &cobra.Command{
	Use:   "close <request-id>",
	Short: "Mark a request as closed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid request id %q", args[0])
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		return answerRequest(cmd.Context(), store.NewCustomRequestStore(db), cmd.OutOrStdout(), id, nil)
	},
}

func init() {
	f := requestsListCmd.Flags()
	f.StringVar(&requestsFlags.status, "status", "", "only show requests with this status (new, quoted, closed)")
	f.IntVar(&requestsFlags.limit, "limit", 50, "maximum requests to show")

	requestsCmd.AddCommand(requestsListCmd, requestsQuoteCmd, requestsCloseCmd)
	rootCmd.AddCommand(requestsCmd)
}

func parseUnitPrice(s string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid unit price %q", s)
	}
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("unit price must be positive, got %s", price)
	}
	return price.Round(2), nil
}

// requestAnswerer is the request persistence used by quote and close.
type requestAnswerer interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.CustomRequest, error)
	SetQuote(ctx context.Context, id uuid.UUID, unitPrice decimal.Decimal) error
	Close(ctx context.Context, id uuid.UUID) error
}

// answerRequest quotes the request when price is set and closes it
// otherwise. Closed requests cannot be quoted again.
func answerRequest(ctx context.Context, requests requestAnswerer, w io.Writer, id uuid.UUID, price *decimal.Decimal) error {
	r, err := requests.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("request %s not found", id)
	}

	if price == nil {
		if err := requests.Close(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(w, "closed request %s from %s\n", id, r.Email)
		return nil
	}

	if !r.IsOpen() {
		return fmt.Errorf("request %s is closed", id)
	}
	if err := requests.SetQuote(ctx, id, *price); err != nil {
		return err
	}
	total := price.Mul(decimal.NewFromInt(int64(r.Quantity)))
	fmt.Fprintf(w, "quoted %s x %d = %s for %s\n", price.StringFixed(2), r.Quantity, total.StringFixed(2), r.Email)
	return nil
}

// printRequests writes one row per request. The tier column shows the
// catalog unit price for the same quantity next to the manual quote.
func printRequests(w io.Writer, items []models.CustomRequest, table *pricing.Table) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tQTY\tTIER\tQUOTED\tEMAIL\tCREATED")
	for _, r := range items {
		quoted := "-"
		if r.QuotedPrice != nil {
			quoted = r.QuotedPrice.StringFixed(2)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			r.ID, r.Status, r.Quantity, table.UnitPrice(r.Quantity).StringFixed(2),
			quoted, r.Email, r.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
