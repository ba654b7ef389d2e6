package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/oikonomos-dev/oikonomos/internal/calendar"
	"github.com/oikonomos-dev/oikonomos/internal/model"
)

// parseAmount reads a major-unit amount ("12.50", "-3") into minor units of
// the configured currency.
func (a *app) parseAmount(s string) (int64, error) {
	return a.unit.Parse(s)
}

// parseTime reads an optional RFC 3339 timestamp; empty means now.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return calendar.ParseTimestamp(s)
}

func (a *app) money(amount int64) string {
	return a.unit.Format(amount)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// resolveAccount maps an account name or ID to its ID; empty stays empty.
func (a *app) resolveAccount(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	acct, err := a.books.FindAccount(ctx, ref)
	if err != nil {
		return "", err
	}
	return acct.ID, nil
}

// resolveCategory maps a category name or ID to its ID; empty stays empty.
func (a *app) resolveCategory(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	cats, err := a.books.ListCategories(ctx)
	if err != nil {
		return "", err
	}
	for _, c := range cats {
		if c.ID == ref || strings.EqualFold(c.Name, ref) {
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("%w: category %s", model.ErrNotFound, ref)
}

// resolvePayee maps a payee name or ID to its ID; empty stays empty.
func (a *app) resolvePayee(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	payees, err := a.books.ListPayees(ctx)
	if err != nil {
		return "", err
	}
	for _, p := range payees {
		if p.ID == ref || strings.EqualFold(p.Name, ref) {
			return p.ID, nil
		}
	}
	return "", fmt.Errorf("%w: payee %s", model.ErrNotFound, ref)
}

// accountNames maps account IDs to names for display.
func (a *app) accountNames(ctx context.Context) (map[string]string, error) {
	accts, err := a.books.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(accts))
	for _, acct := range accts {
		names[acct.ID] = acct.Name
	}
	return names, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
