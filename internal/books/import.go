package books

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/oikonomos-dev/oikonomos/internal/currency"
	"github.com/oikonomos-dev/oikonomos/internal/importer"
	"github.com/oikonomos-dev/oikonomos/internal/ledger"
	"github.com/oikonomos-dev/oikonomos/internal/model"
	"github.com/oikonomos-dev/oikonomos/internal/store"
)

// ImportParams holds parameters for importing a bank statement.
type ImportParams struct {
	AccountID  string
	Format     string // parser name, e.g. "chase"
	CategoryID string // optional category for every line
	Currency   string // ISO 4217 code of the statement; empty = currency.Default
	Source     io.Reader
}

// ImportResult summarizes an import.
type ImportResult struct {
	Posted  []model.Transaction
	Skipped int // zero-amount lines
}

// ImportStatement parses a bank statement and posts each line against the
// account as a Flow: money out for negative lines, money in for positive
// ones. Either every line is posted or none is.
func (s *Service) ImportStatement(ctx context.Context, p ImportParams) (ImportResult, error) {
	parser := s.importers.Get(p.Format)
	if parser == nil {
		return ImportResult{}, fmt.Errorf("%w: unknown statement format %q (known: %s)",
			model.ErrInvalidInput, p.Format, strings.Join(s.importers.Formats(), ", "))
	}
	code := p.Currency
	if code == "" {
		code = currency.Default
	}
	unit, err := currency.Lookup(code)
	if err != nil {
		return ImportResult{}, err
	}
	lines, err := parser.Parse(p.Source)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %w", model.ErrInvalidInput, err)
	}
	amounts := make([]int64, len(lines))
	for i, line := range lines {
		if amounts[i], err = unit.MinorUnits(line.Amount); err != nil {
			return ImportResult{}, fmt.Errorf("line %d (%s): %w", i+1, line.Description, err)
		}
	}

	var res ImportResult
	err = s.store.Update(ctx, func(tx *store.Tx) error {
		acct, err := tx.GetAccount(p.AccountID)
		if err != nil {
			return err
		}
		for i, line := range lines {
			if amounts[i] == 0 {
				res.Skipped++
				continue
			}
			txn, err := s.ledger.Post(tx, statementPosting(acct.ID, p.CategoryID, line, amounts[i]))
			if err != nil {
				return fmt.Errorf("posting %q of %s: %w", line.Description, line.Date.Format("2006-01-02"), err)
			}
			res.Posted = append(res.Posted, txn)
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	s.log.Info("statement imported",
		zap.String("account", p.AccountID),
		zap.String("format", parser.Format()),
		zap.Int("posted", len(res.Posted)),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

func statementPosting(accountID, categoryID string, line importer.StatementLine, amount int64) ledger.PostParams {
	p := ledger.PostParams{
		CategoryID:  categoryID,
		AccrualType: model.AccrualFlow,
		Note:        line.Description,
		OccurredAt:  line.Date,
	}
	if line.Reference != "" {
		p.Note += " [" + line.Reference + "]"
	}
	if amount < 0 {
		p.Amount = -amount
		p.FromAccountID = accountID
	} else {
		p.Amount = amount
		p.ToAccountID = accountID
	}
	return p
}
