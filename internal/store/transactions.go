package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/oikonomos-dev/oikonomos/internal/calendar"
	"github.com/oikonomos-dev/oikonomos/internal/model"
)

const transactionColumns = `id, amount_cents, from_account_id, to_account_id, payee_id, category_id,
	accrual_type, is_asset_purchase, note, occurred_at, created_at`

// InsertTransaction stores txn and returns it with ID and CreatedAt set.
// It does not touch account balances.
func (t *Tx) InsertTransaction(txn model.Transaction) (model.Transaction, error) {
	txn.ID = newID()
	txn.CreatedAt = calendar.Now()
	txn.OccurredAt = calendar.Canonical(txn.OccurredAt)

	_, err := t.exec(
		`INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID,
		txn.Amount,
		nullable(txn.FromAccountID),
		nullable(txn.ToAccountID),
		nullable(txn.PayeeID),
		nullable(txn.CategoryID),
		txn.AccrualType.String(),
		boolInt(txn.IsAssetPurchase),
		nullable(txn.Note),
		formatTime(txn.OccurredAt),
		formatTime(txn.CreatedAt),
	)
	if err != nil {
		return model.Transaction{}, translate(err, "inserting transaction")
	}
	return txn, nil
}

// GetTransaction returns the transaction with the given ID.
func (t *Tx) GetTransaction(id string) (model.Transaction, error) {
	row := t.queryRow(`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, fmt.Errorf("%w: transaction %s", model.ErrNotFound, id)
	}
	if err != nil {
		return model.Transaction{}, translate(err, "loading transaction "+id)
	}
	return txn, nil
}

// TransactionFilter narrows ListTransactions. Zero fields do not filter.
type TransactionFilter struct {
	Period      calendar.Period
	AccrualType model.AccrualType
	AccountID   string
}

// ListTransactions returns the matching transactions, newest first.
func (t *Tx) ListTransactions(f TransactionFilter) ([]model.Transaction, error) {
	var (
		where []string
		args  []any
	)
	if !f.Period.IsZero() {
		where = append(where, "occurred_at >= ? AND occurred_at < ?")
		args = append(args, formatTime(f.Period.Start()), formatTime(f.Period.End()))
	}
	if f.AccrualType != "" {
		where = append(where, "accrual_type = ?")
		args = append(args, f.AccrualType.String())
	}
	if f.AccountID != "" {
		where = append(where, "(from_account_id = ? OR to_account_id = ?)")
		args = append(args, f.AccountID, f.AccountID)
	}

	q := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY occurred_at DESC, created_at DESC, rowid DESC"

	rows, err := t.query(q, args...)
	if err != nil {
		return nil, translate(err, "listing transactions")
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, translate(err, "scanning transaction")
		}
		txns = append(txns, txn)
	}
	return txns, translate(rows.Err(), "listing transactions")
}

func scanTransaction(row scanner) (model.Transaction, error) {
	var (
		txn                       model.Transaction
		from, to, payee, category sql.NullString
		note                      sql.NullString
		accrual                   string
		isPurchase                int
		occurredAt, createdAt     string
	)
	err := row.Scan(&txn.ID, &txn.Amount, &from, &to, &payee, &category,
		&accrual, &isPurchase, &note, &occurredAt, &createdAt)
	if err != nil {
		return model.Transaction{}, err
	}

	txn.FromAccountID = from.String
	txn.ToAccountID = to.String
	txn.PayeeID = payee.String
	txn.CategoryID = category.String
	txn.Note = note.String
	txn.IsAssetPurchase = isPurchase != 0

	if txn.AccrualType, err = model.ParseAccrualType(accrual); err != nil {
		return model.Transaction{}, err
	}
	if txn.OccurredAt, err = parseTime(occurredAt); err != nil {
		return model.Transaction{}, err
	}
	if txn.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Transaction{}, err
	}
	return txn, nil
}
