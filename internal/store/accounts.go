package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/oikonomos-dev/oikonomos/internal/calendar"
	"github.com/oikonomos-dev/oikonomos/internal/model"
)

const accountColumns = "id, name, type, purpose, balance_cents, created_at, updated_at"

// InsertAccount stores a new account with the given opening balance and
// returns it with its ID and timestamps set.
func (t *Tx) InsertAccount(acct model.Account) (model.Account, error) {
	now := calendar.Now()
	acct.ID = newID()
	acct.CreatedAt = now
	acct.UpdatedAt = now

	_, err := t.exec(
		`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		acct.ID, acct.Name, acct.Type.String(), acct.Purpose.String(), acct.Balance,
		formatTime(now), formatTime(now),
	)
	if err != nil {
		return model.Account{}, translate(err, "inserting account")
	}
	return acct, nil
}

// GetAccount returns the account with the given ID.
func (t *Tx) GetAccount(id string) (model.Account, error) {
	row := t.queryRow(`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	acct, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, fmt.Errorf("%w: account %s", model.ErrNotFound, id)
	}
	if err != nil {
		return model.Account{}, translate(err, "loading account "+id)
	}
	return acct, nil
}

// ListAccounts returns every account ordered by name.
func (t *Tx) ListAccounts() ([]model.Account, error) {
	rows, err := t.query(`SELECT ` + accountColumns + ` FROM accounts ORDER BY name ASC, rowid ASC`)
	if err != nil {
		return nil, translate(err, "listing accounts")
	}
	defer rows.Close()

	var accts []model.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, translate(err, "scanning account")
		}
		accts = append(accts, acct)
	}
	return accts, translate(rows.Err(), "listing accounts")
}

// ApplyBalanceDelta adds delta to the account balance and returns the
// re-read account. A liability driven above zero is rejected by the schema
// and reported as model.ErrInvalidInput.
func (t *Tx) ApplyBalanceDelta(accountID string, delta int64) (model.Account, error) {
	res, err := t.exec(
		`UPDATE accounts SET balance_cents = balance_cents + ?, updated_at = ? WHERE id = ?`,
		delta, formatTime(calendar.Now()), accountID,
	)
	if isCheckViolation(err) {
		return model.Account{}, fmt.Errorf("%w: liability account balance cannot be positive: %s", model.ErrInvalidInput, accountID)
	}
	if err != nil {
		return model.Account{}, translate(err, "updating balance of account "+accountID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Account{}, translate(err, "updating balance of account "+accountID)
	}
	if n == 0 {
		return model.Account{}, fmt.Errorf("%w: account %s", model.ErrNotFound, accountID)
	}
	return t.GetAccount(accountID)
}

func scanAccount(row scanner) (model.Account, error) {
	var (
		acct                 model.Account
		typ, purpose         string
		createdAt, updatedAt string
	)
	if err := row.Scan(&acct.ID, &acct.Name, &typ, &purpose, &acct.Balance, &createdAt, &updatedAt); err != nil {
		return model.Account{}, err
	}

	var err error
	if acct.Type, err = model.ParseAccountType(typ); err != nil {
		return model.Account{}, err
	}
	if acct.Purpose, err = model.ParseAssetPurpose(purpose); err != nil {
		return model.Account{}, err
	}
	if acct.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Account{}, err
	}
	if acct.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.Account{}, err
	}
	return acct, nil
}
