package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/oikonomos-dev/oikonomos/internal/model"
)

// InsertCategory stores a new category. Names are unique.
func (t *Tx) InsertCategory(c model.Category) (model.Category, error) {
	c.ID = newID()
	_, err := t.exec(
		`INSERT INTO categories (id, name, parent_id, is_active) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, nullable(c.ParentID), boolInt(c.Active),
	)
	if err != nil {
		return model.Category{}, translate(err, "inserting category "+c.Name)
	}
	return c, nil
}

// ListCategories returns every category ordered by name.
func (t *Tx) ListCategories() ([]model.Category, error) {
	rows, err := t.query(`SELECT id, name, parent_id, is_active FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, translate(err, "listing categories")
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		var (
			c      model.Category
			parent sql.NullString
			active int
		)
		if err := rows.Scan(&c.ID, &c.Name, &parent, &active); err != nil {
			return nil, translate(err, "scanning category")
		}
		c.ParentID = parent.String
		c.Active = active != 0
		out = append(out, c)
	}
	return out, translate(rows.Err(), "listing categories")
}

// InsertPayee stores a new payee. Names are unique.
func (t *Tx) InsertPayee(p model.Payee) (model.Payee, error) {
	p.ID = newID()
	_, err := t.exec(
		`INSERT INTO payees (id, name, default_category_id) VALUES (?, ?, ?)`,
		p.ID, p.Name, nullable(p.DefaultCategoryID),
	)
	if err != nil {
		return model.Payee{}, translate(err, "inserting payee "+p.Name)
	}
	return p, nil
}

// ListPayees returns every payee ordered by name.
func (t *Tx) ListPayees() ([]model.Payee, error) {
	rows, err := t.query(`SELECT id, name, default_category_id FROM payees ORDER BY name ASC`)
	if err != nil {
		return nil, translate(err, "listing payees")
	}
	defer rows.Close()

	var out []model.Payee
	for rows.Next() {
		var (
			p   model.Payee
			def sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &def); err != nil {
			return nil, translate(err, "scanning payee")
		}
		p.DefaultCategoryID = def.String
		out = append(out, p)
	}
	return out, translate(rows.Err(), "listing payees")
}

// GetPayee returns the payee with the given ID.
func (t *Tx) GetPayee(id string) (model.Payee, error) {
	var (
		p   model.Payee
		def sql.NullString
	)
	err := t.queryRow(`SELECT id, name, default_category_id FROM payees WHERE id = ?`, id).Scan(&p.ID, &p.Name, &def)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Payee{}, fmt.Errorf("%w: payee %s", model.ErrNotFound, id)
	}
	if err != nil {
		return model.Payee{}, translate(err, "loading payee "+id)
	}
	p.DefaultCategoryID = def.String
	return p, nil
}
