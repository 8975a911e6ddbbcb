// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cert

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/certly/internal/platform/database/schema"
	"github.com/taibuivan/certly/internal/platform/dberr"
)

// PostgresRepository implements [Repository] over pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a [PostgresRepository].
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var selectColumns = strings.Join(schema.Cert.Columns(), ", ")

func (repository *PostgresRepository) Create(context context.Context, c *Cert) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING %s
	`,
		schema.Cert.Table, schema.Cert.ID, schema.Cert.Email, schema.Cert.Name, schema.Cert.Title, schema.Cert.CreatedAt,
		schema.Cert.CreatedAt,
	)

	err := repository.db.QueryRow(context, query, c.ID, c.Email, c.Name, c.Title).Scan(&c.CreatedAt)
	return dberr.Wrap(err)
}

func (repository *PostgresRepository) FindByID(context context.Context, id uuid.UUID) (*Cert, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, selectColumns, schema.Cert.Table, schema.Cert.ID)

	c := &Cert{}
	err := repository.db.QueryRow(context, query, id).Scan(&c.ID, &c.Email, &c.Name, &c.Title, &c.CreatedAt)
	if err != nil {
		return nil, dberr.Wrap(err)
	}
	return c, nil
}

func (repository *PostgresRepository) FindByEmail(context context.Context, email string) (*Cert, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, selectColumns, schema.Cert.Table, schema.Cert.Email)

	c := &Cert{}
	err := repository.db.QueryRow(context, query, email).Scan(&c.ID, &c.Email, &c.Name, &c.Title, &c.CreatedAt)
	if err != nil {
		return nil, dberr.Wrap(err)
	}
	return c, nil
}

// DeleteByEmail removes the certificate owned by email and returns it.
func (repository *PostgresRepository) DeleteByEmail(context context.Context, email string) (*Cert, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 RETURNING %s`, schema.Cert.Table, schema.Cert.Email, selectColumns)

	c := &Cert{}
	err := repository.db.QueryRow(context, query, email).Scan(&c.ID, &c.Email, &c.Name, &c.Title, &c.CreatedAt)
	if err != nil {
		return nil, dberr.Wrap(err)
	}
	return c, nil
}

func (repository *PostgresRepository) Count(context context.Context) (int64, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM %s`, schema.Cert.Table)

	var total int64
	if err := repository.db.QueryRow(context, query).Scan(&total); err != nil {
		return 0, dberr.Wrap(err)
	}
	return total, nil
}
