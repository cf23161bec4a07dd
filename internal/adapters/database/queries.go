package database

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmoiron/sqlx"
	apperrors "github.com/skillswap/backend/pkg/errors"
)

var dialect = goqu.Dialect("postgres")

type sqlBuilder interface {
	ToSQL() (string, []interface{}, error)
}

func build(b sqlBuilder, what string) (string, []interface{}, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return "", nil, apperrors.NewInternalError(fmt.Sprintf("failed to build %s query", what), err)
	}
	return query, args, nil
}

// exec runs a write and returns the number of affected rows
func exec(ctx context.Context, e sqlx.ExecerContext, b sqlBuilder, what string) (int64, error) {
	query, args, err := build(b, what)
	if err != nil {
		return 0, err
	}

	result, err := e.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, apperrors.NewInternalError(fmt.Sprintf("failed to %s", what), err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to get rows affected", err)
	}
	return n, nil
}

// mustAffect is exec for writes that target one existing row
func mustAffect(ctx context.Context, e sqlx.ExecerContext, b sqlBuilder, what, entity, id string) error {
	n, err := exec(ctx, e, b, what)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("%s with id %s not found", entity, id))
	}
	return nil
}
