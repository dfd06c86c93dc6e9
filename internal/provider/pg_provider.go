package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/DENNISVILL/makipartner/internal/repositories"
)

type pgProvider struct {
	db repositories.DB
}

// NewPgProvider returns a Provider backed by the business database.
func NewPgProvider(db repositories.DB) Provider {
	return &pgProvider{db: db}
}

const (
	defaultLimit = 50
	maxLimit     = 200
)

func (p *pgProvider) Query(ctx context.Context, entity string, filters []Filter, limit, offset int) ([]map[string]interface{}, error) {
	spec, err := specFor(entity)
	if err != nil {
		return nil, err
	}

	where, args, err := buildWhere(spec, filters)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s%s ORDER BY %s DESC LIMIT %d OFFSET %d",
		strings.Join(spec.fields, ", "), spec.table, where, spec.fields[0], limit, offset,
	)

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		record := make(map[string]interface{}, len(spec.fields))
		for i, field := range spec.fields {
			record[field] = values[i]
		}
		results = append(results, record)
	}
	return results, rows.Err()
}

func (p *pgProvider) Count(ctx context.Context, entity string, filters []Filter) (int, error) {
	spec, err := specFor(entity)
	if err != nil {
		return 0, err
	}
	where, args, err := buildWhere(spec, filters)
	if err != nil {
		return 0, err
	}

	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", spec.table, where)
	if err := p.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (p *pgProvider) Sum(ctx context.Context, entity, field string, filters []Filter) (float64, error) {
	spec, err := specFor(entity)
	if err != nil {
		return 0, err
	}
	if !spec.hasField(field) {
		return 0, fmt.Errorf("field %q not allowed for entity %q", field, entity)
	}
	where, args, err := buildWhere(spec, filters)
	if err != nil {
		return 0, err
	}

	var total float64
	query := fmt.Sprintf("SELECT COALESCE(SUM(%s), 0) FROM %s%s", field, spec.table, where)
	if err := p.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// buildWhere renders whitelisted filters into a parameterized WHERE clause.
// Field names and operators never come from user input verbatim.
func buildWhere(spec entitySpec, filters []Filter) (string, []interface{}, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}

	clauses := make([]string, 0, len(filters))
	args := make([]interface{}, 0, len(filters))
	for _, f := range filters {
		if !spec.hasField(f.Field) {
			return "", nil, fmt.Errorf("field %q not allowed for entity %q", f.Field, spec.table)
		}
		op, ok := allowedOps[f.Op]
		if !ok {
			return "", nil, fmt.Errorf("operator %q not allowed", f.Op)
		}
		args = append(args, f.Value)
		clauses = append(clauses, fmt.Sprintf("%s %s $%d", f.Field, op, len(args)))
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}
