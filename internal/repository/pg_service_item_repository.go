package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/cotiza/backend/internal/model"
)

// PgServiceItemRepository is the PostgreSQL implementation of
// ServiceItemRepository. Item writes and the template totals update always
// share one transaction: either both land or neither does.
type PgServiceItemRepository struct {
	pool *pgxpool.Pool
}

// NewPgServiceItemRepository creates a PgServiceItemRepository.
func NewPgServiceItemRepository(pool *pgxpool.Pool) *PgServiceItemRepository {
	return &PgServiceItemRepository{pool: pool}
}

const serviceItemColumns = `id, template_id,
	COALESCE(catalog_service_id, ''), resource_id, unit_id,
	name, COALESCE(description, ''), COALESCE(unit_name, ''), COALESCE(resource_name, ''),
	formula_kind, fixed_hours, hours_per_unit, base_hours, repeat_hours,
	cost_per_hour_cents, quantity, safety_factor, margin,
	total_hours, internal_cost_cents, client_cost_cents,
	sort_order, created_at, updated_at`

func scanServiceItem(row pgx.Row) (*model.ServiceItem, error) {
	var item model.ServiceItem
	var fixed, perUnit, base, repeat decimal.NullDecimal
	var costCents, internalCents, clientCents int64
	if err := row.Scan(
		&item.ID, &item.TemplateID,
		&item.CatalogServiceID, &item.ResourceID, &item.UnitID,
		&item.Name, &item.Description, &item.UnitName, &item.ResourceName,
		&item.Formula.Kind, &fixed, &perUnit, &base, &repeat,
		&costCents, &item.Quantity, &item.SafetyFactor, &item.Margin,
		&item.TotalHours, &internalCents, &clientCents,
		&item.SortOrder, &item.CreatedAt, &item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	item.Formula.FixedHours = decPtr(fixed)
	item.Formula.HoursPerUnit = decPtr(perUnit)
	item.Formula.BaseHours = decPtr(base)
	item.Formula.RepeatHours = decPtr(repeat)
	item.CostPerHour = fromCents(costCents)
	item.InternalCost = fromCents(internalCents)
	item.ClientCost = fromCents(clientCents)
	return &item, nil
}

// GetByID loads one service item.
func (r *PgServiceItemRepository) GetByID(ctx context.Context, id string) (*model.ServiceItem, error) {
	item, err := scanServiceItem(r.pool.QueryRow(ctx,
		`SELECT `+serviceItemColumns+` FROM service_items WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

// InsertWithTotals inserts a new item at the end of its template's ordering
// and writes the template totals in the same transaction.
func (r *PgServiceItemRepository) InsertWithTotals(ctx context.Context, item *model.ServiceItem, totals model.TemplateTotals) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if err := tx.QueryRow(ctx,
		`INSERT INTO service_items (
			id, template_id, catalog_service_id, resource_id, unit_id,
			name, description, unit_name, resource_name,
			formula_kind, fixed_hours, hours_per_unit, base_hours, repeat_hours,
			cost_per_hour_cents, quantity, safety_factor, margin,
			total_hours, internal_cost_cents, client_cost_cents, sort_order)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		         $15, $16, $17, $18, $19, $20, $21,
		         (SELECT COALESCE(MAX(sort_order) + 1, 0) FROM service_items WHERE template_id = $2))
		 RETURNING sort_order, created_at, updated_at`,
		item.ID, item.TemplateID, item.CatalogServiceID, item.ResourceID, item.UnitID,
		item.Name, item.Description, item.UnitName, item.ResourceName,
		item.Formula.Kind,
		nullDec(item.Formula.FixedHours), nullDec(item.Formula.HoursPerUnit),
		nullDec(item.Formula.BaseHours), nullDec(item.Formula.RepeatHours),
		cents(item.CostPerHour), item.Quantity, item.SafetyFactor, item.Margin,
		item.TotalHours, cents(item.InternalCost), cents(item.ClientCost),
	).Scan(&item.SortOrder, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return err
	}

	if err := updateTemplateTotals(ctx, tx, item.TemplateID, totals); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// UpdateWithTotals writes an item's parameters and derived costs together
// with the template totals in one transaction.
func (r *PgServiceItemRepository) UpdateWithTotals(ctx context.Context, item *model.ServiceItem, totals model.TemplateTotals) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx,
		`UPDATE service_items
		 SET formula_kind=$1, fixed_hours=$2, hours_per_unit=$3, base_hours=$4, repeat_hours=$5,
		     cost_per_hour_cents=$6, quantity=$7, safety_factor=$8, margin=$9,
		     total_hours=$10, internal_cost_cents=$11, client_cost_cents=$12,
		     updated_at=NOW()
		 WHERE id=$13 AND template_id=$14
		 RETURNING updated_at`,
		item.Formula.Kind,
		nullDec(item.Formula.FixedHours), nullDec(item.Formula.HoursPerUnit),
		nullDec(item.Formula.BaseHours), nullDec(item.Formula.RepeatHours),
		cents(item.CostPerHour), item.Quantity, item.SafetyFactor, item.Margin,
		item.TotalHours, cents(item.InternalCost), cents(item.ClientCost),
		item.ID, item.TemplateID,
	).Scan(&item.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if err := updateTemplateTotals(ctx, tx, item.TemplateID, totals); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// DeleteWithTotals removes an item and writes the totals aggregated over the
// remaining items in one transaction.
func (r *PgServiceItemRepository) DeleteWithTotals(ctx context.Context, itemID, templateID string, totals model.TemplateTotals) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`DELETE FROM service_items WHERE id=$1 AND template_id=$2`, itemID, templateID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := updateTemplateTotals(ctx, tx, templateID, totals); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func updateTemplateTotals(ctx context.Context, tx pgx.Tx, templateID string, totals model.TemplateTotals) error {
	tag, err := tx.Exec(ctx,
		`UPDATE templates
		 SET internal_total_cents=$1, client_total_cents=$2, grand_total_cents=$3, updated_at=NOW()
		 WHERE id=$4`,
		cents(totals.InternalTotal), cents(totals.ClientTotal), cents(totals.GrandTotal), templateID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
