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

// PgTemplateRepository is the PostgreSQL implementation of TemplateRepository.
type PgTemplateRepository struct {
	pool *pgxpool.Pool
}

// NewPgTemplateRepository creates a PgTemplateRepository.
func NewPgTemplateRepository(pool *pgxpool.Pool) *PgTemplateRepository {
	return &PgTemplateRepository{pool: pool}
}

const templateColumns = `id, name, COALESCE(description, ''), category, status,
	discount_cents, internal_total_cents, client_total_cents, grand_total_cents,
	created_at, updated_at`

func scanTemplate(row pgx.Row) (*model.Template, error) {
	var t model.Template
	var discountCents, internalCents, clientCents, grandCents int64
	if err := row.Scan(
		&t.ID, &t.Name, &t.Description, &t.Category, &t.Status,
		&discountCents, &internalCents, &clientCents, &grandCents,
		&t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.Discount = fromCents(discountCents)
	t.InternalTotal = fromCents(internalCents)
	t.ClientTotal = fromCents(clientCents)
	t.GrandTotal = fromCents(grandCents)
	return &t, nil
}

// Create inserts a new template with zero totals.
func (r *PgTemplateRepository) Create(ctx context.Context, t *model.Template) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO templates (id, name, description, category, status, discount_cents)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`,
		t.ID, t.Name, t.Description, t.Category, t.Status, cents(t.Discount),
	).Scan(&t.CreatedAt, &t.UpdatedAt)
}

// GetByID loads a template with its items.
func (r *PgTemplateRepository) GetByID(ctx context.Context, id string) (*model.Template, error) {
	t, err := scanTemplate(r.pool.QueryRow(ctx,
		`SELECT `+templateColumns+` FROM templates WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+serviceItemColumns+`
		 FROM service_items WHERE template_id = $1 ORDER BY sort_order, id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*model.ServiceItem, 0)
	for rows.Next() {
		item, err := scanServiceItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	t.Items = items
	return t, nil
}

// List returns all templates without their items, newest first.
func (r *PgTemplateRepository) List(ctx context.Context) ([]*model.Template, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+templateColumns+` FROM templates ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := make([]*model.Template, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// Update writes the descriptive fields of a template.
func (r *PgTemplateRepository) Update(ctx context.Context, t *model.Template) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE templates
		 SET name=$1, description=$2, category=$3, status=$4, updated_at=NOW()
		 WHERE id=$5`,
		t.Name, t.Description, t.Category, t.Status, t.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateDiscountAndTotals writes the discount and the totals re-aggregated
// under it. A single-row UPDATE keeps the pair atomic.
func (r *PgTemplateRepository) UpdateDiscountAndTotals(ctx context.Context, id string, discount decimal.Decimal, totals model.TemplateTotals) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE templates
		 SET discount_cents=$1, internal_total_cents=$2, client_total_cents=$3,
		     grand_total_cents=$4, updated_at=NOW()
		 WHERE id=$5`,
		cents(discount), cents(totals.InternalTotal), cents(totals.ClientTotal),
		cents(totals.GrandTotal), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a template; its items cascade at the schema level.
func (r *PgTemplateRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM templates WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
