package shipments

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/waybill/internal/extraction"
	"github.com/JaimeStill/waybill/pkg/pagination"
	"github.com/JaimeStill/waybill/pkg/query"
	"github.com/JaimeStill/waybill/pkg/repository"
)

const itemsQuery = `
	SELECT product_name, net_weight, gross_weight, package_count, packaging_description, pallet_count
	FROM items
	WHERE shipment_id = $1
	ORDER BY position`

const insertItemSQL = `
	INSERT INTO items(id, shipment_id, position, product_name, net_weight, gross_weight, package_count, packaging_description, pallet_count)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

var insertShipmentSQL = buildInsertShipment()

func buildInsertShipment() string {
	cols := []string{"id", "draft_id", "fingerprint"}
	for _, f := range extraction.TextFields {
		cols = append(cols, f.Name)
	}
	cols = append(cols, "total_net_kg", "total_pkgs", "total_gross_kg", "confidence", "warnings", "evidence")

	params := make([]string, len(cols))
	for i := range cols {
		params[i] = fmt.Sprintf("$%d", i+1)
	}

	return fmt.Sprintf(
		"INSERT INTO shipments(%s) VALUES (%s) RETURNING created_at",
		strings.Join(cols, ", "),
		strings.Join(params, ", "),
	)
}

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a shipment repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "shipments"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Shipment], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, searchFields...)

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count shipments: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	shipments, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanShipment)
	if err != nil {
		return nil, fmt.Errorf("query shipments: %w", err)
	}

	if err := r.attachItems(ctx, shipments); err != nil {
		return nil, err
	}

	result := pagination.NewPageResult(shipments, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Shipment, error) {
	q, args := query.NewBuilder(projection).BuildSingle("id", id)

	s, err := repository.QueryOne(ctx, r.db, q, args, scanShipment)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	items, err := repository.QueryMany(ctx, r.db, itemsQuery, []any{s.ID}, scanItem)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	s.Items = items

	return &s, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM shipments WHERE id = $1",
			id,
		)
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("shipment deleted", "id", id)
	return nil
}

func (r *repo) Export(ctx context.Context, filters Filters) ([]Shipment, error) {
	qb := query.NewBuilder(projection, defaultSort)
	filters.Apply(qb)

	q, args := qb.Build()
	shipments, err := repository.QueryMany(ctx, r.db, q, args, scanShipment)
	if err != nil {
		return nil, fmt.Errorf("query shipments: %w", err)
	}

	if err := r.attachItems(ctx, shipments); err != nil {
		return nil, err
	}

	return shipments, nil
}

func (r *repo) attachItems(ctx context.Context, shipments []Shipment) error {
	for i := range shipments {
		items, err := repository.QueryMany(ctx, r.db, itemsQuery, []any{shipments[i].ID}, scanItem)
		if err != nil {
			return fmt.Errorf("query items for %s: %w", shipments[i].ID, err)
		}
		shipments[i].Items = items
	}
	return nil
}

// Insert writes s and its items through conn. It is called inside the
// freeze transaction; a second shipment for the same draft yields
// ErrDuplicate. CreatedAt is set from the database.
func Insert(ctx context.Context, conn repository.Conn, s *Shipment) error {
	warnings, err := json.Marshal(s.Warnings)
	if err != nil {
		return fmt.Errorf("encode warnings: %w", err)
	}
	evidence, err := json.Marshal(s.Evidence)
	if err != nil {
		return fmt.Errorf("encode evidence: %w", err)
	}

	args := []any{s.ID, s.DraftID, s.Fingerprint}
	for _, f := range extraction.TextFields {
		args = append(args, *f.Ref(&s.Record))
	}
	args = append(args,
		s.TotalNetKg,
		s.TotalPkgs,
		s.TotalGrossKg,
		s.Confidence,
		string(warnings),
		string(evidence),
	)

	if err := conn.QueryRowContext(ctx, insertShipmentSQL, args...).Scan(&s.CreatedAt); err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	for i, it := range s.Items {
		if _, err := conn.ExecContext(
			ctx, insertItemSQL,
			uuid.New(), s.ID, i,
			it.ProductName,
			it.NetWeight,
			it.GrossWeight,
			it.PackageCount,
			it.PackagingDescription,
			it.PalletCount,
		); err != nil {
			return fmt.Errorf("insert item %d: %w", i, err)
		}
	}

	return nil
}
