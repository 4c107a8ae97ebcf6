package drafts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/waybill/internal/extraction"
	"github.com/JaimeStill/waybill/internal/shipments"
	"github.com/JaimeStill/waybill/pkg/pagination"
	"github.com/JaimeStill/waybill/pkg/query"
	"github.com/JaimeStill/waybill/pkg/repository"
)

// store is the PostgreSQL Repository. Outside a transaction db is set and
// conn is the pool; inside Atomic db is nil and conn is the transaction.
type store struct {
	db         *sql.DB
	conn       repository.Conn
	pagination pagination.Config
}

// NewStore creates a PostgreSQL-backed Repository.
func NewStore(db *sql.DB, pagination pagination.Config) Repository {
	return &store{
		db:         db,
		conn:       db,
		pagination: pagination,
	}
}

func (s *store) Atomic(ctx context.Context, fn func(Repository) error) error {
	if s.db == nil {
		return fn(s)
	}

	_, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, fn(&store{conn: tx, pagination: s.pagination})
	})
	return err
}

func (s *store) Find(ctx context.Context, id uuid.UUID) (*Draft, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	d, err := repository.QueryOne(ctx, s.conn, q, args, scanDraft)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &d, nil
}

func (s *store) FindByFingerprint(ctx context.Context, fingerprint string) (*Draft, error) {
	q, args := query.
		NewBuilder(projection, versionSort).
		WhereEquals("Fingerprint", fingerprint).
		Build()

	d, err := repository.QueryOne(ctx, s.conn, q+" LIMIT 1", args, scanDraft)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &d, nil
}

func (s *store) Lock(ctx context.Context, id uuid.UUID) (*Draft, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	d, err := repository.QueryOne(ctx, s.conn, q+" FOR UPDATE", args, scanDraft)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &d, nil
}

func (s *store) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Draft], error) {
	page.Normalize(s.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Fingerprint")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := s.conn.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count drafts: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	drafts, err := repository.QueryMany(ctx, s.conn, pageSQL, pageArgs, scanDraft)
	if err != nil {
		return nil, fmt.Errorf("query drafts: %w", err)
	}

	result := pagination.NewPageResult(drafts, total, page.Page, page.PageSize)
	return &result, nil
}

func (s *store) Insert(ctx context.Context, d *Draft) error {
	data, err := json.Marshal(d.Data)
	if err != nil {
		return fmt.Errorf("encode draft data: %w", err)
	}

	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}

	q := `
		INSERT INTO drafts(id, fingerprint, version_no, status, data)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err = s.conn.
		QueryRowContext(ctx, q, d.ID, d.Fingerprint, d.VersionNo, d.Status, string(data)).
		Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return nil
}

func (s *store) UpdateData(ctx context.Context, id uuid.UUID, rec extraction.Record) (*Draft, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode draft data: %w", err)
	}

	q := fmt.Sprintf(`
		UPDATE %s
		SET data = $1, updated_at = NOW()
		WHERE d.id = $2
		RETURNING %s`,
		projection.Table(), projection.Columns(),
	)

	d, err := repository.QueryOne(ctx, s.conn, q, []any{string(data), id}, scanDraft)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &d, nil
}

func (s *store) InsertComment(ctx context.Context, c *Comment) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	q := `
		INSERT INTO comments(id, draft_id, field_name, message, author)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := s.conn.
		QueryRowContext(ctx, q, c.ID, c.DraftID, c.FieldName, c.Message, c.Author).
		Scan(&c.CreatedAt)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return nil
}

func (s *store) Comments(ctx context.Context, draftID uuid.UUID) ([]Comment, error) {
	q := "SELECT " + commentColumns + " FROM comments WHERE draft_id = $1 ORDER BY created_at, id"

	comments, err := repository.QueryMany(ctx, s.conn, q, []any{draftID}, scanComment)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	return comments, nil
}

func (s *store) CreateShipment(ctx context.Context, d *Draft) (uuid.UUID, error) {
	sh := shipments.FromRecord(d.ID, d.Fingerprint, d.Data)

	if err := shipments.Insert(ctx, s.conn, sh); err != nil {
		if errors.Is(err, shipments.ErrDuplicate) {
			return uuid.Nil, ErrAlreadyFrozen
		}
		return uuid.Nil, fmt.Errorf("insert shipment: %w", err)
	}
	return sh.ID, nil
}

func (s *store) MarkFrozen(ctx context.Context, id uuid.UUID, shipmentID uuid.UUID) error {
	err := repository.ExecExpectOne(
		ctx, s.conn,
		"UPDATE drafts SET status = $1, shipment_id = $2, updated_at = NOW() WHERE id = $3 AND status = $4",
		StatusFrozen, shipmentID, id, StatusDraft,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrAlreadyFrozen
	}
	return err
}
