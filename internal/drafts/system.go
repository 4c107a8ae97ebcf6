package drafts

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/waybill/internal/extraction"
	"github.com/JaimeStill/waybill/pkg/auth"
	"github.com/JaimeStill/waybill/pkg/pagination"
)

// maxCreateAttempts bounds how often Create re-runs after losing an
// insert race to a concurrent upload of the same document.
const maxCreateAttempts = 3

// System defines the public contract for draft lifecycle operations.
type System interface {
	Handler() *Handler

	// Create opens or refreshes the draft for fingerprint. An open draft
	// with the latest version is updated in place; when the latest version
	// is frozen a new version is opened.
	Create(ctx context.Context, fingerprint string, rec extraction.Record) (*Draft, error)
	// Save replaces the record of an open draft. Frozen drafts return ErrFrozen.
	Save(ctx context.Context, id uuid.UUID, rec extraction.Record) (*Draft, error)
	// Comment appends an advisory comment in either state.
	Comment(ctx context.Context, id uuid.UUID, cmd CommentCommand) (*Comment, error)
	// Freeze commits the draft into a shipment exactly once.
	Freeze(ctx context.Context, id uuid.UUID) (*FreezeResult, error)

	Find(ctx context.Context, id uuid.UUID) (*Detail, error)
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Draft], error)
}

type system struct {
	repo       Repository
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates the draft lifecycle over repo.
func New(repo Repository, logger *slog.Logger, pagination pagination.Config) System {
	return &system{
		repo:       repo,
		logger:     logger.With("system", "drafts"),
		pagination: pagination,
	}
}

func (s *system) Handler() *Handler {
	return NewHandler(s, s.logger, s.pagination)
}

func (s *system) Create(ctx context.Context, fingerprint string, rec extraction.Record) (*Draft, error) {
	rec.Normalize()

	var (
		d   *Draft
		err error
	)

	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		err = s.repo.Atomic(ctx, func(tx Repository) error {
			var uerr error
			d, uerr = upsert(ctx, tx, fingerprint, rec)
			return uerr
		})
		if !errors.Is(err, ErrDuplicate) {
			break
		}
		s.logger.WarnContext(ctx, "draft insert lost race, retrying",
			"fingerprint", fingerprint,
			"attempt", attempt,
		)
	}

	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "draft stored",
		"id", d.ID,
		"fingerprint", fingerprint,
		"version_no", d.VersionNo,
	)
	return d, nil
}

func upsert(ctx context.Context, tx Repository, fingerprint string, rec extraction.Record) (*Draft, error) {
	latest, err := tx.FindByFingerprint(ctx, fingerprint)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if latest != nil {
		locked, err := tx.Lock(ctx, latest.ID)
		if err != nil {
			return nil, err
		}
		if !locked.Frozen() {
			return tx.UpdateData(ctx, locked.ID, rec)
		}
	}

	version := 1
	if latest != nil {
		version = latest.VersionNo + 1
	}

	d := &Draft{
		Fingerprint: fingerprint,
		VersionNo:   version,
		Status:      StatusDraft,
		Data:        rec,
	}
	if err := tx.Insert(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *system) Save(ctx context.Context, id uuid.UUID, rec extraction.Record) (*Draft, error) {
	rec.Normalize()

	var d *Draft
	err := s.repo.Atomic(ctx, func(tx Repository) error {
		locked, err := tx.Lock(ctx, id)
		if err != nil {
			return err
		}
		if locked.Frozen() {
			return ErrFrozen
		}
		d, err = tx.UpdateData(ctx, id, rec)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "draft saved", "id", id)
	return d, nil
}

func (s *system) Comment(ctx context.Context, id uuid.UUID, cmd CommentCommand) (*Comment, error) {
	field := strings.TrimSpace(cmd.FieldName)
	message := strings.TrimSpace(cmd.Message)
	if field == "" || message == "" {
		return nil, ErrInvalidComment
	}

	if _, err := s.repo.Find(ctx, id); err != nil {
		return nil, err
	}

	c := &Comment{
		DraftID:   id,
		FieldName: field,
		Message:   message,
		Author:    resolveAuthor(ctx, cmd.Author),
	}
	if err := s.repo.InsertComment(ctx, c); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "comment added", "draft_id", id, "field", field)
	return c, nil
}

func resolveAuthor(ctx context.Context, author string) string {
	if a := strings.TrimSpace(author); a != "" {
		return a
	}
	if id, ok := auth.FromContext(ctx); ok {
		if name := id.Display(); name != "" {
			return name
		}
	}
	return AnonymousAuthor
}

func (s *system) Freeze(ctx context.Context, id uuid.UUID) (*FreezeResult, error) {
	var result *FreezeResult

	err := s.repo.Atomic(ctx, func(tx Repository) error {
		d, err := tx.Lock(ctx, id)
		if err != nil {
			return err
		}
		if d.Frozen() {
			return ErrAlreadyFrozen
		}

		shipmentID, err := tx.CreateShipment(ctx, d)
		if err != nil {
			return err
		}
		if err := tx.MarkFrozen(ctx, id, shipmentID); err != nil {
			return err
		}

		result = &FreezeResult{DraftID: id, ShipmentID: shipmentID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "draft frozen", "id", id, "shipment_id", result.ShipmentID)
	return result, nil
}

func (s *system) Find(ctx context.Context, id uuid.UUID) (*Detail, error) {
	d, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	comments, err := s.repo.Comments(ctx, id)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []Comment{}
	}

	return &Detail{Draft: *d, Comments: comments}, nil
}

func (s *system) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Draft], error) {
	return s.repo.List(ctx, page, filters)
}
