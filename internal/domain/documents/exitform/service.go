package exitform

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stockhouse/internal/core/apperror"
	"stockhouse/internal/core/entity"
	"stockhouse/internal/core/id"
	"stockhouse/internal/core/tx"
	"stockhouse/internal/core/types"
	"stockhouse/internal/domain"
	"stockhouse/internal/domain/catalogs/product"
	"stockhouse/internal/domain/documents"
	"stockhouse/internal/domain/duplicate"
	"stockhouse/internal/domain/history"
	"stockhouse/internal/domain/stock"
	"stockhouse/pkg/logger"
	"stockhouse/pkg/refseq"
)

// Ledger reasons written by this workflow.
const (
	reasonValidated = "exit form validated"
	reasonCancelled = "exit form cancelled"
)

// referencePrefix for generated exit form references.
const referencePrefix = "EXT"

// Service is the exit form workflow, the mirror of the entry workflow with
// an inverted stock sign. Validation must refuse entirely when any line
// would drive stock negative; there is no partial application.
type Service struct {
	repo      Repository
	products  product.Repository
	stock     *stock.Service
	history   *history.Service
	detector  *duplicate.Detector
	refs      *refseq.Generator
	txManager tx.Manager
}

// NewService creates the exit form service.
func NewService(
	repo Repository,
	products product.Repository,
	stockSvc *stock.Service,
	historySvc *history.Service,
	detector *duplicate.Detector,
	refs *refseq.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		stock:     stockSvc,
		history:   historySvc,
		detector:  detector,
		refs:      refs,
		txManager: txManager,
	}
}

// ItemInput is one requested line.
type ItemInput struct {
	ProductID id.ID
	Quantity  int64
}

// CreateInput describes a new exit form.
type CreateInput struct {
	// Reference is optional; empty means auto-generated
	Reference   string
	Date        time.Time
	Destination string
	Reason      string
	Notes       string
	Items       []ItemInput
}

// UpdateInput carries editable draft fields.
type UpdateInput struct {
	Date        time.Time
	Destination string
	Reason      string
	Notes       string
	Items       []ItemInput
}

// CreateResult returns the created form together with advisory duplicate
// candidates.
type CreateResult struct {
	Form       *ExitForm              `json:"form"`
	Duplicates []*duplicate.Candidate `json:"duplicates,omitempty"`
}

// PeriodSummary aggregates completed forms over a date range.
type PeriodSummary struct {
	ExitsCount  int         `json:"exitsCount"`
	TotalAmount types.Money `json:"totalAmount"`
	Forms       []*ExitForm `json:"forms"`
}

// IsValidDate reports whether a business date is acceptable: today or in the
// past, at UTC day granularity.
func IsValidDate(date time.Time) bool {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	return !date.UTC().Truncate(24 * time.Hour).After(today)
}

// IsValidDate exposes the date rule on the service for callers that hold one.
func (s *Service) IsValidDate(date time.Time) bool {
	return IsValidDate(date)
}

// Create persists a new draft form and reports duplicate candidates.
func (s *Service) Create(ctx context.Context, userID id.ID, in CreateInput) (*CreateResult, error) {
	if id.IsNil(userID) {
		return nil, apperror.NewValidation("user id is required")
	}
	if in.Date.IsZero() {
		return nil, apperror.NewValidation("date is required").WithDetail("field", "date")
	}
	if !IsValidDate(in.Date) {
		return nil, apperror.NewInvalidDate("date cannot be in the future").
			WithDetail("date", in.Date.Format(time.RFC3339))
	}

	items, err := s.resolveItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	form := &ExitForm{
		BaseDocument: entity.NewBaseDocument(),
		Reference:    in.Reference,
		Date:         in.Date,
		Destination:  in.Destination,
		Reason:       in.Reason,
		Status:       documents.StatusDraft,
		UserID:       userID,
		Notes:        in.Notes,
		Items:        items,
	}
	for _, item := range form.Items {
		item.FormID = form.ID
	}
	form.ComputeTotal()

	if err := form.Validate(ctx); err != nil {
		return nil, err
	}

	if form.Reference == "" {
		ref, err := s.refs.Next(ctx, refseq.DefaultConfig(referencePrefix), form.Date)
		if err != nil {
			return nil, apperror.NewInternal(err).WithDetail("op", "generate reference")
		}
		form.Reference = ref
	} else {
		taken, err := s.repo.ExistsByReference(ctx, form.Reference)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperror.NewDuplicateReference("exit", form.Reference)
		}
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, form); err != nil {
			return fmt.Errorf("create exit form: %w", err)
		}
		_, err := s.history.Record(ctx, history.HistoryInput{
			DocumentKind: documents.KindExit,
			DocumentID:   form.ID,
			UserID:       userID,
			Field:        "status",
			OldValue:     nil,
			NewValue:     history.StrPtr(string(documents.StatusDraft)),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "exit form created",
		"form_id", form.ID,
		"reference", form.Reference,
		"destination", form.Destination,
	)

	return &CreateResult{
		Form:       form,
		Duplicates: s.findDuplicates(ctx, form),
	}, nil
}

// Validate transitions a draft to completed, decreasing stock per item. The
// conditional stock update refuses negative results, so the first short line
// aborts the transaction and nothing is applied.
func (s *Service) Validate(ctx context.Context, userID, formID id.ID, reason string) (*ExitForm, error) {
	if id.IsNil(userID) {
		return nil, apperror.NewValidation("user id is required")
	}

	var form *ExitForm
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		f, err := s.repo.GetByID(ctx, formID)
		if err != nil {
			return err
		}
		if !documents.CanValidate(f.Status) {
			return apperror.NewInvalidTransition(string(f.Status), string(documents.StatusCompleted))
		}

		for _, item := range f.Items {
			if _, err := s.stock.Adjust(ctx, item.ProductID, -item.Quantity); err != nil {
				return err
			}
			if _, err := s.stock.Record(ctx, stock.MovementInput{
				ProductID:    item.ProductID,
				Type:         stock.MovementExit,
				Quantity:     item.Quantity,
				Reason:       reasonValidated,
				MovementDate: f.Date,
				UserID:       userID,
			}); err != nil {
				return err
			}
		}

		old := f.Status
		f.Status = documents.StatusCompleted
		if err := s.repo.Update(ctx, f); err != nil {
			return err
		}

		if err := s.recordStatusChange(ctx, userID, f, old, reason); err != nil {
			return err
		}

		form = f
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "exit form validated",
		"form_id", form.ID,
		"reference", form.Reference,
		"items", len(form.Items),
	)
	return form, nil
}

// Cancel transitions a draft, pending or completed form to cancelled.
// Cancelling a completed form restores the dispatched quantities with
// compensating entry movements.
func (s *Service) Cancel(ctx context.Context, userID, formID id.ID, reason string) (*ExitForm, error) {
	if id.IsNil(userID) {
		return nil, apperror.NewValidation("user id is required")
	}

	var form *ExitForm
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		f, err := s.repo.GetByID(ctx, formID)
		if err != nil {
			return err
		}
		if !documents.CanCancel(documents.KindExit, f.Status) {
			return apperror.NewInvalidTransition(string(f.Status), string(documents.StatusCancelled))
		}

		if f.Status == documents.StatusCompleted {
			for _, item := range f.Items {
				if _, err := s.stock.Adjust(ctx, item.ProductID, item.Quantity); err != nil {
					return err
				}
				if _, err := s.stock.Record(ctx, stock.MovementInput{
					ProductID:    item.ProductID,
					Type:         stock.MovementEntry,
					Quantity:     item.Quantity,
					Reason:       reasonCancelled,
					MovementDate: f.Date,
					UserID:       userID,
				}); err != nil {
					return err
				}
			}
		}

		old := f.Status
		f.Status = documents.StatusCancelled
		if err := s.repo.Update(ctx, f); err != nil {
			return err
		}

		if err := s.recordStatusChange(ctx, userID, f, old, reason); err != nil {
			return err
		}

		form = f
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "exit form cancelled",
		"form_id", form.ID,
		"reference", form.Reference,
	)
	return form, nil
}

// CheckDuplicates runs advisory duplicate detection for a prospective form.
func (s *Service) CheckDuplicates(ctx context.Context, q duplicate.Query) ([]*duplicate.Candidate, error) {
	return s.detector.FindCandidates(ctx, documents.KindExit, q)
}

// GetByID loads one form with items.
func (s *Service) GetByID(ctx context.Context, formID id.ID) (*ExitForm, error) {
	return s.repo.GetByID(ctx, formID)
}

// List returns forms matching the filter.
func (s *Service) List(ctx context.Context, filter Filter) (domain.ListResult[*ExitForm], error) {
	return s.repo.List(ctx, filter)
}

// GetByPeriod summarizes completed forms over [start, end]. An empty range
// yields a zeroed summary, never an error.
func (s *Service) GetByPeriod(ctx context.Context, start, end time.Time) (*PeriodSummary, error) {
	if start.After(end) {
		return nil, apperror.NewValidation("start must not be after end")
	}

	forms, err := s.repo.ListByPeriod(ctx, start, end, documents.StatusCompleted)
	if err != nil {
		return nil, err
	}

	total := types.ZeroMoney()
	for _, f := range forms {
		total = total.Add(f.Total)
	}
	return &PeriodSummary{
		ExitsCount:  len(forms),
		TotalAmount: total,
		Forms:       forms,
	}, nil
}

// Update replaces editable fields of a draft. Each changed scalar field gets
// its own history row.
func (s *Service) Update(ctx context.Context, userID, formID id.ID, in UpdateInput) (*ExitForm, error) {
	if id.IsNil(userID) {
		return nil, apperror.NewValidation("user id is required")
	}
	if in.Date.IsZero() {
		return nil, apperror.NewValidation("date is required").WithDetail("field", "date")
	}
	if !IsValidDate(in.Date) {
		return nil, apperror.NewInvalidDate("date cannot be in the future").
			WithDetail("date", in.Date.Format(time.RFC3339))
	}

	items, err := s.resolveItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	var form *ExitForm
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		f, err := s.repo.GetByID(ctx, formID)
		if err != nil {
			return err
		}
		if !documents.CanModify(f.Status) {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"only draft forms can be modified").
				WithDetail("status", string(f.Status))
		}

		changes := fieldChanges(f, in)

		f.Date = in.Date
		f.Destination = in.Destination
		f.Reason = in.Reason
		f.Notes = in.Notes
		f.Items = items
		for _, item := range f.Items {
			item.FormID = f.ID
		}
		f.ComputeTotal()

		if err := f.Validate(ctx); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, f); err != nil {
			return err
		}

		for _, ch := range changes {
			if _, err := s.history.Record(ctx, history.HistoryInput{
				DocumentKind: documents.KindExit,
				DocumentID:   f.ID,
				UserID:       userID,
				Field:        ch.field,
				OldValue:     ch.old,
				NewValue:     ch.new,
			}); err != nil {
				return err
			}
		}

		form = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return form, nil
}

// Delete soft-deletes a draft.
func (s *Service) Delete(ctx context.Context, userID, formID id.ID) error {
	if id.IsNil(userID) {
		return apperror.NewValidation("user id is required")
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		f, err := s.repo.GetByID(ctx, formID)
		if err != nil {
			return err
		}
		if !documents.CanModify(f.Status) {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"only draft forms can be deleted").
				WithDetail("status", string(f.Status))
		}

		if err := s.repo.SetDeletionMark(ctx, f.ID, true); err != nil {
			return err
		}

		_, err = s.history.Record(ctx, history.HistoryInput{
			DocumentKind: documents.KindExit,
			DocumentID:   f.ID,
			UserID:       userID,
			Field:        "deletion_mark",
			OldValue:     history.StrPtr("false"),
			NewValue:     history.StrPtr("true"),
		})
		return err
	})
}

// History returns the change log of a form, newest first.
func (s *Service) History(ctx context.Context, formID id.ID) ([]*history.HistoryEntry, error) {
	return s.history.History(ctx, documents.KindExit, formID)
}

// --- internal helpers ---

// resolveItems checks products exist and values lines at current catalog
// prices.
func (s *Service) resolveItems(ctx context.Context, inputs []ItemInput) ([]*ExitItem, error) {
	if len(inputs) == 0 {
		return nil, apperror.NewValidation("at least one item is required").WithDetail("field", "items")
	}

	ids := make([]id.ID, 0, len(inputs))
	for i, in := range inputs {
		if id.IsNil(in.ProductID) {
			return nil, apperror.NewValidation("item product is required").WithDetail("item", i)
		}
		if in.Quantity <= 0 {
			return nil, apperror.NewValidation("item quantity must be positive").WithDetail("item", i)
		}
		ids = append(ids, in.ProductID)
	}

	found, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]*ExitItem, 0, len(inputs))
	for _, in := range inputs {
		p, ok := found[in.ProductID]
		if !ok {
			return nil, apperror.NewNotFound("product", in.ProductID.String())
		}

		items = append(items, &ExitItem{
			ID:        id.New(),
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			LineTotal: types.MulQuantity(p.UnitPrice, in.Quantity),
		})
	}
	return items, nil
}

// recordStatusChange writes the single history row for a status transition,
// with a full document snapshot attached.
func (s *Service) recordStatusChange(ctx context.Context, userID id.ID, f *ExitForm, old documents.Status, reason string) error {
	snapshot, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = s.history.Record(ctx, history.HistoryInput{
		DocumentKind: documents.KindExit,
		DocumentID:   f.ID,
		UserID:       userID,
		Field:        "status",
		OldValue:     history.StrPtr(string(old)),
		NewValue:     history.StrPtr(string(f.Status)),
		Reason:       reason,
		Snapshot:     snapshot,
	})
	return err
}

// findDuplicates runs advisory detection after creation.
func (s *Service) findDuplicates(ctx context.Context, f *ExitForm) []*duplicate.Candidate {
	lines := make([]duplicate.Line, 0, len(f.Items))
	for _, item := range f.Items {
		lines = append(lines, duplicate.Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	candidates, err := s.detector.FindCandidates(ctx, documents.KindExit, duplicate.Query{
		Destination: f.Destination,
		Date:        f.Date,
		Lines:       lines,
		ExcludeID:   f.ID,
	})
	if err != nil {
		logger.Warn(ctx, "duplicate detection failed", "form_id", f.ID, "error", err)
		return nil
	}
	return candidates
}

type change struct {
	field string
	old   *string
	new   *string
}

// fieldChanges diffs the editable scalar fields of a draft.
func fieldChanges(f *ExitForm, in UpdateInput) []change {
	var changes []change

	if !f.Date.Equal(in.Date) {
		changes = append(changes, change{
			field: "date",
			old:   history.StrPtr(f.Date.Format("2006-01-02")),
			new:   history.StrPtr(in.Date.Format("2006-01-02")),
		})
	}
	if f.Destination != in.Destination {
		changes = append(changes, change{
			field: "destination",
			old:   history.StrPtr(f.Destination),
			new:   history.StrPtr(in.Destination),
		})
	}
	if f.Reason != in.Reason {
		changes = append(changes, change{
			field: "reason",
			old:   history.StrPtr(f.Reason),
			new:   history.StrPtr(in.Reason),
		})
	}
	if f.Notes != in.Notes {
		changes = append(changes, change{
			field: "notes",
			old:   history.StrPtr(f.Notes),
			new:   history.StrPtr(in.Notes),
		})
	}
	return changes
}
