package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/OpenGescom/compta_ledger/internal/apperrors"
	"github.com/OpenGescom/compta_ledger/internal/core/domain"
	portsrepo "github.com/OpenGescom/compta_ledger/internal/core/ports/repositories"
	portssvc "github.com/OpenGescom/compta_ledger/internal/core/ports/services"
	"github.com/OpenGescom/compta_ledger/internal/dto"
	"github.com/OpenGescom/compta_ledger/internal/middleware"
	"github.com/OpenGescom/compta_ledger/internal/utils/accounting"
	"github.com/google/uuid"
)

var (
	// ErrExerciseClosed is returned when an entry mutation targets an
	// exercise that no longer accepts writes.
	ErrExerciseClosed = errors.New("fiscal exercise is closed")
	// ErrEntryLocked is returned when mutating a validated entry.
	ErrEntryLocked = errors.New("entry is validated and cannot be modified")
	// ErrEntryUnbalanced is returned when validating an entry whose debit and
	// credit totals differ.
	ErrEntryUnbalanced = errors.New("entry debit and credit totals differ")
	// ErrDateOutsideExercise is returned when the entry date falls outside
	// the targeted exercise range.
	ErrDateOutsideExercise = errors.New("entry date is outside the exercise range")
	// ErrLettrageUnbalanced is returned when a reconciled line set does not
	// net to zero.
	ErrLettrageUnbalanced = errors.New("reconciled lines do not net to zero")
	// ErrAccountNotReconcilable is returned when reconciling lines on an
	// account not flagged reconcilable.
	ErrAccountNotReconcilable = errors.New("account is not reconcilable")
)

// entryService provides posting, validation, lettrage and FEC export.
type entryService struct {
	entryRepo      portsrepo.EntryRepository
	journalRepo    portsrepo.JournalRepository
	exerciseRepo   portsrepo.ExerciseRepository
	accountRepo    portsrepo.AccountRepository
	integritySvc   portssvc.IntegritySvcFacade
	auditSvc       portssvc.AuditSvcFacade
	strictSequence bool
}

// NewEntryService creates a new entry service. Integrity and audit facades
// may be nil in tests; posted entries are then not sealed or audited.
// strictSequence applies the same numbering policy as the journal service:
// journals with sequence control disabled refuse to number entries.
func NewEntryService(
	entryRepo portsrepo.EntryRepository,
	journalRepo portsrepo.JournalRepository,
	exerciseRepo portsrepo.ExerciseRepository,
	accountRepo portsrepo.AccountRepository,
	integritySvc portssvc.IntegritySvcFacade,
	auditSvc portssvc.AuditSvcFacade,
	strictSequence bool,
) portssvc.EntrySvcFacade {
	return &entryService{
		entryRepo:      entryRepo,
		journalRepo:    journalRepo,
		exerciseRepo:   exerciseRepo,
		accountRepo:    accountRepo,
		integritySvc:   integritySvc,
		auditSvc:       auditSvc,
		strictSequence: strictSequence,
	}
}

var _ portssvc.EntrySvcFacade = (*entryService)(nil)

// PostEntry creates a new ledger entry. Numbering, inserts and account
// balance increments happen atomically in the repository transaction. An
// unbalanced entry may be posted (it is a draft); only validation enforces
// balance. A posted entry is sealed in the integrity chain: seal failure is
// fatal and reported, audit failure is logged only.
func (s *entryService) PostEntry(ctx context.Context, req dto.PostEntryRequest, userID, ip string) (*domain.Entry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	journal, err := s.journalRepo.FindJournalByCode(ctx, req.JournalCode)
	if err != nil {
		return nil, fmt.Errorf("journal %s: %w", req.JournalCode, err)
	}
	if s.strictSequence && !journal.SequenceControl {
		return nil, fmt.Errorf("%w: journal %s", ErrSequenceControlDisabled, journal.Code)
	}

	exercise, err := s.resolveExercise(ctx, req.ExerciseID, req.Date)
	if err != nil {
		return nil, err
	}
	if !exercise.IsOpen() {
		return nil, fmt.Errorf("%w: exercise %s", ErrExerciseClosed, exercise.ExerciseID)
	}
	if !exercise.Contains(req.Date) {
		return nil, fmt.Errorf("%w: %s not in [%s, %s]", ErrDateOutsideExercise,
			req.Date.Format(time.DateOnly), exercise.StartDate.Format(time.DateOnly), exercise.EndDate.Format(time.DateOnly))
	}

	now := time.Now().UTC()
	entry := domain.Entry{
		EntryID:      uuid.NewString(),
		JournalCode:  journal.Code,
		ExerciseID:   exercise.ExerciseID,
		EntryDate:    req.Date,
		Label:        req.Label,
		SourceType:   req.SourceType,
		SourceNumber: req.SourceNumber,
		SourceDate:   req.SourceDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	entry.Lines = make([]domain.EntryLine, 0, len(req.Lines))
	for i := range req.Lines {
		line, err := s.buildLine(ctx, entry.EntryID, req.Lines[i], i, userID, now)
		if err != nil {
			return nil, err
		}
		entry.Lines = append(entry.Lines, *line)
	}
	entry.RecomputeTotals()

	saved, err := s.entryRepo.SaveEntry(ctx, *journal, entry, entry.BalanceChanges())
	if err != nil {
		if errors.Is(err, portsrepo.ErrExerciseNotOpen) {
			return nil, fmt.Errorf("%w: exercise %s", ErrExerciseClosed, exercise.ExerciseID)
		}
		logger.Error("Failed to post entry", slog.String("journal", journal.Code), slog.String("error", err.Error()))
		return nil, err
	}

	if s.integritySvc != nil {
		// Sealed content is the canonical projection, not the raw entity,
		// so verification can rebuild it from storage byte for byte.
		if _, err := s.integritySvc.SealDocument(ctx, dto.SealDocumentRequest{
			DocumentType:   domain.DocumentTypeLedgerEntry,
			DocumentID:     saved.EntryID,
			DocumentNumber: saved.EntryNumber,
			Content:        saved.SealPayload(),
		}, userID, ip); err != nil {
			logger.Error("Failed to seal posted entry", slog.String("entry_id", saved.EntryID), slog.String("error", err.Error()))
			return nil, fmt.Errorf("%w: failed to seal entry %s: %v", apperrors.ErrIntegrity, saved.EntryID, err)
		}
	}

	s.audit(ctx, saved.EntryID, domain.ActionCreate, userID, ip, nil, map[string]any{
		"journalCode": saved.JournalCode,
		"entryNumber": saved.EntryNumber,
		"totalDebit":  saved.TotalDebit.StringFixed(2),
		"totalCredit": saved.TotalCredit.StringFixed(2),
		"isBalanced":  saved.Balanced,
	})

	logger.Info("Entry posted",
		slog.String("entry_id", saved.EntryID),
		slog.String("entry_number", saved.EntryNumber),
		slog.String("journal", saved.JournalCode),
		slog.Bool("balanced", saved.Balanced),
	)
	return saved, nil
}

// resolveExercise returns the requested exercise, or the one containing the
// entry date when the request leaves it blank.
func (s *entryService) resolveExercise(ctx context.Context, exerciseID string, date time.Time) (*domain.FiscalExercise, error) {
	if exerciseID != "" {
		return s.exerciseRepo.FindExerciseByID(ctx, exerciseID)
	}
	return s.exerciseRepo.FindExerciseForDate(ctx, date)
}

// buildLine validates one line request against the chart and the amount
// rules and converts it to a domain line.
func (s *entryService) buildLine(ctx context.Context, entryID string, req dto.EntryLineRequest, order int, userID string, now time.Time) (*domain.EntryLine, error) {
	if err := accounting.ValidateLineAmounts(req.Debit, req.Credit); err != nil {
		return nil, fmt.Errorf("%w: line %d: %v", apperrors.ErrValidation, order+1, err)
	}

	account, err := s.accountRepo.FindAccountByNumber(ctx, req.AccountNumber)
	if err != nil {
		return nil, fmt.Errorf("line %d account %s: %w", order+1, req.AccountNumber, err)
	}
	if !account.IsActive {
		return nil, fmt.Errorf("%w: account %s", ErrAccountInactive, account.Number)
	}

	line := domain.EntryLine{
		LineID:          uuid.NewString(),
		EntryID:         entryID,
		AccountNumber:   account.Number,
		AuxNumber:       req.AuxNumber,
		AuxLabel:        req.AuxLabel,
		Label:           req.Label,
		CurrencyAmount:  req.CurrencyAmount,
		CurrencyCode:    req.CurrencyCode,
		CurrencyRate:    req.CurrencyRate,
		AnalyticCode:    req.AnalyticCode,
		AnalyticPercent: req.AnalyticPercent,
		LineOrder:       order,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if req.Debit.IsPositive() {
		line.SetDebit(req.Debit)
	} else {
		line.SetCredit(req.Credit)
	}
	return &line, nil
}

// GetEntry retrieves an entry with its lines.
func (s *entryService) GetEntry(ctx context.Context, entryID string) (*domain.Entry, error) {
	return s.entryRepo.FindEntryByID(ctx, entryID)
}

// AddLine appends one line to an existing unvalidated entry. Entry totals
// and the account balance move in the same repository transaction.
func (s *entryService) AddLine(ctx context.Context, entryID string, req dto.EntryLineRequest, userID string) (*domain.Entry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Validated {
		return nil, fmt.Errorf("%w: entry %s", ErrEntryLocked, entryID)
	}

	now := time.Now().UTC()
	line, err := s.buildLine(ctx, entry.EntryID, req, len(entry.Lines), userID, now)
	if err != nil {
		return nil, err
	}

	change := domain.BalanceChange{Debit: line.Debit, Credit: line.Credit}
	if err := s.entryRepo.AddLine(ctx, *entry, *line, change); err != nil {
		switch {
		case errors.Is(err, portsrepo.ErrEntryValidated):
			return nil, fmt.Errorf("%w: entry %s", ErrEntryLocked, entryID)
		case errors.Is(err, portsrepo.ErrExerciseNotOpen):
			return nil, fmt.Errorf("%w: exercise %s", ErrExerciseClosed, entry.ExerciseID)
		}
		logger.Error("Failed to add entry line", slog.String("entry_id", entryID), slog.String("error", err.Error()))
		return nil, err
	}

	s.audit(ctx, entryID, domain.ActionUpdate, userID, "",
		map[string]any{"lineCount": len(entry.Lines)},
		map[string]any{"lineCount": len(entry.Lines) + 1, "accountNumber": line.AccountNumber})

	return s.entryRepo.FindEntryByID(ctx, entryID)
}

// ValidateEntry flips the entry to validated, locking it for good. Only a
// balanced entry may be validated, and only inside an OPEN exercise.
func (s *entryService) ValidateEntry(ctx context.Context, entryID string, userID string) (*domain.Entry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Validated {
		return nil, fmt.Errorf("%w: entry %s", ErrEntryLocked, entryID)
	}
	if !entry.Balanced {
		return nil, fmt.Errorf("%w: debit %s vs credit %s", ErrEntryUnbalanced,
			entry.TotalDebit.StringFixed(2), entry.TotalCredit.StringFixed(2))
	}

	if err := s.entryRepo.MarkEntryValidated(ctx, entryID, userID, time.Now().UTC()); err != nil {
		switch {
		case errors.Is(err, portsrepo.ErrEntryValidated):
			return nil, fmt.Errorf("%w: entry %s", ErrEntryLocked, entryID)
		case errors.Is(err, portsrepo.ErrExerciseNotOpen):
			return nil, fmt.Errorf("%w: exercise %s", ErrExerciseClosed, entry.ExerciseID)
		}
		logger.Error("Failed to validate entry", slog.String("entry_id", entryID), slog.String("error", err.Error()))
		return nil, err
	}

	s.audit(ctx, entryID, domain.ActionValidate, userID, "",
		map[string]any{"validated": false}, map[string]any{"validated": true})

	logger.Info("Entry validated", slog.String("entry_id", entryID), slog.String("entry_number", entry.EntryNumber))
	return s.entryRepo.FindEntryByID(ctx, entryID)
}

// ReconcileLines marks a set of lines with a shared lettrage code. The set
// must net to exactly zero and every targeted account must be flagged
// reconcilable. Lettrage remains permitted on validated entries.
func (s *entryService) ReconcileLines(ctx context.Context, req dto.ReconcileRequest, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	lines, err := s.entryRepo.FindLinesByIDs(ctx, req.LineIDs)
	if err != nil {
		return err
	}
	if len(lines) != len(req.LineIDs) {
		return fmt.Errorf("%w: %d of %d lines found", apperrors.ErrNotFound, len(lines), len(req.LineIDs))
	}

	if net := accounting.Net(lines); !net.IsZero() {
		return fmt.Errorf("%w: net is %s", ErrLettrageUnbalanced, net.StringFixed(2))
	}

	numbers := make([]string, 0, len(lines))
	for i := range lines {
		numbers = append(numbers, lines[i].AccountNumber)
	}
	accounts, err := s.accountRepo.FindAccountsByNumbers(ctx, numbers)
	if err != nil {
		return err
	}
	for i := range lines {
		account, ok := accounts[lines[i].AccountNumber]
		if !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, lines[i].AccountNumber)
		}
		if !account.Reconcilable {
			return fmt.Errorf("%w: account %s", ErrAccountNotReconcilable, account.Number)
		}
	}

	if err := s.entryRepo.SetLettrage(ctx, req.LineIDs, req.Code, time.Now().UTC(), userID); err != nil {
		logger.Error("Failed to set lettrage", slog.String("code", req.Code), slog.String("error", err.Error()))
		return err
	}

	logger.Info("Lines reconciled", slog.String("code", req.Code), slog.Int("line_count", len(req.LineIDs)))
	return nil
}

// UnreconcileLines clears the lettrage marker from a set of lines.
func (s *entryService) UnreconcileLines(ctx context.Context, lineIDs []string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := s.entryRepo.ClearLettrage(ctx, lineIDs, userID, time.Now().UTC()); err != nil {
		logger.Error("Failed to clear lettrage", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Lines unreconciled", slog.Int("line_count", len(lineIDs)))
	return nil
}

// ExportFEC flattens all lines of an exercise into the statutory export
// shape, ordered by entry number then line order.
func (s *entryService) ExportFEC(ctx context.Context, exerciseID string) (*dto.FECExportResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	exercise, err := s.exerciseRepo.FindExerciseByID(ctx, exerciseID)
	if err != nil {
		return nil, err
	}

	lines, err := s.entryRepo.FindLinesByExerciseID(ctx, exerciseID)
	if err != nil {
		return nil, err
	}

	numberSet := make(map[string]struct{}, len(lines))
	for i := range lines {
		numberSet[lines[i].AccountNumber] = struct{}{}
	}
	numbers := make([]string, 0, len(numberSet))
	for n := range numberSet {
		numbers = append(numbers, n)
	}
	sort.Strings(numbers)

	accounts, err := s.accountRepo.FindAccountsByNumbers(ctx, numbers)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.FECRow, 0, len(lines))
	for i := range lines {
		label := ""
		if account, ok := accounts[lines[i].AccountNumber]; ok {
			label = account.Label
		}
		rows = append(rows, lines[i].ToFECRow(label))
	}

	logger.Info("FEC exported", slog.String("exercise_id", exerciseID), slog.Int("row_count", len(rows)))
	return &dto.FECExportResponse{ExerciseID: exercise.ExerciseID, Year: exercise.Year, Rows: rows}, nil
}

// audit records an entry action; failures are logged, never fatal.
func (s *entryService) audit(ctx context.Context, entryID string, action domain.AuditAction, userID, ip string, oldValues, newValues map[string]any) {
	if s.auditSvc == nil {
		return
	}
	_, err := s.auditSvc.RecordAction(ctx, dto.RecordAuditRequest{
		EntityType: "ledger_entry",
		EntityID:   entryID,
		Action:     string(action),
		OldValues:  oldValues,
		NewValues:  newValues,
	}, userID, ip, "")
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to audit entry action",
			slog.String("entry_id", entryID), slog.String("action", string(action)), slog.String("error", err.Error()))
	}
}
