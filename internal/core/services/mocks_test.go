package services_test

import (
	"context"
	"time"

	"github.com/OpenGescom/compta_ledger/internal/core/domain"
	portsrepo "github.com/OpenGescom/compta_ledger/internal/core/ports/repositories"
	portssvc "github.com/OpenGescom/compta_ledger/internal/core/ports/services"
	"github.com/OpenGescom/compta_ledger/internal/dto"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepository = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByNumber(ctx context.Context, number string) (*domain.Account, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByNumbers(ctx context.Context, numbers []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, numbers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ApplyBalanceChange(ctx context.Context, number string, change domain.BalanceChange, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, number, change, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockAccountRepository) ApplyBalanceChangesInTx(ctx context.Context, tx pgx.Tx, changes map[string]domain.BalanceChange, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, tx, changes, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, number string, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, number, updatedBy, updatedAt)
	return args.Error(0)
}

// --- Mock JournalRepository ---

type MockJournalRepository struct {
	mock.Mock
}

var _ portsrepo.JournalRepository = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) SaveJournal(ctx context.Context, journal domain.Journal) error {
	args := m.Called(ctx, journal)
	return args.Error(0)
}

func (m *MockJournalRepository) FindJournalByCode(ctx context.Context, code string) (*domain.Journal, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalRepository) ListJournals(ctx context.Context) ([]domain.Journal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Journal), args.Error(1)
}

func (m *MockJournalRepository) NextSequenceNumber(ctx context.Context, code string, updatedBy string, updatedAt time.Time) (int64, error) {
	args := m.Called(ctx, code, updatedBy, updatedAt)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJournalRepository) NextSequenceNumberInTx(ctx context.Context, tx pgx.Tx, code string, updatedBy string, updatedAt time.Time) (int64, error) {
	args := m.Called(ctx, tx, code, updatedBy, updatedAt)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock ExerciseRepository ---

type MockExerciseRepository struct {
	mock.Mock
}

var _ portsrepo.ExerciseRepository = (*MockExerciseRepository)(nil)

func (m *MockExerciseRepository) SaveExercise(ctx context.Context, exercise domain.FiscalExercise) error {
	args := m.Called(ctx, exercise)
	return args.Error(0)
}

func (m *MockExerciseRepository) FindExerciseByID(ctx context.Context, exerciseID string) (*domain.FiscalExercise, error) {
	args := m.Called(ctx, exerciseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalExercise), args.Error(1)
}

func (m *MockExerciseRepository) FindExerciseForDate(ctx context.Context, date time.Time) (*domain.FiscalExercise, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalExercise), args.Error(1)
}

func (m *MockExerciseRepository) ListExercises(ctx context.Context) ([]domain.FiscalExercise, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FiscalExercise), args.Error(1)
}

func (m *MockExerciseRepository) CloseExercise(ctx context.Context, exerciseID string, closedBy string, closedAt time.Time) (*domain.FiscalExercise, error) {
	args := m.Called(ctx, exerciseID, closedBy, closedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalExercise), args.Error(1)
}

func (m *MockExerciseRepository) ArchiveExercise(ctx context.Context, exerciseID string, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, exerciseID, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockExerciseRepository) ComputeTotals(ctx context.Context, exerciseID string) (domain.ExerciseTotals, error) {
	args := m.Called(ctx, exerciseID)
	return args.Get(0).(domain.ExerciseTotals), args.Error(1)
}

func (m *MockExerciseRepository) UpdateTotals(ctx context.Context, exerciseID string, totals domain.ExerciseTotals, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, exerciseID, totals, updatedBy, updatedAt)
	return args.Error(0)
}

// --- Mock EntryRepository ---

type MockEntryRepository struct {
	mock.Mock
}

var _ portsrepo.EntryRepository = (*MockEntryRepository)(nil)

func (m *MockEntryRepository) SaveEntry(ctx context.Context, journal domain.Journal, entry domain.Entry, changes map[string]domain.BalanceChange) (*domain.Entry, error) {
	args := m.Called(ctx, journal, entry, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entry), args.Error(1)
}

func (m *MockEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.Entry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entry), args.Error(1)
}

func (m *MockEntryRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.EntryLine, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EntryLine), args.Error(1)
}

func (m *MockEntryRepository) FindLinesByExerciseID(ctx context.Context, exerciseID string) ([]domain.EntryLine, error) {
	args := m.Called(ctx, exerciseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EntryLine), args.Error(1)
}

func (m *MockEntryRepository) FindLinesByIDs(ctx context.Context, lineIDs []string) ([]domain.EntryLine, error) {
	args := m.Called(ctx, lineIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EntryLine), args.Error(1)
}

func (m *MockEntryRepository) AddLine(ctx context.Context, entry domain.Entry, line domain.EntryLine, change domain.BalanceChange) error {
	args := m.Called(ctx, entry, line, change)
	return args.Error(0)
}

func (m *MockEntryRepository) MarkEntryValidated(ctx context.Context, entryID string, validatedBy string, validatedAt time.Time) error {
	args := m.Called(ctx, entryID, validatedBy, validatedAt)
	return args.Error(0)
}

func (m *MockEntryRepository) SetLettrage(ctx context.Context, lineIDs []string, code string, lettrageDate time.Time, updatedBy string) error {
	args := m.Called(ctx, lineIDs, code, lettrageDate, updatedBy)
	return args.Error(0)
}

func (m *MockEntryRepository) ClearLettrage(ctx context.Context, lineIDs []string, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, lineIDs, updatedBy, updatedAt)
	return args.Error(0)
}

// --- Mock IntegrityRepository ---

type MockIntegrityRepository struct {
	mock.Mock
}

var _ portsrepo.IntegrityRepository = (*MockIntegrityRepository)(nil)

func (m *MockIntegrityRepository) SealRecord(ctx context.Context, record domain.IntegrityRecord) (*domain.IntegrityRecord, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IntegrityRecord), args.Error(1)
}

func (m *MockIntegrityRepository) FindRecordByID(ctx context.Context, recordID string) (*domain.IntegrityRecord, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IntegrityRecord), args.Error(1)
}

func (m *MockIntegrityRepository) ListRecordsByScope(ctx context.Context, scope string) ([]domain.IntegrityRecord, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IntegrityRecord), args.Error(1)
}

func (m *MockIntegrityRepository) TailHash(ctx context.Context, scope string) (string, error) {
	args := m.Called(ctx, scope)
	return args.String(0), args.Error(1)
}

func (m *MockIntegrityRepository) UpdateVerification(ctx context.Context, recordID string, status domain.IntegrityStatus, verifiedAt time.Time, updatedBy string) error {
	args := m.Called(ctx, recordID, status, verifiedAt, updatedBy)
	return args.Error(0)
}

// --- Mock AuditRepository ---

type MockAuditRepository struct {
	mock.Mock
}

var _ portsrepo.AuditRepository = (*MockAuditRepository)(nil)

func (m *MockAuditRepository) SaveRecord(ctx context.Context, record domain.AuditRecord) (*domain.AuditRecord, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuditRecord), args.Error(1)
}

func (m *MockAuditRepository) ListRecordsByEntity(ctx context.Context, entityType, entityID string) ([]domain.AuditRecord, error) {
	args := m.Called(ctx, entityType, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditRecord), args.Error(1)
}

func (m *MockAuditRepository) ListRecords(ctx context.Context, limit, offset int) ([]domain.AuditRecord, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditRecord), args.Error(1)
}

// --- Mock IntegritySvcFacade (as used by EntryService) ---

type MockIntegrityService struct {
	mock.Mock
}

var _ portssvc.IntegritySvcFacade = (*MockIntegrityService)(nil)

func (m *MockIntegrityService) SealDocument(ctx context.Context, req dto.SealDocumentRequest, userID, ip string) (*domain.IntegrityRecord, error) {
	args := m.Called(ctx, req, userID, ip)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IntegrityRecord), args.Error(1)
}

func (m *MockIntegrityService) VerifyDocument(ctx context.Context, recordID string, content any, userID string) (*dto.VerificationReport, error) {
	args := m.Called(ctx, recordID, content, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.VerificationReport), args.Error(1)
}

func (m *MockIntegrityService) VerifyChain(ctx context.Context, scope string) (*dto.ChainReport, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ChainReport), args.Error(1)
}

func (m *MockIntegrityService) GetRecord(ctx context.Context, recordID string) (*domain.IntegrityRecord, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IntegrityRecord), args.Error(1)
}

// --- Mock AuditSvcFacade (as used by entry/exercise services) ---

type MockAuditService struct {
	mock.Mock
}

var _ portssvc.AuditSvcFacade = (*MockAuditService)(nil)

func (m *MockAuditService) RecordAction(ctx context.Context, req dto.RecordAuditRequest, userID, ip, userAgent string) (*domain.AuditRecord, error) {
	args := m.Called(ctx, req, userID, ip, userAgent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuditRecord), args.Error(1)
}

func (m *MockAuditService) ListByEntity(ctx context.Context, entityType, entityID string) ([]domain.AuditRecord, error) {
	args := m.Called(ctx, entityType, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditRecord), args.Error(1)
}

func (m *MockAuditService) VerifyChain(ctx context.Context) (*dto.ChainReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ChainReport), args.Error(1)
}
