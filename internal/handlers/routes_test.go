package handlers_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
	"github.com/SscSPs/mbg_dapur_ledger/internal/core/services"
	"github.com/SscSPs/mbg_dapur_ledger/internal/dto"
	"github.com/SscSPs/mbg_dapur_ledger/internal/handlers"
	"github.com/SscSPs/mbg_dapur_ledger/internal/platform/config"
	"github.com/SscSPs/mbg_dapur_ledger/internal/repositories/memory"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// RouterTestSuite exercises the full route table over the in-memory store.
type RouterTestSuite struct {
	suite.Suite
	router *gin.Engine
	store  *memory.Store
	token  string
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:             testJWTSecret,
		JWTExpiryDuration:     time.Hour,
		JWTIssuer:             "dapur-test",
		RateLimit:             "1000-M",
		LoginRateLimit:        "100-M",
		EntryNumberPrefix:     "JE",
		AutoEntryNumberPrefix: "AJ",
	}
}

func (s *RouterTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	s.store = memory.NewStore()
	s.store.SeedSystemAccounts(time.Now().UTC())
	container := services.NewServiceContainer(cfg, memory.NewRepositoryProvider(s.store), nil)

	s.router = gin.New()
	s.Require().NoError(handlers.RegisterRoutes(s.router, cfg, container, nil))

	w := performRequest(s.router, http.MethodPost, "/api/v1/auth/register", "", dto.CreateUserRequest{
		Username: "bendahara", Name: "Bendahara Dapur", Password: "rahasia-dapur",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = performRequest(s.router, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{
		Username: "bendahara", Password: "rahasia-dapur",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var login dto.LoginResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &login))
	s.token = login.Token
}

func (s *RouterTestSuite) accountID(code string) string {
	acc, err := s.store.FindAccountByCode(context.Background(), code)
	s.Require().NoError(err)
	return acc.AccountID
}

func (s *RouterTestSuite) createEntry(path string, body any) dto.JournalEntryResponse {
	w := performRequest(s.router, http.MethodPost, path, s.token, body)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.JournalEntryResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (s *RouterTestSuite) lines(debitCode, creditCode string, value int64) []dto.JournalLineRequest {
	return []dto.JournalLineRequest{
		{AccountID: s.accountID(debitCode), Debit: decimal.NewFromInt(value)},
		{AccountID: s.accountID(creditCode), Credit: decimal.NewFromInt(value)},
	}
}

func (s *RouterTestSuite) TestHealth() {
	w := performRequest(s.router, http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("OK", w.Body.String())
}

func (s *RouterTestSuite) TestLoginWrongPassword() {
	w := performRequest(s.router, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Username: "bendahara", Password: "salah"})
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *RouterTestSuite) TestProtectedRoutesNeedToken() {
	w := performRequest(s.router, http.MethodGet, "/api/v1/journal-entries", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *RouterTestSuite) TestJournalLifecycle() {
	draft := s.createEntry("/api/v1/journal-entries", dto.CreateJournalEntryRequest{
		EntryDate: "2025-03-10", Description: "Penjualan katering", Lines: s.lines("1-1200", "4-1000", 750000),
	})
	s.Equal(domain.EntryDraft, draft.Status)
	s.Equal("JE-202503-0001", draft.EntryNumber)

	w := performRequest(s.router, http.MethodPost, "/api/v1/journal-entries/"+draft.EntryID+"/post", s.token, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = performRequest(s.router, http.MethodPost, "/api/v1/journal-entries/"+draft.EntryID+"/post", s.token, nil)
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("ENTRY_ALREADY_POSTED", decodeError(s.T(), w).Code)

	w = performRequest(s.router, http.MethodDelete, "/api/v1/journal-entries/"+draft.EntryID, s.token, nil)
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("POSTED_ENTRY_IMMUTABLE", decodeError(s.T(), w).Code)

	reversal := s.createEntry("/api/v1/journal-entries/"+draft.EntryID+"/reverse", nil)
	s.Equal(domain.EntryAuto, reversal.Type)
	s.Equal(draft.EntryNumber, reversal.Reference)

	w = performRequest(s.router, http.MethodDelete, "/api/v1/journal-entries/"+reversal.EntryID, s.token, nil)
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("AUTO_ENTRY_IMMUTABLE", decodeError(s.T(), w).Code)

	w = performRequest(s.router, http.MethodGet, "/api/v1/journal-entries/"+draft.EntryID, s.token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var reloaded dto.JournalEntryResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &reloaded))
	s.Equal(domain.EntryReversed, reloaded.Status)
}

func (s *RouterTestSuite) TestCreateEntry_Unbalanced() {
	lines := s.lines("1-1000", "4-1000", 1000)
	lines[1].Credit = decimal.NewFromInt(999)

	w := performRequest(s.router, http.MethodPost, "/api/v1/journal-entries", s.token, dto.CreateJournalEntryRequest{
		EntryDate: "2025-03-10", Description: "x", Lines: lines,
	})

	s.Equal(http.StatusBadRequest, w.Code)
	body := decodeError(s.T(), w)
	s.Equal("UNBALANCED_ENTRY", body.Code)
	s.Equal("1", body.Details["difference"])
}

func (s *RouterTestSuite) TestAutoEntryAndListing() {
	s.createEntry("/api/v1/journal-entries/auto", dto.CreateAutoEntryRequest{
		SourceModule: "purchasing", SourceID: "PO-12", EntryDate: "2025-03-02",
		Description: "Belanja sayur", Lines: s.lines("5-1000", "1-1000", 300000),
	})
	s.createEntry("/api/v1/journal-entries", dto.CreateJournalEntryRequest{
		EntryDate: "2025-03-03", Description: "Modal awal", Lines: s.lines("1-1000", "3-1000", 1000000), Post: true,
	})

	w := performRequest(s.router, http.MethodGet, "/api/v1/journal-entries?type=auto", s.token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var page dto.ListJournalEntriesResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &page))
	s.Require().Len(page.Entries, 1)
	s.Equal("AJ-202503-0001", page.Entries[0].EntryNumber)
	s.Equal("purchasing", page.Entries[0].SourceModule)

	w = performRequest(s.router, http.MethodGet, "/api/v1/journal-entries?limit=1", s.token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &page))
	s.Require().Len(page.Entries, 1)
	s.Equal("JE-202503-0001", page.Entries[0].EntryNumber)
	s.NotNil(page.NextToken)
}

func (s *RouterTestSuite) TestReportsAndLedger() {
	s.createEntry("/api/v1/journal-entries", dto.CreateJournalEntryRequest{
		EntryDate: "2025-03-01", Description: "Modal awal", Lines: s.lines("1-1000", "3-1000", 5000000), Post: true,
	})
	s.createEntry("/api/v1/journal-entries", dto.CreateJournalEntryRequest{
		EntryDate: "2025-03-04", Description: "Belanja bahan", Lines: s.lines("5-1000", "1-1000", 1250000), Post: true,
	})

	w := performRequest(s.router, http.MethodGet, "/api/v1/reports/trial-balance?asOf=2025-03-31", s.token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Empty(w.Header().Get(handlers.IntegrityHeader))
	var tb dto.TrialBalanceResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &tb))
	s.True(tb.IsBalanced)
	s.Len(tb.Rows, 3)

	w = performRequest(s.router, http.MethodGet, "/api/v1/reports/trial-balance.csv?asOf=2025-03-31", s.token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Header().Get("Content-Type"), "text/csv")
	s.Contains(w.Header().Get("Content-Disposition"), "neraca-saldo-2025-03-31.csv")
	rows, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	s.Require().NoError(err)
	s.Require().Len(rows, 5)
	s.Equal([]string{"Kode Akun", "Nama Akun", "Tipe", "Debit", "Kredit"}, rows[0])
	s.Equal([]string{"TOTAL", "", "", "6250000", "6250000"}, rows[4])

	w = performRequest(s.router, http.MethodGet, "/api/v1/reports/profit-and-loss?from=2025-03-01&to=2025-03-31", s.token, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = performRequest(s.router, http.MethodGet, "/api/v1/reports/profit-and-loss?from=2025-04-01&to=2025-03-31", s.token, nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("INVALID_DATE_RANGE", decodeError(s.T(), w).Code)

	w = performRequest(s.router, http.MethodGet, "/api/v1/reports/balance-sheet?asOf=2025-03-31", s.token, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = performRequest(s.router, http.MethodGet, "/api/v1/reports/trial-balance?asOf=31-03-2025", s.token, nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = performRequest(s.router, http.MethodGet, "/api/v1/accounts/"+s.accountID("1-1000")+"/ledger?from=2025-03-02&to=2025-03-31", s.token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var ledger dto.AccountLedgerResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &ledger))
	s.True(decimal.NewFromInt(5000000).Equal(ledger.OpeningBalance))
	s.True(decimal.NewFromInt(3750000).Equal(ledger.ClosingBalance))
	s.Len(ledger.Rows, 1)

	w = performRequest(s.router, http.MethodGet, "/api/v1/ledger/reconcile", s.token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var rec dto.ReconcileResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &rec))
	s.True(rec.Consistent)
	s.Empty(rec.Discrepancies)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalance, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrialBalance), args.Error(1)
}

func (m *MockReportingService) ProfitAndLoss(ctx context.Context, from, to time.Time) (*domain.ProfitAndLossReport, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProfitAndLossReport), args.Error(1)
}

func (m *MockReportingService) BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceSheetReport), args.Error(1)
}

func TestTrialBalance_ImbalancedHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reporting := new(MockReportingService)
	asOf := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	reporting.On("TrialBalance", mock.Anything, asOf).Return(&domain.TrialBalance{
		AsOf:        asOf,
		Lines:       []domain.TrialBalanceLine{},
		TotalDebit:  decimal.NewFromInt(100),
		TotalCredit: decimal.NewFromInt(90),
		IsBalanced:  false,
		Warning:     "TRIAL_BALANCE_IMBALANCED: total debit 100 does not equal total credit 90",
	}, nil).Twice()

	r := gin.New()
	handlers.RegisterReportingRoutes(r.Group("/api/v1"), reporting, time.UTC)

	w := performRequest(r, http.MethodGet, "/api/v1/reports/trial-balance?asOf=2025-03-31", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get(handlers.IntegrityHeader); got != "imbalanced" {
		t.Errorf("%s = %q, want imbalanced", handlers.IntegrityHeader, got)
	}
	var tb dto.TrialBalanceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &tb); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(tb.Warning, "TRIAL_BALANCE_IMBALANCED") {
		t.Errorf("warning = %q", tb.Warning)
	}

	w = performRequest(r, http.MethodGet, "/api/v1/reports/trial-balance.csv?asOf=2025-03-31", "", nil)
	if got := w.Header().Get(handlers.IntegrityHeader); got != "imbalanced" {
		t.Errorf("csv %s = %q, want imbalanced", handlers.IntegrityHeader, got)
	}
	reporting.AssertExpectations(t)
}

func TestTrialBalance_DefaultAsOfUsesReportLocation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ahead, err := time.LoadLocation("Etc/GMT-14")
	if err != nil {
		t.Fatal(err)
	}
	reporting := new(MockReportingService)
	reporting.On("TrialBalance", mock.Anything, mock.MatchedBy(func(asOf time.Time) bool {
		return asOf.Equal(domain.LocalDate(time.Now(), ahead))
	})).Return(&domain.TrialBalance{
		Lines:       []domain.TrialBalanceLine{},
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
		IsBalanced:  true,
	}, nil).Once()

	r := gin.New()
	handlers.RegisterReportingRoutes(r.Group("/api/v1"), reporting, ahead)

	w := performRequest(r, http.MethodGet, "/api/v1/reports/trial-balance", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	reporting.AssertExpectations(t)
}
