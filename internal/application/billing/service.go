// Package billing is the application service in front of the billing engine.
// It resolves the client and settings snapshots, runs the derivation pipeline,
// persists through the entry repository and fans out events, cache
// invalidation and metrics.
package billing

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domainbilling "github.com/turtacn/MRM-Billing/internal/domain/billing"
	"github.com/turtacn/MRM-Billing/internal/domain/client"
	"github.com/turtacn/MRM-Billing/internal/domain/settings"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MRM-Billing/pkg/errors"
)

// InvoiceDateLayout is the accepted invoice date format.
const InvoiceDateLayout = "2006-01-02"

// Event type labels used for metrics.
const (
	eventEntrySaved   = "billing.entry.saved"
	eventEntryDeleted = "billing.entry.deleted"
)

// Service defines the billing application operations.
type Service interface {
	Save(ctx context.Context, input *SaveEntryInput) (*SaveResult, error)
	Get(ctx context.Context, key domainbilling.Key) (*domainbilling.Entry, error)
	Delete(ctx context.Context, key domainbilling.Key) error
	UpdateStatus(ctx context.Context, key domainbilling.Key, update domainbilling.StatusUpdate) (*domainbilling.Entry, error)
	List(ctx context.Context, filter domainbilling.EntryFilter) ([]*domainbilling.Entry, error)
	ListByMonth(ctx context.Context, month domainbilling.Month, fyStart int) ([]*domainbilling.Entry, error)
	ListByClient(ctx context.Context, clientID string) ([]*domainbilling.Entry, error)
	CarryIn(ctx context.Context, key domainbilling.Key) (decimal.Decimal, error)
	Summary(ctx context.Context, month domainbilling.Month, fyStart int) (*domainbilling.Summary, error)
	ClientReport(ctx context.Context, clientID string, fyStart int) (*domainbilling.ClientReport, error)
	ImportLegacy(ctx context.Context, rows []LegacyRow, opts ImportOptions) (*ImportResult, error)
	CurrentFinancialYear(ctx context.Context) (domainbilling.FinancialYear, error)
}

// SaveEntryInput is the user-facing shape of one billing form. Amounts are
// text as typed; blank or unparsable values count as zero.
type SaveEntryInput struct {
	ClientID string `json:"client_id"`
	Month    string `json:"month"`
	// FYStart of zero selects the financial year from settings.
	FYStart int `json:"fy_start"`

	Amounts map[domainbilling.SourceCode]string `json:"amounts"`

	// Optional per-entry overrides of the settings exchange rates.
	GBPToINRRate string `json:"gbp_to_inr_rate,omitempty"`
	USDToINRRate string `json:"usd_to_inr_rate,omitempty"`

	// PreviousOutstanding nil means "carry in from the previous month" for a
	// new entry and "keep the stored value" when replacing.
	PreviousOutstanding *string `json:"previous_outstanding,omitempty"`
	CurrentOutstanding  string  `json:"current_outstanding"`
	Operator            string  `json:"outstanding_operator"`

	IPRSRemarks string `json:"iprs_remarks"`
	PRSRemarks  string `json:"prs_remarks"`

	InvoiceDate   string `json:"invoice_date"`
	InvoiceNumber string `json:"invoice_number"`
	InvoiceStatus string `json:"invoice_status"`
	Status        string `json:"status"`
}

// SaveResult reports the stored entry and whether it replaced an existing one.
type SaveResult struct {
	Entry    *domainbilling.Entry `json:"entry"`
	Replaced bool                 `json:"replaced"`
}

// EventPublisher announces entry changes.
type EventPublisher interface {
	EntrySaved(ctx context.Context, e *domainbilling.Entry) error
	EntryDeleted(ctx context.Context, key domainbilling.Key) error
}

// SummaryCache memoises monthly summaries.
type SummaryCache interface {
	GetOrLoad(ctx context.Context, month domainbilling.Month, fyStart int, load func(ctx context.Context) (*domainbilling.Summary, error)) (*domainbilling.Summary, error)
	Invalidate(ctx context.Context, month domainbilling.Month, fyStart int) error
}

// Dependencies wires the service. Entries, Clients and Settings are required;
// the rest are optional.
type Dependencies struct {
	Entries   domainbilling.EntryRepository
	Clients   client.Directory
	Settings  settings.Provider
	Policy    domainbilling.TransitionPolicy
	Events    EventPublisher
	Summaries SummaryCache
	Metrics   *prometheus.AppMetrics
	Logger    logging.Logger
	Clock     func() time.Time
}

type serviceImpl struct {
	entries   domainbilling.EntryRepository
	clients   client.Directory
	settings  settings.Provider
	policy    domainbilling.TransitionPolicy
	events    EventPublisher
	summaries SummaryCache
	metrics   *prometheus.AppMetrics
	logger    logging.Logger
	now       func() time.Time
}

// NewService creates a new billing application service.
func NewService(deps Dependencies) (Service, error) {
	if deps.Entries == nil || deps.Clients == nil || deps.Settings == nil {
		return nil, errors.New(errors.ErrCodeInternal, "billing service requires entries, clients and settings")
	}
	s := &serviceImpl{
		entries:   deps.Entries,
		clients:   deps.Clients,
		settings:  deps.Settings,
		policy:    deps.Policy,
		events:    deps.Events,
		summaries: deps.Summaries,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		now:       deps.Clock,
	}
	if s.policy == nil {
		s.policy = domainbilling.AnyTransition{}
	}
	if s.logger == nil {
		s.logger = logging.NewNopLogger()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

func (s *serviceImpl) CurrentFinancialYear(ctx context.Context) (domainbilling.FinancialYear, error) {
	cur, err := s.settings.Current(ctx)
	if err != nil {
		return domainbilling.FinancialYear{}, err
	}
	return cur.FinancialYear, nil
}

func (s *serviceImpl) resolveFY(ctx context.Context, fyStart int) (int, error) {
	if fyStart != 0 {
		return fyStart, nil
	}
	fy, err := s.CurrentFinancialYear(ctx)
	if err != nil {
		return 0, err
	}
	return fy.StartYear, nil
}

func (s *serviceImpl) Save(ctx context.Context, input *SaveEntryInput) (*SaveResult, error) {
	start := s.now()
	if input == nil {
		return nil, errors.NewValidationError("billing entry input is required")
	}

	res, err := s.save(ctx, input)
	elapsed := s.now().Sub(start)
	switch {
	case err != nil && (errors.IsValidation(err) || errors.IsNotFound(err) || errors.IsCode(err, errors.ErrCodeClientInactive)):
		s.metrics.RecordEntrySave(prometheus.OutcomeRejected, "", decimal.Zero, elapsed)
		return nil, err
	case err != nil:
		s.metrics.RecordEntrySave(prometheus.OutcomeError, "", decimal.Zero, elapsed)
		s.logger.Error("failed to save billing entry",
			logging.ClientID(input.ClientID), logging.Month(input.Month), logging.Err(err))
		return nil, err
	}

	outcome := prometheus.OutcomeCreated
	if res.Replaced {
		outcome = prometheus.OutcomeReplaced
	}
	s.metrics.RecordEntrySave(outcome, string(res.Entry.Month), res.Entry.TotalInvoice, elapsed)
	s.afterWrite(ctx, res.Entry.Key())
	s.publishSaved(ctx, res.Entry)

	s.logger.Info("billing entry saved",
		logging.EntryKey(res.Entry.Key()),
		logging.String("outcome", outcome),
		logging.Decimal("total_invoice", res.Entry.TotalInvoice))
	return res, nil
}

func (s *serviceImpl) save(ctx context.Context, input *SaveEntryInput) (*SaveResult, error) {
	fyStart, err := s.resolveFY(ctx, input.FYStart)
	if err != nil {
		return nil, err
	}
	key, err := domainbilling.NewKey(input.ClientID, input.Month, fyStart)
	if err != nil {
		return nil, err
	}

	c, err := s.clients.Get(ctx, key.ClientID)
	if err != nil {
		return nil, err
	}
	if !c.IsActive {
		return nil, errors.Newf(errors.ErrCodeClientInactive, "client %s is inactive", c.ClientID)
	}

	cur, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}

	op, err := domainbilling.ParseOperator(input.Operator)
	if err != nil {
		return nil, err
	}
	status, err := domainbilling.ParseStatus(input.Status)
	if err != nil {
		return nil, err
	}
	invoiceStatus, err := domainbilling.ParseInvoiceStatus(input.InvoiceStatus)
	if err != nil {
		return nil, err
	}
	invoiceDate, err := s.parseInvoiceDate(input.InvoiceDate)
	if err != nil {
		return nil, err
	}
	raw, err := parseAmounts(input.Amounts)
	if err != nil {
		return nil, err
	}
	rates, err := ratesWithOverrides(cur.Rates(), input.GBPToINRRate, input.USDToINRRate)
	if err != nil {
		return nil, err
	}

	existing, err := s.entries.Get(ctx, key)
	if err != nil && !errors.IsNotFound(err) {
		return nil, err
	}

	var previous decimal.Decimal
	switch {
	case input.PreviousOutstanding != nil:
		previous = domainbilling.ParseAmount(*input.PreviousOutstanding)
	case existing != nil:
		previous = existing.Outstanding.Previous
	default:
		if previous, err = s.CarryIn(ctx, key); err != nil {
			return nil, err
		}
	}

	invoiceNumber := strings.TrimSpace(input.InvoiceNumber)
	if invoiceNumber == "" {
		invoiceNumber = domainbilling.InvoiceNumberFor(key)
	}

	entry, err := domainbilling.Derive(domainbilling.DeriveInput{
		Key:                 key,
		ClientName:          c.Name,
		ServiceFee:          c.Fee,
		Raw:                 raw,
		Rates:               rates,
		GSTRate:             cur.GSTRate,
		PreviousOutstanding: previous,
		CurrentOutstanding:  domainbilling.ParseAmount(input.CurrentOutstanding),
		Operator:            op,
		IPRSRemarks:         strings.TrimSpace(input.IPRSRemarks),
		PRSRemarks:          strings.TrimSpace(input.PRSRemarks),
		InvoiceDate:         invoiceDate,
		InvoiceNumber:       invoiceNumber,
		InvoiceStatus:       invoiceStatus,
		Status:              status,
	})
	if err != nil {
		return nil, err
	}

	saved, err := s.entries.Save(ctx, entry)
	if err != nil {
		return nil, err
	}
	return &SaveResult{Entry: saved, Replaced: existing != nil}, nil
}

func (s *serviceImpl) parseInvoiceDate(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		y, m, d := s.now().UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(InvoiceDateLayout, text)
	if err != nil {
		return time.Time{}, errors.Newf(errors.ErrCodeValidation, "invoice date %q is not YYYY-MM-DD", text)
	}
	return t, nil
}

func parseAmounts(in map[domainbilling.SourceCode]string) (map[domainbilling.SourceCode]decimal.Decimal, error) {
	raw := make(map[domainbilling.SourceCode]decimal.Decimal, len(domainbilling.Sources))
	for code, text := range in {
		norm := domainbilling.SourceCode(strings.ToLower(strings.TrimSpace(string(code))))
		if _, ok := domainbilling.LookupSource(norm); !ok {
			return nil, errors.Newf(errors.ErrCodeValidation, "unknown income source %q", code)
		}
		raw[norm] = domainbilling.ParseAmount(text)
	}
	return raw, nil
}

func ratesWithOverrides(base domainbilling.Rates, gbp, usd string) (domainbilling.Rates, error) {
	out := domainbilling.Rates{}
	for c, r := range base {
		out[c] = r
	}
	for c, text := range map[domainbilling.Currency]string{
		domainbilling.CurrencyGBP: gbp,
		domainbilling.CurrencyUSD: usd,
	} {
		if strings.TrimSpace(text) == "" {
			continue
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(text))
		if err != nil || rate.IsNegative() {
			return nil, errors.Newf(errors.ErrCodeInvalidAmount, "%s exchange rate %q is invalid", c, text)
		}
		out[c] = rate
	}
	return out, nil
}

func (s *serviceImpl) Get(ctx context.Context, key domainbilling.Key) (*domainbilling.Entry, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return s.entries.Get(ctx, key)
}

func (s *serviceImpl) Delete(ctx context.Context, key domainbilling.Key) error {
	if err := key.Validate(); err != nil {
		return err
	}
	start := s.now()
	err := s.entries.Delete(ctx, key)
	elapsed := s.now().Sub(start)
	switch {
	case errors.IsNotFound(err):
		s.metrics.RecordEntryDelete(prometheus.OutcomeNotFound, elapsed)
		return err
	case err != nil:
		s.metrics.RecordEntryDelete(prometheus.OutcomeError, elapsed)
		return err
	}
	s.metrics.RecordEntryDelete(prometheus.OutcomeDeleted, elapsed)
	s.afterWrite(ctx, key)

	if s.events != nil {
		err := s.events.EntryDeleted(ctx, key)
		s.metrics.RecordEventPublished(eventEntryDeleted, err)
		if err != nil {
			s.logger.Warn("failed to publish entry deleted event", logging.EntryKey(key), logging.Err(err))
		}
	}
	s.logger.Info("billing entry deleted", logging.EntryKey(key))
	return nil
}

func (s *serviceImpl) UpdateStatus(ctx context.Context, key domainbilling.Key, update domainbilling.StatusUpdate) (*domainbilling.Entry, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	if update.Empty() {
		return nil, errors.NewValidationError("status update changes nothing")
	}
	if update.Status != nil && !update.Status.Valid() {
		return nil, errors.Newf(errors.ErrCodeInvalidStatus, "unrecognised status %q", *update.Status)
	}
	if update.InvoiceStatus != nil && !update.InvoiceStatus.Valid() {
		return nil, errors.Newf(errors.ErrCodeInvalidStatus, "unrecognised invoice status %q", *update.InvoiceStatus)
	}

	current, err := s.entries.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if update.Status != nil {
		if err := s.policy.CheckStatus(current.Status, *update.Status); err != nil {
			return nil, err
		}
	}
	if update.InvoiceStatus != nil {
		if err := s.policy.CheckInvoiceStatus(current.InvoiceStatus, *update.InvoiceStatus); err != nil {
			return nil, err
		}
	}

	updated, err := s.entries.UpdateStatus(ctx, key, update)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordStatusChange(string(updated.Status), string(updated.InvoiceStatus))
	s.afterWrite(ctx, key)
	s.publishSaved(ctx, updated)
	return updated, nil
}

func (s *serviceImpl) List(ctx context.Context, filter domainbilling.EntryFilter) ([]*domainbilling.Entry, error) {
	if filter.Month != "" && !filter.Month.Valid() {
		return nil, errors.Newf(errors.ErrCodeInvalidMonth, "unrecognised month code %q", filter.Month)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, errors.Newf(errors.ErrCodeInvalidStatus, "unrecognised status %q", filter.Status)
	}
	return s.entries.List(ctx, filter)
}

func (s *serviceImpl) ListByMonth(ctx context.Context, month domainbilling.Month, fyStart int) ([]*domainbilling.Entry, error) {
	if !month.Valid() {
		return nil, errors.Newf(errors.ErrCodeInvalidMonth, "unrecognised month code %q", month)
	}
	fyStart, err := s.resolveFY(ctx, fyStart)
	if err != nil {
		return nil, err
	}
	return s.entries.ListByMonth(ctx, month, fyStart)
}

func (s *serviceImpl) ListByClient(ctx context.Context, clientID string) ([]*domainbilling.Entry, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, errors.NewValidationError("client id is required")
	}
	return s.entries.ListByClient(ctx, clientID)
}

// CarryIn returns the closing outstanding balance of the calendar-preceding
// month, crossing into the prior financial year for April. A missing entry
// carries in zero.
func (s *serviceImpl) CarryIn(ctx context.Context, key domainbilling.Key) (decimal.Decimal, error) {
	if err := key.Validate(); err != nil {
		return decimal.Zero, err
	}
	prev, err := s.entries.Get(ctx, key.Previous())
	if errors.IsNotFound(err) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return prev.Outstanding.Total, nil
}

// Summary folds the entries of one month, or of the whole financial year when
// month is blank.
func (s *serviceImpl) Summary(ctx context.Context, month domainbilling.Month, fyStart int) (*domainbilling.Summary, error) {
	if month != "" && !month.Valid() {
		return nil, errors.Newf(errors.ErrCodeInvalidMonth, "unrecognised month code %q", month)
	}
	fyStart, err := s.resolveFY(ctx, fyStart)
	if err != nil {
		return nil, err
	}
	load := func(ctx context.Context) (*domainbilling.Summary, error) {
		entries, err := s.entries.List(ctx, domainbilling.EntryFilter{Month: month, FYStart: fyStart})
		if err != nil {
			return nil, err
		}
		sum := domainbilling.Aggregate(entries)
		return &sum, nil
	}
	if s.summaries == nil {
		return load(ctx)
	}
	return s.summaries.GetOrLoad(ctx, month, fyStart, load)
}

func (s *serviceImpl) ClientReport(ctx context.Context, clientID string, fyStart int) (*domainbilling.ClientReport, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, errors.NewValidationError("client id is required")
	}
	if _, err := s.clients.Get(ctx, clientID); err != nil {
		return nil, err
	}
	fyStart, err := s.resolveFY(ctx, fyStart)
	if err != nil {
		return nil, err
	}
	entries, err := s.entries.List(ctx, domainbilling.EntryFilter{ClientID: clientID, FYStart: fyStart})
	if err != nil {
		return nil, err
	}
	report := domainbilling.AggregateClient(clientID, domainbilling.NewFinancialYear(fyStart), entries)
	return &report, nil
}

// afterWrite drops the cached summaries the write made stale: the month and
// the whole-year rollup.
func (s *serviceImpl) afterWrite(ctx context.Context, key domainbilling.Key) {
	if s.summaries == nil {
		return
	}
	for _, m := range []domainbilling.Month{key.Month, ""} {
		if err := s.summaries.Invalidate(ctx, m, key.FYStart); err != nil {
			s.logger.Warn("failed to invalidate cached summary",
				logging.EntryKey(key), logging.Err(err))
		}
	}
}

func (s *serviceImpl) publishSaved(ctx context.Context, e *domainbilling.Entry) {
	if s.events == nil {
		return
	}
	err := s.events.EntrySaved(ctx, e)
	s.metrics.RecordEventPublished(eventEntrySaved, err)
	if err != nil {
		s.logger.Warn("failed to publish entry saved event", logging.EntryKey(e.Key()), logging.Err(err))
	}
}

//Personal.AI order the ending
