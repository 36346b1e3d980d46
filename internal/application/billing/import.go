package billing

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	domainbilling "github.com/turtacn/MRM-Billing/internal/domain/billing"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MRM-Billing/pkg/errors"
)

// LegacyGBPToINRRate is the flat rate the legacy ledger converted PRS income at.
const LegacyGBPToINRRate = "105"

// LegacyRow is one monthly record from the legacy per-client ledger.
type LegacyRow struct {
	ClientID    string
	Period      string // "2025-04"
	IPRS        string
	PRSGBP      string
	ISAMRA      string
	PPL         string
	IPRSRemark  string
	PRSRemark   string
	InvoiceDate string
}

type ImportOptions struct {
	// GBPToINRRate overrides LegacyGBPToINRRate.
	GBPToINRRate string
}

type ImportError struct {
	Row      int    `json:"row"`
	ClientID string `json:"client_id"`
	Period   string `json:"period"`
	Message  string `json:"message"`
}

type ImportResult struct {
	Created int           `json:"created"`
	Skipped int           `json:"skipped"`
	Failed  int           `json:"failed"`
	Errors  []ImportError `json:"errors,omitempty"`
}

// ImportLegacy creates one entry per row. Rows whose key already exists are
// skipped, never replaced; a failing row is recorded and the import goes on.
func (s *serviceImpl) ImportLegacy(ctx context.Context, rows []LegacyRow, opts ImportOptions) (*ImportResult, error) {
	rate := strings.TrimSpace(opts.GBPToINRRate)
	if rate == "" {
		rate = LegacyGBPToINRRate
	}

	res := &ImportResult{}
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		created, err := s.importRow(ctx, row, rate)
		switch {
		case err != nil:
			res.Failed++
			res.Errors = append(res.Errors, ImportError{
				Row:      i + 1,
				ClientID: row.ClientID,
				Period:   row.Period,
				Message:  err.Error(),
			})
			s.logger.Warn("legacy row rejected",
				logging.Int("row", i+1), logging.ClientID(row.ClientID), logging.Err(err))
		case created:
			res.Created++
		default:
			res.Skipped++
		}
	}

	s.metrics.RecordImportRows(res.Created, res.Skipped, res.Failed)
	s.logger.Info("legacy import finished",
		logging.Int("created", res.Created),
		logging.Int("skipped", res.Skipped),
		logging.Int("failed", res.Failed))
	return res, nil
}

func (s *serviceImpl) importRow(ctx context.Context, row LegacyRow, gbpRate string) (bool, error) {
	month, fy, err := domainbilling.ParsePeriod(row.Period)
	if err != nil {
		return false, err
	}
	key, err := domainbilling.NewKey(row.ClientID, string(month), fy.StartYear)
	if err != nil {
		return false, err
	}

	_, err = s.entries.Get(ctx, key)
	if err == nil {
		return false, nil
	}
	if !errors.IsNotFound(err) {
		return false, err
	}

	invoiceStatus := string(domainbilling.InvoiceDraft)
	if strings.Contains(strings.ToLower(row.IPRSRemark), "unbilled") {
		invoiceStatus = string(domainbilling.InvoiceOutstanding)
	}
	invoiceDate := strings.TrimSpace(row.InvoiceDate)
	if _, err := time.Parse(InvoiceDateLayout, invoiceDate); err != nil {
		invoiceDate = ""
	}

	_, err = s.Save(ctx, &SaveEntryInput{
		ClientID: key.ClientID,
		Month:    string(key.Month),
		FYStart:  key.FYStart,
		Amounts: map[domainbilling.SourceCode]string{
			domainbilling.SourceIPRS:   row.IPRS,
			domainbilling.SourcePRS:    row.PRSGBP,
			domainbilling.SourceISAMRA: row.ISAMRA,
			domainbilling.SourcePPL:    row.PPL,
		},
		GBPToINRRate:  gbpRate,
		IPRSRemarks:   row.IPRSRemark,
		PRSRemarks:    row.PRSRemark,
		InvoiceDate:   invoiceDate,
		InvoiceStatus: invoiceStatus,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

var legacyColumns = []string{
	"client_id", "period", "iprs_amt", "prs_amt_gbp", "isamra_amt", "ppl_amt",
	"iprs_remark", "prs_remark", "invoice_date",
}

// ParseLegacyCSV reads legacy rows from CSV with a header line. Only
// client_id and period are mandatory columns; column order is free.
func ParseLegacyCSV(r io.Reader) ([]LegacyRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.NewValidationError("legacy file is empty")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "failed to read legacy header")
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range legacyColumns[:2] {
		if _, ok := index[required]; !ok {
			return nil, errors.Newf(errors.ErrCodeValidation, "legacy file is missing column %q", required)
		}
	}

	var rows []LegacyRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeValidation, fmt.Sprintf("failed to read legacy line %d", line))
		}
		col := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		rows = append(rows, LegacyRow{
			ClientID:    col("client_id"),
			Period:      col("period"),
			IPRS:        col("iprs_amt"),
			PRSGBP:      col("prs_amt_gbp"),
			ISAMRA:      col("isamra_amt"),
			PPL:         col("ppl_amt"),
			IPRSRemark:  col("iprs_remark"),
			PRSRemark:   col("prs_remark"),
			InvoiceDate: col("invoice_date"),
		})
	}
	return rows, nil
}

//Personal.AI order the ending
