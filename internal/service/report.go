package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	"github.com/Payphone-Digital/customer-service/internal/dto"
	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/internal/repository"
	"github.com/Payphone-Digital/customer-service/pkg/clock"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// ReportRange is an inclusive range of WIB calendar days. Empty bounds are open.
type ReportRange struct {
	StartDate string
	EndDate   string
}

// bounds converts the range to [from, to) instants.
func (r ReportRange) bounds() (from, to *time.Time, err error) {
	if r.StartDate != "" {
		t, perr := time.ParseInLocation(constants.DateLayout, r.StartDate, clock.WIB)
		if perr != nil {
			return nil, nil, apperrors.ErrValidation.WithField(constants.QueryParamStartDate, r.StartDate)
		}
		from = &t
	}
	if r.EndDate != "" {
		t, perr := time.ParseInLocation(constants.DateLayout, r.EndDate, clock.WIB)
		if perr != nil {
			return nil, nil, apperrors.ErrValidation.WithField(constants.QueryParamEndDate, r.EndDate)
		}
		t = t.AddDate(0, 0, 1)
		to = &t
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, nil, apperrors.ErrDateRangeInvalid.
			WithField(constants.QueryParamStartDate, r.StartDate)
	}
	return from, to, nil
}

type ReportService struct {
	customers *repository.CustomerRepository
	clock     clock.Clock
}

func NewReportService(customers *repository.CustomerRepository, c clock.Clock) *ReportService {
	if c == nil {
		c = clock.System
	}
	return &ReportService{customers: customers, clock: c}
}

// CustomerSummary counts customers created in the range and buckets
// registrations per WIB day.
func (s *ReportService) CustomerSummary(ctx context.Context, rng ReportRange) (*dto.CustomerReportResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Report.CustomerSummary")

	from, to, err := rng.bounds()
	if err != nil {
		return nil, err
	}

	summary, err := s.customers.Summary(ctx, from, to)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	times, err := s.customers.CreatedTimes(ctx, from, to)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return &dto.CustomerReportResponse{
		StartDate:     rng.StartDate,
		EndDate:       rng.EndDate,
		Total:         summary.Total,
		Active:        summary.Active,
		Inactive:      summary.Inactive,
		Deleted:       summary.Deleted,
		EmailVerified: summary.EmailVerified,
		PhoneVerified: summary.PhoneVerified,
		SSOLinked:     summary.SSOLinked,
		Registrations: bucketByDay(times),
	}, nil
}

// bucketByDay expects times in ascending order.
func bucketByDay(times []time.Time) []dto.DailyRegistration {
	out := make([]dto.DailyRegistration, 0)
	for _, t := range times {
		day := t.In(clock.WIB).Format(constants.DateLayout)
		if n := len(out); n > 0 && out[n-1].Date == day {
			out[n-1].Count++
			continue
		}
		out = append(out, dto.DailyRegistration{Date: day, Count: 1})
	}
	return out
}

// ExportCustomers renders the summary and the customer list as a workbook.
// It returns the file content and its name.
func (s *ReportService) ExportCustomers(ctx context.Context, rng ReportRange) ([]byte, string, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Report.ExportCustomers")
	start := time.Now()

	report, err := s.CustomerSummary(ctx, rng)
	if err != nil {
		return nil, "", err
	}
	from, to, _ := rng.bounds()
	customers, _, err := s.customers.List(ctx, repository.CustomerFilter{WithDeleted: true, CreatedFrom: from, CreatedTo: to})
	if err != nil {
		return nil, "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logger.WarnWithContext(ctx, "Failed to close workbook").Err(cerr).Log()
		}
	}()

	if err := f.SetSheetName("Sheet1", constants.ReportSheetName); err != nil {
		return nil, "", apperrors.WrapError(apperrors.ErrInternal, err)
	}
	header := []any{"ID", "Nama", "Telepon", "Email", "Aktif", "Email Terverifikasi", "Telepon Terverifikasi", "SSO ID", "Terdaftar", "Dihapus"}
	if err := f.SetSheetRow(constants.ReportSheetName, "A1", &header); err != nil {
		return nil, "", apperrors.WrapError(apperrors.ErrInternal, err)
	}
	for i := range customers {
		c := &customers[i]
		deleted := ""
		if c.DeletedAt.Valid {
			deleted = c.DeletedAt.Time.In(clock.WIB).Format(time.DateTime)
		}
		row := []any{
			c.ID, c.Name, c.Phone, c.EmailValue(), yesNo(c.IsActive),
			yesNo(c.EmailVerifiedAt != nil), yesNo(c.PhoneVerifiedAt != nil),
			c.SSOIDValue(), c.CreatedAt.In(clock.WIB).Format(time.DateTime), deleted,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(constants.ReportSheetName, cell, &row); err != nil {
			return nil, "", apperrors.WrapError(apperrors.ErrInternal, err)
		}
	}

	if err := writeSummarySheet(f, report); err != nil {
		return nil, "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	name := constants.ReportFilePrefix + s.clock.Now().In(clock.WIB).Format(constants.ReportFileTimestamp) + ".xlsx"
	logger.InfoWithContext(ctx, "Customer report exported").
		String("file", name).
		Int("rows", len(customers)).
		Duration(time.Since(start)).
		Log()
	return buf.Bytes(), name, nil
}

func writeSummarySheet(f *excelize.File, r *dto.CustomerReportResponse) error {
	const sheet = "Ringkasan"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	rows := [][]any{
		{"Periode", fmt.Sprintf("%s s/d %s", orDash(r.StartDate), orDash(r.EndDate))},
		{"Total", r.Total},
		{"Aktif", r.Active},
		{"Nonaktif", r.Inactive},
		{"Dihapus", r.Deleted},
		{"Email Terverifikasi", r.EmailVerified},
		{"Telepon Terverifikasi", r.PhoneVerified},
		{"Terhubung SSO", r.SSOLinked},
		{},
		{"Tanggal", "Pendaftaran"},
	}
	for _, d := range r.Registrations {
		rows = append(rows, []any{d.Date, d.Count})
	}
	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Ya"
	}
	return "Tidak"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
