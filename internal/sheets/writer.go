package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/currency"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/service"
	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const reportSheet = "Report"

// Writer implements the ReportWriter interface for Google Sheets.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: service,
		logger:  common.ComponentLogger(logger, "sheets"),
	}, nil
}

// Export replaces the contents of the report sheet with export.
func (w *Writer) Export(ctx context.Context, export Export) (string, error) {
	w.logger.Info("starting report export",
		"transactions", len(export.Transactions),
		"holdings", len(export.Holdings),
		"currency", export.Currency)

	layout, err := prepareReport(export)
	if err != nil {
		return "", err
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	var spreadsheetID string
	var sheetID int64
	err = common.WithRetry(ctx, "open spreadsheet", func() error {
		var getErr error
		spreadsheetID, sheetID, getErr = w.getOrCreateSpreadsheet(ctx)
		return getErr
	}, retryOpts)
	if err != nil {
		return "", fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	if clearErr := w.clearSheet(ctx, spreadsheetID); clearErr != nil {
		return "", fmt.Errorf("failed to clear sheet: %w", clearErr)
	}

	err = common.WithRetry(ctx, "write report", func() error {
		return w.writeData(ctx, spreadsheetID, layout.values)
	}, retryOpts)
	if err != nil {
		return "", fmt.Errorf("failed to write data: %w", err)
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, "format report", func() error {
			return w.applyFormatting(ctx, spreadsheetID, sheetID, layout, export.Currency)
		}, retryOpts)
		if err != nil {
			// The data is already written.
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("report export completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(layout.values))

	return spreadsheetID, nil
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := oauthConfig(config.ClientID, config.ClientSecret, "")
		tokenSource = client.TokenSource(ctx, &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// getOrCreateSpreadsheet returns the configured spreadsheet, or creates one,
// along with the id of its first sheet.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, int64, error) {
	if w.config.SpreadsheetID != "" {
		existing, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
		if err != nil {
			return "", 0, fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		return existing.SpreadsheetId, firstSheetID(existing), nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: reportSheet}},
		},
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", 0, fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	// Later exports reuse this spreadsheet.
	w.config.SpreadsheetID = created.SpreadsheetId
	return created.SpreadsheetId, firstSheetID(created), nil
}

func firstSheetID(s *sheets.Spreadsheet) int64 {
	if len(s.Sheets) == 0 || s.Sheets[0].Properties == nil {
		return 0
	}
	return s.Sheets[0].Properties.SheetId
}

// clearSheet clears all data from the sheet.
func (w *Writer) clearSheet(ctx context.Context, spreadsheetID string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, "A:Z", &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// reportLayout is the prepared sheet content plus the rows that need
// formatting.
type reportLayout struct {
	values      [][]any
	sectionRows []int
	amountCols  map[int][]int // row index -> amount column indexes
}

func (l *reportLayout) section(title string, header ...any) {
	l.values = append(l.values, []any{})
	l.sectionRows = append(l.sectionRows, len(l.values))
	l.values = append(l.values, []any{title})
	if len(header) > 0 {
		l.values = append(l.values, header)
	}
}

func (l *reportLayout) row(amountCols []int, cells ...any) {
	if len(amountCols) > 0 {
		l.amountCols[len(l.values)] = amountCols
	}
	l.values = append(l.values, cells)
}

// money rounds an amount to cents for display.
func money(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func percent(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(1) + "%"
}

// prepareReport lays the export out as sheet rows.
func prepareReport(export Export) (*reportLayout, error) {
	if !export.Currency.Valid() {
		return nil, fmt.Errorf("%w: %q", currency.ErrUnknownCurrency, export.Currency)
	}

	l := &reportLayout{
		values:     make([][]any, 0, 24+len(export.Monthly)+len(export.Categories)+len(export.Holdings)+len(export.Transactions)),
		amountCols: make(map[int][]int),
	}

	l.values = append(l.values, []any{
		"FinFlow Report",
		export.UserName,
		"As of " + export.AsOf.Format(model.DateLayout),
		"Amounts in " + string(export.Currency),
	})

	s := export.Summary
	l.section("Summary")
	l.row([]int{1}, "Total Balance", money(s.TotalBalance))
	l.row([]int{1}, "Cash", money(s.Cash))
	l.row([]int{1}, "Income", money(s.Income))
	l.row([]int{1}, "Expenses", money(s.Expenses))
	l.row([]int{1}, "Investment Value", money(s.InvestmentValue))
	l.row(nil, "Investment Growth", percent(s.InvestmentGrowth))

	l.section("Monthly Flow", "Month", "Income", "Expenses", "Net")
	for _, m := range export.Monthly {
		l.row([]int{1, 2, 3}, m.Label(), money(m.Income), money(m.Expenses), money(m.Net()))
	}

	l.section("Expenses by Category", "Category", "Count", "Amount", "Share")
	for _, c := range export.Categories {
		l.row([]int{2}, c.Label, c.Count, money(c.Total), percent(c.Share))
	}

	l.section("Holdings", "Kind", "Name", "Detail", "Since", "Cost", "Value", "Gain")
	for _, h := range export.Holdings {
		l.row([]int{4, 5, 6}, string(h.Kind), h.Name, h.Detail, h.Date.Format(model.DateLayout), money(h.Cost), money(h.Value), money(h.Gain))
	}

	l.section("Transactions", "Date", "Title", "Type", "Category", "Amount", "Currency", "Amount ("+string(export.Currency)+")", "Recurrence", "Notes")
	for i := range export.Transactions {
		t := &export.Transactions[i]
		converted, err := currency.Convert(t.Amount, t.Currency, export.Currency)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		recurrence := ""
		if t.IsRecurring {
			recurrence = string(t.Recurrence)
		}
		l.row([]int{6}, t.DateString(), t.Title, string(t.Type), model.CategoryLabel(t.Category),
			money(t.Amount), string(t.Currency), money(converted), recurrence, t.Notes)
	}

	return l, nil
}

// writeData writes the data to the spreadsheet.
func (w *Writer) writeData(ctx context.Context, spreadsheetID string, values [][]any) error {
	// Batches stay under the API request size limit.
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))

		batch := values[i:end]
		rangeStr := fmt.Sprintf("A%d", i+1)
		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, rangeStr, &sheets.ValueRange{Values: batch}).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "start_row", i+1, "rows", len(batch))
	}

	return nil
}

// formatRequests builds the formatting requests for a prepared layout.
func formatRequests(sheetID int64, l *reportLayout, code currency.Code) []*sheets.Request {
	symbol := "$"
	if d, err := currency.Lookup(code); err == nil {
		symbol = d.Symbol
	}

	bold := func(row int64, size int64) *sheets.Request {
		return &sheets.Request{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    row,
					EndRowIndex:      row + 1,
					StartColumnIndex: 0,
					EndColumnIndex:   1,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true, FontSize: size},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		}
	}

	requests := []*sheets.Request{bold(0, 16)}
	for _, row := range l.sectionRows {
		requests = append(requests, bold(int64(row), 12))
	}

	for row, cols := range l.amountCols {
		for _, col := range cols {
			requests = append(requests, &sheets.Request{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{
						SheetId:          sheetID,
						StartRowIndex:    int64(row),
						EndRowIndex:      int64(row) + 1,
						StartColumnIndex: int64(col),
						EndColumnIndex:   int64(col) + 1,
					},
					Cell: &sheets.CellData{
						UserEnteredFormat: &sheets.CellFormat{
							NumberFormat: &sheets.NumberFormat{
								Type:    "CURRENCY",
								Pattern: `"` + symbol + `"#,##0.00`,
							},
						},
					},
					Fields: "userEnteredFormat.numberFormat",
				},
			})
		}
	}

	return append(requests, &sheets.Request{
		AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
			Dimensions: &sheets.DimensionRange{
				SheetId:    sheetID,
				Dimension:  "COLUMNS",
				StartIndex: 0,
				EndIndex:   9,
			},
		},
	})
}

// applyFormatting applies formatting to the spreadsheet.
func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, sheetID int64, l *reportLayout, code currency.Code) error {
	batchUpdate := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: formatRequests(sheetID, l, code),
	}
	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, batchUpdate).Context(ctx).Do()
	return err
}

var _ ReportWriter = (*Writer)(nil)
