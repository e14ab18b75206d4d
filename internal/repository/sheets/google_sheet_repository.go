package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/yafera/herdbook/internal/config"
)

// GoogleSheetRepository implements Repository with one worksheet per table.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger

	mu    sync.Mutex
	known map[string]bool
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
		known:         make(map[string]bool),
	}, nil
}

// ReadTable fetches every populated cell of the worksheet. Numbers come back
// unformatted, dates as their displayed string.
func (r *GoogleSheetRepository) ReadTable(ctx context.Context, table string) ([][]interface{}, error) {
	if table == "" {
		return nil, fmt.Errorf("table must not be empty")
	}

	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, quoteSheet(table)).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		if isMissingSheet(err) {
			return nil, fmt.Errorf("read table %s: %w", table, ErrTableNotFound)
		}
		return nil, fmt.Errorf("read table %s: %w", table, err)
	}

	r.remember(table)
	return resp.Values, nil
}

// OverwriteTable replaces the worksheet contents with rows, creating the
// worksheet when it does not exist yet. Rows below the new content are
// cleared afterwards so the sheet is never empty mid-write.
func (r *GoogleSheetRepository) OverwriteTable(ctx context.Context, table string, rows [][]interface{}) error {
	if table == "" {
		return fmt.Errorf("table must not be empty")
	}

	if err := r.ensureSheet(ctx, table); err != nil {
		return err
	}

	payload := &sheetsapi.ValueRange{Values: rows}
	_, err := r.service.Spreadsheets.Values.Update(r.spreadsheetID, quoteSheet(table)+"!A1", payload).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("overwrite table %s: %w", table, err)
	}

	tail := fmt.Sprintf("%s!A%d:ZZ", quoteSheet(table), len(rows)+1)
	if _, err := r.service.Spreadsheets.Values.Clear(r.spreadsheetID, tail, &sheetsapi.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear tail of table %s: %w", table, err)
	}

	r.logger.Debug("table overwritten", zap.String("table", table), zap.Int("rows", len(rows)))
	return nil
}

func (r *GoogleSheetRepository) ensureSheet(ctx context.Context, table string) error {
	if r.isKnown(table) {
		return nil
	}

	spreadsheet, err := r.service.Spreadsheets.Get(r.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("list worksheets: %w", err)
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil {
			r.remember(sheet.Properties.Title)
		}
	}
	if r.isKnown(table) {
		return nil
	}

	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{Title: table},
			},
		}},
	}
	if _, err := r.service.Spreadsheets.BatchUpdate(r.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("create worksheet %s: %w", table, err)
	}

	r.logger.Info("worksheet created", zap.String("table", table))
	r.remember(table)
	return nil
}

func (r *GoogleSheetRepository) isKnown(table string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.known[table]
}

func (r *GoogleSheetRepository) remember(table string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.known[table] = true
}

// quoteSheet wraps a worksheet title for A1 notation.
func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// isMissingSheet recognizes the 400 the API answers for an unknown worksheet.
func isMissingSheet(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusBadRequest && strings.Contains(apiErr.Message, "Unable to parse range")
}
