package sheets

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/techsolutionsutrecht/offerte/internal/config"
)

var errEmptyTab = errors.New("sheet tab must not be empty")

// Repository stores ledger rows as plain text cells, one tab per ledger.
type Repository interface {
	AppendRow(ctx context.Context, tab string, cells []string) error
	Rows(ctx context.Context, tab string, width int) ([][]string, error)
}

// SpreadsheetRepository keeps ledger tabs in one Google spreadsheet.
type SpreadsheetRepository struct {
	values        *sheetsapi.SpreadsheetsValuesService
	spreadsheetID string
	logger        *zap.Logger
}

// NewSpreadsheetRepository authenticates with a service-account credentials file.
func NewSpreadsheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*SpreadsheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet %s: %w", cfg.SpreadsheetID, err)
	}

	return &SpreadsheetRepository{
		values:        service.Spreadsheets.Values,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendRow writes the cells as raw text below the last filled row of the tab,
// so invoice numbers and amounts are never reinterpreted by the sheet.
func (r *SpreadsheetRepository) AppendRow(ctx context.Context, tab string, cells []string) error {
	sheetRange, err := ColumnRange(tab, len(cells))
	if err != nil {
		return err
	}

	row := make([]interface{}, len(cells))
	for i, cell := range cells {
		row[i] = cell
	}

	_, err = r.values.Append(r.spreadsheetID, sheetRange, &sheetsapi.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append ledger row to %s: %w", tab, err)
	}

	r.logger.Debug("ledger row appended", zap.String("tab", tab), zap.String("range", sheetRange))
	return nil
}

// Rows returns the first width columns of every filled row in the tab.
func (r *SpreadsheetRepository) Rows(ctx context.Context, tab string, width int) ([][]string, error) {
	sheetRange, err := ColumnRange(tab, width)
	if err != nil {
		return nil, err
	}

	resp, err := r.values.Get(r.spreadsheetID, sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", tab, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ColumnRange builds the A1 range covering the first width columns of a tab,
// e.g. ColumnRange("Approvals", 6) is "Approvals!A:F".
func ColumnRange(tab string, width int) (string, error) {
	if tab == "" {
		return "", errEmptyTab
	}
	if width < 1 || width > 26 {
		return "", fmt.Errorf("ledger width %d out of range 1-26", width)
	}
	return fmt.Sprintf("%s!A:%c", tab, 'A'+width-1), nil
}
