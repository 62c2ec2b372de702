package analysis

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dashboard-go/internal/state"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var (
	// ErrUnsupportedFormat is returned for bytes that are neither xlsx nor xls.
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	// ErrEmptySheet is returned when the sheet has no header row.
	ErrEmptySheet = errors.New("sheet has no header row")
)

// Format identifies a spreadsheet container.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// ParseOptions selects what to read from a workbook.
type ParseOptions struct {
	// Sheet is the sheet name to read; empty means the first sheet.
	Sheet string
}

// SpreadsheetService parses uploaded workbooks into data frames.
type SpreadsheetService struct {
	logger *zap.Logger
}

func NewSpreadsheetService(logger *zap.Logger) *SpreadsheetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SpreadsheetService{logger: logger}
}

// DetectFormat sniffs the container from its magic bytes and falls back to
// the file extension.
func DetectFormat(filename string, data []byte) (Format, error) {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return FormatXLSX, nil
	case bytes.HasPrefix(data, oleMagic):
		return FormatXLS, nil
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
}

// Parse reads the first (or named) sheet of a workbook. The first row is the
// header; the remaining rows are data padded to the header width.
func (s *SpreadsheetService) Parse(filename string, data []byte, opts ParseOptions) (*state.DataFrame, error) {
	format, err := DetectFormat(filename, data)
	if err != nil {
		return nil, err
	}

	var (
		records [][]string
		sheet   string
	)
	switch format {
	case FormatXLSX:
		records, sheet, err = readXLSX(data, opts.Sheet)
	case FormatXLS:
		records, sheet, err = readXLS(data, opts.Sheet)
	}
	if err != nil {
		return nil, err
	}

	df, err := buildDataFrame(records)
	if err != nil {
		return nil, err
	}
	df.FileName = filename
	df.SheetName = sheet
	df.UploadedAt = time.Now()

	s.logger.Debug("Parsed spreadsheet",
		zap.String("file", filename),
		zap.String("format", string(format)),
		zap.String("sheet", sheet),
		zap.Int("rows", len(df.Rows)),
		zap.Int("columns", len(df.Headers)))
	return df, nil
}

func readXLSX(data []byte, sheet string) ([][]string, string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, "", ErrEmptySheet
	}
	if sheet == "" {
		sheet = sheets[0]
	} else if !contains(sheets, sheet) {
		return nil, "", fmt.Errorf("worksheet %q not found", sheet)
	}

	// Raw values keep numbers free of their display format ("12%", "$100.50").
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, "", fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if err := formatDateCells(f, sheet, rows); err != nil {
		return nil, "", fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, sheet, nil
}

// formatDateCells rewrites date-styled serial numbers in rows as dates.
func formatDateCells(f *excelize.File, sheet string, rows [][]string) error {
	var date1904 bool
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	layouts := make(map[int]string)
	for r, row := range rows {
		for c, v := range row {
			serial, err := strconv.ParseFloat(v, 64)
			if err != nil || serial < 0 {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			styleID, err := f.GetCellStyle(sheet, cell)
			if err != nil {
				return err
			}
			if styleID == 0 {
				continue
			}
			layout, ok := layouts[styleID]
			if !ok {
				layout = styleLayout(f, styleID)
				layouts[styleID] = layout
			}
			if layout == "" {
				continue
			}
			t, err := excelize.ExcelDateToTime(serial, date1904)
			if err != nil {
				continue
			}
			if layout == dateTimeLayout && t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
				layout = dateLayout
			}
			row[c] = t.Format(layout)
		}
	}
	return nil
}

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
	timeLayout     = "15:04:05"
)

// styleLayout returns the Go layout for a date or time number format, or ""
// for any other format.
func styleLayout(f *excelize.File, styleID int) string {
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return ""
	}
	if style.CustomNumFmt != nil {
		return customLayout(*style.CustomNumFmt)
	}
	switch id := style.NumFmt; {
	case id >= 14 && id <= 17, id >= 27 && id <= 36, id >= 50 && id <= 58:
		return dateLayout
	case id == 22:
		return dateTimeLayout
	case id >= 18 && id <= 21, id >= 45 && id <= 47:
		return timeLayout
	}
	return ""
}

// customLayout classifies a custom number format code by its date and time
// tokens, ignoring quoted literals, escapes and bracketed sections.
func customLayout(code string) string {
	var (
		b       strings.Builder
		quoted  bool
		bracket bool
	)
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case ch == '"':
			quoted = !quoted
		case quoted:
		case ch == '\\':
			i++
		case ch == '[':
			bracket = true
		case ch == ']':
			bracket = false
		case !bracket:
			b.WriteByte(ch)
		}
	}
	plain := strings.ToLower(b.String())
	if i := strings.IndexByte(plain, ';'); i >= 0 {
		plain = plain[:i]
	}

	hasDate := strings.ContainsAny(plain, "yd")
	hasTime := strings.ContainsAny(plain, "hs")
	switch {
	case hasDate && hasTime:
		return dateTimeLayout
	case hasDate:
		return dateLayout
	case hasTime:
		return timeLayout
	}
	return ""
}

func readXLS(data []byte, sheet string) (records [][]string, name string, err error) {
	// The legacy reader panics on some malformed workbooks.
	defer func() {
		if r := recover(); r != nil {
			records, name, err = nil, "", fmt.Errorf("open xls: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, "", fmt.Errorf("open xls: %w", err)
	}
	if wb == nil {
		return nil, "", errors.New("open xls: no workbook stream")
	}

	var ws *xls.WorkSheet
	for i := 0; i < wb.NumSheets(); i++ {
		candidate := wb.GetSheet(i)
		if candidate == nil {
			continue
		}
		if sheet == "" || candidate.Name == sheet {
			ws = candidate
			break
		}
	}
	if ws == nil {
		if sheet != "" {
			return nil, "", fmt.Errorf("worksheet %q not found", sheet)
		}
		return nil, "", ErrEmptySheet
	}

	for i := 0; i <= int(ws.MaxRow); i++ {
		row := sheetRow(ws, i)
		if row == nil {
			records = append(records, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for c := 0; c < row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		records = append(records, cells)
	}
	return records, ws.Name, nil
}

// sheetRow returns row i of ws, or nil when the sheet holds no record for it.
func sheetRow(ws *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return ws.Row(i)
}

func buildDataFrame(records [][]string) (*state.DataFrame, error) {
	// Skip leading blank rows the way spreadsheet readers do.
	start := 0
	for start < len(records) && isBlankRow(records[start]) {
		start++
	}
	if start >= len(records) {
		return nil, ErrEmptySheet
	}

	// Readers drop trailing empty cells, so a blank last header is only
	// visible through the data rows.
	width := len(records[start])
	for _, rec := range records[start+1:] {
		if !isBlankRow(rec) && len(rec) > width {
			width = len(rec)
		}
	}
	raw := make([]string, width)
	copy(raw, records[start])

	headers := normalizeHeaders(raw)
	rows := make([][]string, 0, len(records)-start-1)
	for _, rec := range records[start+1:] {
		if isBlankRow(rec) {
			continue
		}
		row := make([]string, width)
		for i := 0; i < width && i < len(rec); i++ {
			row[i] = strings.TrimSpace(rec[i])
		}
		rows = append(rows, row)
	}

	return &state.DataFrame{Headers: headers, Rows: rows}, nil
}

// normalizeHeaders names blank headers "Unnamed: N" and suffixes duplicates
// with ".1", ".2", ...
func normalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	counts := make(map[string]int)
	used := make(map[string]bool)
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for used[name] {
			counts[h]++
			name = fmt.Sprintf("%s.%d", h, counts[h])
		}
		used[name] = true
		headers[i] = name
	}
	return headers
}

func isBlankRow(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
