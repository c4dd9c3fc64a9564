package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/wordbook/pkg/models"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// WordStore is the interface that wraps the saved_words methods used by the import
type WordStore interface {
	Create(ctx context.Context, word *models.SavedWord) error
	ExistsByWord(ctx context.Context, userID, word string) (bool, error)
}

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath           string // Path to the Excel or CSV file
	UserID             string // Owner of the imported words
	WordColumn         string // Column with the word
	DefinitionColumn   string // Column with the definition
	PartOfSpeechColumn string // Column with the part of speech, optional
	PhoneticColumn     string // Column with the phonetic spelling, optional
	SheetName          string // Sheet to import; empty means the first sheet
	StartRow           int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		WordColumn:         "A",
		DefinitionColumn:   "B",
		PartOfSpeechColumn: "C",
		PhoneticColumn:     "D",
		StartRow:           2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
}

// Importer loads saved words from spreadsheets
type Importer struct {
	words  WordStore
	logger *zap.Logger
}

// NewImporter creates a new importer
func NewImporter(words WordStore, logger *zap.Logger) *Importer {
	return &Importer{
		words:  words,
		logger: logger,
	}
}

// columns holds zero-based indexes of the configured columns; -1 means unused
type columns struct {
	word, definition, partOfSpeech, phonetic int
}

func (c ImportConfig) columns() (columns, error) {
	var cols columns
	var err error
	if cols.word, err = columnIndex(c.WordColumn, true); err != nil {
		return cols, fmt.Errorf("word column: %w", err)
	}
	if cols.definition, err = columnIndex(c.DefinitionColumn, true); err != nil {
		return cols, fmt.Errorf("definition column: %w", err)
	}
	if cols.partOfSpeech, err = columnIndex(c.PartOfSpeechColumn, false); err != nil {
		return cols, fmt.Errorf("part of speech column: %w", err)
	}
	if cols.phonetic, err = columnIndex(c.PhoneticColumn, false); err != nil {
		return cols, fmt.Errorf("phonetic column: %w", err)
	}
	return cols, nil
}

func columnIndex(name string, required bool) (int, error) {
	if name == "" {
		if required {
			return -1, errors.New("column is required")
		}
		return -1, nil
	}
	n, err := excelize.ColumnNameToNumber(strings.ToUpper(name))
	if err != nil {
		return -1, err
	}
	return n - 1, nil
}

// Import reads the file and saves every new word for the user.
// .csv files are read as CSV, everything else as an Excel workbook.
func (im *Importer) Import(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	if config.UserID == "" {
		return nil, errors.New("user id is required")
	}
	if config.StartRow < 1 {
		config.StartRow = 1
	}
	cols, err := config.columns()
	if err != nil {
		return nil, err
	}

	var rows [][]string
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		rows, err = readCSV(config.FilePath)
	} else {
		rows, err = readExcel(config.FilePath, config.SheetName)
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		Errors: make([]string, 0),
	}

	for i, row := range rows {
		rowNum := i + 1
		// Skip header rows
		if rowNum < config.StartRow || isBlank(row) {
			continue
		}

		result.TotalProcessed++
		if err := im.processRow(ctx, config.UserID, row, cols, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}

	im.logger.Info("word import finished",
		zap.String("user_id", config.UserID),
		zap.String("file", config.FilePath),
		zap.Int("processed", result.TotalProcessed),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)))

	return result, nil
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// processRow saves one row; an existing word is counted as skipped
func (im *Importer) processRow(ctx context.Context, userID string, row []string, cols columns, result *ImportResult) error {
	word := cleanWord(cell(row, cols.word))
	definition := strings.TrimSpace(cell(row, cols.definition))

	if word == "" {
		return fmt.Errorf("word cannot be empty")
	}
	if definition == "" {
		return fmt.Errorf("definition cannot be empty")
	}

	exists, err := im.words.ExistsByWord(ctx, userID, word)
	if err != nil {
		return fmt.Errorf("failed to check existing word: %w", err)
	}
	if exists {
		result.Skipped++
		return nil
	}

	saved := &models.SavedWord{
		UserID:       userID,
		Word:         word,
		Definition:   definition,
		PartOfSpeech: strings.TrimSpace(cell(row, cols.partOfSpeech)),
	}
	if phonetic := strings.TrimSpace(cell(row, cols.phonetic)); phonetic != "" {
		saved.Phonetic = &phonetic
	}

	if err := im.words.Create(ctx, saved); err != nil {
		return fmt.Errorf("failed to create word: %w", err)
	}
	result.Created++
	return nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// cleanWord drops trailing notes in brackets, e.g. "go (went, gone)"
func cleanWord(word string) string {
	if i := strings.Index(word, "("); i > 0 {
		return strings.TrimSpace(word[:i])
	}
	return strings.TrimSpace(word)
}
