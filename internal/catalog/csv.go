package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/yungbote/cinematch-backend/internal/platform/logger"
)

var requiredColumns = []string{
	"FilmID", "Title", "Director", "Year", "Genre",
	"Category", "Description", "Keywords", "Mood", "BlockID",
}

// LoadCSV reads the catalog referential from a UTF-8 CSV file. The header
// row must carry every required column; extra columns are ignored.
func LoadCSV(log *logger.Logger, path string) (*Catalog, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	log = log.With("service", "CatalogCSV")
	log.Info("Loading catalog", "path", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, dataErr("load_csv", DataErrorOpenFailed, path, err)
	}
	defer f.Close()

	cat, err := ReadCSV(f)
	if err != nil {
		return nil, err
	}
	log.Info("Catalog loaded", "path", path, "entries", cat.Len())
	return cat, nil
}

// ReadCSV parses catalog rows from r. Split out from LoadCSV so tests and
// the sqlite seeder can feed any reader.
func ReadCSV(r io.Reader) (*Catalog, error) {
	const op = "read_csv"

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, dataErr(op, DataErrorEmptyCatalog, "source has no header row", nil)
	}
	if err != nil {
		return nil, dataErr(op, DataErrorParseFailed, "reading header", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, dataErr(op, DataErrorMissingColumn,
				fmt.Sprintf("required column %q absent from header", name), nil)
		}
	}

	var entries []Entry
	row := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, dataErr(op, DataErrorParseFailed, fmt.Sprintf("row %d", row+1), err)
		}
		row++

		year, err := strconv.Atoi(strings.TrimSpace(record[col["Year"]]))
		if err != nil {
			return nil, dataErr(op, DataErrorBadRow,
				fmt.Sprintf("row %d: Year %q is not an integer", row, record[col["Year"]]), err)
		}

		entries = append(entries, Entry{
			ID:          strings.TrimSpace(record[col["FilmID"]]),
			Title:       strings.TrimSpace(record[col["Title"]]),
			Director:    strings.TrimSpace(record[col["Director"]]),
			Year:        year,
			Genre:       strings.TrimSpace(record[col["Genre"]]),
			Category:    strings.TrimSpace(record[col["Category"]]),
			Description: strings.TrimSpace(record[col["Description"]]),
			Keywords:    strings.TrimSpace(record[col["Keywords"]]),
			Mood:        strings.TrimSpace(record[col["Mood"]]),
			BlockID:     strings.TrimSpace(record[col["BlockID"]]),
		})
	}

	return New(entries)
}
