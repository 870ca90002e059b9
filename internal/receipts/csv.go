package receipts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// LotRef is the minimal lot identity the importer needs to resolve rows.
type LotRef struct {
	ID        int64
	Block     string
	LotNumber int
}

// ImportParse is the outcome of parsing a reading sheet: the rows that
// resolved to a lot, plus one message per row that did not. Parse failures
// never abort the sheet; the caller decides whether to import the good rows.
type ImportParse struct {
	Rows      []ImportRow
	RowErrors []string
}

// ErrMissingColumns is returned when the header lacks the expected columns.
var ErrMissingColumns = errors.New("receipts: csv must have mz, lt and consumo_kwh columns")

// ParseReadingsCSV reads a headered CSV of meter readings. Accepted column
// names follow the sheets the community already uses: mz/MZ, lt/LT and
// consumo_kwh or "CONSUMO EN KWH". Rows are matched against lots by
// (block, lot number).
func ParseReadingsCSV(r io.Reader, lots []LotRef) (ImportParse, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return ImportParse{}, fmt.Errorf("receipts: read csv header: %w", err)
	}
	mzCol, ltCol, kwhCol := -1, -1, -1
	for i, name := range header {
		switch strings.ToUpper(strings.TrimSpace(name)) {
		case "MZ":
			mzCol = i
		case "LT":
			ltCol = i
		case "CONSUMO_KWH", "CONSUMO EN KWH":
			kwhCol = i
		}
	}
	if mzCol < 0 || ltCol < 0 || kwhCol < 0 {
		return ImportParse{}, ErrMissingColumns
	}

	byCode := make(map[string]int64, len(lots))
	for _, lot := range lots {
		byCode[lotKey(lot.Block, lot.LotNumber)] = lot.ID
	}

	var parse ImportParse
	// Postgres rejects an upsert that touches the same (lot, period) row
	// twice in one statement, so repeated lots collapse here with the last
	// occurrence winning, same as re-importing the sheet.
	rowByLot := make(map[int64]int)
	// Header is line 1; data starts at line 2, which is how the community
	// reads row numbers off the spreadsheet.
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			parse.RowErrors = append(parse.RowErrors, fmt.Sprintf("Fila %d: fila ilegible", line))
			continue
		}
		block := strings.ToUpper(strings.TrimSpace(record[mzCol]))
		number, numErr := strconv.Atoi(strings.TrimSpace(record[ltCol]))
		if block == "" || numErr != nil || number <= 0 {
			parse.RowErrors = append(parse.RowErrors, fmt.Sprintf("Fila %d: manzana o lote inválido", line))
			continue
		}
		consumption, err := strconv.ParseFloat(strings.TrimSpace(record[kwhCol]), 64)
		if err != nil || consumption < 0 {
			parse.RowErrors = append(parse.RowErrors, fmt.Sprintf("Fila %d: consumo inválido", line))
			continue
		}
		lotID, ok := byCode[lotKey(block, number)]
		if !ok {
			parse.RowErrors = append(parse.RowErrors, fmt.Sprintf("Fila %d: no se encontró lote MZ %s LT %d", line, block, number))
			continue
		}
		if i, seen := rowByLot[lotID]; seen {
			parse.Rows[i].ConsumptionKwh = consumption
			continue
		}
		rowByLot[lotID] = len(parse.Rows)
		parse.Rows = append(parse.Rows, ImportRow{LotID: lotID, ConsumptionKwh: consumption})
	}
	return parse, nil
}

func lotKey(block string, number int) string {
	return block + "#" + strconv.Itoa(number)
}
