package store

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mveron/applytrack/internal/models"
)

const dateLayout = "2006-01-02"

var csvHeader = []string{"id", "company", "position", "location", "submission_date", "notes", "rejected"}

// EncodeCSV serializes the full collection, header first. Every save
// rewrites the whole file; there is no append path.
func EncodeCSV(apps []models.Application) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, a := range apps {
		date := ""
		if !a.Undated() {
			date = a.SubmissionDate.Format(dateLayout)
		}
		row := []string{
			a.ID.String(),
			a.Company,
			a.Position,
			a.Location,
			date,
			a.Notes,
			strconv.FormatBool(a.Rejected),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeCSV parses a previously encoded collection. Rows written by older
// versions without a notes column still decode (notes default to empty),
// and an unparseable submission date decodes as unknown rather than
// failing the whole load.
func DecodeCSV(data []byte) ([]models.Application, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	if len(header) == 0 || strings.TrimSpace(header[0]) != "id" {
		return nil, fmt.Errorf("unexpected csv header: %q", strings.Join(header, ","))
	}

	var apps []models.Application
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}
		app, err := decodeRow(row)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		apps = append(apps, app)
	}
	return apps, nil
}

func decodeRow(row []string) (models.Application, error) {
	// id,company,position,location,submission_date[,notes],rejected
	var app models.Application

	switch len(row) {
	case 7:
	case 6:
		// Legacy row without notes: shift rejected into place.
		row = []string{row[0], row[1], row[2], row[3], row[4], "", row[5]}
	default:
		return app, fmt.Errorf("expected 6 or 7 fields, got %d", len(row))
	}

	id, err := uuid.Parse(strings.TrimSpace(row[0]))
	if err != nil {
		return app, fmt.Errorf("invalid id %q: %w", row[0], err)
	}

	app.ID = id
	app.Company = row[1]
	app.Position = row[2]
	app.Location = row[3]
	app.Notes = row[5]

	if date, err := time.Parse(dateLayout, strings.TrimSpace(row[4])); err == nil {
		app.SubmissionDate = date
	}
	if rejected, err := strconv.ParseBool(strings.TrimSpace(row[6])); err == nil {
		app.Rejected = rejected
	}

	return app, nil
}
