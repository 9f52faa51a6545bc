package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/hifzhub/tahfiz-enrollment-api/internal/dto"
	"github.com/hifzhub/tahfiz-enrollment-api/pkg/export"
	appErrors "github.com/hifzhub/tahfiz-enrollment-api/pkg/errors"
)

type rosterSource interface {
	Roster(ctx context.Context, caller Caller, programID string) (string, []dto.RosterEntry, error)
}

// RosterFormat selects the rendered document type.
type RosterFormat string

// Supported roster export formats.
const (
	RosterFormatPDF RosterFormat = "pdf"
	RosterFormatCSV RosterFormat = "csv"
)

// RosterDocument is a rendered roster ready to stream to the client.
type RosterDocument struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders program rosters into downloadable documents. The
// visibility rules are the roster's own: whoever may read the roster may
// export it.
type ExportService struct {
	rosters rosterSource
	enabled bool
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService constructs an ExportService instance.
func NewExportService(rosters rosterSource, enabled bool, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{rosters: rosters, enabled: enabled, logger: logger, now: time.Now}
}

// Enabled reports whether roster export is switched on.
func (s *ExportService) Enabled() bool {
	return s != nil && s.enabled
}

// RosterDocument renders the program roster in the requested format.
func (s *ExportService) RosterDocument(ctx context.Context, caller Caller, programID string, format RosterFormat) (*RosterDocument, error) {
	if !s.Enabled() {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "roster export is disabled")
	}

	programName, roster, err := s.rosters.Roster(ctx, caller, programID)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Title:   fmt.Sprintf("Roster %s", programName),
		Headers: []string{"#", "Full Name", "Student ID"},
		Rows:    make([][]string, 0, len(roster)),
	}
	for i, entry := range roster {
		dataset.Rows = append(dataset.Rows, []string{strconv.Itoa(i + 1), entry.FullName, entry.ID})
	}

	timestamp := s.now().UTC().Format("20060102_150405")
	switch format {
	case RosterFormatCSV:
		payload, err := export.RenderCSV(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster csv")
		}
		return &RosterDocument{
			Filename:    fmt.Sprintf("roster_%s_%s.csv", sanitizeFilename(programName), timestamp),
			ContentType: "text/csv",
			Data:        payload,
		}, nil
	case RosterFormatPDF, "":
		payload, err := export.RenderPDF(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster pdf")
		}
		return &RosterDocument{
			Filename:    fmt.Sprintf("roster_%s_%s.pdf", sanitizeFilename(programName), timestamp),
			ContentType: "application/pdf",
			Data:        payload,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", format))
	}
}
