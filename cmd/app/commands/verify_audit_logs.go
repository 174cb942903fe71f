package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	identityDomain "github.com/allisson/identity/internal/identity/domain"
	identityUseCase "github.com/allisson/identity/internal/identity/usecase"
)

const verifyBatchSize = 500

// RunVerifyAuditLogs checks the HMAC signature of every audit event in the optional date range
// and prints a report. Any invalid signature makes the command fail so it can gate a pipeline.
func RunVerifyAuditLogs(
	ctx context.Context,
	auditLogUseCase identityUseCase.AuditLogUseCase,
	logger *slog.Logger,
	writer io.Writer,
	startDate, endDate string,
	format string,
) error {
	start, err := parseDate(startDate)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}

	end, err := parseDate(endDate)
	if err != nil {
		return fmt.Errorf("invalid end date: %w", err)
	}

	if start != nil && end != nil && !end.After(*start) {
		return fmt.Errorf("end date must be after start date")
	}

	logger.Info("verifying audit logs",
		slog.String("start_date", startDate),
		slog.String("end_date", endDate),
	)

	report, err := auditLogUseCase.Verify(ctx, start, end, verifyBatchSize)
	if err != nil {
		return fmt.Errorf("failed to verify audit logs: %w", err)
	}

	if format == "json" {
		if err := outputVerifyJSON(writer, report); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		outputVerifyText(writer, report, start, end)
	}

	logger.Info("verification completed",
		slog.Int("total_checked", report.Total),
		slog.Int("valid", report.Valid),
		slog.Int("invalid", report.Invalid),
		slog.Int("unsigned", report.Unsigned),
	)

	if report.Invalid > 0 {
		return fmt.Errorf("integrity check failed: %d invalid signature(s)", report.Invalid)
	}

	return nil
}

func formatBound(t *time.Time, fallback string) string {
	if t == nil {
		return fallback
	}
	return t.Format(time.DateTime)
}

func outputVerifyText(writer io.Writer, report *identityDomain.AuditVerificationReport, start, end *time.Time) {
	_, _ = fmt.Fprintf(writer, "Audit Log Integrity Verification\n")
	_, _ = fmt.Fprintf(writer, "=================================\n\n")
	_, _ = fmt.Fprintf(writer,
		"Time Range: %s to %s\n\n",
		formatBound(start, "beginning"),
		formatBound(end, "now"),
	)

	_, _ = fmt.Fprintf(writer, "Total Checked:  %d\n", report.Total)
	_, _ = fmt.Fprintf(writer, "Unsigned:       %d\n", report.Unsigned)
	_, _ = fmt.Fprintf(writer, "Valid:          %d\n", report.Valid)
	_, _ = fmt.Fprintf(writer, "Invalid:        %d\n\n", report.Invalid)

	switch {
	case report.Invalid > 0:
		_, _ = fmt.Fprintf(writer, "WARNING: %d event(s) failed integrity check!\n\n", report.Invalid)
		_, _ = fmt.Fprintf(writer, "Invalid Event IDs:\n")
		for _, id := range report.InvalidIDs {
			_, _ = fmt.Fprintf(writer, "  - %s\n", id)
		}
		_, _ = fmt.Fprintf(writer, "\nStatus: FAILED\n")
	case report.Total == 0:
		_, _ = fmt.Fprintf(writer, "Status: No events found in specified time range\n")
	default:
		_, _ = fmt.Fprintf(writer, "Status: PASSED\n")
	}
}

func outputVerifyJSON(writer io.Writer, report *identityDomain.AuditVerificationReport) error {
	result := map[string]interface{}{
		"total_checked":  report.Total,
		"unsigned_count": report.Unsigned,
		"valid_count":    report.Valid,
		"invalid_count":  report.Invalid,
		"invalid_ids":    report.InvalidIDs,
		"passed":         report.Invalid == 0,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
	return nil
}
