package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/identity/internal/identity/http/dto"
)

// TestIntegration_AuditLog_SignatureVerification records events through the API, verifies
// their signatures, then tampers with one row and expects exactly one invalid event.
func TestIntegration_AuditLog_SignatureVerification(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tamperQueries := map[string]string{
		"postgres": `UPDATE audit_events SET ip = '10.0.0.99'
			WHERE id = (SELECT id FROM audit_events ORDER BY created_at ASC LIMIT 1)`,
		"mysql": `UPDATE audit_events SET ip = '10.0.0.99' ORDER BY created_at ASC LIMIT 1`,
	}

	for _, tc := range drivers {
		t.Run(tc.name, func(t *testing.T) {
			ctx := setupIntegrationTest(t, tc.dbDriver, nil)
			defer teardownIntegrationTest(t, ctx)

			resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/auth/register", dto.RegisterRequest{
				Email:    "audit@example.com",
				Password: "audit-password",
			}, "")
			require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

			resp, _ = ctx.makeRequest(t, http.MethodPost, "/v1/auth/login", dto.LoginRequest{
				Email:    "audit@example.com",
				Password: "not-the-password",
			}, "")
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

			resp, _ = ctx.makeRequest(t, http.MethodPost, "/v1/auth/login", dto.LoginRequest{
				Email:    "audit@example.com",
				Password: "audit-password",
			}, "")
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var eventTypes []string
			rows, err := ctx.db.Query("SELECT event_type FROM audit_events ORDER BY created_at ASC")
			require.NoError(t, err)
			for rows.Next() {
				var eventType string
				require.NoError(t, rows.Scan(&eventType))
				eventTypes = append(eventTypes, eventType)
			}
			require.NoError(t, rows.Err())
			require.NoError(t, rows.Close())
			assert.ElementsMatch(t, []string{"account_registered", "login_failure", "login_success"}, eventTypes)

			auditLogUseCase, err := ctx.container.AuditLogUseCase()
			require.NoError(t, err)

			report, err := auditLogUseCase.Verify(context.Background(), nil, nil, 2)
			require.NoError(t, err)
			assert.Equal(t, 3, report.Total)
			assert.Equal(t, 3, report.Valid)
			assert.Equal(t, 0, report.Invalid)
			assert.Equal(t, 0, report.Unsigned)

			result, err := ctx.db.Exec(tamperQueries[tc.dbDriver])
			require.NoError(t, err)
			affected, err := result.RowsAffected()
			require.NoError(t, err)
			require.Equal(t, int64(1), affected)

			report, err = auditLogUseCase.Verify(context.Background(), nil, nil, 2)
			require.NoError(t, err)
			assert.Equal(t, 3, report.Total)
			assert.Equal(t, 2, report.Valid)
			assert.Equal(t, 1, report.Invalid)
			assert.Len(t, report.InvalidIDs, 1)
		})
	}
}
