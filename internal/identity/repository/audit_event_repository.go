package repository

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/allisson/identity/internal/errors"
)

func marshalMetadata(metadata map[string]any) ([]byte, error) {
	// nil and empty metadata are both stored as NULL
	if len(metadata) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal audit event metadata")
	}
	return data, nil
}

func unmarshalMetadata(data []byte) (map[string]any, error) {
	if data == nil {
		return nil, nil
	}
	var metadata map[string]any
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal audit event metadata")
	}
	return metadata, nil
}

// createdAtFilter builds the WHERE clause for the optional created_at bounds. placeholder
// renders the n-th (1-based) bind parameter for the target dialect.
func createdAtFilter(
	from, to *time.Time,
	placeholder func(n int) string,
) (string, []any) {
	conditions := make([]string, 0, 2)
	args := make([]any, 0, 2)

	if from != nil {
		args = append(args, *from)
		conditions = append(conditions, "created_at >= "+placeholder(len(args)))
	}
	if to != nil {
		args = append(args, *to)
		conditions = append(conditions, "created_at <= "+placeholder(len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func postgresPlaceholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func mysqlPlaceholder(int) string {
	return "?"
}
