package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMessage(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := &AppError{Type: ErrTypeParsing, Message: "Snapshot parse failed"}
		assert.Equal(t, "[PARSING] Snapshot parse failed", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		err := &AppError{
			Type:    ErrTypeStorage,
			Message: "Failed to write report",
			Cause:   fmt.Errorf("disk full"),
		}
		assert.Equal(t, "[STORAGE] Failed to write report: disk full", err.Error())
	})
}

// Each constructor stamps its type; the type string is what the problem
// mapper and the logs show, so both are pinned together.
func TestAppErrorConstructors(t *testing.T) {
	cause := fmt.Errorf("underlying failure")

	tests := []struct {
		name     string
		got      *AppError
		wantType ErrorType
		wantStr  string
		wantMsg  string
	}{
		{"parsing", NewParsingError("row 3 malformed", cause), ErrTypeParsing, "PARSING", "row 3 malformed"},
		{"storage", NewStorageError("report write failed", cause), ErrTypeStorage, "STORAGE", "report write failed"},
		{"validation", NewAppValidationError("start after end"), ErrTypeValidation, "VALIDATION", "start after end"},
		{"not found", NewNotFoundError("membership_timeline.csv"), ErrTypeNotFound, "NOT_FOUND", "membership_timeline.csv not found"},
		{"permission", NewPermissionError("reports dir is read-only"), ErrTypePermission, "PERMISSION", "reports dir is read-only"},
		{"config", NewConfigError("bad yaml", cause), ErrTypeConfig, "CONFIG", "bad yaml"},
		{"export", NewExportError("workbook generation failed", cause), ErrTypeExport, "EXPORT", "workbook generation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.got.Type)
			assert.Equal(t, tt.wantStr, string(tt.got.Type))
			assert.Equal(t, tt.wantMsg, tt.got.Message)
			assert.NotNil(t, tt.got.Context, "constructors allocate the context map")
		})
	}
}

func TestAppErrorUnwrapping(t *testing.T) {
	t.Run("errors.Is reaches the cause", func(t *testing.T) {
		cause := fmt.Errorf("original error")
		appErr := NewExportError("export failed", cause)

		assert.True(t, errors.Is(appErr, cause))
		assert.False(t, errors.Is(appErr, fmt.Errorf("other error")))
	})

	t.Run("errors.As finds an AppError behind fmt wrapping", func(t *testing.T) {
		inner := NewStorageError("storage error", nil)
		wrapped := fmt.Errorf("wrapped: %w", inner)

		var appErr *AppError
		require.True(t, errors.As(wrapped, &appErr))
		assert.Equal(t, ErrTypeStorage, appErr.Type)
	})

	t.Run("nested AppErrors unwrap outermost first", func(t *testing.T) {
		root := fmt.Errorf("root cause")
		parse := NewParsingError("snapshot parse error", root)
		refresh := NewStorageError("cache refresh error", parse)

		assert.True(t, errors.Is(refresh, parse))
		assert.True(t, errors.Is(refresh, root))

		var matched *AppError
		require.True(t, errors.As(refresh, &matched))
		assert.Equal(t, ErrTypeStorage, matched.Type)
	})

	t.Run("nil cause unwraps to nil", func(t *testing.T) {
		assert.Nil(t, NewAppValidationError("no cause").Unwrap())
	})
}

func TestAppErrorWithContext(t *testing.T) {
	t.Run("chains on the same instance", func(t *testing.T) {
		appErr := NewParsingError("failed to parse snapshot", fmt.Errorf("invalid syntax"))

		result := appErr.
			WithContext("file_path", "/data/public_data/revenue_analysis.csv").
			WithContext("line_number", 42).
			WithContext("dataset", "revenue")

		assert.Same(t, appErr, result)
		assert.Equal(t, "/data/public_data/revenue_analysis.csv", result.Context["file_path"])
		assert.Equal(t, 42, result.Context["line_number"])
		assert.Equal(t, "revenue", result.Context["dataset"])
	})

	t.Run("initializes a nil context map", func(t *testing.T) {
		appErr := &AppError{Type: ErrTypeParsing, Message: "no map yet"}

		result := appErr.WithContext("dataset", "membership")

		require.NotNil(t, result.Context)
		assert.Equal(t, "membership", result.Context["dataset"])
	})

	t.Run("later writes win", func(t *testing.T) {
		appErr := NewStorageError("write failed", nil).
			WithContext("retry_count", 1).
			WithContext("retry_count", 2)

		assert.Equal(t, 2, appErr.Context["retry_count"])
	})

	t.Run("nil values are kept", func(t *testing.T) {
		appErr := NewExportError("export error", nil).WithContext("nullable_field", nil)

		assert.Contains(t, appErr.Context, "nullable_field")
		assert.Nil(t, appErr.Context["nullable_field"])
	})
}
