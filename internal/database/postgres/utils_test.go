package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/osse101/PackOpener_Go/internal/domain"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		want      error
		retryable bool
	}{
		{"serialization failure", &pgconn.PgError{Code: PgErrorCodeSerializationFailure}, domain.ErrSerialization, true},
		{"deadlock", &pgconn.PgError{Code: PgErrorCodeDeadlockDetected}, domain.ErrSerialization, true},
		{"lock timeout", &pgconn.PgError{Code: PgErrorCodeLockNotAvailable}, domain.ErrLockTimeout, true},
		{"foreign key violation", &pgconn.PgError{Code: PgErrorCodeForeignKeyViolation}, domain.ErrNotFound, false},
		{"unique violation", &pgconn.PgError{Code: PgErrorCodeUniqueViolation}, nil, false},
		{"plain error", errors.New("boom"), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapError(ErrMsgFailedToLockInventory, tt.err)
			assert.ErrorContains(t, err, ErrMsgFailedToLockInventory)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
			assert.Equal(t, tt.retryable, domain.IsRetryable(err))
		})
	}
}

func TestParseUserUUID(t *testing.T) {
	_, err := parseUserUUID("not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrValidation)

	id, err := parseUserUUID("00000000-0000-4000-8000-000000000001")
	assert.NoError(t, err)
	assert.Equal(t, "00000000-0000-4000-8000-000000000001", id.String())
}
