package service

import (
	"errors"
	"testing"

	"github.com/Freeeeeet/examreg/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestValidateMembership(t *testing.T) {
	slot := &model.ExamSlot{ExamID: 1, StartTimeSlotID: 10}

	members := []*model.TimeSlot{
		{ID: 10, ExamID: 1},
		{ID: 11, ExamID: 1},
	}
	assert.NoError(t, ValidateMembership(slot, members))
}

func TestValidateMembershipEmpty(t *testing.T) {
	slot := &model.ExamSlot{ExamID: 1, StartTimeSlotID: 10}

	err := ValidateMembership(slot, nil)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestValidateMembershipAnchorMissing(t *testing.T) {
	slot := &model.ExamSlot{ExamID: 1, StartTimeSlotID: 10}

	// Якорный интервал обязан входить в состав
	members := []*model.TimeSlot{{ID: 11, ExamID: 1}}
	err := ValidateMembership(slot, members)

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "start_time_slot", validationErr.Field)
}

func TestValidateMembershipForeignExam(t *testing.T) {
	slot := &model.ExamSlot{ExamID: 1, StartTimeSlotID: 10}

	members := []*model.TimeSlot{
		{ID: 10, ExamID: 1},
		{ID: 12, ExamID: 2},
	}
	err := ValidateMembership(slot, members)

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "time_slots", validationErr.Field)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "40001"}))
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "40P01"}))
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "55P03"}))

	assert.False(t, IsRetryable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsRetryable(errors.New("plain error")))
	assert.False(t, IsRetryable(nil))
}
