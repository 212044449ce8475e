package model

import (
	"github.com/google/uuid"
)

// Gender values as stored on patients. The extraction provider infers
// them from conversational context where possible.
const (
	GenderMale   = "M"
	GenderFemale = "F"
	GenderOther  = "O"
)

// Patient is a clinic subject. Every field except the name may be
// unknown; unknown stays NULL until a later consultation fills it in.
type Patient struct {
	Base
	NameSurnames string    `db:"name_surnames" json:"name_surnames"`
	Mail         *string   `db:"mail" json:"mail"`
	Age          *int      `db:"age" json:"age"`
	Phone        *string   `db:"phone" json:"phone"`
	Gender       *string   `db:"gender" json:"gender"`
	Height       *float64  `db:"height" json:"height"`
	Weight       *float64  `db:"weight" json:"weight"`
	CreatedBy    uuid.UUID `db:"created_by" json:"created_by"`
}

type CreatePatientRequest struct {
	NameSurnames string   `json:"name_surnames" binding:"required"`
	Mail         *string  `json:"mail" binding:"omitempty,email"`
	Age          *int     `json:"age" binding:"omitempty,gte=0"`
	Phone        *string  `json:"phone"`
	Gender       *string  `json:"gender" binding:"omitempty,gender"`
	Height       *float64 `json:"height" binding:"omitempty,gt=0"`
	Weight       *float64 `json:"weight" binding:"omitempty,gt=0"`
}

type UpdatePatientRequest struct {
	NameSurnames *string  `json:"name_surnames"`
	Mail         *string  `json:"mail" binding:"omitempty,email"`
	Age          *int     `json:"age" binding:"omitempty,gte=0"`
	Phone        *string  `json:"phone"`
	Gender       *string  `json:"gender" binding:"omitempty,gender"`
	Height       *float64 `json:"height" binding:"omitempty,gt=0"`
	Weight       *float64 `json:"weight" binding:"omitempty,gt=0"`
}
