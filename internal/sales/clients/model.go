package clients

import (
	"github.com/amexing/amexing-ops/internal/catalog/crud"
	"github.com/amexing/amexing-ops/internal/shared"
)

// Client is the company a quote is issued to.
type Client struct {
	crud.Base
	CompanyName string `json:"companyName"`
	ContactName string `json:"contactName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	TaxID       string `json:"taxId"`
}

type CreateRequest struct {
	CompanyName string `json:"companyName" validate:"required,max=200"`
	ContactName string `json:"contactName" validate:"max=150"`
	Email       string `json:"email" validate:"omitempty,email,max=150"`
	Phone       string `json:"phone" validate:"max=30"`
	TaxID       string `json:"taxId" validate:"omitempty,min=12,max=13,alphanum"`
}

type UpdateRequest struct {
	CompanyName *string `json:"companyName,omitempty" validate:"omitempty,max=200"`
	ContactName *string `json:"contactName,omitempty" validate:"omitempty,max=150"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email,max=150"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	TaxID       *string `json:"taxId,omitempty" validate:"omitempty,min=12,max=13,alphanum"`
}

var (
	ErrNotFound        = shared.NewError(shared.ErrNotFound, "client.not_found", "Cliente no encontrado")
	ErrTaxIDTaken      = shared.NewError(shared.ErrConflict, "client.tax_id_taken", "Ya existe un cliente con ese RFC")
	ErrCompanyRequired = shared.Validation("client.company_required", "La razón social es obligatoria")
)
