package usecase

import (
	"context"
	"time"

	"fidelity/internal/domain/entity"
)

// RegisterInput is the profile body submitted when a customer finalizes
// the registration form. Field rules mirror the card application form.
type RegisterInput struct {
	IdentityCode string `json:"identityCode"`
	Store        string `json:"store" validate:"omitempty,max=6"`
	Name         string `json:"name" validate:"required,max=50"`
	Surname      string `json:"surname" validate:"required,max=50"`
	Email        string `json:"email" validate:"required,email,max=100"`
	Sex          string `json:"sex" validate:"required,len=1"`
	BirthDate    string `json:"birthDate" validate:"required,datetime=2006-01-02"`
	Address      string `json:"address" validate:"required,max=100"`
	City         string `json:"city" validate:"required,max=100"`
	PostalCode   string `json:"postalCode" validate:"required,max=10"`
	Province     string `json:"province" validate:"required,len=2,alpha"`
	Country      string `json:"country" validate:"required,len=2,alpha"`
	Phone        string `json:"phone" validate:"required,max=20"`
}

// ToRecord converts the submission into a cacheable identity record.
func (in *RegisterInput) ToRecord() *entity.IdentityRecord {
	record := &entity.IdentityRecord{
		Email:        entity.NormalizeEmail(in.Email),
		Store:        in.Store,
		IdentityCode: in.IdentityCode,
		Name:         in.Name,
		Surname:      in.Surname,
		Phone:        in.Phone,
		Address:      in.Address,
		City:         in.City,
		PostalCode:   in.PostalCode,
		Province:     in.Province,
		Country:      in.Country,
		Sex:          in.Sex,
	}

	if birth, err := time.Parse("2006-01-02", in.BirthDate); err == nil {
		record.BirthDate = &birth
	}

	return record
}

// RegistrationUsecase finalizes a card registration: registry write,
// cache upsert and the welcome mail with the digital card.
type RegistrationUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*entity.IdentityRecord, error)
}
