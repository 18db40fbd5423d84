package service

import (
	"fidelity/internal/domain/entity"
)

// QRCodeService renders a loyalty code as a PNG QR image.
type QRCodeService interface {
	GenerateCodeQR(code string) ([]byte, error)
}

// CardGenerator composes the digital fidelity card image for a finalized
// registration.
type CardGenerator interface {
	GenerateCard(record *entity.IdentityRecord) ([]byte, error)
}
