// Package card composes the digital fidelity card image attached to the
// welcome email.
package card

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"

	"fidelity/internal/domain/entity"
	"fidelity/internal/domain/service"

	"github.com/pkg/errors"
)

const (
	cardWidth    = 640
	cardHeight   = 400
	headerHeight = 80
)

var (
	brandGreen = color.RGBA{R: 0x10, G: 0x5a, B: 0x12, A: 0xff}
	cardWhite  = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

type generator struct {
	qr     service.QRCodeService
	logger *slog.Logger
}

// NewCardGenerator creates the digital card composer.
func NewCardGenerator(qr service.QRCodeService, logger *slog.Logger) service.CardGenerator {
	return &generator{qr: qr, logger: logger}
}

// GenerateCard renders a card-sized canvas with the brand header and the
// member's QR code centered below it.
func (g *generator) GenerateCard(record *entity.IdentityRecord) ([]byte, error) {
	if record == nil || record.IdentityCode == "" {
		return nil, errors.New("cannot generate a card without an identity code")
	}

	qrBytes, err := g.qr.GenerateCodeQR(record.IdentityCode)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render card QR")
	}

	qrImage, err := png.Decode(bytes.NewReader(qrBytes))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode card QR")
	}

	qrBounds := qrImage.Bounds()
	if qrBounds.Dx() > cardWidth || qrBounds.Dy() > cardHeight-headerHeight {
		// QR larger than the card body: ship the bare QR instead of
		// clipping it into an unscannable image.
		return qrBytes, nil
	}

	canvas := image.NewRGBA(image.Rect(0, 0, cardWidth, cardHeight))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: cardWhite}, image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(0, 0, cardWidth, headerHeight), &image.Uniform{C: brandGreen}, image.Point{}, draw.Src)

	offset := image.Point{
		X: (cardWidth - qrBounds.Dx()) / 2,
		Y: headerHeight + (cardHeight-headerHeight-qrBounds.Dy())/2,
	}
	draw.Draw(canvas, image.Rectangle{Min: offset, Max: offset.Add(qrBounds.Size())}, qrImage, qrBounds.Min, draw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, errors.Wrap(err, "failed to encode card image")
	}

	g.logger.Debug("Digital card generated", slog.String("identityCode", record.IdentityCode))

	return buf.Bytes(), nil
}
