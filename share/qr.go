package share

import (
	"image/color"

	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"
)

const QRSize = 300

var (
	qrDark  = color.RGBA{0x4f, 0x46, 0xe5, 0xff}
	qrLight = color.White
)

// QR encodes url as a PNG image.
func QR(url string) ([]byte, error) {
	q, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return nil, errors.Wrap(err, "share.qr")
	}
	q.ForegroundColor = qrDark
	q.BackgroundColor = qrLight
	png, err := q.PNG(QRSize)
	return png, errors.Wrap(err, "share.qr")
}

func QRFilename(token string) string {
	return "ankieta-qr-" + token + ".png"
}
