package qrcode

import (
	"fmt"
	"net/url"
	"strings"

	qr "github.com/skip2/go-qrcode"
)

// DefaultSize is the edge length, in pixels, of generated images.
const DefaultSize = 256

// JoinURL builds the link a phone opens to join a room. base is either a
// full URL such as "https://hanoi.example" or a bare host:port.
func JoinURL(base, roomID string) string {
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return fmt.Sprintf("%s/play.html?room=%s", strings.TrimRight(base, "/"), url.QueryEscape(roomID))
}

// Generate creates a QR code PNG image for the given URL.
func Generate(link string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qr.Encode(link, qr.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}
