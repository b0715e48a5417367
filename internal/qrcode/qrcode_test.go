package qrcode_test

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hanoi/internal/qrcode"
)

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080/play.html?room=ab12", qrcode.JoinURL("localhost:8080", "ab12"))
	assert.Equal(t, "https://hanoi.example/play.html?room=ab12", qrcode.JoinURL("https://hanoi.example/", "ab12"))
}

func TestGenerate(t *testing.T) {
	data, err := qrcode.Generate(qrcode.JoinURL("localhost:8080", "ab12"), 0)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, qrcode.DefaultSize, img.Bounds().Dx())
}
