package certificates

import (
	"bytes"
	"image/png"
	"testing"

	"lms/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPNG(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	out, err := r.RenderPNG(&models.CertificateArtifact{
		LearnerName:   "ada",
		CourseTitle:   "Concurrency in Go",
		IssuedOn:      "March 04, 2026",
		CertificateID: "0A1B2C3D4E5F",
	})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, r.Width(), img.Bounds().Dx())
	assert.Equal(t, r.Height(), img.Bounds().Dy())

	// the page corner keeps the background colour
	cr, cg, cb, _ := img.At(2, 2).RGBA()
	assert.Equal(t, uint32(0xf8), cr>>8)
	assert.Equal(t, uint32(0xfa), cg>>8)
	assert.Equal(t, uint32(0xfc), cb>>8)
}
