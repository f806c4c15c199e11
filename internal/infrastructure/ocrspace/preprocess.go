package ocrspace

import (
	"bytes"

	"github.com/disintegration/imaging"
)

// maxDimensionPx bounds the longest image edge before submission.
// Packaging photos from phone cameras routinely exceed the provider's
// upload limit; text height ordering survives a uniform downscale.
const maxDimensionPx = 2048

// jpegQuality for re-encoded downscaled images
const jpegQuality = 90

// prepareImage downscales an image whose longest edge exceeds
// maxDimensionPx. Undecodable input is returned unchanged and left for
// the provider to reject.
func prepareImage(data []byte) []byte {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return data
	}

	bounds := img.Bounds()
	if bounds.Dx() <= maxDimensionPx && bounds.Dy() <= maxDimensionPx {
		return data
	}

	resized := imaging.Fit(img, maxDimensionPx, maxDimensionPx, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return data
	}
	return buf.Bytes()
}
