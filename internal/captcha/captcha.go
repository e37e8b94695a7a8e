// Package captcha produces the image challenges that gate SMS code
// requests.
package captcha

import (
	"bytes"

	"github.com/mojocn/base64Captcha"
)

const (
	imageHeight  = 60
	imageWidth   = 180
	answerLength = 4
	noiseCount   = 12
	// answerCharset deliberately omits look-alikes such as 0/O and 1/l.
	answerCharset = "23456789abcdefghjkmnpqrstuvwxyzABCDEFGHJKMNPQRSTUVWXYZ"
)

// Generator produces a human-solvable image and its plaintext answer.
type Generator interface {
	Generate() (answer string, image []byte, err error)
}

// ImageGenerator renders distorted-text PNG challenges.
type ImageGenerator struct {
	driver *base64Captcha.DriverString
}

func NewImageGenerator() *ImageGenerator {
	driver := &base64Captcha.DriverString{
		Height:          imageHeight,
		Width:           imageWidth,
		NoiseCount:      noiseCount,
		ShowLineOptions: base64Captcha.OptionShowHollowLine,
		Length:          answerLength,
		Source:          answerCharset,
		Fonts:           []string{"wqy-microhei.ttc"},
	}
	return &ImageGenerator{driver: driver.ConvertFonts()}
}

// Generate returns a fresh answer and the PNG bytes that encode it.
func (g *ImageGenerator) Generate() (string, []byte, error) {
	_, content, answer := g.driver.GenerateIdQuestionAnswer()
	item, err := g.driver.DrawCaptcha(content)
	if err != nil {
		return "", nil, err
	}

	var buf bytes.Buffer
	if _, err := item.WriteTo(&buf); err != nil {
		return "", nil, err
	}
	return answer, buf.Bytes(), nil
}
