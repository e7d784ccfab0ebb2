package apiapp

import (
	"bytes"
	"errors"
	"image"
	stddraw "image/draw"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strconv"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// Every stored photo is a square PNG of this edge length.
const photoSize = 512

func (s *server) getEmployeePhoto(w http.ResponseWriter, r *http.Request, name string) {
	data, mime, err := s.session.EmployeePhoto(name)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=300")
	_, _ = w.Write(data)
}

func (s *server) uploadEmployeePhoto(w http.ResponseWriter, r *http.Request, name string) {
	data, mime, err := parseUploadedPhoto(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.session.SetEmployeePhoto(name, data, mime); err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "photo uploaded"})
}

func (s *server) deleteEmployeePhoto(w http.ResponseWriter, r *http.Request, name string) {
	if err := s.session.RemoveEmployeePhoto(name); err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "photo removed"})
}

func parseUploadedPhoto(r *http.Request) ([]byte, string, error) {
	if err := r.ParseMultipartForm(12 << 20); err != nil {
		return nil, "", errors.New("invalid upload form")
	}
	file, _, err := r.FormFile("photo")
	if err != nil {
		return nil, "", errors.New("photo file is required")
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, 10<<20))
	if err != nil {
		return nil, "", errors.New("unable to read photo file")
	}
	if len(raw) == 0 {
		return nil, "", errors.New("photo file is empty")
	}

	cropX := parsePositiveInt(r.FormValue("crop_x"), 0)
	cropY := parsePositiveInt(r.FormValue("crop_y"), 0)
	cropSize := parsePositiveInt(r.FormValue("crop_size"), 0)
	return normalizePhotoBytes(raw, cropX, cropY, cropSize)
}

func normalizePhotoBytes(raw []byte, cropX, cropY, cropSize int) ([]byte, string, error) {
	mime := http.DetectContentType(raw)
	switch mime {
	case "image/png", "image/jpeg", "image/webp":
	default:
		return nil, "", errors.New("photo must be png, jpeg, or webp")
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		if decoded, decodeErr := webp.Decode(bytes.NewReader(raw)); decodeErr == nil {
			img = decoded
		} else {
			return nil, "", errors.New("unable to decode photo")
		}
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, "", errors.New("invalid image dimensions")
	}

	minDim := width
	if height < minDim {
		minDim = height
	}
	if cropSize <= 0 || cropSize > minDim {
		cropSize = minDim
		cropX = (width - cropSize) / 2
		cropY = (height - cropSize) / 2
	}
	if cropX < 0 {
		cropX = 0
	}
	if cropY < 0 {
		cropY = 0
	}
	if cropX+cropSize > width {
		cropX = width - cropSize
	}
	if cropY+cropSize > height {
		cropY = height - cropSize
	}

	cropRect := image.Rect(0, 0, cropSize, cropSize)
	dst := image.NewRGBA(cropRect)
	srcPoint := image.Point{X: bounds.Min.X + cropX, Y: bounds.Min.Y + cropY}
	stddraw.Draw(dst, cropRect, img, srcPoint, stddraw.Src)

	resized := image.NewRGBA(image.Rect(0, 0, photoSize, photoSize))
	xdraw.CatmullRom.Scale(resized, resized.Bounds(), dst, dst.Bounds(), xdraw.Over, nil)

	var out bytes.Buffer
	if err := png.Encode(&out, resized); err != nil {
		return nil, "", errors.New("unable to encode photo")
	}
	return out.Bytes(), "image/png", nil
}

func parsePositiveInt(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
