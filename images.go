package portfolio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"

	"github.com/eringen/portfolio/actions"
	"github.com/eringen/portfolio/photos"
	"github.com/eringen/portfolio/views"
)

const (
	maxImageWidth = 800
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
	uploadsSubdir = "uploads"
)

var (
	errMissingImage   = errors.New("no image file provided")
	errUploadTooLarge = errors.New("upload exceeds 10MB")
	errNotAnImage     = errors.New("upload is not an image")
)

// readUpload loads an optional multipart file into memory. A missing or
// empty field, or a form that is not multipart, yields nil.
func readUpload(c echo.Context, field string) (*actions.Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	if fh.Size == 0 {
		return nil, nil
	}
	if fh.Size > maxUploadSize {
		return nil, errUploadTooLarge
	}
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxUploadSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxUploadSize {
		return nil, errUploadTooLarge
	}
	ct := http.DetectContentType(data)
	if !strings.HasPrefix(ct, "image/") {
		return nil, errNotAnImage
	}
	return &actions.Upload{Filename: filepath.Base(fh.Filename), ContentType: ct, Data: data}, nil
}

type processedImage struct {
	Filename string
	Width    int
	Height   int
	Data     []byte
}

// processImage decodes src, scales it down to maxImageWidth when wider and
// re-encodes it as JPEG.
func processImage(src io.Reader, originalName string) (processedImage, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return processedImage{}, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w, h = maxImageWidth, newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return processedImage{}, fmt.Errorf("encode jpeg: %w", err)
	}
	name := slugifyFilename(originalName)
	if name == "" {
		name = "image"
	}
	return processedImage{Filename: name + ".jpg", Width: w, Height: h, Data: buf.Bytes()}, nil
}

func slugifyFilename(name string) string {
	return Slugify(strings.TrimSuffix(name, filepath.Ext(name)))
}

func uploadURL(filename string) string {
	return "/public/" + uploadsSubdir + "/" + filename
}

// uniqueFilename appends a counter until the name is free both on disk and
// in the gallery file.
func (a *App) uniqueFilename(filename string) (string, error) {
	dir := filepath.Join(a.Config.StaticDir, uploadsSubdir)
	existing, err := a.Photos.List()
	if err != nil {
		return "", err
	}
	taken := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		taken[p.Src] = struct{}{}
	}

	base := strings.TrimSuffix(filename, ".jpg")
	candidate := filename
	for n := 2; ; n++ {
		_, statErr := os.Stat(filepath.Join(dir, candidate))
		_, inGallery := taken[uploadURL(candidate)]
		if statErr != nil && !inGallery {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d.jpg", base, n)
	}
}

func (a *App) handleAdminGallery(c echo.Context) error {
	list, err := a.Photos.List()
	if err != nil {
		return err
	}
	return Render(c, views.GalleryAdmin(a.page(c, "Gallery", ""), views.GalleryData{Photos: list}))
}

func (a *App) handleImageUpload(c echo.Context) error {
	const back = "/dashboard/gallery"
	fh, err := c.FormFile("image")
	if err != nil {
		return a.rejectForm(c, errMissingImage, back)
	}
	if fh.Size > maxUploadSize {
		return a.rejectForm(c, errUploadTooLarge, back)
	}
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	img, err := processImage(io.LimitReader(src, maxUploadSize), fh.Filename)
	if err != nil {
		a.Log.Info().Err(err).Str("file", fh.Filename).Msg("rejected upload")
		return a.rejectForm(c, errNotAnImage, back)
	}
	name, err := a.uniqueFilename(img.Filename)
	if err != nil {
		return err
	}

	dir := filepath.Join(a.Config.StaticDir, uploadsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), img.Data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}

	if _, err := a.Photos.Append(photos.Photo{
		Src:     uploadURL(name),
		Alt:     strings.TrimSpace(c.FormValue("alt")),
		Caption: strings.TrimSpace(c.FormValue("caption")),
		Width:   img.Width,
		Height:  img.Height,
	}); err != nil {
		return err
	}
	a.flash(c, toastSuccess, "Photo uploaded.")
	return c.Redirect(http.StatusSeeOther, back)
}
