package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"mime/multipart"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReceiptStore struct {
	err  error
	urls map[uuid.UUID]string
}

func (f *fakeReceiptStore) SetComprobanteURL(ctx context.Context, empresaID, id uuid.UUID, url string) error {
	if f.err != nil {
		return f.err
	}
	if f.urls == nil {
		f.urls = map[uuid.UUID]string{}
	}
	f.urls[id] = url
	return nil
}

type fakeLogoStore struct {
	err  error
	urls map[uuid.UUID]string
}

func (f *fakeLogoStore) SetLogoURL(ctx context.Context, id uuid.UUID, logoURL string) error {
	if f.err != nil {
		return f.err
	}
	if f.urls == nil {
		f.urls = map[uuid.UUID]string{}
	}
	f.urls[id] = logoURL
	return nil
}

type fakeDriver struct {
	uploadErr error
	uploaded  []string
	deleted   []string
}

func (f *fakeDriver) Upload(ctx context.Context, file io.Reader, path string) (string, string, error) {
	if f.uploadErr != nil {
		return "", "", f.uploadErr
	}
	f.uploaded = append(f.uploaded, path)
	return path, "https://cdn.test/" + path, nil
}

func (f *fakeDriver) Delete(ctx context.Context, path string) error {
	f.deleted = append(f.deleted, path)
	return nil
}

// fileHeader builds a real multipart header the way gin hands it to
// handlers.
func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["file"][0]
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	var buf bytes.Buffer
	img := imaging.New(width, height, color.NRGBA{R: 120, G: 120, B: 120, A: 255})
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func TestValidateUpload(t *testing.T) {
	file := &multipart.FileHeader{Filename: "recibo.jpg", Size: 1024}

	assert.NoError(t, validateUpload(file, maxComprobanteSize, ".jpg", ".jpg", ".jpeg", ".png", ".pdf"))
	assert.Error(t, validateUpload(file, maxComprobanteSize, ".exe", ".jpg", ".jpeg", ".png", ".pdf"))

	big := &multipart.FileHeader{Filename: "recibo.jpg", Size: maxComprobanteSize + 1}
	assert.Error(t, validateUpload(big, maxComprobanteSize, ".jpg", ".jpg"))
}

func TestNormalizeImageBoundsLargeImages(t *testing.T) {
	src := imaging.New(3200, 800, color.NRGBA{R: 200, G: 200, B: 200, A: 255})

	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, src, imaging.PNG))

	out, ext, err := normalizeImage(buf.Bytes(), maxComprobanteDim)
	require.NoError(t, err)
	assert.Equal(t, ".jpg", ext, "normalized output is always jpeg")

	img, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.LessOrEqual(t, img.Bounds().Dx(), maxComprobanteDim)
	assert.LessOrEqual(t, img.Bounds().Dy(), maxComprobanteDim)
}

func TestNormalizeImageKeepsSmallImages(t *testing.T) {
	src := imaging.New(100, 50, color.NRGBA{R: 10, G: 10, B: 10, A: 255})

	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, src, imaging.PNG))

	out, _, err := normalizeImage(buf.Bytes(), maxComprobanteDim)
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestNormalizeImageRejectsGarbage(t *testing.T) {
	_, _, err := normalizeImage([]byte("definitely not an image"), maxComprobanteDim)
	assert.Error(t, err)
}

func TestUploadComprobanteRecordsURL(t *testing.T) {
	gastos := &fakeReceiptStore{}
	driver := &fakeDriver{}
	svc := newComprobanteService(gastos, &fakeLogoStore{}, driver)

	empresaID := uuid.New()
	gastoID := uuid.New()
	file := fileHeader(t, "recibo.png", pngBytes(t, 100, 100))

	url, err := svc.UploadComprobante(context.Background(), file, empresaID, gastoID)

	require.NoError(t, err)
	assert.Equal(t, url, gastos.urls[gastoID])
	require.Len(t, driver.uploaded, 1)
	assert.Empty(t, driver.deleted)
}

func TestUploadComprobanteCleansUpWhenRowUpdateFails(t *testing.T) {
	gastos := &fakeReceiptStore{err: errors.New("no rows")}
	driver := &fakeDriver{}
	svc := newComprobanteService(gastos, &fakeLogoStore{}, driver)

	file := fileHeader(t, "recibo.png", pngBytes(t, 100, 100))

	_, err := svc.UploadComprobante(context.Background(), file, uuid.New(), uuid.New())

	require.Error(t, err)
	require.Len(t, driver.uploaded, 1)
	assert.Equal(t, driver.uploaded, driver.deleted,
		"a failed row update must remove the uploaded file")
}

func TestUploadComprobanteStorageFailureTouchesNoRow(t *testing.T) {
	gastos := &fakeReceiptStore{}
	driver := &fakeDriver{uploadErr: errors.New("bucket unreachable")}
	svc := newComprobanteService(gastos, &fakeLogoStore{}, driver)

	file := fileHeader(t, "recibo.png", pngBytes(t, 100, 100))

	_, err := svc.UploadComprobante(context.Background(), file, uuid.New(), uuid.New())

	require.Error(t, err)
	assert.Empty(t, gastos.urls, "the row must never point at a file that was not stored")
}

func TestUploadComprobantePDFPassesThrough(t *testing.T) {
	gastos := &fakeReceiptStore{}
	driver := &fakeDriver{}
	svc := newComprobanteService(gastos, &fakeLogoStore{}, driver)

	file := fileHeader(t, "recibo.pdf", []byte("%PDF-1.4 test"))

	_, err := svc.UploadComprobante(context.Background(), file, uuid.New(), uuid.New())

	require.NoError(t, err)
	require.Len(t, driver.uploaded, 1)
	assert.Contains(t, driver.uploaded[0], ".pdf")
}

func TestUploadComprobanteRejectsUnknownExtension(t *testing.T) {
	svc := newComprobanteService(&fakeReceiptStore{}, &fakeLogoStore{}, &fakeDriver{})

	file := fileHeader(t, "recibo.exe", []byte("MZ"))

	_, err := svc.UploadComprobante(context.Background(), file, uuid.New(), uuid.New())
	assert.Error(t, err)
}

func TestUploadLogoCleansUpWhenRowUpdateFails(t *testing.T) {
	empresas := &fakeLogoStore{err: errors.New("no rows")}
	driver := &fakeDriver{}
	svc := newComprobanteService(&fakeReceiptStore{}, empresas, driver)

	file := fileHeader(t, "logo.png", pngBytes(t, 300, 300))

	_, err := svc.UploadLogo(context.Background(), file, uuid.New())

	require.Error(t, err)
	require.Len(t, driver.uploaded, 1)
	assert.Equal(t, driver.uploaded, driver.deleted)
}
