package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/Transporegistros/carga-colombia-track/internal/repository"
	"github.com/Transporegistros/carga-colombia-track/internal/storage"
)

const (
	maxComprobanteSize = 10 << 20 // 10 MB
	maxLogoSize        = 5 << 20
	// Uploaded images are normalized down to this bound; receipts scanned
	// at phone-camera resolution compress to a fraction of the original.
	maxComprobanteDim = 1600
	maxLogoDim        = 512
)

type receiptStore interface {
	SetComprobanteURL(ctx context.Context, empresaID, id uuid.UUID, url string) error
}

type logoStore interface {
	SetLogoURL(ctx context.Context, id uuid.UUID, logoURL string) error
}

// ComprobanteService uploads expense receipts and company logos: validate,
// normalize images, push to the storage driver and record the public URL.
type ComprobanteService struct {
	gastos   receiptStore
	empresas logoStore
	driver   storage.Driver
}

func NewComprobanteService(gastos *repository.GastoRepository, empresas *repository.EmpresaRepository, driver storage.Driver) *ComprobanteService {
	return newComprobanteService(gastos, empresas, driver)
}

func newComprobanteService(gastos receiptStore, empresas logoStore, driver storage.Driver) *ComprobanteService {
	return &ComprobanteService{
		gastos:   gastos,
		empresas: empresas,
		driver:   driver,
	}
}

// UploadComprobante attaches a receipt file to an expense. The expense row
// is only updated after the upload succeeded, so a failed upload never
// leaves a dangling URL; a failed row update cleans the uploaded file up.
func (s *ComprobanteService) UploadComprobante(ctx context.Context, file *multipart.FileHeader, empresaID, gastoID uuid.UUID) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if err := validateUpload(file, maxComprobanteSize, ext, ".jpg", ".jpeg", ".png", ".pdf"); err != nil {
		return "", err
	}

	content, err := readUpload(file)
	if err != nil {
		return "", err
	}

	if ext != ".pdf" {
		content, ext, err = normalizeImage(content, maxComprobanteDim)
		if err != nil {
			return "", fmt.Errorf("failed to process receipt image: %w", err)
		}
	}

	path := fmt.Sprintf("%s/comprobantes/%s%s", empresaID, gastoID, ext)
	storagePath, publicURL, err := s.driver.Upload(ctx, bytes.NewReader(content), path)
	if err != nil {
		return "", fmt.Errorf("failed to upload receipt: %w", err)
	}

	if err := s.gastos.SetComprobanteURL(ctx, empresaID, gastoID, publicURL); err != nil {
		_ = s.driver.Delete(ctx, storagePath)
		return "", err
	}

	return publicURL, nil
}

// UploadLogo attaches a logo image to a company.
func (s *ComprobanteService) UploadLogo(ctx context.Context, file *multipart.FileHeader, empresaID uuid.UUID) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if err := validateUpload(file, maxLogoSize, ext, ".jpg", ".jpeg", ".png"); err != nil {
		return "", err
	}

	content, err := readUpload(file)
	if err != nil {
		return "", err
	}

	content, ext, err = normalizeImage(content, maxLogoDim)
	if err != nil {
		return "", fmt.Errorf("failed to process logo image: %w", err)
	}

	path := fmt.Sprintf("%s/logo%s", empresaID, ext)
	storagePath, publicURL, err := s.driver.Upload(ctx, bytes.NewReader(content), path)
	if err != nil {
		return "", fmt.Errorf("failed to upload logo: %w", err)
	}

	if err := s.empresas.SetLogoURL(ctx, empresaID, publicURL); err != nil {
		_ = s.driver.Delete(ctx, storagePath)
		return "", err
	}

	return publicURL, nil
}

func validateUpload(file *multipart.FileHeader, maxSize int64, ext string, allowed ...string) error {
	if file.Size > maxSize {
		return fmt.Errorf("file too large (max %d bytes)", maxSize)
	}
	for _, a := range allowed {
		if ext == a {
			return nil
		}
	}
	return fmt.Errorf("unsupported file type %q", ext)
}

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return data, nil
}

// normalizeImage decodes, bounds and re-encodes an uploaded image as JPEG.
// Bounding keeps storage predictable regardless of the camera that shot the
// receipt.
func normalizeImage(data []byte, maxDim int) ([]byte, string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}

	return buf.Bytes(), ".jpg", nil
}
