package api

import (
	"context"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/baremaai/companion/internal/core/domain"
	"github.com/baremaai/companion/internal/core/ports"
)

// ListCertificates fetches the raw listing and normalizes each record
// client-side. The backend has shipped both bare arrays and wrapped
// objects, and two generations of status and confidence field names.
func (c *Client) ListCertificates(ctx context.Context, query ports.CertificateQuery) ([]domain.Certificate, error) {
	params := map[string]string{}
	if query.UserID != "" {
		params["user_id"] = query.UserID
	}
	if query.ForValidation {
		params["for_validation"] = "true"
	}
	if query.Limit > 0 {
		params["limit"] = strconv.Itoa(query.Limit)
	}

	body, err := c.getBytes(ctx, "certificates.list", "/certificates/", params)
	if err != nil {
		return nil, err
	}
	return domain.NormalizeCertificates(body), nil
}

func (c *Client) CertificateForValidation(ctx context.Context, id string) (*domain.Certificate, error) {
	body, err := c.getBytes(ctx, "certificates.for_validation", pathID("/certificates/validate/%s", id), nil)
	if err != nil {
		return nil, err
	}
	cert := domain.NormalizeCertificate(body)
	return &cert, nil
}

// CertificatePreview returns a renderable URL for the stored document.
func (c *Client) CertificatePreview(ctx context.Context, id string) (string, error) {
	body, err := c.getBytes(ctx, "certificates.preview", pathID("/certificates/%s/preview", id), nil)
	if err != nil {
		return "", err
	}
	previewURL := gjson.GetBytes(body, "preview_url").String()
	if previewURL == "" {
		previewURL = gjson.GetBytes(body, "url").String()
	}
	return previewURL, nil
}

// UploadCertificateBatch submits all files under one repeated multipart
// field and returns the batch handle for status polling.
func (c *Client) UploadCertificateBatch(ctx context.Context, files []ports.UploadFile) (*domain.BatchUpload, error) {
	var batch domain.BatchUpload
	err := c.do(ctx, "certificates.upload_batch", false, func(ctx context.Context) (*resty.Response, error) {
		req := c.http.R().SetContext(ctx).SetResult(&batch)
		for _, file := range files {
			req.SetFileReader("files", file.Name, file.Data)
		}
		return req.Post("/certificates/upload/batch")
	})
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

type validatePayload struct {
	Action  domain.ValidationAction `json:"action"`
	Updates map[string]any          `json:"updates,omitempty"`
}

func (c *Client) ValidateCertificate(ctx context.Context, id string, action domain.ValidationAction, updates map[string]any) error {
	payload := validatePayload{Action: action, Updates: updates}
	return c.patchJSON(ctx, "certificates.validate", pathID("/certificates/validate/%s", id), payload, nil)
}

func (c *Client) DeleteCertificate(ctx context.Context, id string) error {
	return c.delete(ctx, "certificates.delete", pathID("/certificates/%s", id))
}
