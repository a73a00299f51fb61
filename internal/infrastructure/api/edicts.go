package api

import (
	"context"
	"io"

	"github.com/go-resty/resty/v2"

	"github.com/baremaai/companion/internal/core/domain"
)

func (c *Client) MyEdicts(ctx context.Context) ([]domain.Edict, error) {
	var edicts []domain.Edict
	if err := c.getJSON(ctx, "edicts.mine", "/edicts/mine", nil, &edicts); err != nil {
		return nil, err
	}
	return edicts, nil
}

// SearchEdicts sends only the filters the caller actually set.
func (c *Client) SearchEdicts(ctx context.Context, filters domain.EdictFilters) ([]domain.Edict, error) {
	var edicts []domain.Edict
	if err := c.getJSON(ctx, "edicts.search", "/edicts/search", filters.QueryParams(), &edicts); err != nil {
		return nil, err
	}
	return edicts, nil
}

func (c *Client) GetEdict(ctx context.Context, id string) (*domain.Edict, error) {
	var edict domain.Edict
	if err := c.getJSON(ctx, "edicts.get", pathID("/edicts/%s", id), nil, &edict); err != nil {
		return nil, err
	}
	return &edict, nil
}

// UploadEdict submits a rubric PDF for server-side parsing and returns the
// parsed summary the backend echoes back.
func (c *Client) UploadEdict(ctx context.Context, filename string, data io.Reader) (*domain.ParsedEdictSummary, error) {
	var summary domain.ParsedEdictSummary
	err := c.do(ctx, "edicts.upload", false, func(ctx context.Context) (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetFileReader("file", filename, data).
			SetResult(&summary).
			Post("/edicts/upload")
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Client) DownloadEdict(ctx context.Context, id string, out io.Writer) error {
	return c.download(ctx, "edicts.download", pathID("/edicts/%s/download", id), out)
}

func (c *Client) CurriculumPreview(ctx context.Context, edictID string) (*domain.CurriculumPreview, error) {
	var preview domain.CurriculumPreview
	if err := c.getJSON(ctx, "curriculum.preview", pathID("/edicts/%s/curriculum/preview", edictID), nil, &preview); err != nil {
		return nil, err
	}
	preview.EdictID = edictID
	return &preview, nil
}

func (c *Client) CurriculumPDF(ctx context.Context, edictID string, out io.Writer) error {
	return c.download(ctx, "curriculum.pdf", pathID("/edicts/%s/curriculum/pdf", edictID), out)
}

func (c *Client) CurriculumXML(ctx context.Context, edictID string, out io.Writer) error {
	return c.download(ctx, "curriculum.xml", pathID("/edicts/%s/curriculum/xml", edictID), out)
}
