package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/uniformhub/app/presenters"
	"github.com/shashiranjanraj/uniformhub/app/services"
	"github.com/shashiranjanraj/uniformhub/pkg/ctx"
	"github.com/shashiranjanraj/uniformhub/pkg/logger"
	"github.com/shashiranjanraj/uniformhub/pkg/resource"
)

// StorageController serves provider admin and file uploads.
type StorageController struct {
	storage *services.StorageService
}

func NewStorageController(s *services.StorageService) *StorageController {
	return &StorageController{storage: s}
}

func (sc *StorageController) Providers(c *ctx.Context) {
	out, err := sc.storage.Providers(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resource.Many(presenters.Provider, out))
}

func (sc *StorageController) Provider(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	p, err := sc.storage.Provider(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(presenters.Provider(*p))
}

func (sc *StorageController) StoreProvider(c *ctx.Context) {
	var in services.ProviderInput
	if !c.BindJSON(&in) {
		return
	}
	p, err := sc.storage.CreateProvider(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(presenters.Provider(*p))
}

func (sc *StorageController) UpdateProvider(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var in services.ProviderInput
	if !c.BindJSON(&in) {
		return
	}
	p, err := sc.storage.UpdateProvider(c.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(presenters.Provider(*p))
}

func (sc *StorageController) DestroyProvider(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	if err := sc.storage.DeleteProvider(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.NoContent()
}

func (sc *StorageController) Activate(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	p, err := sc.storage.Activate(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(presenters.Provider(*p))
}

// Upload POST /api/files takes a multipart "file" field of at most 10MB.
func (sc *StorageController) Upload(c *ctx.Context) {
	// room for the multipart framing around the file
	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, services.MaxUploadSize+64<<10)
	if err := c.R.ParseMultipartForm(services.MaxUploadSize); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.ValidationError(map[string]string{"file": "The file may not be greater than 10MB."})
			return
		}
		c.Error(http.StatusBadRequest, "Expected a multipart/form-data body")
		return
	}
	defer func() {
		if c.R.MultipartForm != nil {
			_ = c.R.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := c.R.FormFile("file")
	if err != nil {
		c.ValidationError(map[string]string{"file": "The file field is required."})
		return
	}
	defer file.Close()

	rec, err := sc.storage.Upload(c.Context(), c.Principal(), services.Upload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(rec)
}

func (sc *StorageController) File(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	f, err := sc.storage.GetFile(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(f)
}

// Raw GET /api/files/{id}/raw streams the stored bytes.
func (sc *StorageController) Raw(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	f, body, err := sc.storage.OpenFile(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	defer body.Close()

	h := c.W.Header()
	h.Set("Content-Type", f.MimeType)
	h.Set("Content-Length", strconv.FormatInt(f.Size, 10))
	h.Set("Cache-Control", "private, max-age=3600")
	h.Set("X-Content-Type-Options", "nosniff")
	c.W.WriteHeader(http.StatusOK)
	if _, err := io.Copy(c.W, body); err != nil {
		logger.WithCtx(c.Context()).Warn("file stream interrupted", "file_id", id, "error", err)
	}
}

func (sc *StorageController) DestroyFile(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	if err := sc.storage.DeleteFile(c.Context(), c.Principal(), id); err != nil {
		fail(c, err)
		return
	}
	c.NoContent()
}
