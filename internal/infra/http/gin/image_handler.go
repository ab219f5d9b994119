package ginserver

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"wayfarer/internal/app/dto"
	imagesapp "wayfarer/internal/app/images"
	domainimages "wayfarer/internal/domain/images"
)

type ImagesHTTP interface {
	Upload(c *gin.Context)
	UploadBatch(c *gin.Context)
	Get(c *gin.Context)
	ListByEntity(c *gin.Context)
	UpdateMetadata(c *gin.Context)
	Delete(c *gin.Context)
}

type ImagesHandler struct {
	Service *imagesapp.Service
	Logger  *slog.Logger
}

// Upload accepts one multipart file under "image" plus entity form fields.
func (h ImagesHandler) Upload(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	entity, ok := entityFromForm(c)
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable image file"})
		return
	}
	defer file.Close()

	image, err := h.Service.Upload(c.Request.Context(), imagesapp.UploadParams{
		OwnerID:      p.ID,
		Entity:       entity,
		OriginalName: fileHeader.Filename,
		ContentType:  fileHeader.Header.Get("Content-Type"),
		SizeBytes:    fileHeader.Size,
		Payload:      file,
		IsPrimary:    parseFormBool(c.PostForm("is_primary")),
		Tags:         splitTags(c.PostForm("tags")),
		Description:  c.PostForm("description"),
		Now:          time.Now().UTC(),
	})
	if err != nil {
		h.respondImageError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapImage(image))
}

// UploadBatch accepts multiple files under "images" for one entity; the
// first file becomes the entity's primary image.
func (h ImagesHandler) UploadBatch(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	entity, ok := entityFromForm(c)
	if !ok {
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one image file is required"})
		return
	}

	batch := make([]imagesapp.UploadParams, 0, len(files))
	opened := make([]multipart.File, 0, len(files))
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	now := time.Now().UTC()
	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable image file"})
			return
		}
		opened = append(opened, file)
		batch = append(batch, imagesapp.UploadParams{
			OwnerID:      p.ID,
			Entity:       entity,
			OriginalName: fileHeader.Filename,
			ContentType:  fileHeader.Header.Get("Content-Type"),
			SizeBytes:    fileHeader.Size,
			Payload:      file,
			Now:          now,
		})
	}
	uploaded, err := h.Service.UploadMany(c.Request.Context(), batch)
	if err != nil {
		h.respondImageError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapImages(uploaded))
}

func (h ImagesHandler) Get(c *gin.Context) {
	image, err := h.Service.Get(c.Request.Context(), domainimages.ImageID(c.Param("id")))
	if err != nil {
		h.respondImageError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapImage(image))
}

func (h ImagesHandler) ListByEntity(c *gin.Context) {
	entityType, err := domainimages.ParseEntityType(c.Param("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entity := domainimages.EntityRef{Type: entityType, ID: c.Param("id")}
	all, err := h.Service.ListByEntity(c.Request.Context(), entity)
	if err != nil {
		h.respondImageError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapImages(all))
}

type updateImageRequest struct {
	IsPrimary   *bool    `json:"is_primary"`
	Tags        []string `json:"tags"`
	Description *string  `json:"description"`
}

func (h ImagesHandler) UpdateMetadata(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	var req updateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	image, err := h.Service.UpdateMetadata(c.Request.Context(), domainimages.ImageID(c.Param("id")), p.actor(), imagesapp.MetadataPatch{
		IsPrimary:   req.IsPrimary,
		Tags:        req.Tags,
		Description: req.Description,
	}, time.Now().UTC())
	if err != nil {
		h.respondImageError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapImage(image))
}

func (h ImagesHandler) Delete(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), domainimages.ImageID(c.Param("id")), p.actor()); err != nil {
		h.respondImageError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h ImagesHandler) respondImageError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, domainimages.ErrUnknownEntityType),
		errors.Is(err, domainimages.ErrNameRequired),
		errors.Is(err, imagesapp.ErrNoPayload):
		status = http.StatusBadRequest
	case errors.Is(err, domainimages.ErrNotOwner):
		status = http.StatusForbidden
	case errors.Is(err, domainimages.ErrNotFound):
		status = http.StatusNotFound
	default:
		status = http.StatusInternalServerError
	}
	if status == http.StatusInternalServerError && h.Logger != nil {
		h.Logger.Error("image operation failed", "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func entityFromForm(c *gin.Context) (domainimages.EntityRef, bool) {
	entityType, err := domainimages.ParseEntityType(c.PostForm("entity_type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return domainimages.EntityRef{}, false
	}
	entityID := strings.TrimSpace(c.PostForm("entity_id"))
	if entityID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity_id is required"})
		return domainimages.EntityRef{}, false
	}
	return domainimages.EntityRef{Type: entityType, ID: entityID}, true
}

func parseFormBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var _ ImagesHTTP = ImagesHandler{}
