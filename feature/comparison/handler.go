package comparison

import (
	"errors"
	"io"
	"strings"

	"twmods/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// manifestExtension is the only accepted upload extension.
const manifestExtension = ".twmods"

// Handler handles HTTP requests for manifest comparisons.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the comparison routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/comparison")
	group.Post("/compare", h.HandleCompare)
	group.Post("/compare-stored", h.HandleCompareStored)
	group.Post("/manifests", h.HandleUploadManifests)
	group.Get("/manifests", h.HandleListManifests)
	group.Get("/sessions/:id/page", h.HandleSessionPage)
	group.Get("/sessions/:id/export/csv", h.HandleExportCSV)
	group.Get("/sessions/:id/export/json", h.HandleExportJSON)
}

// HandleCompare compares uploaded manifest files.
// @Summary Compare uploaded manifests
// @Description Parses uploaded .twmods files, enriches them with workshop metadata and returns the comparison table.
// @Tags comparison
// @Accept mpfd
// @Produce json
// @Param files formData file true "Manifest files (.twmods)"
// @Param user formData string false "Session owner identifier"
// @Success 200 {object} comparison.CompareResponse "Comparison result"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 413 {object} map[string]string "File Too Large"
// @Router /comparison/compare [post]
func (h *Handler) HandleCompare(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "expected a multipart form with manifest files",
		})
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "no manifest files provided",
		})
	}

	files := make([]NamedFile, 0, len(headers))
	for _, header := range headers {
		if !strings.HasSuffix(strings.ToLower(header.Filename), manifestExtension) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "file " + header.Filename + " is not a " + manifestExtension + " manifest",
			})
		}

		f, err := header.Open()
		if err != nil {
			l.Error("Failed to open uploaded file", zap.String("file", header.Filename), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to read uploaded file",
			})
		}
		content, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			l.Error("Failed to read uploaded file", zap.String("file", header.Filename), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to read uploaded file",
			})
		}

		files = append(files, NamedFile{Name: header.Filename, Content: string(content)})
	}

	resp, err := h.service.Compare(c.Context(), files, c.FormValue("user"))
	if err != nil {
		return h.respondError(c, l, err)
	}

	return c.JSON(resp)
}

// HandleCompareStored compares manifests already stored in the bucket.
// @Summary Compare stored manifests
// @Description Downloads the named manifest objects from storage and returns the comparison table.
// @Tags comparison
// @Accept json
// @Produce json
// @Param request body comparison.storedCompareRequest true "Objects to compare"
// @Success 200 {object} comparison.CompareResponse "Comparison result"
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /comparison/compare-stored [post]
func (h *Handler) HandleCompareStored(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	var req storedCompareRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	resp, err := h.service.CompareStored(c.Context(), req.Objects, req.User)
	if err != nil {
		return h.respondError(c, l, err)
	}

	return c.JSON(resp)
}

type storedCompareRequest struct {
	Objects []string `json:"objects"`
	User    string   `json:"user"`
}

// HandleUploadManifests stores uploaded manifests in the bucket for later
// stored comparisons.
// @Summary Upload manifests to storage
// @Tags comparison
// @Accept mpfd
// @Produce json
// @Param files formData file true "Manifest files (.twmods)"
// @Success 201 {object} map[string][]string "Stored object names"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 503 {object} map[string]string "Storage not configured"
// @Router /comparison/manifests [post]
func (h *Handler) HandleUploadManifests(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "expected a multipart form with manifest files",
		})
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "no manifest files provided",
		})
	}

	stored := make([]string, 0, len(headers))
	for _, header := range headers {
		if !strings.HasSuffix(strings.ToLower(header.Filename), manifestExtension) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "file " + header.Filename + " is not a " + manifestExtension + " manifest",
			})
		}

		f, err := header.Open()
		if err != nil {
			l.Error("Failed to open uploaded file", zap.String("file", header.Filename), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to read uploaded file",
			})
		}
		content, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			l.Error("Failed to read uploaded file", zap.String("file", header.Filename), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to read uploaded file",
			})
		}

		if err := h.service.StoreManifest(c.Context(), header.Filename, string(content)); err != nil {
			return h.respondError(c, l, err)
		}
		stored = append(stored, header.Filename)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"stored": stored})
}

// HandleListManifests lists the manifests available for stored comparison.
// @Summary List stored manifests
// @Tags comparison
// @Produce json
// @Success 200 {array} comparison.StoredManifest "Stored manifests"
// @Failure 503 {object} map[string]string "Storage not configured"
// @Router /comparison/manifests [get]
func (h *Handler) HandleListManifests(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	manifests, err := h.service.ListManifests(c.Context())
	if err != nil {
		return h.respondError(c, l, err)
	}

	return c.JSON(manifests)
}

// HandleSessionPage navigates a pagination session and returns the page.
// @Summary Navigate a comparison session
// @Tags comparison
// @Produce json
// @Param id path string true "Session ID"
// @Param action query string false "Navigation action (first, prev, next, last, none)"
// @Param user query string false "Session owner identifier"
// @Success 200 {object} comparison.TablePage "Rendered page"
// @Failure 403 {object} map[string]string "Foreign session"
// @Failure 404 {object} map[string]string "Unknown or expired session"
// @Router /comparison/sessions/{id}/page [get]
func (h *Handler) HandleSessionPage(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	action := c.Query("action", ActionNone)
	page, err := h.service.Sessions().Navigate(c.Params("id"), c.Query("user"), action)
	if err != nil {
		return h.respondError(c, l, err)
	}

	return c.JSON(page)
}

// HandleExportCSV returns the full comparison table of a live session as CSV.
// @Summary Export a comparison session as CSV
// @Tags comparison
// @Produce plain
// @Param id path string true "Session ID"
// @Success 200 {string} string "CSV document"
// @Failure 404 {object} map[string]string "Unknown or expired session"
// @Router /comparison/sessions/{id}/export/csv [get]
func (h *Handler) HandleExportCSV(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	rows, fileNames, err := h.service.Sessions().Peek(c.Params("id"))
	if err != nil {
		return h.respondError(c, l, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="comparison_table_full.csv"`)
	return c.SendString(GenerateCSV(rows, fileNames))
}

// HandleExportJSON returns the full comparison table of a live session as JSON.
// @Summary Export a comparison session as JSON
// @Tags comparison
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {array} comparison.ExportRow "Export rows"
// @Failure 404 {object} map[string]string "Unknown or expired session"
// @Router /comparison/sessions/{id}/export/json [get]
func (h *Handler) HandleExportJSON(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	rows, _, err := h.service.Sessions().Peek(c.Params("id"))
	if err != nil {
		return h.respondError(c, l, err)
	}

	data, err := GenerateJSON(rows)
	if err != nil {
		l.Error("JSON export failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to build JSON export",
		})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="comparison_table_full.json"`)
	return c.Send(data)
}

// respondError maps pipeline errors onto HTTP statuses.
func (h *Handler) respondError(c *fiber.Ctx, l *zap.Logger, err error) error {
	switch {
	case errors.Is(err, ErrNoFiles), errors.Is(err, ErrEmptyManifest):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrFileTooLarge):
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrSessionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrSessionDenied):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrStorageUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	default:
		l.Error("Comparison failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
