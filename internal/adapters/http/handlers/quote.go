package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotekeeper/internal/app"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

// importFormField is the multipart field holding an uploaded export file.
const importFormField = "file"

// noQuotesMessage is shown when a random pick finds nothing to pick from.
const noQuotesMessage = "No quotes available in this category."

// QuoteHandler handles quote-related HTTP endpoints.
type QuoteHandler struct {
	service *app.QuoteService
	now     func() time.Time
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		service: service,
		now:     time.Now,
	}
}

// ListQuotes handles GET /api/v1/quotes.
//
// @Summary List quotes
// @Param category query string false "Category, or all. Defaults to the saved filter"
// @Param limit query int false "Page size (1-100)"
// @Param cursor query string false "Cursor from a previous page"
// @Success 200 {object} dto.PaginatedResponse[dto.QuoteResponse]
// @Router /api/v1/quotes [get]
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	var req dto.ListQuotesRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.RespondBindError(c, err)
		return
	}

	category := req.Category
	if category == "" {
		category = h.service.Filter()
	}

	page, err := dto.Paginate(dto.NewQuoteResponses(h.service.List(category)), category, req.PaginationRequest)
	if err != nil {
		dto.RespondWithCode(c, dto.ErrorCodeBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, page)
}

// RandomQuote handles GET /api/v1/quotes/random.
//
// @Summary Show one random quote from the filtered set
// @Success 200 {object} dto.QuoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/random [get]
func (h *QuoteHandler) RandomQuote(c *gin.Context) {
	q, err := h.service.RandomQuote(c.Request.Context(), c.Query("category"))
	if err != nil {
		if domain.IsNotFound(err) {
			dto.RespondWithCode(c, dto.ErrorCodeNoQuotes, noQuotesMessage)
			return
		}

		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(q))
}

// AddQuote handles POST /api/v1/quotes.
//
// @Summary Add a quote
// @Accept json
// @Success 201 {object} dto.QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes [post]
func (h *QuoteHandler) AddQuote(c *gin.Context) {
	var req dto.AddQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondBindError(c, err)
		return
	}

	q, err := h.service.AddQuote(c.Request.Context(), req.Text, req.Category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuoteResponse(q))
}

// Categories handles GET /api/v1/categories.
func (h *QuoteHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewCategoriesResponse(h.service.Categories()))
}

// GetFilter handles GET /api/v1/filter.
func (h *QuoteHandler) GetFilter(c *gin.Context) {
	c.JSON(http.StatusOK, dto.FilterResponse{Category: h.service.Filter()})
}

// SetFilter handles PUT /api/v1/filter.
func (h *QuoteHandler) SetFilter(c *gin.Context) {
	var req dto.SetFilterRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondBindError(c, err)
		return
	}

	selected, err := h.service.SetFilter(c.Request.Context(), strings.TrimSpace(req.Category))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FilterResponse{Category: selected})
}

// Export handles GET /api/v1/quotes/export.
//
// @Summary Download the collection as JSON
// @Produce json
// @Router /api/v1/quotes/export [get]
func (h *QuoteHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.service.Export(&buf); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", app.ExportFilename(h.now())))
	c.Data(http.StatusOK, "application/json", buf.Bytes())
}

// Import handles POST /api/v1/quotes/import.
// The body is either the raw JSON array or a multipart form with a "file" field.
//
// @Summary Replace the collection from an export file
// @Accept json,mpfd
// @Success 200 {object} dto.ImportResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes/import [post]
func (h *QuoteHandler) Import(c *gin.Context) {
	body, closeBody, err := importBody(c)
	if err != nil {
		dto.HandleError(c, err)
		return
	}
	defer closeBody()

	result, err := h.service.Import(c.Request.Context(), body)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewImportResponse(result))
}

func importBody(c *gin.Context) (io.Reader, func(), error) {
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return c.Request.Body, func() {}, nil
	}

	header, err := c.FormFile(importFormField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, domain.NewValidationError(importFormField, "multipart upload is required")
		}

		return nil, nil, domain.NewValidationError(importFormField, "upload could not be read: "+err.Error())
	}

	f, err := header.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("opening upload: %w", err)
	}

	return f, func() { _ = f.Close() }, nil
}

// RegisterQuoteRoutes registers quote routes on the given router group.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("", h.ListQuotes)
	quotes.POST("", h.AddQuote)
	quotes.GET("/random", h.RandomQuote)
	quotes.GET("/export", h.Export)
	quotes.POST("/import", h.Import)

	rg.GET("/categories", h.Categories)
	rg.GET("/filter", h.GetFilter)
	rg.PUT("/filter", h.SetFilter)
}
