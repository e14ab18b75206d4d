package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/yafera/herdbook/internal/domain/models"
	"github.com/yafera/herdbook/internal/service/reporting"
	"github.com/yafera/herdbook/internal/store"
)

const dateLayout = "2006-01-02"

// LedgerStore is the record store surface exposed over HTTP.
type LedgerStore interface {
	AppendAnimal(ctx context.Context, project string, in store.AnimalEntry) (models.Animal, error)
	AppendExpense(ctx context.Context, project string, in store.ExpenseEntry) (models.Expense, error)
	AppendNote(ctx context.Context, project string, in store.NoteEntry) (models.Note, error)
	MarkSold(ctx context.Context, project, name string, salePrice decimal.Decimal, saleDate time.Time) (models.Animal, error)
	ProjectAnimals(ctx context.Context, project string) []models.Animal
	PresentAnimals(ctx context.Context, project string) []models.Animal
	ProjectExpenses(ctx context.Context, project string) []models.Expense
	ProjectNotes(ctx context.Context, project string) []models.Note
	Projects(ctx context.Context) []string
}

// ReportService computes summaries and reads the snapshot archive.
type ReportService interface {
	Summary(ctx context.Context, project string) (models.Summary, error)
	History(ctx context.Context, project string, limit int64) ([]models.LedgerSnapshot, error)
}

// LedgerHandler serves the project, animal, expense, note and summary routes.
type LedgerHandler struct {
	store   LedgerStore
	reports ReportService
	loc     *time.Location
	logger  *zap.Logger
	now     func() time.Time
}

// NewLedgerHandler constructs the ledger HTTP adapter. Missing dates
// default to today in loc.
func NewLedgerHandler(ledgerStore LedgerStore, reports ReportService, loc *time.Location, logger *zap.Logger) *LedgerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &LedgerHandler{store: ledgerStore, reports: reports, loc: loc, logger: logger, now: time.Now}
}

// ListProjects returns every project label.
func (h *LedgerHandler) ListProjects(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"projects": h.store.Projects(c.Request.Context())})
}

// ListAnimals returns the animals of a project, optionally filtered by ?status=present|sold.
func (h *LedgerHandler) ListAnimals(c *gin.Context) {
	project := c.Param("project")
	ctx := c.Request.Context()

	var animals []models.Animal
	switch c.Query("status") {
	case "":
		animals = h.store.ProjectAnimals(ctx, project)
	case "present":
		animals = h.store.PresentAnimals(ctx, project)
	case "sold":
		for _, a := range h.store.ProjectAnimals(ctx, project) {
			if a.IsSold() {
				animals = append(animals, a)
			}
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be present or sold"})
		return
	}

	if animals == nil {
		animals = []models.Animal{}
	}
	c.JSON(http.StatusOK, gin.H{"animals": animals})
}

// CreateAnimal records a purchase.
func (h *LedgerHandler) CreateAnimal(c *gin.Context) {
	var req models.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	date, err := h.parseDate(req.Date)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	animal, err := h.store.AppendAnimal(c.Request.Context(), c.Param("project"), store.AnimalEntry{
		Name:          req.Name,
		Description:   req.Description,
		PurchasePrice: req.Price,
		PurchaseDate:  date,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, animal)
}

// SellAnimal marks the first Present animal with the given name as sold.
func (h *LedgerHandler) SellAnimal(c *gin.Context) {
	var req models.SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	date, err := h.parseDate(req.Date)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	animal, err := h.store.MarkSold(c.Request.Context(), c.Param("project"), c.Param("name"), req.Price, date)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, animal)
}

// ListExpenses returns the expenses of a project.
func (h *LedgerHandler) ListExpenses(c *gin.Context) {
	expenses := h.store.ProjectExpenses(c.Request.Context(), c.Param("project"))
	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}

// CreateExpense records an expense.
func (h *LedgerHandler) CreateExpense(c *gin.Context) {
	var req models.ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	date, err := h.parseDate(req.Date)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	expense, err := h.store.AppendExpense(c.Request.Context(), c.Param("project"), store.ExpenseEntry{
		Category: req.Category,
		Amount:   req.Amount,
		Date:     date,
		Note:     req.Note,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

// ListNotes returns the journal of a project, newest first.
func (h *LedgerHandler) ListNotes(c *gin.Context) {
	notes := h.store.ProjectNotes(c.Request.Context(), c.Param("project"))
	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

// CreateNote records a journal entry.
func (h *LedgerHandler) CreateNote(c *gin.Context) {
	var req models.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	ts := h.now().In(h.loc)
	if req.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			h.badRequest(c, fmt.Errorf("timestamp must be RFC 3339: %w", err))
			return
		}
		ts = parsed.In(h.loc)
	}

	note, err := h.store.AppendNote(c.Request.Context(), c.Param("project"), store.NoteEntry{Timestamp: ts, Comment: req.Comment})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

// Summary returns the ledger metrics of a project.
func (h *LedgerHandler) Summary(c *gin.Context) {
	summary, err := h.reports.Summary(c.Request.Context(), c.Param("project"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// History returns the archived snapshots of a project, newest first.
func (h *LedgerHandler) History(c *gin.Context) {
	limit := int64(10)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	snapshots, err := h.reports.History(c.Request.Context(), c.Param("project"), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	if snapshots == nil {
		snapshots = []models.LedgerSnapshot{}
	}
	c.JSON(http.StatusOK, gin.H{"snapshots": snapshots})
}

func (h *LedgerHandler) parseDate(raw string) (time.Time, error) {
	if raw == "" {
		now := h.now().In(h.loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.loc), nil
	}
	date, err := time.ParseInLocation(dateLayout, raw, h.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must use the %s layout", dateLayout)
	}
	return date, nil
}

func (h *LedgerHandler) badRequest(c *gin.Context, err error) {
	h.logger.Warn("invalid ledger request", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// fail maps store and reporting errors to HTTP statuses. Backend failures
// are not echoed to the client.
func (h *LedgerHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrAnimalNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrAlreadySold):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, reporting.ErrArchiveDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.logger.Error("ledger backend failure", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "ledger backend unavailable, nothing was saved"})
	}
}
