package controllers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aciforge/portal/internal/forge"
	"github.com/aciforge/portal/internal/logger"
	"github.com/aciforge/portal/internal/middleware"
	"github.com/aciforge/portal/internal/models"
	"github.com/aciforge/portal/internal/session"
	"github.com/aciforge/portal/internal/viewmodel"
)

type MaintenanceController struct {
	forge *forge.Client
	store *session.Store
	views *ViewRegistry
}

func NewMaintenanceController(client *forge.Client, store *session.Store, views *ViewRegistry) *MaintenanceController {
	return &MaintenanceController{forge: client, store: store, views: views}
}

// ListView is the derived view handed to the presentation layer.
type ListView struct {
	Requests    []models.MaintenanceRequest `json:"requests"`
	TotalCount  int                         `json:"total_count"`
	TotalPages  int                         `json:"total_pages"`
	CurrentPage int                         `json:"current_page"`
	PageSize    int                         `json:"page_size"`
	Query       viewmodel.Query             `json:"query"`
	Statistics  *models.Statistics          `json:"statistics,omitempty"`
}

type UpdateStatusRequest struct {
	Status models.RequestStatus `json:"status" binding:"required"`
}

// ListAll serves the all-requests view; maintenance capability required.
func (mc *MaintenanceController) ListAll(c *gin.Context) {
	sess, _ := middleware.GetSession(c)
	if !sess.Capabilities.CanManageMaintenance {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "redirect": "/dashboard"})
		return
	}
	mc.list(c, sess, viewmodel.ScopeAll)
}

// ListMine serves the caller's own submissions.
func (mc *MaintenanceController) ListMine(c *gin.Context) {
	sess, _ := middleware.GetSession(c)
	mc.list(c, sess, viewmodel.ScopeMine)
}

func (mc *MaintenanceController) list(c *gin.Context, sess *session.Session, scope viewmodel.Scope) {
	vm := mc.views.For(sess, scope)

	if !vm.Loaded() || c.Query("refresh") == "true" {
		if err := vm.LoadAll(c.Request.Context()); err != nil {
			respondError(c, mc.store, mc.views, err)
			return
		}
	}

	// Only parameters present in the URL are applied; everything else
	// keeps its previous per-session value.
	params := c.Request.URL.Query()
	patch := viewmodel.QueryPatch{}
	if v, ok := params["search"]; ok {
		patch.Search = &v[0]
	}
	if v, ok := params["status"]; ok {
		patch.Status = &v[0]
	}
	if v, ok := params["priority"]; ok {
		patch.Priority = &v[0]
	}
	if v, ok := params["sort"]; ok {
		key := viewmodel.SortKey(v[0])
		if key != viewmodel.SortByDate && key != viewmodel.SortByPriority {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sort key"})
			return
		}
		patch.Sort = &key
	}
	vm.SetQuery(patch)

	if v := c.Query("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page size"})
			return
		}
		if err := vm.SetPageSize(n); err != nil {
			respondError(c, mc.store, mc.views, err)
			return
		}
	}
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page"})
			return
		}
		vm.SetPage(n)
	}

	c.JSON(http.StatusOK, ListView{
		Requests:    vm.Visible(),
		TotalCount:  vm.TotalCount(),
		TotalPages:  vm.TotalPages(),
		CurrentPage: vm.CurrentPage(),
		PageSize:    vm.PageSize(),
		Query:       vm.Query(),
		Statistics:  vm.Statistics(),
	})
}

// Create submits a new maintenance request. Multipart submissions may
// carry attachments; an upload failure after a successful creation is
// logged but never rolls the record back or fails the response.
func (mc *MaintenanceController) Create(c *gin.Context) {
	sess, _ := middleware.GetSession(c)

	var in models.MaintenanceRequestInput
	var files []*multipart.FileHeader

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
			return
		}
		in = inputFromForm(c)
		if in.Title == "" || in.Description == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title and description are required"})
			return
		}
		files = form.File["files"]
	} else {
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if !in.Priority.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
		return
	}

	created, err := mc.forge.CreateRequest(c.Request.Context(), sess.AccessToken, in)
	if err != nil {
		respondError(c, mc.store, mc.views, err)
		return
	}

	if len(files) > 0 {
		if err := mc.uploadFiles(c, sess, created.ID, files); err != nil {
			logger.WithError(err, "maintenance").Warn("Attachment upload failed, request was created without files")
		}
	}

	// Next list call reloads from the remote API.
	mc.views.Drop(sess.AccessToken)

	c.JSON(http.StatusCreated, created)
}

func inputFromForm(c *gin.Context) models.MaintenanceRequestInput {
	cycleDays, _ := strconv.Atoi(c.PostForm("maintenance_cycle_days"))
	return models.MaintenanceRequestInput{
		Title:                   c.PostForm("title"),
		Description:             c.PostForm("description"),
		Priority:                models.Priority(c.PostForm("priority")),
		EquipmentName:           c.PostForm("equipment_name"),
		Location:                c.PostForm("location"),
		RequestedCompletionDate: c.PostForm("requested_completion_date"),
		LastMaintenanceDate:     c.PostForm("last_maintenance_date"),
		MaintenanceCycleDays:    cycleDays,
		WarrantyStatus:          models.WarrantyStatus(c.PostForm("warranty_status")),
		WarrantyExpiryDate:      c.PostForm("warranty_expiry_date"),
		PartOrderList:           c.PostForm("part_order_list"),
	}
}

func (mc *MaintenanceController) uploadFiles(c *gin.Context, sess *session.Session, id int, headers []*multipart.FileHeader) error {
	var attachments []forge.Attachment
	var open []io.Closer
	defer func() {
		for _, f := range open {
			f.Close()
		}
	}()

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return err
		}
		open = append(open, f)
		attachments = append(attachments, forge.Attachment{Filename: fh.Filename, Content: f})
	}
	return mc.forge.UploadAttachments(c.Request.Context(), sess.AccessToken, id, attachments)
}

// Detail fetches a single request fresh from the remote API.
func (mc *MaintenanceController) Detail(c *gin.Context) {
	sess, _ := middleware.GetSession(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	rec, err := mc.forge.GetRequest(c.Request.Context(), sess.AccessToken, id)
	if err != nil {
		respondError(c, mc.store, mc.views, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// UpdateStatus patches a request's status through the session view-model,
// which enforces the ownership/capability rule and the same-status no-op.
func (mc *MaintenanceController) UpdateStatus(c *gin.Context) {
	sess, _ := middleware.GetSession(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	vm := mc.views.For(sess, viewmodel.ScopeAll)
	updated, err := vm.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, mc.store, mc.views, err)
		return
	}

	// The cached my-requests view may hold the old status; it reloads on
	// its next call.
	mc.views.DropScope(sess.AccessToken, viewmodel.ScopeMine)

	c.JSON(http.StatusOK, updated)
}

// Delete removes a request. The confirmation dialog is the browser's job;
// the view-model re-fetches the whole collection on success.
func (mc *MaintenanceController) Delete(c *gin.Context) {
	sess, _ := middleware.GetSession(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	vm := mc.views.For(sess, viewmodel.ScopeAll)
	if err := vm.Delete(c.Request.Context(), id); err != nil {
		respondError(c, mc.store, mc.views, err)
		return
	}

	// The all-requests view resynchronized itself; the my-requests view
	// would keep serving the deleted record, so drop it.
	mc.views.DropScope(sess.AccessToken, viewmodel.ScopeMine)

	c.JSON(http.StatusOK, gin.H{"message": "Request deleted"})
}

// Upload attaches files to an existing request.
func (mc *MaintenanceController) Upload(c *gin.Context) {
	sess, _ := middleware.GetSession(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files provided"})
		return
	}

	if err := mc.uploadFiles(c, sess, id, files); err != nil {
		respondError(c, mc.store, mc.views, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Attachments uploaded", "count": len(files)})
}

// DownloadAttachment streams an attachment from the remote API.
func (mc *MaintenanceController) DownloadAttachment(c *gin.Context) {
	sess, _ := middleware.GetSession(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}
	filename := c.Param("filename")

	body, contentType, err := mc.forge.DownloadAttachment(c.Request.Context(), sess.AccessToken, id, filename)
	if err != nil {
		respondError(c, mc.store, mc.views, err)
		return
	}
	defer body.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, body); err != nil {
		logger.WithError(err, "maintenance").Error("Attachment stream interrupted")
	}
}
