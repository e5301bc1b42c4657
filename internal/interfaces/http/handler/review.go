package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	regapp "github.com/ippis/backend/internal/application/registration"
	"github.com/ippis/backend/internal/domain/shared"
	"github.com/ippis/backend/internal/interfaces/http/dto"
	"github.com/ippis/backend/internal/interfaces/http/middleware"
)

// ReviewWorkflow is the admin-side workflow used by ReviewHandler
type ReviewWorkflow interface {
	Approve(ctx context.Context, id string, req regapp.DecisionRequest) (*regapp.DecisionResponse, error)
	Reject(ctx context.Context, id string, req regapp.DecisionRequest) (*regapp.DecisionResponse, error)
	RejectDocument(ctx context.Context, documentID uint64, req regapp.DecisionRequest) (*regapp.DecisionResponse, error)
	VerifyDocument(ctx context.Context, id string, req regapp.VerifyDocumentRequest) (*regapp.DecisionResponse, error)
	FlagIncomplete(ctx context.Context, id string, req regapp.DecisionRequest) (*regapp.DecisionResponse, error)
	ListRegistrations(ctx context.Context, status string, filter shared.Filter) (shared.Paginated[regapp.RegistrationResponse], error)
	ListPendingDocuments(ctx context.Context, filter shared.Filter) (shared.Paginated[regapp.PendingDocumentResponse], error)
	OpenDocument(ctx context.Context, id, kind string) (*regapp.DocumentContent, error)
}

var _ ReviewWorkflow = (*regapp.ReviewService)(nil)

// ReviewHandler serves the admin review endpoints
type ReviewHandler struct {
	BaseHandler
	review ReviewWorkflow
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(review ReviewWorkflow) *ReviewHandler {
	return &ReviewHandler{review: review}
}

// decision binds an optional {comment} body and stamps the reviewer from the header
func (h *ReviewHandler) decision(c *gin.Context) (regapp.DecisionRequest, bool) {
	var req regapp.DecisionRequest
	if c.Request.ContentLength != 0 {
		if !bindJSON(c, &req) {
			return req, false
		}
	}
	req.Reviewer = c.GetHeader(middleware.ReviewerHeader)
	return req, true
}

// Approve approves a pending registration and creates the employee
//
// @ID           approveRegistration
// @Summary      Approve a registration
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Registration ID"
// @Param        X-Reviewer header string false "Reviewer name"
// @Param        request body regapp.DecisionRequest false "Optional comment"
// @Success      200 {object} dto.Response{data=regapp.DecisionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/registrations/{id}/approve [post]
func (h *ReviewHandler) Approve(c *gin.Context) {
	req, ok := h.decision(c)
	if !ok {
		return
	}
	resp, err := h.review.Approve(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, resp, "Registration approved")
}

// Reject rejects a pending registration
//
// @ID           rejectRegistration
// @Summary      Reject a registration
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Registration ID"
// @Param        X-Reviewer header string false "Reviewer name"
// @Param        request body regapp.DecisionRequest true "Rejection reason"
// @Success      200 {object} dto.Response{data=regapp.DecisionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/registrations/{id}/reject [post]
func (h *ReviewHandler) Reject(c *gin.Context) {
	req, ok := h.decision(c)
	if !ok {
		return
	}
	resp, err := h.review.Reject(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, resp, "Registration rejected")
}

// FlagIncomplete sends a pending registration back for more information
//
// @ID           flagRegistrationIncomplete
// @Summary      Flag a registration as incomplete
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Registration ID"
// @Param        X-Reviewer header string false "Reviewer name"
// @Param        request body regapp.DecisionRequest true "What must be corrected"
// @Success      200 {object} dto.Response{data=regapp.DecisionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/registrations/{id}/incomplete [post]
func (h *ReviewHandler) FlagIncomplete(c *gin.Context) {
	req, ok := h.decision(c)
	if !ok {
		return
	}
	resp, err := h.review.FlagIncomplete(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, resp, "Registration flagged as incomplete")
}

// VerifyDocument records a document review outcome
//
// @ID           verifyRegistrationDocuments
// @Summary      Record a document review
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Registration ID"
// @Param        X-Reviewer header string false "Reviewer name"
// @Param        request body regapp.VerifyDocumentRequest true "approved or rejected, with an optional comment"
// @Success      200 {object} dto.Response{data=regapp.DecisionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/registrations/{id}/documents/verify [post]
func (h *ReviewHandler) VerifyDocument(c *gin.Context) {
	var req regapp.VerifyDocumentRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Reviewer = c.GetHeader(middleware.ReviewerHeader)
	resp, err := h.review.VerifyDocument(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, resp, "Document review recorded")
}

// RejectDocument rejects a document row and its registration
//
// @ID           rejectDocument
// @Summary      Reject a document row
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        documentId path integer true "Document row ID"
// @Param        X-Reviewer header string false "Reviewer name"
// @Param        request body regapp.DecisionRequest true "Rejection reason"
// @Success      200 {object} dto.Response{data=regapp.DecisionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/documents/{documentId}/reject [post]
func (h *ReviewHandler) RejectDocument(c *gin.Context) {
	documentID, err := strconv.ParseUint(c.Param("documentId"), 10, 64)
	if err != nil || documentID == 0 {
		h.BadRequest(c, "Invalid document id")
		return
	}
	req, ok := h.decision(c)
	if !ok {
		return
	}
	resp, err := h.review.RejectDocument(c.Request.Context(), documentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, resp, "Document rejected")
}

// ListRegistrations lists registrations by status, pending approval by default
//
// @ID           listRegistrations
// @Summary      List registrations
// @Tags         admin
// @Produce      json
// @Param        status query string false "Status filter, "all" for every status"
// @Param        page query integer false "Page number"
// @Param        page_size query integer false "Page size"
// @Param        search query string false "Search term"
// @Param        sort_by query string false "Sort field"
// @Param        sort_order query string false "asc or desc"
// @Success      200 {object} dto.Response{data=[]regapp.RegistrationResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/registrations [get]
func (h *ReviewHandler) ListRegistrations(c *gin.Context) {
	var req dto.ListRequest
	if !bindQuery(c, &req) {
		return
	}
	page, err := h.review.ListRegistrations(c.Request.Context(), req.Status, req.Filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// ListPendingDocuments lists document rows awaiting review
//
// @ID           listPendingDocuments
// @Summary      List documents awaiting review
// @Tags         admin
// @Produce      json
// @Param        page query integer false "Page number"
// @Param        page_size query integer false "Page size"
// @Success      200 {object} dto.Response{data=[]regapp.PendingDocumentResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/documents/pending [get]
func (h *ReviewHandler) ListPendingDocuments(c *gin.Context) {
	var req dto.ListRequest
	if !bindQuery(c, &req) {
		return
	}
	page, err := h.review.ListPendingDocuments(c.Request.Context(), req.Filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// GetDocument streams one uploaded document to a reviewer
//
// @ID           getRegistrationDocument
// @Summary      Download an uploaded document
// @Tags         admin
// @Produce      octet-stream
// @Param        id path string true "Registration ID"
// @Param        kind path string true "Document slot"
// @Success      200 {file} file
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/registrations/{id}/documents/{kind} [get]
func (h *ReviewHandler) GetDocument(c *gin.Context) {
	doc, err := h.review.OpenDocument(c.Request.Context(), c.Param("id"), c.Param("kind"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer doc.Body.Close()
	c.DataFromReader(http.StatusOK, -1, doc.ContentType, doc.Body, map[string]string{
		"Content-Disposition":    fmt.Sprintf("inline; filename=%q", doc.Filename),
		"X-Content-Type-Options": "nosniff",
	})
}
