package handler

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"
	regapp "github.com/ippis/backend/internal/application/registration"
	"github.com/ippis/backend/internal/domain/registration"
	"github.com/ippis/backend/internal/domain/shared"
	"github.com/ippis/backend/internal/interfaces/http/dto"
)

// RegistrationWorkflow is the applicant-side workflow used by RegistrationHandler
type RegistrationWorkflow interface {
	Create(ctx context.Context) (*regapp.RegistrationResponse, error)
	SaveVerification(ctx context.Context, id string, req regapp.VerificationRequest) (*regapp.VerificationResponse, error)
	SavePersonalInfo(ctx context.Context, id string, info registration.PersonalInfo) (*regapp.RegistrationResponse, error)
	SaveEmploymentInfo(ctx context.Context, id string, info registration.EmploymentInfo) (*regapp.RegistrationResponse, error)
	SaveDocuments(ctx context.Context, id string, files []regapp.DocumentFile) (*regapp.DocumentsResponse, error)
	Submit(ctx context.Context, id string, declaration bool) (*regapp.RegistrationResponse, error)
	GetStatus(ctx context.Context, id string) (*regapp.StatusResponse, error)
	Track(ctx context.Context, id, email string) (*regapp.RegistrationResponse, error)
	Prefill(ctx context.Context, id string) (map[string]any, error)
	VerifyNIN(ctx context.Context, nin string) (*registration.VerificationResult, error)
}

var _ RegistrationWorkflow = (*regapp.WorkflowService)(nil)

// documentFields lists the multipart field names accepted for each document slot
var documentFields = []struct {
	kind  registration.DocumentKind
	names []string
}{
	{registration.DocAppointmentLetter, []string{"appointmentLetter", "appointment_letter"}},
	{registration.DocEducationalCertificates, []string{"educationalCertificates", "educational_certificates"}},
	{registration.DocPromotionLetter, []string{"promotionLetter", "promotion_letter"}},
	{registration.DocOtherDocuments, []string{"otherDocuments", "other_documents"}},
	{registration.DocProfileImage, []string{"profileImage", "profile_image"}},
	{registration.DocSignature, []string{"signature"}},
}

// RegistrationHandler serves the applicant registration steps
type RegistrationHandler struct {
	BaseHandler
	workflow RegistrationWorkflow
}

// NewRegistrationHandler creates a new RegistrationHandler
func NewRegistrationHandler(workflow RegistrationWorkflow) *RegistrationHandler {
	return &RegistrationHandler{workflow: workflow}
}

// Create starts a new draft registration
//
// @ID           createRegistration
// @Summary      Start a registration
// @Tags         registrations
// @Produce      json
// @Success      201 {object} dto.Response{data=dto.CreatedRegistration}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /registrations [post]
func (h *RegistrationHandler) Create(c *gin.Context) {
	resp, err := h.workflow.Create(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.CreatedRegistration{RegistrationID: resp.RegistrationID, Registration: resp})
}

// SaveVerification records the NIN (and optional BVN) check
//
// @ID           saveRegistrationVerification
// @Summary      Verify the applicant NIN
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        id path string true "Registration ID"
// @Param        request body regapp.VerificationRequest true "NIN and optional BVN"
// @Success      200 {object} dto.Response{data=regapp.VerificationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      504 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /registrations/{id}/verification [post]
func (h *RegistrationHandler) SaveVerification(c *gin.Context) {
	var req regapp.VerificationRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.workflow.SaveVerification(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, resp, resp.Message)
}

// SavePersonalInfo stores the personal information step
//
// @ID           saveRegistrationPersonalInfo
// @Summary      Save personal information
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        id path string true "Registration ID"
// @Param        request body registration.PersonalInfo true "Personal information"
// @Success      200 {object} dto.Response{data=regapp.RegistrationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /registrations/{id}/personal-info [post]
func (h *RegistrationHandler) SavePersonalInfo(c *gin.Context) {
	var info registration.PersonalInfo
	if !bindJSON(c, &info) {
		return
	}
	resp, err := h.workflow.SavePersonalInfo(c.Request.Context(), c.Param("id"), info)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, resp, "Personal information saved")
}

// SaveEmploymentInfo stores the employment information step
//
// @ID           saveRegistrationEmploymentInfo
// @Summary      Save employment information
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        id path string true "Registration ID"
// @Param        request body registration.EmploymentInfo true "Employment information"
// @Success      200 {object} dto.Response{data=regapp.RegistrationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /registrations/{id}/employment-info [post]
func (h *RegistrationHandler) SaveEmploymentInfo(c *gin.Context) {
	var info registration.EmploymentInfo
	if !bindJSON(c, &info) {
		return
	}
	resp, err := h.workflow.SaveEmploymentInfo(c.Request.Context(), c.Param("id"), info)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, resp, "Employment information saved")
}

// SaveDocuments stores uploaded documents from a multipart form
//
// @ID           saveRegistrationDocuments
// @Summary      Upload documents
// @Tags         registrations
// @Accept       mpfd
// @Produce      json
// @Param        id path string true "Registration ID"
// @Param        appointmentLetter formData file false "Appointment letter"
// @Param        educationalCertificates formData file false "Educational certificates"
// @Param        promotionLetter formData file false "Promotion letter"
// @Param        otherDocuments formData file false "Other documents"
// @Param        profileImage formData file false "Profile image"
// @Param        signature formData file false "Signature"
// @Success      200 {object} dto.Response{data=regapp.DocumentsResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /registrations/{id}/documents [post]
func (h *RegistrationHandler) SaveDocuments(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		h.BadRequest(c, "Expected a multipart/form-data upload")
		return
	}

	files, closers, err := documentFiles(form)
	defer func() {
		for _, f := range closers {
			_ = f.Close()
		}
	}()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp, err := h.workflow.SaveDocuments(c.Request.Context(), c.Param("id"), files)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, resp, "Documents uploaded")
}

// documentFiles opens the first file of each known slot field
func documentFiles(form *multipart.Form) ([]regapp.DocumentFile, []multipart.File, error) {
	var (
		files   []regapp.DocumentFile
		closers []multipart.File
	)
	for _, slot := range documentFields {
		var header *multipart.FileHeader
		for _, name := range slot.names {
			if hs := form.File[name]; len(hs) > 0 {
				header = hs[0]
				break
			}
		}
		if header == nil {
			continue
		}
		f, err := header.Open()
		if err != nil {
			return nil, closers, shared.NewValidationError(shared.FieldError{
				Field:   string(slot.kind),
				Message: "could not read uploaded file",
			})
		}
		closers = append(closers, f)
		files = append(files, regapp.DocumentFile{
			Kind:        slot.kind,
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Body:        f,
		})
	}
	return files, closers, nil
}

// Submit finalizes the registration for review
//
// @ID           submitRegistration
// @Summary      Submit for review
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        id path string true "Registration ID"
// @Param        request body dto.SubmitRequest true "Declaration"
// @Success      200 {object} dto.Response{data=regapp.RegistrationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /registrations/{id}/submit [post]
func (h *RegistrationHandler) Submit(c *gin.Context) {
	var req dto.SubmitRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.workflow.Submit(c.Request.Context(), c.Param("id"), req.Declaration)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, resp, "Registration submitted for approval")
}

// GetStatus returns the full tracking view
//
// @ID           getRegistrationStatus
// @Summary      Get registration status
// @Tags         registrations
// @Produce      json
// @Param        id path string true "Registration ID"
// @Success      200 {object} dto.Response{data=regapp.StatusResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /registrations/{id}/status [get]
func (h *RegistrationHandler) GetStatus(c *gin.Context) {
	resp, err := h.workflow.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Track finds a registration by id or applicant email
//
// @ID           trackRegistration
// @Summary      Track a registration
// @Tags         registrations
// @Produce      json
// @Param        id query string false "Registration ID"
// @Param        email query string false "Applicant email"
// @Success      200 {object} dto.Response{data=regapp.RegistrationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /registrations/track [get]
func (h *RegistrationHandler) Track(c *gin.Context) {
	var req dto.TrackRequest
	if !bindQuery(c, &req) {
		return
	}
	if strings.TrimSpace(req.ID) == "" && strings.TrimSpace(req.Email) == "" {
		h.BadRequest(c, "Provide a registration id or an email address")
		return
	}
	resp, err := h.workflow.Track(c.Request.Context(), req.ID, req.Email)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Prefill returns the normalized verification payload for the personal-info form
//
// @ID           getRegistrationPrefill
// @Summary      Get verified identity prefill
// @Tags         registrations
// @Produce      json
// @Param        id path string true "Registration ID"
// @Success      200 {object} dto.Response{data=object}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /registrations/{id}/prefill [get]
func (h *RegistrationHandler) Prefill(c *gin.Context) {
	data, err := h.workflow.Prefill(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

// LookupNIN verifies a NIN without touching any registration
//
// @ID           lookupNIN
// @Summary      Look up a NIN
// @Tags         verifications
// @Accept       json
// @Produce      json
// @Param        request body dto.NINLookupRequest true "NIN to verify"
// @Success      200 {object} dto.Response{data=registration.VerificationResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      504 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /verifications/nin [post]
func (h *RegistrationHandler) LookupNIN(c *gin.Context) {
	var req dto.NINLookupRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.workflow.VerifyNIN(c.Request.Context(), req.NIN)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, res, res.Message)
}
