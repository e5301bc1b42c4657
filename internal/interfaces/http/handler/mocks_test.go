package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	empapp "github.com/ippis/backend/internal/application/employee"
	"github.com/ippis/backend/internal/application/importer"
	regapp "github.com/ippis/backend/internal/application/registration"
	"github.com/ippis/backend/internal/domain/registration"
	"github.com/ippis/backend/internal/domain/shared"
	"github.com/ippis/backend/internal/interfaces/http/dto"
	"github.com/ippis/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// MockRegistrationWorkflow mocks RegistrationWorkflow
type MockRegistrationWorkflow struct {
	mock.Mock
}

func (m *MockRegistrationWorkflow) Create(ctx context.Context) (*regapp.RegistrationResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*regapp.RegistrationResponse), args.Error(1)
}

func (m *MockRegistrationWorkflow) SaveVerification(ctx context.Context, id string, req regapp.VerificationRequest) (*regapp.VerificationResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*regapp.VerificationResponse), args.Error(1)
}

func (m *MockRegistrationWorkflow) SavePersonalInfo(ctx context.Context, id string, info registration.PersonalInfo) (*regapp.RegistrationResponse, error) {
	args := m.Called(ctx, id, info)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*regapp.RegistrationResponse), args.Error(1)
}

func (m *MockRegistrationWorkflow) SaveEmploymentInfo(ctx context.Context, id string, info registration.EmploymentInfo) (*regapp.RegistrationResponse, error) {
	args := m.Called(ctx, id, info)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*regapp.RegistrationResponse), args.Error(1)
}

func (m *MockRegistrationWorkflow) SaveDocuments(ctx context.Context, id string, files []regapp.DocumentFile) (*regapp.DocumentsResponse, error) {
	args := m.Called(ctx, id, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*regapp.DocumentsResponse), args.Error(1)
}

func (m *MockRegistrationWorkflow) Submit(ctx context.Context, id string, declaration bool) (*regapp.RegistrationResponse, error) {
	args := m.Called(ctx, id, declaration)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*regapp.RegistrationResponse), args.Error(1)
}

func (m *MockRegistrationWorkflow) GetStatus(ctx context.Context, id string) (*regapp.StatusResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*regapp.StatusResponse), args.Error(1)
}

func (m *MockRegistrationWorkflow) Track(ctx context.Context, id, email string) (*regapp.RegistrationResponse, error) {
	args := m.Called(ctx, id, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*regapp.RegistrationResponse), args.Error(1)
}

func (m *MockRegistrationWorkflow) Prefill(ctx context.Context, id string) (map[string]any, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *MockRegistrationWorkflow) VerifyNIN(ctx context.Context, nin string) (*registration.VerificationResult, error) {
	args := m.Called(ctx, nin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registration.VerificationResult), args.Error(1)
}

// MockReviewWorkflow mocks ReviewWorkflow
type MockReviewWorkflow struct {
	mock.Mock
}

func (m *MockReviewWorkflow) decision(args mock.Arguments) (*regapp.DecisionResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*regapp.DecisionResponse), args.Error(1)
}

func (m *MockReviewWorkflow) Approve(ctx context.Context, id string, req regapp.DecisionRequest) (*regapp.DecisionResponse, error) {
	return m.decision(m.Called(ctx, id, req))
}

func (m *MockReviewWorkflow) Reject(ctx context.Context, id string, req regapp.DecisionRequest) (*regapp.DecisionResponse, error) {
	return m.decision(m.Called(ctx, id, req))
}

func (m *MockReviewWorkflow) RejectDocument(ctx context.Context, documentID uint64, req regapp.DecisionRequest) (*regapp.DecisionResponse, error) {
	return m.decision(m.Called(ctx, documentID, req))
}

func (m *MockReviewWorkflow) VerifyDocument(ctx context.Context, id string, req regapp.VerifyDocumentRequest) (*regapp.DecisionResponse, error) {
	return m.decision(m.Called(ctx, id, req))
}

func (m *MockReviewWorkflow) FlagIncomplete(ctx context.Context, id string, req regapp.DecisionRequest) (*regapp.DecisionResponse, error) {
	return m.decision(m.Called(ctx, id, req))
}

func (m *MockReviewWorkflow) ListRegistrations(ctx context.Context, status string, filter shared.Filter) (shared.Paginated[regapp.RegistrationResponse], error) {
	args := m.Called(ctx, status, filter)
	return args.Get(0).(shared.Paginated[regapp.RegistrationResponse]), args.Error(1)
}

func (m *MockReviewWorkflow) ListPendingDocuments(ctx context.Context, filter shared.Filter) (shared.Paginated[regapp.PendingDocumentResponse], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[regapp.PendingDocumentResponse]), args.Error(1)
}

func (m *MockReviewWorkflow) OpenDocument(ctx context.Context, id, kind string) (*regapp.DocumentContent, error) {
	args := m.Called(ctx, id, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*regapp.DocumentContent), args.Error(1)
}

// MockEmployeeReader mocks EmployeeReader
type MockEmployeeReader struct {
	mock.Mock
}

func (m *MockEmployeeReader) List(ctx context.Context, status string, filter shared.Filter) (shared.Paginated[empapp.EmployeeResponse], error) {
	args := m.Called(ctx, status, filter)
	return args.Get(0).(shared.Paginated[empapp.EmployeeResponse]), args.Error(1)
}

func (m *MockEmployeeReader) Get(ctx context.Context, employeeID string) (*empapp.EmployeeResponse, error) {
	args := m.Called(ctx, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*empapp.EmployeeResponse), args.Error(1)
}

func (m *MockEmployeeReader) DashboardStats(ctx context.Context) (*empapp.DashboardStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*empapp.DashboardStats), args.Error(1)
}

// MockRegistrationImporter mocks RegistrationImporter
type MockRegistrationImporter struct {
	mock.Mock
}

func (m *MockRegistrationImporter) Validate(ctx context.Context, r io.Reader) (*importer.ImportResult, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*importer.ImportResult), args.Error(1)
}

func (m *MockRegistrationImporter) Import(ctx context.Context, r io.Reader) (*importer.ImportResult, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*importer.ImportResult), args.Error(1)
}

// perform sends req through a single-route engine
func perform(method, route, target string, body io.Reader, h gin.HandlerFunc, headers ...string) *httptest.ResponseRecorder {
	r := gin.New()
	r.Handle(method, route, h)
	req := httptest.NewRequest(method, target, body)
	if body != nil && len(headers) == 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}

// decode unmarshals the envelope, keeping data raw
func decode(t *testing.T, w *httptest.ResponseRecorder) (dto.Response, json.RawMessage) {
	t.Helper()
	var env struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Response, env.Data
}
