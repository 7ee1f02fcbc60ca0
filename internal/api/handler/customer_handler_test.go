package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vidly/internal/api/handler"
	"vidly/internal/api/handler/dto"
	"vidly/internal/domain/customer"
	"vidly/internal/domain/membership"
	"vidly/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type MockCustomerService struct {
	mock.Mock
}

func (_m *MockCustomerService) CreateCustomer(ctx context.Context, in customer.CustomerInput) (*customer.Customer, error) {
	ret := _m.Called(ctx, in)
	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockCustomerService) GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	ret := _m.Called(ctx, customerID)
	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockCustomerService) ListCustomers(ctx context.Context) ([]*customer.Customer, error) {
	ret := _m.Called(ctx)
	var r0 []*customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockCustomerService) UpdateCustomer(ctx context.Context, customerID int64, in customer.CustomerInput) (*customer.Customer, error) {
	ret := _m.Called(ctx, customerID, in)
	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockCustomerService) DeleteCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	ret := _m.Called(ctx, customerID)
	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

var _ customer.CustomerService = (*MockCustomerService)(nil)

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func setupCustomerHandler() (*MockCustomerService, *handler.CustomerHandler) {
	svc := new(MockCustomerService)
	return svc, handler.NewCustomerHandler(svc, testLogger)
}

func TestCustomerHandler_ListCustomers(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc, h := setupCustomerHandler()
		svc.On("ListCustomers", mock.Anything).Return([]*customer.Customer{
			{ID: 1, Name: "John Smith", MembershipTypeID: 1, MembershipType: &membership.MembershipType{ID: 1, Name: "Pay as You Go"}},
			{ID: 2, Name: "Mary William", MembershipTypeID: 2},
		}, nil).Once()

		rec := httptest.NewRecorder()
		h.ListCustomers(rec, httptest.NewRequest(http.MethodGet, "/api/customers", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp []dto.CustomerResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Len(t, resp, 2)
		assert.Equal(t, "Pay as You Go", resp[0].MembershipType.Name)
		assert.Nil(t, resp[1].MembershipType)
	})

	t.Run("Empty list encodes as array", func(t *testing.T) {
		svc, h := setupCustomerHandler()
		svc.On("ListCustomers", mock.Anything).Return([]*customer.Customer{}, nil).Once()

		rec := httptest.NewRecorder()
		h.ListCustomers(rec, httptest.NewRequest(http.MethodGet, "/api/customers", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("Service Error", func(t *testing.T) {
		svc, h := setupCustomerHandler()
		svc.On("ListCustomers", mock.Anything).Return(nil, errors.New("db down")).Once()

		rec := httptest.NewRecorder()
		h.ListCustomers(rec, httptest.NewRequest(http.MethodGet, "/api/customers", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "INTERNAL_ERROR", decodeError(t, rec).Error.Code)
	})
}

func TestCustomerHandler_GetCustomer(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc, h := setupCustomerHandler()
		svc.On("GetCustomer", mock.Anything, int64(2)).Return(&customer.Customer{ID: 2, Name: "Mary William", MembershipTypeID: 2}, nil).Once()

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/customers/2", nil), "id", "2")
		rec := httptest.NewRecorder()
		h.GetCustomer(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.CustomerResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, int64(2), resp.ID)
	})

	t.Run("Not Found", func(t *testing.T) {
		svc, h := setupCustomerHandler()
		svc.On("GetCustomer", mock.Anything, int64(9)).Return(nil, customer.ErrNotFound).Once()

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/customers/9", nil), "id", "9")
		rec := httptest.NewRecorder()
		h.GetCustomer(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Error.Code)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		svc, h := setupCustomerHandler()

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/customers/abc", nil), "id", "abc")
		rec := httptest.NewRecorder()
		h.GetCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "GetCustomer", mock.Anything, mock.Anything)
	})
}

func TestCustomerHandler_CreateCustomer(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc, h := setupCustomerHandler()
		birth := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
		svc.On("CreateCustomer", mock.Anything, customer.CustomerInput{
			Name:                     "Mary William",
			BirthDate:                &birth,
			IsSubscribedToNewsletter: true,
			MembershipTypeID:         2,
		}).Return(&customer.Customer{ID: 12, Name: "Mary William", BirthDate: &birth, IsSubscribedToNewsletter: true, MembershipTypeID: 2}, nil).Once()

		body := jsonBody(t, map[string]any{
			"name": "Mary William", "birthDate": "1990-01-01", "isSubscribedToNewsletter": true, "membershipTypeId": 2,
		})
		rec := httptest.NewRecorder()
		h.CreateCustomer(rec, httptest.NewRequest(http.MethodPost, "/api/customers", body))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "/api/customers/12", rec.Header().Get("Location"))
		var resp dto.CustomerResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, int64(12), resp.ID)
		assert.Equal(t, "1990-01-01", *resp.BirthDate)
		svc.AssertExpectations(t)
	})

	t.Run("Validation errors are listed per field", func(t *testing.T) {
		svc, h := setupCustomerHandler()
		verr := apperrors.ValidationErrors{}.
			Add(customer.FieldName, customer.MsgNameRequired).
			Add(customer.FieldBirthDate, customer.MsgBirthDateRequired)
		svc.On("CreateCustomer", mock.Anything, mock.Anything).Return(nil, verr).Once()

		body := jsonBody(t, map[string]any{"name": "", "membershipTypeId": 3})
		rec := httptest.NewRecorder()
		h.CreateCustomer(rec, httptest.NewRequest(http.MethodPost, "/api/customers", body))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		assert.Equal(t, []dto.FieldError{
			{Field: "name", Message: "name is required"},
			{Field: "birthDate", Message: "birth date required"},
		}, resp.Errors)
	})

	t.Run("Single validation error populates field", func(t *testing.T) {
		svc, h := setupCustomerHandler()
		svc.On("CreateCustomer", mock.Anything, mock.Anything).
			Return(nil, apperrors.ValidationErrors{}.Add(customer.FieldBirthDate, customer.MsgMustBeAdult)).Once()

		body := jsonBody(t, map[string]any{"name": "Teen", "birthDate": "2010-01-01", "membershipTypeId": 3})
		rec := httptest.NewRecorder()
		h.CreateCustomer(rec, httptest.NewRequest(http.MethodPost, "/api/customers", body))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, "birthDate", resp.Error.Field)
		assert.Equal(t, "must be at least 18", resp.Error.Message)
	})

	t.Run("Name with a NUL byte is a validation error", func(t *testing.T) {
		svc, h := setupCustomerHandler()
		today := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
		svc.On("CreateCustomer", mock.Anything, mock.MatchedBy(func(in customer.CustomerInput) bool {
			return in.Name == "Mary\x00William"
		})).Return(nil, customer.Validate(&customer.Customer{Name: "Mary\x00William", MembershipTypeID: membership.PayAsYouGo}, today).Err()).Once()

		body := jsonBody(t, map[string]any{"name": "Mary\u0000William", "membershipTypeId": 1})
		rec := httptest.NewRecorder()
		h.CreateCustomer(rec, httptest.NewRequest(http.MethodPost, "/api/customers", body))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		assert.Equal(t, "name", resp.Error.Field)
		assert.Equal(t, "name contains invalid characters", resp.Error.Message)
		svc.AssertExpectations(t)
	})

	t.Run("Malformed birth date", func(t *testing.T) {
		svc, h := setupCustomerHandler()

		body := jsonBody(t, map[string]any{"name": "X", "birthDate": "yesterday", "membershipTypeId": 1})
		rec := httptest.NewRecorder()
		h.CreateCustomer(rec, httptest.NewRequest(http.MethodPost, "/api/customers", body))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "birthDate", decodeError(t, rec).Error.Field)
		svc.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything)
	})

	t.Run("Unknown field", func(t *testing.T) {
		svc, h := setupCustomerHandler()

		body := jsonBody(t, map[string]any{"name": "X", "address": "nowhere"})
		rec := httptest.NewRecorder()
		h.CreateCustomer(rec, httptest.NewRequest(http.MethodPost, "/api/customers", body))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_ARGUMENT", decodeError(t, rec).Error.Code)
		svc.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything)
	})
}

func TestCustomerHandler_UpdateCustomer(t *testing.T) {
	payload := map[string]any{"name": "John Smith", "membershipTypeId": 1}
	in := customer.CustomerInput{Name: "John Smith", MembershipTypeID: 1}

	t.Run("Success with zero body id", func(t *testing.T) {
		svc, h := setupCustomerHandler()
		svc.On("UpdateCustomer", mock.Anything, int64(1), in).Return(&customer.Customer{ID: 1}, nil).Once()

		req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/customers/1", jsonBody(t, payload)), "id", "1")
		rec := httptest.NewRecorder()
		h.UpdateCustomer(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("Success with matching body id", func(t *testing.T) {
		svc, h := setupCustomerHandler()
		svc.On("UpdateCustomer", mock.Anything, int64(1), in).Return(&customer.Customer{ID: 1}, nil).Once()

		body := jsonBody(t, map[string]any{"id": 1, "name": "John Smith", "membershipTypeId": 1})
		req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/customers/1", body), "id", "1")
		rec := httptest.NewRecorder()
		h.UpdateCustomer(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("Mismatched body id", func(t *testing.T) {
		svc, h := setupCustomerHandler()

		body := jsonBody(t, map[string]any{"id": 2, "name": "John Smith", "membershipTypeId": 1})
		req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/customers/1", body), "id", "1")
		rec := httptest.NewRecorder()
		h.UpdateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_ARGUMENT", decodeError(t, rec).Error.Code)
		svc.AssertNotCalled(t, "UpdateCustomer", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Not Found", func(t *testing.T) {
		svc, h := setupCustomerHandler()
		svc.On("UpdateCustomer", mock.Anything, int64(7), in).Return(nil, customer.ErrNotFound).Once()

		req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/customers/7", jsonBody(t, payload)), "id", "7")
		rec := httptest.NewRecorder()
		h.UpdateCustomer(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Conflict", func(t *testing.T) {
		svc, h := setupCustomerHandler()
		svc.On("UpdateCustomer", mock.Anything, int64(7), in).Return(nil, apperrors.ErrConflict).Once()

		req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/customers/7", jsonBody(t, payload)), "id", "7")
		rec := httptest.NewRecorder()
		h.UpdateCustomer(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Store fault is surfaced", func(t *testing.T) {
		svc, h := setupCustomerHandler()
		svc.On("UpdateCustomer", mock.Anything, int64(7), in).Return(nil, apperrors.ErrDatabase).Once()

		req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/customers/7", jsonBody(t, payload)), "id", "7")
		rec := httptest.NewRecorder()
		h.UpdateCustomer(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestCustomerHandler_DeleteCustomer(t *testing.T) {
	t.Run("Success returns removed record", func(t *testing.T) {
		svc, h := setupCustomerHandler()
		svc.On("DeleteCustomer", mock.Anything, int64(3)).Return(&customer.Customer{ID: 3, Name: "Gone", MembershipTypeID: 1}, nil).Once()

		req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/customers/3", nil), "id", "3")
		rec := httptest.NewRecorder()
		h.DeleteCustomer(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.CustomerResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "Gone", resp.Name)
	})

	t.Run("Not Found", func(t *testing.T) {
		svc, h := setupCustomerHandler()
		svc.On("DeleteCustomer", mock.Anything, int64(3)).Return(nil, customer.ErrNotFound).Once()

		req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/customers/3", nil), "id", "3")
		rec := httptest.NewRecorder()
		h.DeleteCustomer(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestNewCustomerHandler_Panics(t *testing.T) {
	assert.Panics(t, func() { handler.NewCustomerHandler(nil, testLogger) })
	assert.Panics(t, func() { handler.NewCustomerHandler(new(MockCustomerService), nil) })
}
