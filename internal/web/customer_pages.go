package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vidly/internal/domain/customer"
	"vidly/internal/domain/membership"
	"vidly/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
)

const (
	customersPath   = "/customers"
	customerIDParam = "id"

	msgInvalidBirthDate      = "birth date must be a valid date"
	msgInvalidMembershipType = "membership type is required"
	msgInvalidCustomerID     = "The submitted customer id is not valid."
)

// CustomerPages serves the browser-facing customer screens.
type CustomerPages struct {
	customers   customer.CustomerService
	memberships membership.Service
	renderer    *Renderer
	logger      *slog.Logger
}

func NewCustomerPages(customers customer.CustomerService, memberships membership.Service, renderer *Renderer, logger *slog.Logger) *CustomerPages {
	if customers == nil || memberships == nil {
		panic("customer pages need both customer and membership services")
	}
	if renderer == nil {
		panic("renderer cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &CustomerPages{
		customers:   customers,
		memberships: memberships,
		renderer:    renderer,
		logger:      logger.With("component", "CustomerPages"),
	}
}

func (p *CustomerPages) Routes(r chi.Router) {
	r.Route(customersPath, func(r chi.Router) {
		r.Get("/", p.Index)
		r.Get("/new", p.New)
		r.Post("/save", p.Save)
		r.Get("/{id}", p.Detail)
		r.Get("/{id}/edit", p.Edit)
	})
}

type customerIndexView struct {
	Customers []*customer.Customer
}

type customerDetailView struct {
	Customer *customer.Customer
}

// customerForm holds the submitted values as the user typed them so an
// invalid form can be shown again unchanged.
type customerForm struct {
	ID                       int64
	Name                     string
	BirthDate                string
	IsSubscribedToNewsletter bool
	MembershipTypeID         membership.TypeID
}

type customerFormView struct {
	Title           string
	Customer        customerForm
	MembershipTypes []*membership.MembershipType
	Errors          map[string]string
}

func (p *CustomerPages) Index(w http.ResponseWriter, r *http.Request) {
	customers, err := p.customers.ListCustomers(r.Context())
	if err != nil {
		p.serverError(w, r, err)
		return
	}
	p.render(w, r, http.StatusOK, pageCustomersIndex, customerIndexView{Customers: customers})
}

func (p *CustomerPages) Detail(w http.ResponseWriter, r *http.Request) {
	cust, ok := p.loadCustomer(w, r)
	if !ok {
		return
	}
	p.render(w, r, http.StatusOK, pageCustomersDetail, customerDetailView{Customer: cust})
}

func (p *CustomerPages) New(w http.ResponseWriter, r *http.Request) {
	p.renderForm(w, r, http.StatusOK, customerForm{}, nil)
}

func (p *CustomerPages) Edit(w http.ResponseWriter, r *http.Request) {
	cust, ok := p.loadCustomer(w, r)
	if !ok {
		return
	}
	form := customerForm{
		ID:                       cust.ID,
		Name:                     cust.Name,
		BirthDate:                formatDate(cust.BirthDate),
		IsSubscribedToNewsletter: cust.IsSubscribedToNewsletter,
		MembershipTypeID:         cust.MembershipTypeID,
	}
	p.renderForm(w, r, http.StatusOK, form, nil)
}

// Save creates the customer when the form carries no id and overwrites the
// existing record otherwise.
func (p *CustomerPages) Save(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		p.logger.WarnContext(r.Context(), "Failed to parse customer form", slog.Any("error", err))
		p.renderError(w, r, http.StatusBadRequest, "The submitted form could not be read.")
		return
	}

	id, err := parseFormID(r)
	if err != nil {
		p.logger.WarnContext(r.Context(), "Rejected customer form with malformed id", slog.Any("error", err))
		p.renderError(w, r, http.StatusBadRequest, msgInvalidCustomerID)
		return
	}

	form, in, fieldErrs := parseCustomerForm(r, id)
	if fieldErrs != nil {
		p.renderForm(w, r, http.StatusBadRequest, form, fieldErrs)
		return
	}

	if form.ID == 0 {
		_, err = p.customers.CreateCustomer(r.Context(), in)
	} else {
		_, err = p.customers.UpdateCustomer(r.Context(), form.ID, in)
	}
	if err != nil {
		if fields := apperrors.Fields(err); len(fields) > 0 {
			p.renderForm(w, r, http.StatusBadRequest, form, errorMap(fields))
			return
		}
		if errors.Is(err, apperrors.ErrNotFound) {
			p.notFound(w, r)
			return
		}
		p.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, customersPath, http.StatusSeeOther)
}

func (p *CustomerPages) loadCustomer(w http.ResponseWriter, r *http.Request) (*customer.Customer, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, customerIDParam), 10, 64)
	if err != nil || id <= 0 {
		p.notFound(w, r)
		return nil, false
	}

	cust, err := p.customers.GetCustomer(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			p.notFound(w, r)
		} else {
			p.serverError(w, r, err)
		}
		return nil, false
	}
	return cust, true
}

func (p *CustomerPages) renderForm(w http.ResponseWriter, r *http.Request, status int, form customerForm, fieldErrs map[string]string) {
	types, err := p.memberships.ListMembershipTypes(r.Context())
	if err != nil {
		p.serverError(w, r, err)
		return
	}

	title := "New Customer"
	if form.ID != 0 {
		title = "Edit Customer"
	}
	p.render(w, r, status, pageCustomersForm, customerFormView{
		Title:           title,
		Customer:        form,
		MembershipTypes: types,
		Errors:          fieldErrs,
	})
}

func (p *CustomerPages) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	if err := p.renderer.Render(w, status, page, data); err != nil {
		p.logger.ErrorContext(r.Context(), "Failed to render page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (p *CustomerPages) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	p.render(w, r, status, pageError, errorView{Status: http.StatusText(status), Message: message})
}

func (p *CustomerPages) notFound(w http.ResponseWriter, r *http.Request) {
	p.renderError(w, r, http.StatusNotFound, "The customer you are looking for does not exist.")
}

func (p *CustomerPages) serverError(w http.ResponseWriter, r *http.Request, err error) {
	p.logger.ErrorContext(r.Context(), "Customer page failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	p.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again later.")
}

// parseFormID reads the hidden id field. Missing means a new customer.
func parseFormID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.PostForm.Get("id"))
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if id < 0 {
		return 0, fmt.Errorf("negative customer id %d", id)
	}
	return id, nil
}

// parseCustomerForm reads the posted fields. Values that cannot be converted
// are reported per field; the remaining rules run in the service.
func parseCustomerForm(r *http.Request, id int64) (customerForm, customer.CustomerInput, map[string]string) {
	form := customerForm{
		ID:                       id,
		Name:                     r.PostForm.Get("name"),
		BirthDate:                strings.TrimSpace(r.PostForm.Get("birthDate")),
		IsSubscribedToNewsletter: isChecked(r.PostForm.Get("isSubscribedToNewsletter")),
	}
	var errs apperrors.ValidationErrors

	typeID, err := strconv.ParseUint(strings.TrimSpace(r.PostForm.Get("membershipTypeId")), 10, 8)
	if err != nil {
		errs = errs.Add(customer.FieldMembershipTypeID, msgInvalidMembershipType)
	}
	form.MembershipTypeID = membership.TypeID(typeID)

	in := customer.CustomerInput{
		Name:                     form.Name,
		IsSubscribedToNewsletter: form.IsSubscribedToNewsletter,
		MembershipTypeID:         form.MembershipTypeID,
	}
	if form.BirthDate != "" {
		d, err := time.Parse(dateLayout, form.BirthDate)
		if err != nil {
			errs = errs.Add(customer.FieldBirthDate, msgInvalidBirthDate)
		} else {
			in.BirthDate = &d
		}
	}

	if len(errs) > 0 {
		return form, in, errorMap(errs)
	}
	return form, in, nil
}

func isChecked(v string) bool {
	switch strings.ToLower(v) {
	case "true", "on", "1":
		return true
	}
	return false
}

// errorMap keeps the first message reported for each field.
func errorMap(fields []*apperrors.ValidationError) map[string]string {
	m := make(map[string]string, len(fields))
	for _, f := range fields {
		if _, seen := m[f.Field]; !seen {
			m[f.Field] = f.Message
		}
	}
	return m
}
