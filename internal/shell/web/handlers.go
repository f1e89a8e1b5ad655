// Package web serves the server-rendered property management UI.
package web

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/artpar/aptmgr/internal/core/domain"
	"github.com/artpar/aptmgr/internal/core/paging"
	"github.com/artpar/aptmgr/internal/core/validation"
	"github.com/artpar/aptmgr/internal/shell/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

// =============================================================================
// Handler
// =============================================================================

// Handler provides the HTTP handlers for the web UI.
type Handler struct {
	store    store.Store
	sessions sessions.Store
	tmpl     *template.Template
	logger   *slog.Logger
}

// NewHandler creates a new web handler with parsed templates.
func NewHandler(s store.Store, sessionStore sessions.Store, logger *slog.Logger) (*Handler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &Handler{
		store:    s,
		sessions: sessionStore,
		tmpl:     tmpl,
		logger:   logger,
	}, nil
}

// Routes returns the router with all routes configured. Everything except
// sign-in and sign-out sits behind the session guard.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(h.requestID)
	r.Use(h.recoverer)

	r.Get("/users/signin", h.handleSignInForm)
	r.Post("/users/signin", h.handleSignIn)
	r.Get("/users/signout", h.handleSignOut)
	r.Post("/users/signout", h.handleSignOut)

	r.Group(func(r chi.Router) {
		r.Use(h.requireSignIn)

		r.Get("/", h.handleIndex)

		r.Get("/apartments", h.handleListApartments)
		r.Get("/apartments/new", h.handleNewApartmentForm)
		r.Post("/apartments/new", h.handleCreateApartment)
		r.Get("/apartments/{id}/edit", h.handleEditApartmentForm)
		r.Post("/apartments/{id}/edit", h.handleUpdateApartment)
		r.Post("/apartments/{id}/delete", h.handleDeleteApartment)
		r.Get("/apartments/{id}/tenant/new", h.handleNewTenantForm)
		r.Post("/apartments/{id}/tenant/new", h.handleCreateTenant)

		r.Get("/tenants", h.handleListTenants)
		r.Get("/tenants/{id}/edit", h.handleEditTenantForm)
		r.Post("/tenants/{id}/edit", h.handleUpdateTenant)
		r.Post("/tenants/{id}/delete", h.handleDeleteTenant)
	})

	r.NotFound(h.handleNotFound)

	return r
}

// =============================================================================
// Middleware
// =============================================================================

// requestID tags every response with an X-Request-ID for log correlation.
func (h *Handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r)
	})
}

// recoverer turns panics into a generic notice and a redirect to the
// apartment listing. Internal detail never reaches the browser.
func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.Error("panic recovered", "panic", rec, "path", r.URL.Path)
				h.flash(w, r, noticeError, "An unexpected error occurred. Please try again.")
				http.Redirect(w, r, "/apartments", http.StatusSeeOther)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// serverFault logs a store-level failure and degrades to the generic notice.
func (h *Handler) serverFault(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.Error(op, "error", err)
	h.flash(w, r, noticeError, "An unexpected error occurred. Please try again.")
	http.Redirect(w, r, "/apartments", http.StatusSeeOther)
}

func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	h.flash(w, r, noticeError, "The page you requested was not found.")
	http.Redirect(w, r, "/apartments", http.StatusFound)
}

// pathID parses the {id} route parameter.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// =============================================================================
// Sign In / Sign Out
// =============================================================================

type signInPage struct {
	basePage
	Next string
}

func (h *Handler) handleSignInForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "signin.html", signInPage{
		basePage: h.newBasePage(w, r, "Sign In"),
		Next:     r.URL.Query().Get("next"),
	})
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	user, err := h.store.FindUserByUsername(r.Context(), username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.serverFault(w, r, "find user failed", err)
		return
	}

	// One undifferentiated message for unknown usernames and wrong passwords
	// alike, so the form cannot be used to enumerate accounts.
	if user == nil || !user.CheckPassword(password) {
		h.flash(w, r, noticeError, "Invalid username or password.")
		h.render(w, r, "signin.html", signInPage{
			basePage: h.newBasePage(w, r, "Sign In"),
			Next:     r.PostFormValue("next"),
		})
		return
	}

	sess := h.session(r)
	sess.Flashes() // drop notices queued before authentication
	sess.Values[usernameKey] = user.Username
	sess.AddFlash(Notice{Level: noticeSuccess, Message: "Welcome!"})
	h.saveSession(w, r, sess)

	next := r.PostFormValue("next")
	if next == "" {
		next = r.URL.Query().Get("next")
	}
	if !safeReturnPath(next) {
		next = "/apartments"
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	sess := h.session(r)
	sess.Values = make(map[any]any) // clears identity and any queued notices
	sess.AddFlash(Notice{Level: noticeSuccess, Message: "You have been logged out."})
	h.saveSession(w, r, sess)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/apartments", http.StatusFound)
}

// =============================================================================
// Apartment Handlers
// =============================================================================

type apartmentsPage struct {
	basePage
	Apartments []domain.Apartment
	Page       int
	TotalPages int
}

func (h *Handler) handleListApartments(w http.ResponseWriter, r *http.Request) {
	apartments, err := h.store.ListApartments(r.Context())
	if err != nil {
		h.serverFault(w, r, "list apartments failed", err)
		return
	}

	page, ok := paging.ParsePage(r.URL.Query().Get("page"))
	if !ok {
		h.flash(w, r, noticeError, "Invalid page number, showing page 1.")
		page = 1
	}

	paged, ok := paging.Paginate(apartments, page)
	if !ok {
		h.flash(w, r, noticeError, "Invalid page number, showing page 1.")
		http.Redirect(w, r, "/apartments?page=1", http.StatusFound)
		return
	}

	h.render(w, r, "apartments.html", apartmentsPage{
		basePage:   h.newBasePage(w, r, "Apartments"),
		Apartments: paged.Items,
		Page:       paged.Number,
		TotalPages: paged.TotalPages,
	})
}

type apartmentFormPage struct {
	basePage
	Action       string
	UnitNumber   string
	BuildingName string
	Rent         string
}

func (h *Handler) renderApartmentForm(w http.ResponseWriter, r *http.Request, title, action string, form validation.ApartmentForm) {
	h.render(w, r, "apartment_form.html", apartmentFormPage{
		basePage:     h.newBasePage(w, r, title),
		Action:       action,
		UnitNumber:   form.UnitNumber,
		BuildingName: form.BuildingName,
		Rent:         form.Rent,
	})
}

// apartmentFormFromRequest extracts and canonicalizes the submitted fields.
func apartmentFormFromRequest(r *http.Request) validation.ApartmentForm {
	return validation.ApartmentForm{
		UnitNumber:   strings.TrimSpace(r.PostFormValue("unit_number")),
		BuildingName: domain.CanonicalBuildingName(r.PostFormValue("building_name")),
		Rent:         strings.TrimSpace(r.PostFormValue("rent")),
	}
}

func (h *Handler) handleNewApartmentForm(w http.ResponseWriter, r *http.Request) {
	h.renderApartmentForm(w, r, "New Apartment", "/apartments/new", validation.ApartmentForm{})
}

func (h *Handler) handleCreateApartment(w http.ResponseWriter, r *http.Request) {
	form := apartmentFormFromRequest(r)

	errs := validation.ValidateApartmentForm(r.Context(), h.store, form, 0)
	if len(errs) > 0 {
		h.flashErrors(w, r, errs)
		h.renderApartmentForm(w, r, "New Apartment", "/apartments/new", form)
		return
	}

	rent, _ := strconv.ParseFloat(form.Rent, 64) // validated above
	apt := &domain.Apartment{UnitNumber: form.UnitNumber, BuildingName: form.BuildingName, Rent: rent}
	if err := h.store.CreateApartment(r.Context(), apt); err != nil {
		if errors.Is(err, store.ErrDuplicateApartment) {
			// The constraint caught a race the pre-check missed.
			h.flashErrors(w, r, []string{"An apartment with that unit and building already exists."})
			h.renderApartmentForm(w, r, "New Apartment", "/apartments/new", form)
			return
		}
		h.serverFault(w, r, "create apartment failed", err)
		return
	}

	h.flash(w, r, noticeSuccess, "Apartment created successfully!")
	http.Redirect(w, r, "/apartments", http.StatusSeeOther)
}

func (h *Handler) handleEditApartmentForm(w http.ResponseWriter, r *http.Request) {
	apt, ok := h.findApartmentOrRedirect(w, r)
	if !ok {
		return
	}

	action := fmt.Sprintf("/apartments/%d/edit", apt.ID)
	h.renderApartmentForm(w, r, "Edit Apartment", action, validation.ApartmentForm{
		UnitNumber:   apt.UnitNumber,
		BuildingName: apt.BuildingName,
		Rent:         strconv.FormatFloat(apt.Rent, 'f', 2, 64),
	})
}

func (h *Handler) handleUpdateApartment(w http.ResponseWriter, r *http.Request) {
	apt, ok := h.findApartmentOrRedirect(w, r)
	if !ok {
		return
	}

	form := apartmentFormFromRequest(r)
	action := fmt.Sprintf("/apartments/%d/edit", apt.ID)

	errs := validation.ValidateApartmentForm(r.Context(), h.store, form, apt.ID)
	if len(errs) > 0 {
		h.flashErrors(w, r, errs)
		h.renderApartmentForm(w, r, "Edit Apartment", action, form)
		return
	}

	rent, _ := strconv.ParseFloat(form.Rent, 64)
	updated := &domain.Apartment{ID: apt.ID, UnitNumber: form.UnitNumber, BuildingName: form.BuildingName, Rent: rent}
	if err := h.store.UpdateApartment(r.Context(), updated); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateApartment):
			h.flashErrors(w, r, []string{"An apartment with that unit and building already exists."})
			h.renderApartmentForm(w, r, "Edit Apartment", action, form)
		case errors.Is(err, store.ErrNotFound):
			h.flash(w, r, noticeError, "Apartment not found.")
			http.Redirect(w, r, "/apartments", http.StatusSeeOther)
		default:
			h.serverFault(w, r, "update apartment failed", err)
		}
		return
	}

	h.flash(w, r, noticeSuccess, "Apartment updated successfully!")
	http.Redirect(w, r, "/apartments", http.StatusSeeOther)
}

func (h *Handler) handleDeleteApartment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.flash(w, r, noticeError, "Apartment not found.")
		http.Redirect(w, r, "/apartments", http.StatusSeeOther)
		return
	}

	if err := h.store.DeleteApartment(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.flash(w, r, noticeError, "Apartment not found.")
			http.Redirect(w, r, "/apartments", http.StatusSeeOther)
			return
		}
		h.serverFault(w, r, "delete apartment failed", err)
		return
	}

	h.flash(w, r, noticeSuccess, "Apartment deleted successfully!")
	http.Redirect(w, r, "/apartments", http.StatusSeeOther)
}

// findApartmentOrRedirect loads the apartment named by {id}, or flashes a
// not-found notice and redirects to the apartment listing.
func (h *Handler) findApartmentOrRedirect(w http.ResponseWriter, r *http.Request) (*domain.Apartment, bool) {
	id, err := pathID(r)
	if err == nil {
		var apt *domain.Apartment
		apt, err = h.store.FindApartment(r.Context(), id)
		if err == nil {
			return apt, true
		}
		if !errors.Is(err, store.ErrNotFound) {
			h.serverFault(w, r, "find apartment failed", err)
			return nil, false
		}
	}

	h.flash(w, r, noticeError, "Apartment not found.")
	http.Redirect(w, r, "/apartments", http.StatusFound)
	return nil, false
}

// =============================================================================
// Tenant Handlers
// =============================================================================

type tenantsPage struct {
	basePage
	Tenants    []domain.Tenant
	Page       int
	TotalPages int
}

func (h *Handler) handleListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.store.ListTenants(r.Context())
	if err != nil {
		h.serverFault(w, r, "list tenants failed", err)
		return
	}

	page, ok := paging.ParsePage(r.URL.Query().Get("page"))
	if !ok {
		h.flash(w, r, noticeError, "Invalid page number, showing page 1.")
		page = 1
	}

	paged, ok := paging.Paginate(tenants, page)
	if !ok {
		h.flash(w, r, noticeError, "Invalid page number, showing page 1.")
		http.Redirect(w, r, "/tenants?page=1", http.StatusFound)
		return
	}

	h.render(w, r, "tenants.html", tenantsPage{
		basePage:   h.newBasePage(w, r, "Tenants"),
		Tenants:    paged.Items,
		Page:       paged.Number,
		TotalPages: paged.TotalPages,
	})
}

type tenantFormPage struct {
	basePage
	Action       string
	Name         string
	UnitNumber   string
	BuildingName string
}

func (h *Handler) handleNewTenantForm(w http.ResponseWriter, r *http.Request) {
	apt, ok := h.findApartmentOrRedirect(w, r)
	if !ok {
		return
	}

	h.render(w, r, "tenant_form.html", tenantFormPage{
		basePage:     h.newBasePage(w, r, "New Tenant"),
		Action:       fmt.Sprintf("/apartments/%d/tenant/new", apt.ID),
		UnitNumber:   apt.UnitNumber,
		BuildingName: apt.BuildingName,
	})
}

func (h *Handler) handleCreateTenant(w http.ResponseWriter, r *http.Request) {
	apt, ok := h.findApartmentOrRedirect(w, r)
	if !ok {
		return
	}

	name := strings.TrimSpace(r.PostFormValue("name"))

	errs := validation.ValidateTenantForm(validation.TenantForm{Name: name, ApartmentID: apt.ID})
	if len(errs) > 0 {
		h.flashErrors(w, r, errs)
		h.render(w, r, "tenant_form.html", tenantFormPage{
			basePage:     h.newBasePage(w, r, "New Tenant"),
			Action:       fmt.Sprintf("/apartments/%d/tenant/new", apt.ID),
			Name:         name,
			UnitNumber:   apt.UnitNumber,
			BuildingName: apt.BuildingName,
		})
		return
	}

	tenant := &domain.Tenant{Name: name, ApartmentID: apt.ID}
	if err := h.store.CreateTenant(r.Context(), tenant); err != nil {
		if errors.Is(err, store.ErrForeignKey) {
			// Apartment deleted between the lookup and the insert.
			h.flash(w, r, noticeError, "Apartment not found.")
			http.Redirect(w, r, "/apartments", http.StatusSeeOther)
			return
		}
		h.serverFault(w, r, "create tenant failed", err)
		return
	}

	h.flash(w, r, noticeSuccess, "Tenant added successfully!")
	http.Redirect(w, r, "/apartments", http.StatusSeeOther)
}

func (h *Handler) handleEditTenantForm(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.findTenantOrRedirect(w, r)
	if !ok {
		return
	}

	h.render(w, r, "tenant_form.html", tenantFormPage{
		basePage:     h.newBasePage(w, r, "Edit Tenant"),
		Action:       fmt.Sprintf("/tenants/%d/edit", tenant.ID),
		Name:         tenant.Name,
		UnitNumber:   tenant.UnitNumber,
		BuildingName: tenant.BuildingName,
	})
}

func (h *Handler) handleUpdateTenant(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.findTenantOrRedirect(w, r)
	if !ok {
		return
	}

	name := strings.TrimSpace(r.PostFormValue("name"))

	errs := validation.ValidateTenantForm(validation.TenantForm{Name: name, ApartmentID: tenant.ApartmentID})
	if len(errs) > 0 {
		h.flashErrors(w, r, errs)
		h.render(w, r, "tenant_form.html", tenantFormPage{
			basePage:     h.newBasePage(w, r, "Edit Tenant"),
			Action:       fmt.Sprintf("/tenants/%d/edit", tenant.ID),
			Name:         name,
			UnitNumber:   tenant.UnitNumber,
			BuildingName: tenant.BuildingName,
		})
		return
	}

	if err := h.store.UpdateTenant(r.Context(), tenant.ID, name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.flash(w, r, noticeError, "Tenant not found.")
			http.Redirect(w, r, "/tenants", http.StatusSeeOther)
			return
		}
		h.serverFault(w, r, "update tenant failed", err)
		return
	}

	h.flash(w, r, noticeSuccess, "Tenant updated successfully!")
	http.Redirect(w, r, "/tenants", http.StatusSeeOther)
}

func (h *Handler) handleDeleteTenant(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.flash(w, r, noticeError, "Tenant not found.")
		http.Redirect(w, r, "/tenants", http.StatusSeeOther)
		return
	}

	if err := h.store.DeleteTenant(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.flash(w, r, noticeError, "Tenant not found.")
			http.Redirect(w, r, "/tenants", http.StatusSeeOther)
			return
		}
		h.serverFault(w, r, "delete tenant failed", err)
		return
	}

	h.flash(w, r, noticeSuccess, "Tenant deleted successfully!")
	http.Redirect(w, r, "/tenants", http.StatusSeeOther)
}

// findTenantOrRedirect loads the tenant named by {id}, or flashes a not-found
// notice and redirects to the tenant listing.
func (h *Handler) findTenantOrRedirect(w http.ResponseWriter, r *http.Request) (*domain.Tenant, bool) {
	id, err := pathID(r)
	if err == nil {
		var tenant *domain.Tenant
		tenant, err = h.store.FindTenant(r.Context(), id)
		if err == nil {
			return tenant, true
		}
		if !errors.Is(err, store.ErrNotFound) {
			h.serverFault(w, r, "find tenant failed", err)
			return nil, false
		}
	}

	h.flash(w, r, noticeError, "Tenant not found.")
	http.Redirect(w, r, "/tenants", http.StatusFound)
	return nil, false
}
