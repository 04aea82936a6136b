package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/example/vetclinic/internal/application"
	"github.com/example/vetclinic/internal/http/views"
	"github.com/example/vetclinic/internal/persistence"
)

// PetService captures the pet operations the owner handler depends on.
type PetService interface {
	AddPet(ctx context.Context, principal application.Principal, input application.PetInput) (persistence.Pet, error)
	UpdatePet(ctx context.Context, principal application.Principal, petID string, input application.PetInput) (persistence.Pet, error)
	DeletePet(ctx context.Context, principal application.Principal, petID string) error
	GetPet(ctx context.Context, principal application.Principal, petID string) (persistence.Pet, error)
	ListPets(ctx context.Context, principal application.Principal) ([]persistence.Pet, error)
}

// OwnerAppointmentService captures the booking operations for owners.
type OwnerAppointmentService interface {
	Book(ctx context.Context, principal application.Principal, input application.BookAppointmentInput) (persistence.Appointment, error)
	ListForOwner(ctx context.Context, principal application.Principal) ([]persistence.Appointment, error)
}

// PetHistoryService serves a pet's medical history and prescriptions.
type PetHistoryService interface {
	ListHistory(ctx context.Context, principal application.Principal, petID string) ([]persistence.MedicalRecord, error)
	ListPrescriptions(ctx context.Context, principal application.Principal, petID string) ([]persistence.Prescription, error)
}

// OwnerInvoiceService serves an owner's invoices.
type OwnerInvoiceService interface {
	ListForOwner(ctx context.Context, principal application.Principal) ([]persistence.Invoice, error)
}

// OwnerHandler serves every pet owner facing page.
type OwnerHandler struct {
	pets         PetService
	appointments OwnerAppointmentService
	records      PetHistoryService
	invoices     OwnerInvoiceService
	responder    responder
	logger       *slog.Logger
}

// NewOwnerHandler wires the owner handler.
func NewOwnerHandler(pets PetService, appointments OwnerAppointmentService, records PetHistoryService, invoices OwnerInvoiceService, renderer *views.Renderer, logger *slog.Logger) *OwnerHandler {
	base := defaultLogger(logger)
	return &OwnerHandler{
		pets:         pets,
		appointments: appointments,
		records:      records,
		invoices:     invoices,
		responder:    newResponder(renderer, base),
		logger:       base,
	}
}

type ownerDashboardData struct {
	Pets         []persistence.Pet
	Appointments []persistence.Appointment
}

// Dashboard lists the owner's pets and appointments.
func (h *OwnerHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	pets, err := h.pets.ListPets(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	appointments, err := h.appointments.ListForOwner(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.renderPage(r.Context(), w, "dashboard_owner.html", pageData{
		Principal: &principal,
		Data:      ownerDashboardData{Pets: pets, Appointments: appointments},
	})
}

type petFormData struct {
	Heading string
	Action  string
}

// ShowAddPet renders the empty pet form.
func (h *OwnerHandler) ShowAddPet(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	h.responder.renderPage(r.Context(), w, "pet_form.html", pageData{
		Principal: &principal,
		Data:      petFormData{Heading: "Add a pet", Action: "/owner/pets/add"},
	})
}

// AddPet processes the pet creation form.
func (h *OwnerHandler) AddPet(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		h.responder.badRequest(w)
		return
	}

	input := petInputFromForm(r)
	if _, err := h.pets.AddPet(r.Context(), principal, input); err != nil {
		if vErr, ok := asValidationError(err); ok {
			h.responder.renderPage(r.Context(), w, "pet_form.html", pageData{
				Principal: &principal,
				Errors:    vErr.FieldErrors,
				Messages:  vErr.Messages,
				Form:      petFormValues(r),
				Data:      petFormData{Heading: "Add a pet", Action: "/owner/pets/add"},
			})
			return
		}
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.redirect(w, r, "/dashboard/pet-owner")
}

// ShowEditPet renders the pet form prefilled with the stored values.
func (h *OwnerHandler) ShowEditPet(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	petID := chi.URLParam(r, "id")

	pet, err := h.pets.GetPet(r.Context(), principal, petID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	form := map[string]string{
		"name":    pet.Name,
		"species": pet.Species,
		"breed":   pet.Breed,
		"sex":     pet.Sex,
		"notes":   pet.Notes,
	}
	if pet.Age != nil {
		form["age"] = strconv.Itoa(*pet.Age)
	}

	h.responder.renderPage(r.Context(), w, "pet_form.html", pageData{
		Principal: &principal,
		Form:      form,
		Data:      petFormData{Heading: "Edit " + pet.Name, Action: "/owner/pets/" + pet.ID + "/edit"},
	})
}

// EditPet processes the pet edit form.
func (h *OwnerHandler) EditPet(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	petID := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		h.responder.badRequest(w)
		return
	}

	input := petInputFromForm(r)
	if _, err := h.pets.UpdatePet(r.Context(), principal, petID, input); err != nil {
		if vErr, ok := asValidationError(err); ok {
			h.responder.renderPage(r.Context(), w, "pet_form.html", pageData{
				Principal: &principal,
				Errors:    vErr.FieldErrors,
				Messages:  vErr.Messages,
				Form:      petFormValues(r),
				Data:      petFormData{Heading: "Edit pet", Action: "/owner/pets/" + petID + "/edit"},
			})
			return
		}
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.redirect(w, r, "/dashboard/pet-owner")
}

// DeletePet removes a pet and returns to the dashboard.
func (h *OwnerHandler) DeletePet(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	petID := chi.URLParam(r, "id")

	if err := h.pets.DeletePet(r.Context(), principal, petID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.redirect(w, r, "/dashboard/pet-owner")
}

type petHistoryData struct {
	Pet     persistence.Pet
	Records []persistence.MedicalRecord
}

// History lists a pet's medical records.
func (h *OwnerHandler) History(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	petID := chi.URLParam(r, "id")

	pet, err := h.pets.GetPet(r.Context(), principal, petID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	records, err := h.records.ListHistory(r.Context(), principal, petID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.renderPage(r.Context(), w, "pet_history.html", pageData{
		Principal: &principal,
		Data:      petHistoryData{Pet: pet, Records: records},
	})
}

type petPrescriptionsData struct {
	Pet           persistence.Pet
	Prescriptions []persistence.Prescription
}

// Prescriptions lists a pet's prescriptions.
func (h *OwnerHandler) Prescriptions(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	petID := chi.URLParam(r, "id")

	pet, err := h.pets.GetPet(r.Context(), principal, petID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	prescriptions, err := h.records.ListPrescriptions(r.Context(), principal, petID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.renderPage(r.Context(), w, "pet_prescriptions.html", pageData{
		Principal: &principal,
		Data:      petPrescriptionsData{Pet: pet, Prescriptions: prescriptions},
	})
}

type ownerInvoicesData struct {
	Invoices []persistence.Invoice
}

// Invoices lists the owner's invoices.
func (h *OwnerHandler) Invoices(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	invoices, err := h.invoices.ListForOwner(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.renderPage(r.Context(), w, "invoices.html", pageData{
		Principal: &principal,
		Data:      ownerInvoicesData{Invoices: invoices},
	})
}

type bookAppointmentData struct {
	Pets []persistence.Pet
}

// ShowBook renders the booking form. An owner with no pets sees the blocking
// message instead of a usable pet list.
func (h *OwnerHandler) ShowBook(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	pets, err := h.pets.ListPets(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	data := pageData{
		Principal: &principal,
		Data:      bookAppointmentData{Pets: pets},
	}
	if len(pets) == 0 {
		data.Messages = []string{"Register a pet before booking an appointment."}
	}
	h.responder.renderPage(r.Context(), w, "book_appointment.html", data)
}

// Book processes the booking form.
func (h *OwnerHandler) Book(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		h.responder.badRequest(w)
		return
	}

	input := application.BookAppointmentInput{
		PetID:  r.PostFormValue("pet_id"),
		Date:   r.PostFormValue("date"),
		Time:   r.PostFormValue("time"),
		Reason: r.PostFormValue("reason"),
	}

	if _, err := h.appointments.Book(r.Context(), principal, input); err != nil {
		if vErr, ok := asValidationError(err); ok {
			pets, listErr := h.pets.ListPets(r.Context(), principal)
			if listErr != nil {
				h.responder.handleServiceError(r.Context(), w, listErr)
				return
			}
			h.responder.renderPage(r.Context(), w, "book_appointment.html", pageData{
				Principal: &principal,
				Errors:    vErr.FieldErrors,
				Messages:  vErr.Messages,
				Form: map[string]string{
					"pet_id": r.PostFormValue("pet_id"),
					"date":   r.PostFormValue("date"),
					"time":   r.PostFormValue("time"),
					"reason": r.PostFormValue("reason"),
				},
				Data: bookAppointmentData{Pets: pets},
			})
			return
		}
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.redirect(w, r, "/dashboard/pet-owner")
}

func petInputFromForm(r *http.Request) application.PetInput {
	return application.PetInput{
		Name:    r.PostFormValue("name"),
		Species: r.PostFormValue("species"),
		Breed:   r.PostFormValue("breed"),
		Age:     r.PostFormValue("age"),
		Sex:     r.PostFormValue("sex"),
		Notes:   r.PostFormValue("notes"),
	}
}

func petFormValues(r *http.Request) map[string]string {
	return map[string]string{
		"name":    r.PostFormValue("name"),
		"species": r.PostFormValue("species"),
		"breed":   r.PostFormValue("breed"),
		"age":     r.PostFormValue("age"),
		"sex":     r.PostFormValue("sex"),
		"notes":   r.PostFormValue("notes"),
	}
}
