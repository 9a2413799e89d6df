// Package http exposes the booking service as a JSON API.
package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"rentacar-backend/internal/availability"
	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/service"
)

type BookingHandler struct {
	svc service.BookingService
}

func NewBookingHandler(svc service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

// NewRouter builds the API router with logging and panic recovery.
func NewRouter(svc service.BookingService) *mux.Router {
	router := mux.NewRouter()
	router.Use(Recovery, Logging)
	RegisterBookingRoutes(router, NewBookingHandler(svc))
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	return router
}

// RegisterBookingRoutes registers the booking endpoints
func RegisterBookingRoutes(router *mux.Router, h *BookingHandler) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/quotes", h.Quote).Methods(http.MethodPost)
	api.HandleFunc("/availability", h.Availability).Methods(http.MethodGet)
	api.HandleFunc("/search", h.Search).Methods(http.MethodGet)
	api.HandleFunc("/bookings", h.CreateBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}", h.GetBooking).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id}/confirm", h.ConfirmBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/pickup", h.StartRental).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/return", h.CompleteRental).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/cancel", h.CancelBooking).Methods(http.MethodPost)
}

type quoteBody struct {
	GroupID          string                   `json:"group_id"`
	PickupLocationID string                   `json:"pickup_location_id"`
	ReturnLocationID string                   `json:"return_location_id"`
	PickupDate       string                   `json:"pickup_date"`
	ReturnDate       string                   `json:"return_date"`
	Extras           []service.ExtraSelection `json:"extras"`
	DiscountCode     string                   `json:"discount_code"`
}

func (b quoteBody) request() (service.QuoteRequest, error) {
	rng, err := domain.ParseDateRange(b.PickupDate, b.ReturnDate)
	if err != nil {
		return service.QuoteRequest{}, err
	}
	return service.QuoteRequest{
		GroupID:          b.GroupID,
		PickupLocationID: b.PickupLocationID,
		ReturnLocationID: b.ReturnLocationID,
		Range:            rng,
		Extras:           b.Extras,
		DiscountCode:     b.DiscountCode,
	}, nil
}

type createBookingBody struct {
	quoteBody
	CustomerID string `json:"customer_id"`
}

type inspectionBody struct {
	Mileage   int64            `json:"mileage"`
	FuelLevel domain.FuelLevel `json:"fuel_level"`
	Notes     string           `json:"notes"`
}

func (b inspectionBody) record() domain.InspectionRecord {
	return domain.InspectionRecord{Mileage: b.Mileage, FuelLevel: b.FuelLevel, Notes: b.Notes}
}

type returnBody struct {
	inspectionBody
	FuelCharge     decimal.Decimal `json:"fuel_charge"`
	CleaningCharge decimal.Decimal `json:"cleaning_charge"`
	DamageCharge   decimal.Decimal `json:"damage_charge"`
}

type cancelBody struct {
	ActorType string `json:"actor_type"`
	ActorID   string `json:"actor_id"`
	Reason    string `json:"reason"`
}

type bookingResponse struct {
	Booking *domain.Booking `json:"booking"`
	Events  []domain.Event  `json:"events,omitempty"`
}

type availabilityResponse struct {
	Available int              `json:"available"`
	Vehicles  []domain.Vehicle `json:"vehicles"`
}

func (h *BookingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var body quoteBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body")
		return
	}
	req, err := body.request()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	res, err := h.svc.Quote(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rng, err := domain.ParseDateRange(q.Get("pickup_date"), q.Get("return_date"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	vehicles, err := h.svc.FindAvailable(r.Context(), availability.Request{
		GroupID:    q.Get("group_id"),
		LocationID: q.Get("location_id"),
		Range:      rng,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, availabilityResponse{Available: len(vehicles), Vehicles: vehicles})
}

func (h *BookingHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rng, err := domain.ParseDateRange(q.Get("pickup_date"), q.Get("return_date"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	results, err := h.svc.Search(r.Context(), service.SearchRequest{
		PickupLocationID: q.Get("pickup_location_id"),
		ReturnLocationID: q.Get("return_location_id"),
		Range:            rng,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var body createBookingBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body")
		return
	}
	req, err := body.request()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	b, err := h.svc.CreateBooking(r.Context(), service.CreateBookingRequest{QuoteRequest: req, CustomerID: body.CustomerID})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bookingResponse{Booking: b})
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	b, evs, err := h.svc.GetBooking(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingResponse{Booking: b, Events: evs})
}

func (h *BookingHandler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.ConfirmBooking(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingResponse{Booking: b})
}

func (h *BookingHandler) StartRental(w http.ResponseWriter, r *http.Request) {
	var body inspectionBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body")
		return
	}
	b, err := h.svc.StartRental(r.Context(), mux.Vars(r)["id"], body.record())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingResponse{Booking: b})
}

func (h *BookingHandler) CompleteRental(w http.ResponseWriter, r *http.Request) {
	var body returnBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body")
		return
	}
	b, err := h.svc.CompleteRental(r.Context(), service.CompleteRentalRequest{
		BookingID:      mux.Vars(r)["id"],
		Return:         body.record(),
		FuelCharge:     body.FuelCharge,
		CleaningCharge: body.CleaningCharge,
		DamageCharge:   body.DamageCharge,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingResponse{Booking: b})
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	var body cancelBody
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body")
			return
		}
	}
	// system cancellations come from the job runner only
	if body.ActorType == domain.ActorSystem {
		writeServiceError(w, domain.NewValidationError(domain.ReasonInvalidActor, "actor type %q", body.ActorType))
		return
	}
	b, err := h.svc.CancelBooking(r.Context(), service.CancelRequest{
		BookingID: mux.Vars(r)["id"],
		ActorType: body.ActorType,
		ActorID:   body.ActorID,
		Reason:    body.Reason,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingResponse{Booking: b})
}
