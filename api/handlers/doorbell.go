package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jonasfh/picobell-api/api"
	"github.com/jonasfh/picobell-api/config"
	"github.com/jonasfh/picobell-api/databases"
)

// Doorbell exported for testing purposes
type Doorbell struct {
	ADB        databases.ApartmentDatabase
	EDB        databases.DoorbellEventDatabase
	LDB        databases.UserApartmentDatabase
	Dispatcher Dispatcher
	Window     time.Duration
}

type ringResponse struct {
	Status      string `json:"status"`
	DeviceCount int    `json:"device_count"`
}

type statusResponse struct {
	Open bool `json:"open"`
}

type openRequest struct {
	ApartmentID string `json:"apartment_id"`
}

type openResponse struct {
	Message string `json:"message"`
	EventID string `json:"event_id"`
}

// RingHandler records a ring from the physical unit and fans notifications
// out to everyone linked to the apartment. The unit gets its 200 as soon as
// the event is durably created and dispatch has been attempted; push
// failures never fail the ring.
func (d Doorbell) RingHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := api.DevicePrincipalFrom(r.Context())
	if !ok {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, nil)
		return
	}

	event, err := d.EDB.CreateEvent(r.Context(), principal.Serial)
	if err != nil {
		config.ErrorStatus("failed to record ring", http.StatusInternalServerError, w, err)
		return
	}

	apartment, err := d.ADB.FindBySerial(r.Context(), principal.Serial)
	if err != nil {
		config.ErrorStatus("failed to resolve apartment", http.StatusInternalServerError, w, err)
		return
	}

	result := d.Dispatcher.Dispatch(r.Context(), apartment, event)
	if ringsTotal != nil {
		ringsTotal.Inc()
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(ringResponse{
		Status:      "notified",
		DeviceCount: result.DeviceCount,
	})
}

// StatusHandler answers the unit's poll: has someone requested open? A true
// answer consumes the event, so it is returned exactly once; every later
// poll for the same event, and the steady state with no event at all, is
// {open:false}.
func (d Doorbell) StatusHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := api.DevicePrincipalFrom(r.Context())
	if !ok {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, nil)
		return
	}

	open, err := d.EDB.ConsumeIfOpenRequested(r.Context(), principal.Serial, d.Window)
	if err != nil {
		config.ErrorStatus("failed to check open status", http.StatusInternalServerError, w, err)
		return
	}
	if open && consumesTotal != nil {
		consumesTotal.Inc()
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(statusResponse{Open: open})
}

// OpenHandler flags the apartment's latest valid event as open-requested on
// behalf of a linked user. The link check runs before any apartment lookup
// so an unlinked caller learns nothing about whether the apartment exists.
func (d Doorbell) OpenHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := api.UserPrincipalFrom(r.Context())
	if !ok {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, nil)
		return
	}

	var req openRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	apartmentID, err := primitive.ObjectIDFromHex(req.ApartmentID)
	if err != nil {
		config.ErrorStatus("invalid apartment id", http.StatusBadRequest, w, err)
		return
	}

	linked, err := d.LDB.HasLink(r.Context(), principal.UserID, apartmentID)
	if err != nil {
		config.ErrorStatus("failed to check apartment access", http.StatusInternalServerError, w, err)
		return
	}
	if !linked {
		config.ErrorStatus("not linked to apartment", http.StatusForbidden, w, nil)
		return
	}

	apartment, err := d.ADB.FindByID(r.Context(), apartmentID)
	if err != nil || apartment.PicoSerial == "" {
		config.ErrorStatus("apartment has no device", http.StatusNotFound, w, err)
		return
	}

	event, err := d.EDB.FindLatestValid(r.Context(), apartment.PicoSerial, d.Window)
	if err != nil {
		config.ErrorStatus("failed to look up ring events", http.StatusInternalServerError, w, err)
		return
	}
	if event == nil {
		config.ErrorStatus("no active ring", http.StatusForbidden, w, nil)
		return
	}

	if err := d.EDB.MarkOpenRequested(r.Context(), event.ID); err != nil {
		config.ErrorStatus("failed to request open", http.StatusInternalServerError, w, err)
		return
	}
	if opensRequestedTotal != nil {
		opensRequestedTotal.Inc()
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(openResponse{
		Message: "Door open requested",
		EventID: event.ID.Hex(),
	})
}

// EventsHandler returns the recent event history for an apartment the user
// is linked to, newest first. Consumed and expired events are included;
// this is the audit view behind the app's history screen.
func (d Doorbell) EventsHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := api.UserPrincipalFrom(r.Context())
	if !ok {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, nil)
		return
	}

	apartmentID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("apartment_id"))
	if err != nil {
		config.ErrorStatus("invalid apartment id", http.StatusBadRequest, w, err)
		return
	}

	linked, err := d.LDB.HasLink(r.Context(), principal.UserID, apartmentID)
	if err != nil {
		config.ErrorStatus("failed to check apartment access", http.StatusInternalServerError, w, err)
		return
	}
	if !linked {
		config.ErrorStatus("not linked to apartment", http.StatusForbidden, w, nil)
		return
	}

	apartment, err := d.ADB.FindByID(r.Context(), apartmentID)
	if err != nil || apartment.PicoSerial == "" {
		config.ErrorStatus("apartment has no device", http.StatusNotFound, w, err)
		return
	}

	limit := int64(50)
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)
	events, err := d.EDB.Find(r.Context(), bson.M{"picoSerial": apartment.PicoSerial}, opts)
	if err != nil {
		config.ErrorStatus("failed to fetch events", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(events)
}
