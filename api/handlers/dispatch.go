package handlers

import (
	"context"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/jonasfh/picobell-api/databases"
	"github.com/jonasfh/picobell-api/models"
)

// Dispatcher turns one ring event into N notifications: one data-only push
// per registered device of every linked user, a broadcast on the websocket
// feed, and a fallback email to the owners when the apartment has no
// push-addressable devices at all. Dispatch never fails the ring
// acknowledgment; per-token failures are tallied and logged.
type Dispatcher struct {
	Links   databases.UserApartmentDatabase
	Users   databases.UserDatabase
	Devices databases.DeviceDatabase
	Push    PushSender
	Hub     *RingHub
	Mail    MailSender
}

// DispatchResult reports what one fan-out attempted.
type DispatchResult struct {
	DeviceCount int
	Sent        int
	Failed      int
}

// Dispatch fans the event out to everyone linked to the apartment. Zero
// linked users or zero devices is a valid state, not an error: the ring is
// already durably recorded and the device keeps polling regardless.
func (d Dispatcher) Dispatch(ctx context.Context, apartment *models.Apartment, event *models.DoorbellEvent) DispatchResult {
	links, err := d.Links.FindByApartmentID(ctx, apartment.ID)
	if err != nil {
		zap.S().Errorw("failed to resolve linked users for ring",
			"apartmentId", apartment.ID.Hex(),
			"error", err,
		)
		return DispatchResult{}
	}

	userIDs := make([]primitive.ObjectID, 0, len(links))
	hubIDs := make([]string, 0, len(links))
	for _, link := range links {
		userIDs = append(userIDs, link.UserID)
		hubIDs = append(hubIDs, link.UserID.Hex())
	}

	payload := models.RingPayload{
		ApartmentID: apartment.ID.Hex(),
		Address:     apartment.Address,
		Timestamp:   event.CreatedAt.Time().Unix(),
	}
	d.Hub.Broadcast(hubIDs, payload)

	var tokens []string
	if len(userIDs) > 0 {
		devices, err := d.Devices.FindByUserIDs(ctx, userIDs)
		if err != nil {
			zap.S().Errorw("failed to resolve devices for ring",
				"apartmentId", apartment.ID.Hex(),
				"error", err,
			)
			return DispatchResult{}
		}
		for _, device := range devices {
			tokens = append(tokens, device.Token)
		}
	}

	if len(tokens) == 0 {
		zap.S().Infow("ring recorded with no push-addressable devices",
			"apartmentId", apartment.ID.Hex(),
			"linkedUsers", len(links),
		)
		d.alertOwnersByMail(ctx, apartment, links)
		return DispatchResult{}
	}

	data := map[string]interface{}{
		"apartment_id": payload.ApartmentID,
		"address":      payload.Address,
		"timestamp":    strconv.FormatInt(payload.Timestamp, 10),
	}
	sent, failed := d.Push.Send(tokens, data)
	if pushSentTotal != nil {
		pushSentTotal.WithLabelValues("ok").Add(float64(sent))
		pushSentTotal.WithLabelValues("failed").Add(float64(failed))
	}
	if failed > 0 {
		zap.S().Warnw("some ring notifications failed",
			"apartmentId", apartment.ID.Hex(),
			"sent", sent,
			"failed", failed,
		)
	}

	return DispatchResult{DeviceCount: len(tokens), Sent: sent, Failed: failed}
}

// alertOwnersByMail emails each owner when nobody can receive a push. Best
// effort; skipped entirely when no mailer is configured.
func (d Dispatcher) alertOwnersByMail(ctx context.Context, apartment *models.Apartment, links []models.UserApartment) {
	if d.Mail == nil {
		return
	}
	var ownerIDs []primitive.ObjectID
	for _, link := range links {
		if link.Role == models.RoleOwner {
			ownerIDs = append(ownerIDs, link.UserID)
		}
	}
	if len(ownerIDs) == 0 {
		return
	}
	owners, err := d.Users.FindByIDs(ctx, ownerIDs)
	if err != nil {
		zap.S().Warnw("failed to resolve owners for mail fallback",
			"apartmentId", apartment.ID.Hex(),
			"error", err,
		)
		return
	}
	for _, owner := range owners {
		if err := d.Mail.SendRingAlert(owner.Email, apartment.Address); err != nil {
			zap.S().Warnw("failed to send ring alert mail",
				"apartmentId", apartment.ID.Hex(),
				"error", err,
			)
		}
	}
}
