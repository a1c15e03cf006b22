package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jonasfh/picobell-api/api/handlers"
	"github.com/jonasfh/picobell-api/databases"
	"github.com/jonasfh/picobell-api/databases/mocks"
	"github.com/jonasfh/picobell-api/models"
)

type fakeMailer struct {
	recipients []string
	addresses  []string
}

func (f *fakeMailer) SendRingAlert(toEmail, address string) error {
	f.recipients = append(f.recipients, toEmail)
	f.addresses = append(f.addresses, address)
	return nil
}

func dispatchFixture() (*models.Apartment, *models.DoorbellEvent) {
	apartment := &models.Apartment{
		ID:         primitive.NewObjectID(),
		Address:    "Storgata 1",
		PicoSerial: "PICO123456",
	}
	event := &models.DoorbellEvent{
		ID:         primitive.NewObjectID(),
		PicoSerial: "PICO123456",
		CreatedAt:  primitive.NewDateTimeFromTime(time.Now()),
	}
	return apartment, event
}

func TestDispatcher_PushFanout(t *testing.T) {
	var db databases.DatabaseHelper
	db = &mocks.DatabaseHelper{}

	apartment, event := dispatchFixture()
	userA := primitive.NewObjectID()
	userB := primitive.NewObjectID()

	linksConn := &mocks.CollectionHelper{}
	linksCursor := &mocks.CursorHelper{}
	linksCursor.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
		links := args.Get(0).(*[]models.UserApartment)
		*links = []models.UserApartment{
			{UserID: userA, ApartmentID: apartment.ID, Role: models.RoleOwner},
			{UserID: userB, ApartmentID: apartment.ID, Role: models.RoleResident},
		}
	}).Return(nil)
	linksConn.On("Find", mock.Anything, mock.Anything).Return(linksCursor)

	devicesConn := &mocks.CollectionHelper{}
	devicesCursor := &mocks.CursorHelper{}
	devicesCursor.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
		devices := args.Get(0).(*[]models.Device)
		*devices = []models.Device{
			{UserID: userA, Token: "ExponentPushToken[aaa]"},
			{UserID: userB, Token: "ExponentPushToken[bbb]"},
		}
	}).Return(nil)
	devicesConn.On("Find", mock.Anything, mock.Anything).Return(devicesCursor)

	db.(*mocks.DatabaseHelper).On("Collection", "userapartments").Return(linksConn)
	db.(*mocks.DatabaseHelper).On("Collection", "devices").Return(devicesConn)

	push := &fakePushSender{}
	d := handlers.Dispatcher{
		Links:   databases.NewUserApartmentDatabase(db),
		Users:   databases.NewUserDatabase(db),
		Devices: databases.NewDeviceDatabase(db),
		Push:    push,
	}

	result := d.Dispatch(context.Background(), apartment, event)

	assert.Equal(t, 2, result.DeviceCount)
	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, []string{"ExponentPushToken[aaa]", "ExponentPushToken[bbb]"}, push.tokens)
	assert.Equal(t, apartment.ID.Hex(), push.data["apartment_id"])
	assert.Equal(t, "Storgata 1", push.data["address"])
	assert.NotEmpty(t, push.data["timestamp"])
}

func TestDispatcher_ZeroTokensFallsBackToOwnerMail(t *testing.T) {
	var db databases.DatabaseHelper
	db = &mocks.DatabaseHelper{}

	apartment, event := dispatchFixture()
	owner := primitive.NewObjectID()

	linksConn := &mocks.CollectionHelper{}
	linksCursor := &mocks.CursorHelper{}
	linksCursor.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
		links := args.Get(0).(*[]models.UserApartment)
		*links = []models.UserApartment{
			{UserID: owner, ApartmentID: apartment.ID, Role: models.RoleOwner},
		}
	}).Return(nil)
	linksConn.On("Find", mock.Anything, mock.Anything).Return(linksCursor)

	devicesConn := &mocks.CollectionHelper{}
	devicesCursor := &mocks.CursorHelper{}
	devicesCursor.On("Decode", mock.Anything).Return(nil)
	devicesConn.On("Find", mock.Anything, mock.Anything).Return(devicesCursor)

	usersConn := &mocks.CollectionHelper{}
	usersCursor := &mocks.CursorHelper{}
	usersCursor.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
		users := args.Get(0).(*[]models.User)
		*users = []models.User{
			{ID: owner, Email: "owner@example.com"},
		}
	}).Return(nil)
	usersConn.On("Find", mock.Anything, mock.Anything).Return(usersCursor)

	db.(*mocks.DatabaseHelper).On("Collection", "userapartments").Return(linksConn)
	db.(*mocks.DatabaseHelper).On("Collection", "devices").Return(devicesConn)
	db.(*mocks.DatabaseHelper).On("Collection", "users").Return(usersConn)

	push := &fakePushSender{}
	mailer := &fakeMailer{}
	d := handlers.Dispatcher{
		Links:   databases.NewUserApartmentDatabase(db),
		Users:   databases.NewUserDatabase(db),
		Devices: databases.NewDeviceDatabase(db),
		Push:    push,
		Mail:    mailer,
	}

	result := d.Dispatch(context.Background(), apartment, event)

	assert.Equal(t, 0, result.DeviceCount)
	assert.Empty(t, push.tokens)
	assert.Equal(t, []string{"owner@example.com"}, mailer.recipients)
	assert.Equal(t, []string{"Storgata 1"}, mailer.addresses)
}

func TestExpoPushSender_SendBatchesDataOnly(t *testing.T) {
	var received []handlers.ExpoPushMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var batch []handlers.ExpoPushMessage
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&batch))
		received = append(received, batch...)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := handlers.NewExpoPushSender(srv.URL)
	data := map[string]interface{}{
		"apartment_id": "65a000000000000000000099",
		"address":      "Storgata 1",
		"timestamp":    "1700000000",
	}
	sent, failed := sender.Send([]string{"ExponentPushToken[aaa]", "ExponentPushToken[bbb]"}, data)

	assert.Equal(t, 2, sent)
	assert.Equal(t, 0, failed)
	assert.Len(t, received, 2)
	assert.Equal(t, "ExponentPushToken[aaa]", received[0].To)
	assert.Equal(t, "high", received[0].Priority)
	assert.Equal(t, "doorbell", received[0].ChannelID)
	assert.Equal(t, "Storgata 1", received[0].Data["address"])
}

func TestExpoPushSender_SendReportsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sender := handlers.NewExpoPushSender(srv.URL)
	sent, failed := sender.Send([]string{"ExponentPushToken[aaa]"}, nil)

	assert.Equal(t, 0, sent)
	assert.Equal(t, 1, failed)
}
