package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/jonasfh/picobell-api/api"
	"github.com/jonasfh/picobell-api/api/handlers"
	"github.com/jonasfh/picobell-api/config"
	"github.com/jonasfh/picobell-api/databases"
	"github.com/jonasfh/picobell-api/databases/mocks"
	"github.com/jonasfh/picobell-api/models"
)

func authWithUser(t *testing.T, user *models.User) handlers.Auth {
	t.Helper()
	var db databases.DatabaseHelper
	db = &mocks.DatabaseHelper{}

	usersConn := &mocks.CollectionHelper{}
	result := &mocks.SingleResultHelper{}
	if user == nil {
		result.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	} else {
		result.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
			u := args.Get(0).(*models.User)
			*u = *user
		}).Return(nil)
	}
	usersConn.On("FindOne", mock.Anything, bson.M{"email": "jonas@example.com"}).Return(result)
	db.(*mocks.DatabaseHelper).On("Collection", "users").Return(usersConn)

	return handlers.Auth{
		UDB: databases.NewUserDatabase(db),
		Config: config.Config{
			JWTSecret:       "test-secret",
			SessionTokenTTL: time.Hour,
		},
	}
}

func TestAuth_LoginHandlerSuccess(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	assert.NoError(t, err)

	userID := primitive.NewObjectID()
	a := authWithUser(t, &models.User{
		ID:       userID,
		Username: "jonas",
		Email:    "jonas@example.com",
		Password: string(hash),
	})

	body := []byte(`{"email":"Jonas@Example.com","password":"hunter2"}`)
	rr := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/auth/login", bytes.NewReader(body))
	http.HandlerFunc(a.LoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, userID.Hex(), resp.User.ID)
	assert.Equal(t, "jonas@example.com", resp.User.Email)

	principal, err := api.ParseUserToken(resp.Token, []byte("test-secret"))
	assert.NoError(t, err)
	assert.Equal(t, userID, principal.UserID)
	assert.Equal(t, "jonas@example.com", principal.Email)
}

func TestAuth_LoginHandlerWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	assert.NoError(t, err)

	a := authWithUser(t, &models.User{
		ID:       primitive.NewObjectID(),
		Email:    "jonas@example.com",
		Password: string(hash),
	})

	body := []byte(`{"email":"jonas@example.com","password":"wrong"}`)
	rr := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/auth/login", bytes.NewReader(body))
	http.HandlerFunc(a.LoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"invalid credentials"}`, rr.Body.String())
}

func TestAuth_LoginHandlerUnknownEmail(t *testing.T) {
	a := authWithUser(t, nil)

	body := []byte(`{"email":"jonas@example.com","password":"hunter2"}`)
	rr := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/auth/login", bytes.NewReader(body))
	http.HandlerFunc(a.LoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"invalid credentials"}`, rr.Body.String())
}

func TestAuth_LoginHandlerMissingFields(t *testing.T) {
	a := handlers.Auth{}

	body := []byte(`{"email":"","password":""}`)
	rr := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/auth/login", bytes.NewReader(body))
	http.HandlerFunc(a.LoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
