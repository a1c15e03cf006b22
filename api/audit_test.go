package api_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jonasfh/picobell-api/api"
	"github.com/jonasfh/picobell-api/databases"
	"github.com/jonasfh/picobell-api/databases/mocks"
	"github.com/jonasfh/picobell-api/models"
)

func TestAuditLoggerRecordsRequest(t *testing.T) {
	var db databases.DatabaseHelper
	db = &mocks.DatabaseHelper{}

	var mu sync.Mutex
	var logged []models.APILog

	logsConn := &mocks.CollectionHelper{}
	insertHelper := &mocks.InsertOneResultHelper{}
	insertHelper.On("Decode").Return(primitive.NewObjectID())
	logsConn.On("InsertOne", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		mu.Lock()
		defer mu.Unlock()
		logged = append(logged, args.Get(1).(models.APILog))
	}).Return(insertHelper)
	db.(*mocks.DatabaseHelper).On("Collection", "apilogs").Return(logsConn)

	audit := api.AuditLogger{DB: databases.NewAPILogDatabase(db)}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	req := httptest.NewRequest("POST", "/doorbell/open", nil)
	req = req.WithContext(api.WithUserPrincipal(req.Context(), api.UserPrincipal{
		UserID: primitive.NewObjectID(),
	}))
	rr := httptest.NewRecorder()
	audit.Middleware(next).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)

	// the insert runs off the request path
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(logged) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	entry := logged[0]
	assert.Equal(t, "POST", entry.Method)
	assert.Equal(t, "/doorbell/open", entry.Path)
	assert.Equal(t, http.StatusForbidden, entry.Status)
	assert.Contains(t, entry.Principal, "user:")
}

func TestAuditLoggerAnonymousPrincipal(t *testing.T) {
	var db databases.DatabaseHelper
	db = &mocks.DatabaseHelper{}

	var mu sync.Mutex
	var logged []models.APILog

	logsConn := &mocks.CollectionHelper{}
	insertHelper := &mocks.InsertOneResultHelper{}
	insertHelper.On("Decode").Return(primitive.NewObjectID())
	logsConn.On("InsertOne", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		mu.Lock()
		defer mu.Unlock()
		logged = append(logged, args.Get(1).(models.APILog))
	}).Return(insertHelper)
	db.(*mocks.DatabaseHelper).On("Collection", "apilogs").Return(logsConn)

	audit := api.AuditLogger{DB: databases.NewAPILogDatabase(db)}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	rr := httptest.NewRecorder()
	audit.Middleware(next).ServeHTTP(rr, httptest.NewRequest("POST", "/auth/login", nil))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(logged) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "anonymous", logged[0].Principal)
	assert.Equal(t, http.StatusOK, logged[0].Status)
}
