package scheduler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jonasfh/picobell-api/api/scheduler"
	"github.com/jonasfh/picobell-api/databases"
	"github.com/jonasfh/picobell-api/databases/mocks"
)

func TestScheduler_PruneAPILogs(t *testing.T) {
	var db databases.DatabaseHelper
	db = &mocks.DatabaseHelper{}

	logsConn := &mocks.CollectionHelper{}
	var filter bson.M
	logsConn.On("DeleteMany", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		filter = args.Get(1).(bson.M)
	}).Return(int64(3), nil)
	db.(*mocks.DatabaseHelper).On("Collection", "apilogs").Return(logsConn)

	s := scheduler.NewScheduler(databases.NewAPILogDatabase(db), 30)
	s.PruneAPILogs()

	logsConn.AssertCalled(t, "DeleteMany", mock.Anything, mock.Anything)
	cutoff, ok := filter["createdAt"].(bson.M)["$lt"].(primitive.DateTime)
	assert.True(t, ok)
	assert.NotZero(t, cutoff)
}

func TestScheduler_StartStop(t *testing.T) {
	var db databases.DatabaseHelper
	db = &mocks.DatabaseHelper{}

	s := scheduler.NewScheduler(databases.NewAPILogDatabase(db), 30)
	s.Start()
	s.Stop()
}
