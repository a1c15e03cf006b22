package mongodb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/jonasfh/picobell-api/mongodb"
)

func TestIndexModelsCoverQueryPaths(t *testing.T) {
	models := mongodb.IndexModels()

	events, ok := models["doorbellevents"]
	assert.True(t, ok)
	assert.Len(t, events, 1)
	keys := events[0].Keys.(bson.D)
	assert.Equal(t, "picoSerial", keys[0].Key)
	assert.Equal(t, "createdAt", keys[2].Key)
	assert.Equal(t, -1, keys[2].Value)

	apartments := models["apartments"]
	assert.Len(t, apartments, 2)
	assert.True(t, *apartments[0].Options.Unique)
	serialKeys := apartments[1].Keys.(bson.D)
	assert.Equal(t, "picoSerial", serialKeys[0].Key)
	assert.True(t, *apartments[1].Options.Unique)

	links := models["userapartments"]
	assert.Len(t, links, 1)
	assert.True(t, *links[0].Options.Unique)

	_, ok = models["apilogs"]
	assert.True(t, ok)
}
