package dataaccess

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const guildConfigsNamespace = mongoDatabase + "." + guildConfigsCollection

func TestGuildConfigDal(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("get decodes the stored document", func(mt *mtest.T) {
		want := sampleConfig("1000")
		raw, err := bson.Marshal(want)
		require.NoError(mt, err)
		var doc bson.D
		require.NoError(mt, bson.Unmarshal(raw, &doc))

		mt.AddMockResponses(mtest.CreateCursorResponse(0, guildConfigsNamespace, mtest.FirstBatch, doc))

		got, err := NewGuildConfigDal(testLogger(), mt.Client).GetGuildConfig(context.Background(), "1000")
		require.NoError(mt, err)
		require.Equal(mt, want, got)
	})

	mt.Run("get returns defaults when missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, guildConfigsNamespace, mtest.FirstBatch))

		got, err := NewGuildConfigDal(testLogger(), mt.Client).GetGuildConfig(context.Background(), "1000")
		require.NoError(mt, err)
		require.Equal(mt, "1000", got.ID)
		require.Empty(mt, got.OpenTickets)
	})

	mt.Run("get wraps server errors", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad query",
			Name:    "BadValue",
		}))

		_, err := NewGuildConfigDal(testLogger(), mt.Client).GetGuildConfig(context.Background(), "1000")
		require.ErrorContains(mt, err, "error getting guild config")
	})

	mt.Run("save upserts one document", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		err := NewGuildConfigDal(testLogger(), mt.Client).SaveGuildConfig(context.Background(), sampleConfig("1000"))
		require.NoError(mt, err)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		require.Equal(mt, "update", evt.CommandName)
		require.Equal(mt, guildConfigsCollection, evt.Command.Lookup("update").StringValue())

		update := evt.Command.Lookup("updates").Array().Index(0).Value().Document()
		require.True(mt, update.Lookup("upsert").Boolean())
		require.Equal(mt, "1000", update.Lookup("q", "id").StringValue())
		require.Equal(mt, int64(7), update.Lookup("u", "sequence_counter").Int64())
	})
}
