package query

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Alanle1011/contract-marketplace/base/ctx"
	"github.com/Alanle1011/contract-marketplace/base/database/mongoclient"
	"github.com/Alanle1011/contract-marketplace/base/log"
	"github.com/Alanle1011/contract-marketplace/domain"
)

const (
	queryMaxTime    = 20 * time.Second
	slowLogDuration = 3 * time.Second
)

var (
	timeNow = time.Now
)

type impl struct {
	client *mongoclient.Client
}

// New initializes an impl
func New(client *mongoclient.Client) Mongo {
	return &impl{
		client: client,
	}
}

func (im *impl) logerr(c ctx.Ctx, msg string, err error) {
	c.WithFields(log.Fields{"err": err}).Error(msg)
}

func (im *impl) collection(table domain.Table) *mongo.Collection {
	return im.client.Database(im.client.DbName).Collection(string(table))
}

// slowLog logs queries which take longer than slowLogDuration
func slowLog(c ctx.Ctx, table, op string, query interface{}) func() {
	start := timeNow()
	return func() {
		if elapsed := timeNow().Sub(start); elapsed > slowLogDuration {
			c.WithFields(log.Fields{
				"table":   table,
				"op":      op,
				"query":   query,
				"elapsed": elapsed.Seconds(),
			}).Warn("slow query")
		}
	}
}

func (im *impl) Insert(c ctx.Ctx, table domain.Table, insert interface{}) error {
	defer slowLog(c, string(table), "insert", nil)()

	c = ctx.WithValues(c, map[string]interface{}{
		"table":  table,
		"insert": insert,
	})

	if _, err := im.collection(table).InsertOne(c, insert); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		im.logerr(c, "Insert: InsertOne failed", err)
		return err
	}

	return nil
}

func (im *impl) FindOne(c ctx.Ctx, table domain.Table, query, result interface{}) error {
	defer slowLog(c, string(table), "findone", query)()

	c = ctx.WithValues(c, map[string]interface{}{
		"table": table,
		"query": query,
	})

	findOneOpts := options.FindOne().SetMaxTime(queryMaxTime)
	res := im.collection(table).FindOne(c, query, findOneOpts)

	if err := res.Decode(result); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		im.logerr(c, "FindOne: FindOne failed", err)
		return err
	}
	return nil
}

func (im *impl) Count(c ctx.Ctx, table domain.Table, selector interface{}) (int, error) {
	defer slowLog(c, string(table), "count", selector)()

	c = ctx.WithValues(c, map[string]interface{}{
		"table":    table,
		"selector": selector,
	})

	countOpts := options.Count().SetMaxTime(queryMaxTime)
	n, err := im.collection(table).CountDocuments(c, selector, countOpts)
	if err != nil {
		im.logerr(c, "Count: CountDocuments failed", err)
		return 0, err
	}
	return int(n), nil
}

func (im *impl) Search(c ctx.Ctx, table domain.Table, offset, limit int, sort string, selector, result interface{}) error {
	defer slowLog(c, string(table), "search", selector)()

	c = ctx.WithValues(c, map[string]interface{}{
		"table":    table,
		"selector": selector,
	})

	findOpts := options.Find().
		SetMaxTime(queryMaxTime).
		SetSkip(int64(offset))
	if limit > 0 {
		findOpts.SetLimit(int64(limit))
	}
	if sort != "" {
		dir := 1
		field := sort
		if strings.HasPrefix(sort, "-") {
			dir = -1
			field = sort[1:]
		}
		findOpts.SetSort(bson.D{{Key: field, Value: dir}})
	}

	cursor, err := im.collection(table).Find(c, selector, findOpts)
	if err != nil {
		im.logerr(c, "Search: Find failed", err)
		return err
	}
	if err := cursor.All(c, result); err != nil {
		im.logerr(c, "Search: cursor.All failed", err)
		return err
	}
	return nil
}

func (im *impl) Patch(c ctx.Ctx, table domain.Table, selector, patch interface{}) error {
	defer slowLog(c, string(table), "patch", selector)()

	c = ctx.WithValues(c, map[string]interface{}{
		"table":    table,
		"selector": selector,
		"patch":    patch,
	})

	res, err := im.collection(table).UpdateOne(c, selector, bson.M{"$set": patch})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		im.logerr(c, "Patch: UpdateOne failed", err)
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (im *impl) Upsert(c ctx.Ctx, table domain.Table, selector, update interface{}) error {
	defer slowLog(c, string(table), "upsert", selector)()

	c = ctx.WithValues(c, map[string]interface{}{
		"table":    table,
		"selector": selector,
	})

	replaceOpts := options.Replace().SetUpsert(true)
	if _, err := im.collection(table).ReplaceOne(c, selector, update, replaceOpts); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		im.logerr(c, "Upsert: ReplaceOne failed", err)
		return err
	}
	return nil
}

func (im *impl) Remove(c ctx.Ctx, table domain.Table, selector interface{}) error {
	defer slowLog(c, string(table), "remove", selector)()

	c = ctx.WithValues(c, map[string]interface{}{
		"table":    table,
		"selector": selector,
	})

	res, err := im.collection(table).DeleteOne(c, selector)
	if err != nil {
		im.logerr(c, "Remove: DeleteOne failed", err)
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (im *impl) RemoveAll(c ctx.Ctx, table domain.Table, selector interface{}) error {
	defer slowLog(c, string(table), "removeall", selector)()

	c = ctx.WithValues(c, map[string]interface{}{
		"table":    table,
		"selector": selector,
	})

	if _, err := im.collection(table).DeleteMany(c, selector); err != nil {
		im.logerr(c, "RemoveAll: DeleteMany failed", err)
		return err
	}
	return nil
}
