package db

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	playersCollection = "players"
	leaguesCollection = "leagues"
	tablesCollection  = "frequencies"
)

type Store struct {
	client   *mongo.Client
	database *mongo.Database
}

func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "could not connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, errors.Wrap(err, "could not reach mongodb")
	}

	return &Store{client: client, database: client.Database(database)}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func leagueID(league string, season int) string {
	return fmt.Sprintf("%s/%d", league, season)
}

// playerFilter identifies a player within a scraped squad.
func playerFilter(r PlayerRecord) bson.M {
	return bson.M{
		"league": r.League,
		"season": r.Season,
		"team":   r.Team,
		"name":   r.Name,
	}
}

func playerUpdate(r PlayerRecord) bson.M {
	update := bson.M{
		"$set":         r,
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID()},
	}
	if r.ShirtNumber == nil {
		update["$unset"] = bson.M{"shirt_no": ""}
	}
	return update
}

// UpsertPlayers writes a squad in order. New players get increasing ids, so
// reading back sorted by id keeps the scrape order.
func (s *Store) UpsertPlayers(ctx context.Context, records []PlayerRecord) error {
	if len(records) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(records))
	for _, r := range records {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(playerFilter(r)).
			SetUpdate(playerUpdate(r)).
			SetUpsert(true))
	}

	_, err := s.database.Collection(playersCollection).BulkWrite(
		ctx,
		models,
		options.BulkWrite().SetOrdered(true),
	)
	return errors.Wrap(err, "could not upsert players")
}

// Players returns the stored players, optionally narrowed to a league and a season.
func (s *Store) Players(ctx context.Context, league string, season int) ([]PlayerRecord, error) {
	filter := bson.M{}
	if league != "" {
		filter["league"] = league
	}
	if season != 0 {
		filter["season"] = season
	}

	cursor, err := s.database.Collection(playersCollection).Find(
		ctx,
		filter,
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "could not get players")
	}
	defer cursor.Close(ctx)

	var all []PlayerRecord
	if err := cursor.All(ctx, &all); err != nil {
		return nil, errors.Wrap(err, "could not decode players")
	}
	return all, nil
}

func (s *Store) MarkLeague(ctx context.Context, league string, season int) error {
	_, err := s.database.Collection(leaguesCollection).UpdateOne(
		ctx,
		bson.M{"_id": leagueID(league, season)},
		bson.M{"$set": bson.M{"league": league, "season": season}},
		options.Update().SetUpsert(true),
	)
	return errors.Wrap(err, "could not mark league")
}

func (s *Store) HasLeague(ctx context.Context, league string, season int) (bool, error) {
	var check struct {
		ID string `bson:"_id"`
	}
	err := s.database.Collection(leaguesCollection).
		FindOne(ctx, bson.M{"_id": leagueID(league, season)}).
		Decode(&check)
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "could not check league")
	}
	return true, nil
}

// SaveTable replaces the stored table for the same league, season and n.
func (s *Store) SaveTable(ctx context.Context, league string, season, n int, rows []PositionFrequencyRow) error {
	_, err := s.database.Collection(tablesCollection).UpdateOne(
		ctx,
		bson.M{"_id": fmt.Sprintf("%s/%d", leagueID(league, season), n)},
		bson.M{"$set": bson.M{
			"league": league,
			"season": season,
			"n":      n,
			"rows":   rows,
		}},
		options.Update().SetUpsert(true),
	)
	return errors.Wrap(err, "could not save table")
}
