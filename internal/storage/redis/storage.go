package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/buzzrelay/internal/model"
	"github.com/mcoot/buzzrelay/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, roomKey(room.Code), data, s.cfg.RoomTTL)
	pipe.SAdd(ctx, roomsIndexKey(), string(room.Code))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	data, err := s.client.Get(ctx, roomKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoomNotFound
		}
		return nil, err
	}

	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Storage) RoomExists(ctx context.Context, code model.RoomCode) (bool, error) {
	exists, err := s.client.Exists(ctx, roomKey(code)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	codes, err := s.client.SMembers(ctx, roomsIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return []*model.Room{}, nil
	}

	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = roomKey(model.RoomCode(code))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	rooms := make([]*model.Room, 0, len(values))
	var expired []any
	for i, val := range values {
		if val == nil {
			expired = append(expired, codes[i]) // Room key expired
			continue
		}
		var room model.Room
		if err := json.Unmarshal([]byte(val.(string)), &room); err != nil {
			continue // Skip invalid data
		}
		rooms = append(rooms, &room)
	}

	if len(expired) > 0 {
		_ = s.client.SRem(ctx, roomsIndexKey(), expired...).Err()
	}

	return rooms, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, code model.RoomCode) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, roomKey(code), buzzResultsKey(code), ledgerMarkerKey(code))
	pipe.SRem(ctx, roomsIndexKey(), string(code))
	_, err := pipe.Exec(ctx)
	return err
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	existing, err := s.GetPlayer(ctx, player.ConnectionID)
	if err != nil && !errors.Is(err, model.ErrPlayerNotFound) {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, playerKey(player.ConnectionID), data, s.cfg.PlayerTTL)
	// Overwriting a player in the same room keeps its position
	if existing == nil || existing.RoomCode != player.RoomCode {
		if existing != nil {
			pipe.LRem(ctx, roomPlayersIndexKey(existing.RoomCode), 0, string(existing.ConnectionID))
		}
		indexKey := roomPlayersIndexKey(player.RoomCode)
		pipe.RPush(ctx, indexKey, string(player.ConnectionID))
		pipe.Expire(ctx, indexKey, s.cfg.PlayerTTL)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.ConnectionID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) GetPlayersByRoom(ctx context.Context, code model.RoomCode) ([]*model.Player, error) {
	ids, err := s.client.LRange(ctx, roomPlayersIndexKey(code), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Player{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = playerKey(model.ConnectionID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	players := make([]*model.Player, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Player may have expired
		}
		var player model.Player
		if err := json.Unmarshal([]byte(val.(string)), &player); err != nil {
			continue
		}
		players = append(players, &player)
	}
	return players, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.ConnectionID) (bool, error) {
	player, err := s.GetPlayer(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return false, nil
		}
		return false, err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, playerKey(id))
	pipe.LRem(ctx, roomPlayersIndexKey(player.RoomCode), 0, string(id))
	_, err = pipe.Exec(ctx)
	if err != nil {
		return false, err
	}
	return true, nil
}

// Buzz result operations

func (s *Storage) AppendBuzzResult(ctx context.Context, result *model.BuzzResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	key := buzzResultsKey(result.RoomCode)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, s.cfg.RoomTTL)
	pipe.Set(ctx, ledgerMarkerKey(result.RoomCode), 1, s.cfg.RoomTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetBuzzResults(ctx context.Context, code model.RoomCode) ([]*model.BuzzResult, error) {
	values, err := s.client.LRange(ctx, buzzResultsKey(code), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	results := make([]*model.BuzzResult, 0, len(values))
	for _, val := range values {
		var result model.BuzzResult
		if err := json.Unmarshal([]byte(val), &result); err != nil {
			continue
		}
		results = append(results, &result)
	}
	return results, nil
}

func (s *Storage) ClearBuzzResults(ctx context.Context, code model.RoomCode) (bool, error) {
	// An empty Redis list does not exist, so a marker key records which
	// rooms have had a result list at all
	hadLedger, err := s.client.Exists(ctx, ledgerMarkerKey(code)).Result()
	if err != nil {
		return false, err
	}
	if hadLedger == 0 {
		return false, nil
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, buzzResultsKey(code))
	pipe.Expire(ctx, ledgerMarkerKey(code), s.cfg.RoomTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return true, nil
}
