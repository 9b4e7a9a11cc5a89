package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pycramdb/action"
	"pycramdb/config"
	"pycramdb/protocol"
)

// testDB creates a temporary SQLite database for testing.
func testDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	db, err := Open(&config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: dbPath},
	}, nil)
	require.NoError(t, err, "open test db")
	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})
	return db
}

type fixture struct {
	robotState  int64
	position    int64
	orientation int64
	object      int64
}

func seedValues(t *testing.T, db *DB) fixture {
	t.Helper()
	ctx := context.Background()
	var f fixture
	var err error
	f.robotState, err = db.InsertRobotState(ctx, action.RobotState{
		Position:    action.Position{X: 1, Y: 2},
		Orientation: action.Quaternion{W: 1},
		TorsoHeight: 0.2,
		Type:        "pr2",
	})
	require.NoError(t, err)
	f.position, err = db.InsertPosition(ctx, action.Position{X: 1.5, Y: -0.5, Z: 0.8})
	require.NoError(t, err)
	f.orientation, err = db.InsertQuaternion(ctx, action.Quaternion{Z: 0.7071, W: 0.7071})
	require.NoError(t, err)
	f.object, err = db.InsertObject(ctx, action.ObjectDesignator{Name: "milk", Type: "Milk"})
	require.NoError(t, err)
	return f
}

func allKinds(f fixture) []action.Action {
	base := func() action.Base { return action.Base{RobotState: action.RefID[action.RobotState](f.robotState)} }
	pos := action.RefID[action.Position](f.position)
	ori := action.RefID[action.Quaternion](f.orientation)
	obj := action.RefID[action.ObjectDesignator](f.object)
	height := 0.25
	return []action.Action{
		&action.ParkArms{Base: base(), Arm: action.ArmBoth},
		&action.Navigate{Base: base(), Position: pos, Orientation: ori},
		&action.MoveTorso{Base: base(), Position: &height},
		&action.SetGripper{Base: base(), Gripper: "left", Motion: "open"},
		&action.Release{Base: base(), Gripper: "right", Object: obj},
		&action.Grip{Base: base(), Gripper: "left", Effort: 12.5, Object: obj},
		&action.PickUp{Base: base(), Arm: "left", Grasp: "front", Object: obj},
		&action.Place{Base: base(), Arm: "left", Position: pos, Orientation: ori, Object: obj},
		&action.Transport{Base: base(), Arm: "right", Position: pos, Orientation: ori, Object: obj},
		&action.LookAt{Base: base(), Position: pos},
		&action.Detect{Base: base(), Object: obj},
		&action.Open{Base: base(), Arm: "left", Distance: 0.4, Object: obj},
		&action.Close{Base: base(), Arm: "right"},
	}
}

func TestRoundTripAllKinds(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	f := seedValues(t, db)

	actions := allKinds(f)
	require.Len(t, actions, len(db.Registry().Variants()))
	for _, a := range actions {
		t.Run(string(a.Kind()), func(t *testing.T) {
			id, err := db.InsertAction(ctx, a)
			require.NoError(t, err)
			assert.Equal(t, id, a.Header().ID)

			got, err := db.LoadAction(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, a, got)
		})
	}
}

func TestDiscriminatorIntegrity(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	f := seedValues(t, db)

	for _, a := range allKinds(f) {
		id, err := db.InsertAction(ctx, a)
		require.NoError(t, err)

		var kind string
		require.NoError(t, db.QueryRow(`SELECT kind FROM actions WHERE id=?`, id).Scan(&kind))
		assert.Equal(t, string(a.Kind()), kind)

		// The id must appear in exactly one kind table.
		var tables []string
		for _, v := range db.Registry().Variants() {
			var n int
			require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+v.Table+` WHERE id=?`, id).Scan(&n))
			if n > 0 {
				tables = append(tables, v.Table)
			}
		}
		v, err := db.Registry().Lookup(a.Kind())
		require.NoError(t, err)
		assert.Equal(t, []string{v.Table}, tables)
	}
}

func TestInsertIsAtomic(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	db.EnableEvents("pycram.actions", "test")

	_, err := db.Exec(`CREATE TRIGGER fail_place BEFORE INSERT ON place_actions
		BEGIN SELECT RAISE(ABORT, 'forced failure'); END`)
	require.NoError(t, err)

	place := &action.Place{
		Base:        action.Base{RobotState: action.RefTo(action.RobotState{Type: "pr2"})},
		Arm:         "left",
		Position:    action.RefTo(action.Position{X: 1}),
		Orientation: action.RefTo(action.Quaternion{W: 1}),
		Object:      action.RefTo(action.ObjectDesignator{Name: "cup"}),
	}
	_, err = db.InsertAction(ctx, place)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forced failure")
	assert.Zero(t, place.ID)

	_, err = db.LoadAction(ctx, 1)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)

	n, err := db.CountActions(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, n, "orphan base row")
	for _, kind := range action.ValueKinds {
		n, err := db.CountValues(ctx, kind)
		require.NoError(t, err)
		assert.Zero(t, n, "%s rows left behind", kind)
	}
	pending, err := db.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestReferenceSharing(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	f := seedValues(t, db)
	obj := action.RefID[action.ObjectDesignator](f.object)
	rs := action.RefID[action.RobotState](f.robotState)

	pickID, err := db.InsertAction(ctx, &action.PickUp{Base: action.Base{RobotState: rs}, Arm: "left", Grasp: "top", Object: obj})
	require.NoError(t, err)
	placeID, err := db.InsertAction(ctx, &action.Place{
		Base:        action.Base{RobotState: rs},
		Arm:         "left",
		Position:    action.RefTo(action.Position{X: 2}),
		Orientation: action.RefTo(action.Quaternion{W: 1}),
		Object:      obj,
	})
	require.NoError(t, err)

	pick, err := db.LoadAction(ctx, pickID)
	require.NoError(t, err)
	place, err := db.LoadAction(ctx, placeID)
	require.NoError(t, err)
	assert.Equal(t, f.object, pick.(*action.PickUp).Object.ID)
	assert.Equal(t, pick.(*action.PickUp).Object.ID, place.(*action.Place).Object.ID)

	n, err := db.CountValues(ctx, action.ValueObject)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = db.CountValues(ctx, action.ValueRobotState)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRawValuesInsertedOnce(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	a := &action.Transport{
		Base:        action.Base{RobotState: action.RefTo(action.RobotState{TorsoHeight: 0.1, Type: "hsr"})},
		Arm:         "right",
		Position:    action.RefTo(action.Position{X: 3, Y: 1}),
		Orientation: action.RefTo(action.Quaternion{W: 1}),
		Object:      action.RefTo(action.ObjectDesignator{Name: "bowl", Type: "Bowl"}),
	}
	id, err := db.InsertAction(ctx, a)
	require.NoError(t, err)

	for _, kind := range action.ValueKinds {
		n, err := db.CountValues(ctx, kind)
		require.NoError(t, err)
		assert.Equal(t, 1, n, kind)
	}

	got, err := db.LoadAction(ctx, id)
	require.NoError(t, err)
	tr := got.(*action.Transport)
	assert.Nil(t, tr.Position.Value, "references load lazily")

	r := db.Resolver()
	pos, err := r.FetchPosition(ctx, tr.Position)
	require.NoError(t, err)
	assert.Equal(t, action.Position{X: 3, Y: 1}, *pos)
	obj, err := r.FetchObject(ctx, tr.Object)
	require.NoError(t, err)
	assert.Equal(t, "bowl", obj.Name)
	rs, err := r.FetchRobotState(ctx, tr.RobotState)
	require.NoError(t, err)
	assert.Equal(t, "hsr", rs.Type)
}

func TestConcreteScenario(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	f := seedValues(t, db)
	rs := action.Base{RobotState: action.RefID[action.RobotState](f.robotState)}

	for i := 0; i < 6; i++ {
		_, err := db.InsertAction(ctx, &action.Close{Base: rs, Arm: "left"})
		require.NoError(t, err)
	}

	height := 0.3
	id, err := db.InsertAction(ctx, &action.MoveTorso{Base: rs, Position: &height})
	require.NoError(t, err)
	require.Equal(t, int64(7), id)

	var kind string
	var torso float64
	require.NoError(t, db.QueryRow(`SELECT kind FROM actions WHERE id=7`).Scan(&kind))
	require.NoError(t, db.QueryRow(`SELECT position FROM move_torso_actions WHERE id=7`).Scan(&torso))
	assert.Equal(t, "MoveTorso", kind)
	assert.Equal(t, 0.3, torso)

	got, err := db.LoadAction(ctx, 7)
	require.NoError(t, err)
	mt, ok := got.(*action.MoveTorso)
	require.True(t, ok, "got %T", got)
	require.NotNil(t, mt.Position)
	assert.Equal(t, 0.3, *mt.Position)

	// Value ids 4, 5 and 9 for the position, orientation and object.
	for _, n := range []struct {
		kind  action.ValueKind
		until int64
	}{{action.ValuePosition, 4}, {action.ValueQuaternion, 5}, {action.ValueObject, 9}} {
		for {
			c, err := db.CountValues(ctx, n.kind)
			require.NoError(t, err)
			if int64(c) >= n.until {
				break
			}
			_, err = db.InsertValue(ctx, n.kind, zeroValue(n.kind))
			require.NoError(t, err)
		}
	}

	id, err = db.InsertAction(ctx, &action.Place{
		Base:        rs,
		Arm:         "left",
		Position:    action.RefID[action.Position](4),
		Orientation: action.RefID[action.Quaternion](5),
		Object:      action.RefID[action.ObjectDesignator](9),
	})
	require.NoError(t, err)
	require.Equal(t, int64(8), id)

	got, err = db.LoadAction(ctx, 8)
	require.NoError(t, err)
	place, ok := got.(*action.Place)
	require.True(t, ok, "got %T", got)
	assert.Equal(t, "left", place.Arm)
	assert.Equal(t, int64(4), place.Position.ID)
	assert.Equal(t, int64(5), place.Orientation.ID)
	assert.Equal(t, int64(9), place.Object.ID)
}

func zeroValue(kind action.ValueKind) any {
	switch kind {
	case action.ValuePosition:
		return action.Position{}
	case action.ValueQuaternion:
		return action.Quaternion{W: 1}
	case action.ValueObject:
		return action.ObjectDesignator{Name: "filler"}
	}
	return action.RobotState{}
}

func TestLoadUnknownID(t *testing.T) {
	db := testDB(t)
	_, err := db.LoadAction(context.Background(), 999)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, int64(999), nf.ID)
}

func TestLoadCorruptData(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	f := seedValues(t, db)
	rs := action.Base{RobotState: action.RefID[action.RobotState](f.robotState)}

	t.Run("unregistered kind", func(t *testing.T) {
		id, err := db.InsertAction(ctx, &action.Close{Base: rs, Arm: "left"})
		require.NoError(t, err)
		_, err = db.Exec(`UPDATE actions SET kind='Teleport' WHERE id=?`, id)
		require.NoError(t, err)

		_, err = db.LoadAction(ctx, id)
		var corrupt *CorruptDataError
		require.ErrorAs(t, err, &corrupt)
		var unknown *action.UnknownVariantError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, action.Kind("Teleport"), unknown.Kind)
	})

	t.Run("missing kind row", func(t *testing.T) {
		id, err := db.InsertAction(ctx, &action.Grip{Base: rs, Gripper: "left", Effort: 1, Object: action.RefID[action.ObjectDesignator](f.object)})
		require.NoError(t, err)
		_, err = db.Exec(`DELETE FROM grip_actions WHERE id=?`, id)
		require.NoError(t, err)

		_, err = db.LoadAction(ctx, id)
		var corrupt *CorruptDataError
		require.ErrorAs(t, err, &corrupt)
		assert.Equal(t, id, corrupt.ID)
	})

	t.Run("kind row in another table", func(t *testing.T) {
		height := 1.0
		id, err := db.InsertAction(ctx, &action.MoveTorso{Base: rs, Position: &height})
		require.NoError(t, err)
		_, err = db.Exec(`UPDATE actions SET kind='SetGripper' WHERE id=?`, id)
		require.NoError(t, err)

		_, err = db.LoadAction(ctx, id)
		var corrupt *CorruptDataError
		require.ErrorAs(t, err, &corrupt)
	})
}

func TestMoveTorsoNullPosition(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	f := seedValues(t, db)

	id, err := db.InsertAction(ctx, &action.MoveTorso{Base: action.Base{RobotState: action.RefID[action.RobotState](f.robotState)}})
	require.NoError(t, err)
	got, err := db.LoadAction(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got.(*action.MoveTorso).Position)
}

type teleport struct {
	action.Base
}

func (*teleport) Kind() action.Kind { return "Teleport" }

func TestInsertRejectsBeforeWriting(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	f := seedValues(t, db)
	rs := action.Base{RobotState: action.RefID[action.RobotState](f.robotState)}

	_, err := db.InsertAction(ctx, &teleport{Base: rs})
	var unknown *action.UnknownVariantError
	require.ErrorAs(t, err, &unknown)

	_, err = db.InsertAction(ctx, &action.Grip{Base: rs, Effort: 1, Object: action.RefTo(action.ObjectDesignator{Name: "cup"})})
	var mismatch *action.SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "gripper", mismatch.Field)

	_, err = db.InsertAction(ctx, &action.Navigate{Base: rs, Orientation: action.RefTo(action.Quaternion{W: 1})})
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "position", mismatch.Field)

	_, err = db.InsertAction(ctx, &action.ParkArms{Base: rs, Arm: "middle"})
	require.ErrorAs(t, err, &mismatch)

	_, err = db.InsertAction(ctx, nil)
	require.ErrorAs(t, err, &mismatch)

	n, err := db.CountActions(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = db.CountValues(ctx, action.ValueObject)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "only the seeded object")
	n, err = db.CountValues(ctx, action.ValueQuaternion)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "only the seeded quaternion")
}

func TestEnsureID(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	r := db.Resolver()

	_, err := r.EnsureID(ctx, db.DB, action.ValuePosition, action.Ref[action.Position]{})
	require.ErrorIs(t, err, ErrEmptyRef)

	id, err := r.EnsureID(ctx, db.DB, action.ValuePosition, action.RefID[action.Position](42))
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	n, err := db.CountValues(ctx, action.ValuePosition)
	require.NoError(t, err)
	assert.Zero(t, n, "an id must not trigger an insert")

	id, err = r.EnsureID(ctx, db.DB, action.ValuePosition, action.RefTo(action.Position{X: 1}))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	_, err = r.EnsureID(ctx, db.DB, action.ValueObject, action.RefTo(action.Position{X: 1}))
	require.Error(t, err)
}

func TestFetchNotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.Resolver().Fetch(context.Background(), action.ValueQuaternion, 5)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "quaternions", nf.Table)
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func (c *memCache) key(kind action.ValueKind, id int64) string {
	b, _ := json.Marshal([]any{kind, id})
	return string(b)
}

func (c *memCache) Get(_ context.Context, kind action.ValueKind, id int64, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.data[c.key(kind, id)]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(data, dst)
}

func (c *memCache) Put(_ context.Context, kind action.ValueKind, id int64, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[c.key(kind, id)] = data
	return nil
}

func TestFetchUsesValueCache(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	cache := &memCache{data: map[string][]byte{}}
	db.SetValueCache(cache)

	id, err := db.InsertObject(ctx, action.ObjectDesignator{Name: "spoon", Type: "Spoon"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		obj, err := db.Resolver().FetchObject(ctx, action.RefID[action.ObjectDesignator](id))
		require.NoError(t, err)
		assert.Equal(t, "spoon", obj.Name)
	}
	assert.Equal(t, 1, cache.hits)
}

func TestDeleteAction(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	f := seedValues(t, db)

	id, err := db.InsertAction(ctx, &action.Detect{
		Base:   action.Base{RobotState: action.RefID[action.RobotState](f.robotState)},
		Object: action.RefID[action.ObjectDesignator](f.object),
	})
	require.NoError(t, err)

	require.NoError(t, db.DeleteAction(ctx, id))

	_, err = db.LoadAction(ctx, id)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM detect_actions WHERE id=?`, id).Scan(&n))
	assert.Zero(t, n)

	obj, err := db.GetObject(ctx, f.object)
	require.NoError(t, err, "value objects outlive the actions that reference them")
	assert.Equal(t, "milk", obj.Name)

	err = db.DeleteAction(ctx, id)
	require.ErrorAs(t, err, &nf)
}

func TestListAndCountActions(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	f := seedValues(t, db)
	rs := action.Base{RobotState: action.RefID[action.RobotState](f.robotState)}

	for _, arm := range []string{"left", "right", "left"} {
		_, err := db.InsertAction(ctx, &action.Close{Base: rs, Arm: arm})
		require.NoError(t, err)
	}
	_, err := db.InsertAction(ctx, &action.ParkArms{Base: rs, Arm: action.ArmLeft})
	require.NoError(t, err)

	all, err := db.ListActions(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, int64(4), all[0].ID, "newest first")
	assert.Equal(t, action.KindParkArms, all[0].Kind)
	assert.Equal(t, f.robotState, all[0].RobotStateID)
	assert.False(t, all[0].CreatedAt.IsZero())

	closes, err := db.ListActions(ctx, action.KindClose, 2)
	require.NoError(t, err)
	require.Len(t, closes, 2)
	for _, s := range closes {
		assert.Equal(t, action.KindClose, s.Kind)
	}

	n, err := db.CountActions(ctx, action.KindClose)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	n, err = db.CountActions(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = db.CountActions(ctx, "Teleport")
	var unknown *action.UnknownVariantError
	require.ErrorAs(t, err, &unknown)
}

func TestOutboxEvents(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	f := seedValues(t, db)

	_, err := db.InsertAction(ctx, &action.Close{Base: action.Base{RobotState: action.RefID[action.RobotState](f.robotState)}, Arm: "left"})
	require.NoError(t, err)
	pending, err := db.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "events are off until enabled")

	db.EnableEvents("pycram.actions", "test")
	id, err := db.InsertAction(ctx, &action.Close{Base: action.Base{RobotState: action.RefID[action.RobotState](f.robotState)}, Arm: "right"})
	require.NoError(t, err)
	require.NoError(t, db.DeleteAction(ctx, id))

	pending, err = db.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, protocol.TypeActionRecorded, pending[0].MsgType)
	assert.Equal(t, protocol.TypeActionDeleted, pending[1].MsgType)
	assert.Equal(t, "pycram.actions", pending[0].Topic)
	assert.Equal(t, "test", pending[0].Source)

	env, err := protocol.Decode(pending[0].Payload)
	require.NoError(t, err)
	var rec protocol.ActionRecorded
	require.NoError(t, env.DecodePayload(&rec))
	assert.Equal(t, id, rec.ActionID)
	assert.Equal(t, "Close", rec.Kind)
	assert.Equal(t, f.robotState, rec.RobotStateID)

	require.NoError(t, db.IncrementOutboxRetries(ctx, pending[0].ID))
	require.NoError(t, db.AckOutbox(ctx, pending[0].ID))
	msg, err := db.GetOutbox(ctx, pending[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, msg.Retries)
	assert.NotNil(t, msg.SentAt)

	pending, err = db.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, protocol.TypeActionDeleted, pending[0].MsgType)
}

func TestSchemaDDL(t *testing.T) {
	db := testDB(t)
	ddl := db.Schema()
	for _, v := range db.Registry().Variants() {
		assert.Contains(t, ddl, "CREATE TABLE IF NOT EXISTS "+v.Table+" (")
	}
	assert.Contains(t, ddl, "position_id INTEGER NOT NULL REFERENCES positions(id)")
	assert.Contains(t, ddl, "arm TEXT NOT NULL CHECK (arm IN ('left', 'right', 'both'))")

	v, err := db.Registry().Lookup(action.KindMoveTorso)
	require.NoError(t, err)
	pg := variantDDL(postgresDialect{}, v)
	assert.Contains(t, pg, "id BIGINT PRIMARY KEY REFERENCES actions(id) ON DELETE CASCADE")
	assert.Contains(t, pg, "position DOUBLE PRECISION")
	assert.NotContains(t, pg, "position DOUBLE PRECISION NOT NULL")
}

func TestRegistrySealedByOpen(t *testing.T) {
	reg := action.NewRegistry()
	require.NoError(t, action.RegisterBuiltins(reg))

	db, err := Open(&config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "sealed.db")},
	}, reg)
	require.NoError(t, err)
	defer db.Close()

	assert.True(t, reg.Sealed())
	err = reg.Register(action.Variant{Kind: "Teleport", Table: "teleport_actions",
		New: func() action.Action { return &teleport{} },
		Encode: func(action.Action) (action.Record, error) { return action.Record{}, nil },
		Decode: func(b action.Base, _ action.Record) action.Action { return &teleport{Base: b} },
	})
	require.ErrorIs(t, err, action.ErrRegistrySealed)
}

func TestCustomKindGetsItsOwnTable(t *testing.T) {
	reg := action.NewRegistry()
	require.NoError(t, reg.Register(action.Variant{
		Kind:   "Teleport",
		Table:  "teleport_actions",
		New:    func() action.Action { return &teleport{} },
		Encode: func(action.Action) (action.Record, error) { return action.Record{}, nil },
		Decode: func(b action.Base, _ action.Record) action.Action { return &teleport{Base: b} },
	}))
	db, err := Open(&config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "custom.db")},
	}, reg)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	a := &teleport{Base: action.Base{RobotState: action.RefTo(action.RobotState{Type: "pr2"})}}
	id, err := db.InsertAction(ctx, a)
	require.NoError(t, err)

	got, err := db.LoadAction(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, &teleport{Base: action.Base{ID: id, RobotState: action.RefID[action.RobotState](1)}}, got)
	assert.True(t, strings.Contains(db.Schema(), "teleport_actions"))
}

func TestUnsupportedDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "oracle"}, action.NewRegistry())
	require.Error(t, err)
}

func TestRebind(t *testing.T) {
	got := Rebind(`SELECT id FROM actions WHERE kind=? AND id>? LIMIT ?`)
	assert.Equal(t, `SELECT id FROM actions WHERE kind=$1 AND id>$2 LIMIT $3`, got)
}

func TestSchemaForWithoutConnection(t *testing.T) {
	ddl, err := SchemaFor("postgres", action.Builtin())
	require.NoError(t, err)
	assert.Contains(t, ddl, "BIGSERIAL PRIMARY KEY")
	assert.Contains(t, ddl, "CREATE TABLE IF NOT EXISTS transport_actions (")
	assert.Contains(t, ddl, "object_id BIGINT NOT NULL REFERENCES objects(id)")

	_, err = SchemaFor("mysql", action.Builtin())
	require.Error(t, err)
}
