package store

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS positions (
    id  INTEGER PRIMARY KEY AUTOINCREMENT,
    x   REAL NOT NULL,
    y   REAL NOT NULL,
    z   REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS quaternions (
    id  INTEGER PRIMARY KEY AUTOINCREMENT,
    x   REAL NOT NULL,
    y   REAL NOT NULL,
    z   REAL NOT NULL,
    w   REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS objects (
    id    INTEGER PRIMARY KEY AUTOINCREMENT,
    name  TEXT NOT NULL DEFAULT '',
    type  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS robot_states (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    pos_x         REAL NOT NULL,
    pos_y         REAL NOT NULL,
    pos_z         REAL NOT NULL,
    ori_x         REAL NOT NULL,
    ori_y         REAL NOT NULL,
    ori_z         REAL NOT NULL,
    ori_w         REAL NOT NULL,
    torso_height  REAL NOT NULL DEFAULT 0,
    type          TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS actions (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    kind            TEXT NOT NULL,
    robot_state_id  INTEGER NOT NULL REFERENCES robot_states(id),
    created_at      TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
CREATE INDEX IF NOT EXISTS idx_actions_kind ON actions(kind);

CREATE TABLE IF NOT EXISTS outbox (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    topic       TEXT NOT NULL,
    payload     BLOB NOT NULL,
    msg_type    TEXT NOT NULL DEFAULT '',
    source      TEXT NOT NULL DEFAULT '',
    retries     INTEGER NOT NULL DEFAULT 0,
    created_at  TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    sent_at     TEXT
);
CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox(sent_at) WHERE sent_at IS NULL;
`
