package store

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS positions (
    id  BIGSERIAL PRIMARY KEY,
    x   DOUBLE PRECISION NOT NULL,
    y   DOUBLE PRECISION NOT NULL,
    z   DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS quaternions (
    id  BIGSERIAL PRIMARY KEY,
    x   DOUBLE PRECISION NOT NULL,
    y   DOUBLE PRECISION NOT NULL,
    z   DOUBLE PRECISION NOT NULL,
    w   DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS objects (
    id    BIGSERIAL PRIMARY KEY,
    name  TEXT NOT NULL DEFAULT '',
    type  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS robot_states (
    id            BIGSERIAL PRIMARY KEY,
    pos_x         DOUBLE PRECISION NOT NULL,
    pos_y         DOUBLE PRECISION NOT NULL,
    pos_z         DOUBLE PRECISION NOT NULL,
    ori_x         DOUBLE PRECISION NOT NULL,
    ori_y         DOUBLE PRECISION NOT NULL,
    ori_z         DOUBLE PRECISION NOT NULL,
    ori_w         DOUBLE PRECISION NOT NULL,
    torso_height  DOUBLE PRECISION NOT NULL DEFAULT 0,
    type          TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS actions (
    id              BIGSERIAL PRIMARY KEY,
    kind            TEXT NOT NULL,
    robot_state_id  BIGINT NOT NULL REFERENCES robot_states(id),
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_actions_kind ON actions(kind);

CREATE TABLE IF NOT EXISTS outbox (
    id          BIGSERIAL PRIMARY KEY,
    topic       TEXT NOT NULL,
    payload     BYTEA NOT NULL,
    msg_type    TEXT NOT NULL DEFAULT '',
    source      TEXT NOT NULL DEFAULT '',
    retries     INTEGER NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    sent_at     TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox(sent_at) WHERE sent_at IS NULL;
`
